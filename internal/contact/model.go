package contact

import "time"

// Contact message statuses
const (
	StatusNew      = "NEW"
	StatusRead     = "READ"
	StatusReplied  = "REPLIED"
	StatusArchived = "ARCHIVED"
)

// Contact is a message left through the public contact form.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:150;not null;index" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Subject   string    `gorm:"size:200" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Status    string    `gorm:"size:20;not null;default:'NEW';index" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"` // internal follow-up notes
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}

type CreateContactRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message" binding:"required"`
}

type UpdateContactRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=NEW READ REPLIED ARCHIVED"`
	Notes  *string `json:"notes"`
}

type ListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}
