package booking

import (
	"time"

	"github.com/hlefebvre/coliving-backend/internal/room"
)

// Booking statuses
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusActive    = "ACTIVE"
	StatusEnded     = "ENDED"
	StatusCancelled = "CANCELLED"
)

type Booking struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	RoomID uint      `gorm:"not null;index" json:"room_id"`
	Room   room.Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`

	TenantFirstName string `gorm:"size:100;not null" json:"tenant_first_name"`
	TenantLastName  string `gorm:"size:100;not null" json:"tenant_last_name"`
	TenantEmail     string `gorm:"size:150;not null;index" json:"tenant_email"`
	TenantPhone     string `gorm:"size:30" json:"tenant_phone"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"` // nil = open-ended stay

	Status          string  `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	MonthlyRent     float64 `gorm:"not null" json:"monthly_rent"`
	SecurityDeposit float64 `json:"security_deposit"`
	TotalAmount     float64 `gorm:"not null" json:"total_amount"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusEnded, StatusCancelled:
		return true
	}
	return false
}

type CreateBookingRequest struct {
	RoomID          uint    `json:"room_id" binding:"required"`
	TenantFirstName string  `json:"tenant_first_name" binding:"required"`
	TenantLastName  string  `json:"tenant_last_name" binding:"required"`
	TenantEmail     string  `json:"tenant_email" binding:"required,email"`
	TenantPhone     string  `json:"tenant_phone"`
	StartDate       string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate         *string `json:"end_date"`
	Status          string  `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED"`
	Notes           string  `json:"notes"`
}

type UpdateBookingRequest struct {
	TenantFirstName *string `json:"tenant_first_name"`
	TenantLastName  *string `json:"tenant_last_name"`
	TenantEmail     *string `json:"tenant_email"`
	TenantPhone     *string `json:"tenant_phone"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"` // empty string clears the end date
	Notes           *string `json:"notes"`
}

// BulkBookingRequest drives PUT /bookings {action: bulk_status}.
type BulkBookingRequest struct {
	Action     string `json:"action" binding:"required,oneof=bulk_status"`
	BookingIDs []uint `json:"booking_ids" binding:"required,min=1"`
	Status     string `json:"status" binding:"required"`
}

type ListFilter struct {
	RoomID *uint
	Status string
	Search string
	Page   int
	Limit  int
}
