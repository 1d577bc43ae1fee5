package contracttemplate

import "time"

// ContractTemplate is an admin-authored lease template whose body contains
// {{TOKEN}} placeholders filled at contract generation time.
type ContractTemplate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsDefault   bool      `gorm:"default:false;index" json:"is_default"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ContractTemplate) TableName() string {
	return "contract_templates"
}

type CreateTemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Content     string `json:"content" binding:"required"`
	IsDefault   bool   `json:"is_default"`
}

type UpdateTemplateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	IsActive    *bool   `json:"is_active"`
}

// PreviewRequest renders a template body against an ad hoc context.
type PreviewRequest struct {
	Content string            `json:"content" binding:"required"`
	Context map[string]string `json:"context"`
}

type ListFilter struct {
	Search string
	Active *bool
	Page   int
	Limit  int
}
