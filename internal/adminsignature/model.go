package adminsignature

import "time"

// AdminSignature is a reusable signature image stamped onto generated
// contracts on behalf of the operator.
type AdminSignature struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:150;not null" json:"name"`
	Description   string    `gorm:"size:500" json:"description"`
	SignatureData string    `gorm:"type:text;not null" json:"signature_data"` // base64 PNG
	IsDefault     bool      `gorm:"default:false;index" json:"is_default"`
	CreatedBy     uint      `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (AdminSignature) TableName() string {
	return "admin_signatures"
}

type CreateSignatureRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	SignatureData string `json:"signature_data" binding:"required"`
	IsDefault     bool   `json:"is_default"`
}

type UpdateSignatureRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	SignatureData *string `json:"signature_data"`
}
