package contract

import (
	"time"

	"github.com/hlefebvre/coliving-backend/internal/booking"
)

// Contract statuses. The lifecycle only moves forward: DRAFT, PENDING, SENT,
// SIGNED, ACTIVE, with EXPIRED and TERMINATED as side exits.
const (
	StatusDraft      = "DRAFT"
	StatusPending    = "PENDING"
	StatusSent       = "SENT"
	StatusSigned     = "SIGNED"
	StatusActive     = "ACTIVE"
	StatusExpired    = "EXPIRED"
	StatusTerminated = "TERMINATED"
)

// Signer roles
const (
	RoleTenantSigner = "TENANT"
	RoleOwnerSigner  = "OWNER"
)

type Contract struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ContractNumber string          `gorm:"size:30;uniqueIndex;not null" json:"contract_number"`
	BookingID      uint            `gorm:"not null;index" json:"booking_id"`
	Booking        booking.Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	TemplateID     *uint           `json:"template_id"`

	MonthlyRent float64    `gorm:"not null" json:"monthly_rent"`
	Deposit     float64    `json:"deposit"`
	Charges     float64    `json:"charges"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	Status  string `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	Content string `gorm:"type:text" json:"content"` // rendered template body
	PDFPath string `gorm:"size:255" json:"pdf_url,omitempty"`

	Signatures []ContractSignature `gorm:"foreignKey:ContractID" json:"signatures,omitempty"`

	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

// ContractSignature is one signer's captured signature on a contract.
type ContractSignature struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ContractID    uint      `gorm:"not null;index" json:"contract_id"`
	SignerName    string    `gorm:"size:150;not null" json:"signer_name"`
	SignerEmail   string    `gorm:"size:150;not null;index" json:"signer_email"` // stored lowercase
	SignerRole    string    `gorm:"size:20;not null" json:"signer_role"`
	SignatureData string    `gorm:"type:text;not null" json:"signature_data"` // base64 PNG
	IPAddress     string    `gorm:"size:45" json:"ip_address"`
	SignedAt      time.Time `gorm:"autoCreateTime" json:"signed_at"`
}

func (ContractSignature) TableName() string {
	return "contract_signatures"
}

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusSent, StatusSigned, StatusActive, StatusExpired, StatusTerminated:
		return true
	}
	return false
}

type CreateContractRequest struct {
	BookingID  uint     `json:"booking_id" binding:"required"`
	TemplateID *uint    `json:"template_id"` // nil = use the default template
	Charges    *float64 `json:"charges"`
}

type UpdateContractRequest struct {
	MonthlyRent *float64 `json:"monthly_rent"`
	Deposit     *float64 `json:"deposit"`
	Charges     *float64 `json:"charges"`
	Content     *string  `json:"content"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SendRequest launches the e-sign flow for one signer.
type SendRequest struct {
	SignerName  string `json:"signer_name" binding:"required"`
	SignerEmail string `json:"signer_email" binding:"required,email"`
	SignerRole  string `json:"signer_role" binding:"omitempty,oneof=TENANT OWNER"`
}

// SignRequest carries the captured signature back from the public page. The
// signer identity comes from the verified token, not the body.
type SignRequest struct {
	SignatureData string `json:"signature_data" binding:"required"`
	AcceptTerms   bool   `json:"accept_terms" binding:"required"`
}

type ListFilter struct {
	BookingID *uint
	Status    string
	Search    string
	Page      int
	Limit     int
}
