package payment

import "time"

// Payment types
const (
	TypeDeposit = "DEPOSIT"
	TypeRent    = "RENT"
	TypeOther   = "OTHER"
)

// Payment statuses
const (
	StatusPending  = "PENDING"
	StatusPaid     = "PAID"
	StatusRefunded = "REFUNDED"
	StatusFailed   = "FAILED"
)

// Payment methods
const (
	MethodCard     = "CARD"
	MethodTransfer = "TRANSFER"
	MethodCash     = "CASH"
	MethodOnline   = "ONLINE"
)

type Payment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Type      string  `gorm:"size:20;not null;index" json:"type"`
	Status    string  `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Method    string  `gorm:"size:20" json:"method"`

	DueDate *time.Time `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at"`

	RazorpayOrderID   string `gorm:"size:100" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `gorm:"size:100" json:"razorpay_payment_id,omitempty"`

	Reference string    `gorm:"size:100" json:"reference"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

func ValidType(t string) bool {
	switch t {
	case TypeDeposit, TypeRent, TypeOther:
		return true
	}
	return false
}

type CreatePaymentRequest struct {
	BookingID uint    `json:"booking_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Type      string  `json:"type" binding:"required,oneof=DEPOSIT RENT OTHER"`
	Method    string  `json:"method" binding:"omitempty,oneof=CARD TRANSFER CASH ONLINE"`
	DueDate   *string `json:"due_date"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount    *float64 `json:"amount"`
	Status    *string  `json:"status"`
	Method    *string  `json:"method"`
	DueDate   *string  `json:"due_date"`
	Reference *string  `json:"reference"`
	Notes     *string  `json:"notes"`
}

// VerifyOrderRequest carries the gateway callback fields back to the server.
type VerifyOrderRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type ListFilter struct {
	BookingID *uint
	Status    string
	Type      string
	Page      int
	Limit     int
}
