package notification

import "time"

// Notification types
const (
	TypeContractSent      = "CONTRACT_SENT"
	TypeContractSigned    = "CONTRACT_SIGNED"
	TypeContractActivated = "CONTRACT_ACTIVATED"
	TypeContactReceived   = "CONTACT_RECEIVED"
	TypeSystem            = "SYSTEM"
)

// Notification is an in-app message shown in the back office bell menu.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// DeviceToken registers one browser/device for FCM push delivery.
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"size:255;uniqueIndex;not null" json:"token"`
	Platform  string    `gorm:"size:20" json:"platform"` // web, android, ios
	CreatedAt time.Time `json:"created_at"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}

type RegisterTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"omitempty,oneof=web android ios"`
}
