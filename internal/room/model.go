package room

import (
	"time"

	"gorm.io/datatypes"
)

// Room statuses
const (
	StatusAvailable   = "AVAILABLE"
	StatusOccupied    = "OCCUPIED"
	StatusMaintenance = "MAINTENANCE"
	StatusUnavailable = "UNAVAILABLE"
)

// Bed and kitchen types offered in the residence
const (
	BedSimple = "SIMPLE"
	BedDouble = "DOUBLE"
	BedQueen  = "QUEEN"

	KitchenShared  = "SHARED"
	KitchenPrivate = "PRIVATE"
	KitchenetteOwn = "KITCHENETTE"
	KitchenNone    = "NONE"
)

type Room struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `gorm:"size:100;not null" json:"name"`
	Number          int     `gorm:"uniqueIndex;not null" json:"number"`
	Floor           int     `json:"floor"`
	Surface         float64 `json:"surface"` // m²
	MonthlyPrice    float64 `gorm:"not null" json:"monthly_price"`
	SecurityDeposit float64 `json:"security_deposit"`
	Status          string  `gorm:"size:20;not null;default:'AVAILABLE';index" json:"status"`
	IsActive        bool    `gorm:"default:true" json:"is_active"`

	HasBalcony         bool `json:"has_balcony"`
	HasPrivateBathroom bool `json:"has_private_bathroom"`
	HasDesk            bool `json:"has_desk"`
	HasTV              bool `json:"has_tv"`

	BedType     string `gorm:"size:20;default:'SIMPLE'" json:"bed_type"`
	KitchenType string `gorm:"size:20;default:'SHARED'" json:"kitchen_type"`

	// Freeform amenity tags shown on marketing pages
	Extras datatypes.JSON `gorm:"type:jsonb" json:"extras,omitempty"`

	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusUnavailable:
		return true
	}
	return false
}

type CreateRoomRequest struct {
	Name               string   `json:"name" binding:"required"`
	Number             int      `json:"number" binding:"required,min=1"`
	Floor              int      `json:"floor"`
	Surface            float64  `json:"surface" binding:"min=0"`
	MonthlyPrice       float64  `json:"monthly_price" binding:"required,gt=0"`
	SecurityDeposit    float64  `json:"security_deposit" binding:"min=0"`
	Status             string   `json:"status"`
	HasBalcony         bool     `json:"has_balcony"`
	HasPrivateBathroom bool     `json:"has_private_bathroom"`
	HasDesk            bool     `json:"has_desk"`
	HasTV              bool     `json:"has_tv"`
	BedType            string   `json:"bed_type" binding:"omitempty,oneof=SIMPLE DOUBLE QUEEN"`
	KitchenType        string   `json:"kitchen_type" binding:"omitempty,oneof=SHARED PRIVATE KITCHENETTE NONE"`
	Extras             []string `json:"extras"`
	Description        string   `json:"description"`
}

type UpdateRoomRequest struct {
	Name               *string  `json:"name"`
	Floor              *int     `json:"floor"`
	Surface            *float64 `json:"surface"`
	MonthlyPrice       *float64 `json:"monthly_price"`
	SecurityDeposit    *float64 `json:"security_deposit"`
	Status             *string  `json:"status"`
	IsActive           *bool    `json:"is_active"`
	HasBalcony         *bool    `json:"has_balcony"`
	HasPrivateBathroom *bool    `json:"has_private_bathroom"`
	HasDesk            *bool    `json:"has_desk"`
	HasTV              *bool    `json:"has_tv"`
	BedType            *string  `json:"bed_type"`
	KitchenType        *string  `json:"kitchen_type"`
	Extras             []string `json:"extras"`
	Description        *string  `json:"description"`
}

// BulkRoomRequest drives PUT /rooms {action: bulk_status|bulk_activate}.
type BulkRoomRequest struct {
	Action   string `json:"action" binding:"required,oneof=bulk_status bulk_activate"`
	RoomIDs  []uint `json:"room_ids" binding:"required,min=1"`
	Status   string `json:"status"`
	IsActive *bool  `json:"is_active"`
}

// ListFilter mirrors the query parameters of GET /rooms.
type ListFilter struct {
	Status     string
	MinPrice   *float64
	MaxPrice   *float64
	HasBalcony *bool
	Floor      *int
	Page       int
	Limit      int
}
