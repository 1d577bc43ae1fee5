package auth

import (
	"time"
)

// UserRole is the seeded role table: admin, manager, tenant.
type UserRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoleName    string    `gorm:"size:50;uniqueIndex;not null" json:"role_name"`
	Description string    `gorm:"size:255" json:"description"`
	CanRegister bool      `gorm:"default:false" json:"can_register"`
	CreatedAt   time.Time `json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FullName     string     `gorm:"size:150;not null" json:"full_name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Phone        string     `gorm:"size:20" json:"phone"`
	RoleID       uint       `gorm:"not null;index" json:"role_id"`
	Role         UserRole   `gorm:"foreignKey:RoleID" json:"role"`
	Status       string     `gorm:"size:20;default:'active'" json:"status"` // active, inactive
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}
