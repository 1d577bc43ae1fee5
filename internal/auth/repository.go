package auth

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(user *User) error
	Update(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(userID uint) (User, error)
	FindRoleByName(name string) (*UserRole, error)
	ListUsers(role, search string, limit, offset int) ([]User, int64, error)
	GetUserEmailsByRole(roleName string) ([]string, error)
	GetUserIDsByRole(roleName string) ([]uint, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(user *User) error {
	return r.db.Create(user).Error
}

func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	if err := r.db.Preload("Role").Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByID(userID uint) (User, error) {
	var u User
	err := r.db.Preload("Role").First(&u, userID).Error
	return u, err
}

func (r *repository) FindRoleByName(name string) (*UserRole, error) {
	var role UserRole
	if err := r.db.Where("role_name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) ListUsers(role, search string, limit, offset int) ([]User, int64, error) {
	var users []User
	var total int64

	query := r.db.Model(&User{}).Preload("Role")
	if role != "" {
		query = query.Joins("JOIN user_roles ON user_roles.id = users.role_id").
			Where("user_roles.role_name = ?", role)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *repository) GetUserEmailsByRole(roleName string) ([]string, error) {
	var emails []string
	err := r.db.Model(&User{}).
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Where("user_roles.role_name = ? AND users.status = 'active'", roleName).
		Pluck("users.email", &emails).Error
	return emails, err
}

func (r *repository) GetUserIDsByRole(roleName string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&User{}).
		Joins("JOIN user_roles ON user_roles.id = users.role_id").
		Where("user_roles.role_name = ? AND users.status = 'active'", roleName).
		Pluck("users.id", &ids).Error
	return ids, err
}
