package contact

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, ct *Contact) error
	Update(ctx context.Context, ct *Contact) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Contact, error)
	List(ctx context.Context, filter ListFilter) ([]Contact, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ct *Contact) error {
	return r.db.WithContext(ctx).Create(ct).Error
}

func (r *repository) Update(ctx context.Context, ct *Contact) error {
	return r.db.WithContext(ctx).Save(ct).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Contact{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Contact, error) {
	var ct Contact
	if err := r.db.WithContext(ctx).First(&ct, id).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Contact, int64, error) {
	var contacts []Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&Contact{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR subject ILIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&contacts).Error
	return contacts, total, err
}

func (r *repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Contact{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
