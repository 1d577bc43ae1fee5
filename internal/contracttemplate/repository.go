package contracttemplate

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, t *ContractTemplate) error
	Update(ctx context.Context, t *ContractTemplate) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*ContractTemplate, error)
	GetDefault(ctx context.Context) (*ContractTemplate, error)
	List(ctx context.Context, filter ListFilter) ([]ContractTemplate, int64, error)
	SetDefault(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *ContractTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) Update(ctx context.Context, t *ContractTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&ContractTemplate{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*ContractTemplate, error) {
	var t ContractTemplate
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) GetDefault(ctx context.Context) (*ContractTemplate, error) {
	var t ContractTemplate
	if err := r.db.WithContext(ctx).Where("is_default = ? AND is_active = ?", true, true).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]ContractTemplate, int64, error) {
	var templates []ContractTemplate
	var total int64

	query := r.db.WithContext(ctx).Model(&ContractTemplate{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("is_default DESC, updated_at DESC").Limit(filter.Limit).Offset(offset).Find(&templates).Error
	return templates, total, err
}

// SetDefault clears the previous default and marks the new one in a single
// transaction, so two concurrent admins cannot leave two defaults behind.
func (r *repository) SetDefault(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ContractTemplate{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&ContractTemplate{}).Where("id = ?", id).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
