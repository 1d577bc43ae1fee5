package adminsignature

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, sig *AdminSignature) error
	Update(ctx context.Context, sig *AdminSignature) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*AdminSignature, error)
	GetDefault(ctx context.Context) (*AdminSignature, error)
	List(ctx context.Context) ([]AdminSignature, error)
	SetDefault(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sig *AdminSignature) error {
	return r.db.WithContext(ctx).Create(sig).Error
}

func (r *repository) Update(ctx context.Context, sig *AdminSignature) error {
	return r.db.WithContext(ctx).Save(sig).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&AdminSignature{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*AdminSignature, error) {
	var sig AdminSignature
	if err := r.db.WithContext(ctx).First(&sig, id).Error; err != nil {
		return nil, err
	}
	return &sig, nil
}

func (r *repository) GetDefault(ctx context.Context) (*AdminSignature, error) {
	var sig AdminSignature
	if err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&sig).Error; err != nil {
		return nil, err
	}
	return &sig, nil
}

func (r *repository) List(ctx context.Context) ([]AdminSignature, error) {
	var sigs []AdminSignature
	err := r.db.WithContext(ctx).Order("is_default DESC, created_at DESC").Find(&sigs).Error
	return sigs, err
}

// SetDefault swaps the default flag atomically.
func (r *repository) SetDefault(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&AdminSignature{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&AdminSignature{}).Where("id = ?", id).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
