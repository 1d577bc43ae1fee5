package contract

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, ct *Contract) error
	Update(ctx context.Context, ct *Contract) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Contract, error)
	GetByNumber(ctx context.Context, number string) (*Contract, error)
	List(ctx context.Context, filter ListFilter) ([]Contract, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error
	AddSignature(ctx context.Context, tx *gorm.DB, sig *ContractSignature) error
	HasSignatureByEmail(ctx context.Context, contractID uint, email string) (bool, error)
	DB() *gorm.DB
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) DB() *gorm.DB {
	return r.db
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) Create(ctx context.Context, ct *Contract) error {
	return r.db.WithContext(ctx).Create(ct).Error
}

func (r *repository) Update(ctx context.Context, ct *Contract) error {
	return r.db.WithContext(ctx).Save(ct).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&ContractSignature{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Contract{}, id).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Contract, error) {
	var ct Contract
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Preload("Booking.Room").
		Preload("Signatures").
		First(&ct, id).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	var ct Contract
	err := r.db.WithContext(ctx).
		Preload("Signatures").
		Where("contract_number = ?", number).
		First(&ct).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Contract, int64, error) {
	var contracts []Contract
	var total int64

	query := r.db.WithContext(ctx).Model(&Contract{})

	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("contract_number ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Booking").Preload("Signatures").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&contracts).Error
	return contracts, total, err
}

func (r *repository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error {
	return r.conn(tx).WithContext(ctx).Model(&Contract{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) AddSignature(ctx context.Context, tx *gorm.DB, sig *ContractSignature) error {
	return r.conn(tx).WithContext(ctx).Create(sig).Error
}

func (r *repository) HasSignatureByEmail(ctx context.Context, contractID uint, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ContractSignature{}).
		Where("contract_id = ? AND LOWER(signer_email) = ?", contractID, strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}
