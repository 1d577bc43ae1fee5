package payment

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, int64, error)
	SumPaidByBooking(ctx context.Context, bookingID uint) (float64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) Update(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Payment{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).Where("razorpay_order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, int64, error) {
	var payments []Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&Payment{})

	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&payments).Error
	return payments, total, err
}

func (r *repository) SumPaidByBooking(ctx context.Context, bookingID uint) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, StatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
