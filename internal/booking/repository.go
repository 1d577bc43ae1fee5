package booking

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetByID(ctx context.Context, id uint) (*Booking, error)
	GetByIDs(ctx context.Context, ids []uint) ([]Booking, error)
	List(ctx context.Context, filter ListFilter) ([]Booking, int64, error)
	CountOverlapping(ctx context.Context, tx *gorm.DB, roomID uint, start time.Time, end *time.Time, excludeID uint) (int64, error)
	CountBlockingForRoom(ctx context.Context, tx *gorm.DB, roomID uint, excludeID uint) (int64, error)
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

func (r *repository) Create(ctx context.Context, tx *gorm.DB, b *Booking) error {
	return r.conn(tx).WithContext(ctx).Create(b).Error
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status string) error {
	return r.conn(tx).WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.conn(tx).WithContext(ctx).Delete(&Booking{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Booking, error) {
	var b Booking
	if err := r.db.WithContext(ctx).Preload("Room").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&bookings).Error
	return bookings, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&Booking{})

	if filter.RoomID != nil {
		query = query.Where("room_id = ?", *filter.RoomID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"tenant_first_name ILIKE ? OR tenant_last_name ILIKE ? OR tenant_email ILIKE ?",
			like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Room").Order("start_date DESC").Limit(filter.Limit).Offset(offset).Find(&bookings).Error
	return bookings, total, err
}

// CountOverlapping counts CONFIRMED/ACTIVE bookings on a room whose stay
// period overlaps [start, end]. An open-ended booking (end_date NULL) blocks
// everything from its start date onward.
func (r *repository) CountOverlapping(ctx context.Context, tx *gorm.DB, roomID uint, start time.Time, end *time.Time, excludeID uint) (int64, error) {
	var count int64
	query := r.conn(tx).WithContext(ctx).Model(&Booking{}).
		Where("room_id = ? AND status IN ?", roomID, []string{StatusConfirmed, StatusActive}).
		Where("end_date IS NULL OR end_date >= ?", start)
	if end != nil {
		query = query.Where("start_date <= ?", *end)
	}
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountBlockingForRoom counts bookings that keep a room occupied.
func (r *repository) CountBlockingForRoom(ctx context.Context, tx *gorm.DB, roomID uint, excludeID uint) (int64, error) {
	var count int64
	query := r.conn(tx).WithContext(ctx).Model(&Booking{}).
		Where("room_id = ? AND status IN ?", roomID, []string{StatusConfirmed, StatusActive})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}
