package room

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, room *Room) error
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Room, error)
	GetByNumber(ctx context.Context, number int) (*Room, error)
	GetByIDs(ctx context.Context, ids []uint) ([]Room, error)
	List(ctx context.Context, filter ListFilter) ([]Room, int64, error)
	ListPublic(ctx context.Context) ([]Room, error)
	CountActiveBookings(ctx context.Context, roomIDs []uint) (map[uint]int64, error)
	SetStatus(ctx context.Context, tx *gorm.DB, roomID uint, status string) error
	BulkUpdate(ctx context.Context, ids []uint, updates map[string]interface{}) error
	DeleteMany(ctx context.Context, ids []uint) error
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

func (r *repository) Create(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *repository) Update(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Room{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Room, error) {
	var room Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) GetByNumber(ctx context.Context, number int) (*Room, error) {
	var room Room
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uint) ([]Room, error) {
	var rooms []Room
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error
	return rooms, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Room, int64, error) {
	var rooms []Room
	var total int64

	query := r.db.WithContext(ctx).Model(&Room{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinPrice != nil {
		query = query.Where("monthly_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("monthly_price <= ?", *filter.MaxPrice)
	}
	if filter.HasBalcony != nil {
		query = query.Where("has_balcony = ?", *filter.HasBalcony)
	}
	if filter.Floor != nil {
		query = query.Where("floor = ?", *filter.Floor)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("number ASC").Limit(filter.Limit).Offset(offset).Find(&rooms).Error
	return rooms, total, err
}

// ListPublic returns active, available rooms for the marketing site.
func (r *repository) ListPublic(ctx context.Context) ([]Room, error) {
	var rooms []Room
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND status = ?", true, StatusAvailable).
		Order("number ASC").
		Find(&rooms).Error
	return rooms, err
}

// CountActiveBookings counts CONFIRMED/ACTIVE bookings per room without
// importing the booking package.
func (r *repository) CountActiveBookings(ctx context.Context, roomIDs []uint) (map[uint]int64, error) {
	type row struct {
		RoomID uint
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("room_id, COUNT(*) as n").
		Where("room_id IN ? AND status IN ?", roomIDs, []string{"CONFIRMED", "ACTIVE"}).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, rw := range rows {
		out[rw.RoomID] = rw.N
	}
	return out, nil
}

// SetStatus updates a room status, optionally inside a caller-owned transaction.
func (r *repository) SetStatus(ctx context.Context, tx *gorm.DB, roomID uint, status string) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Model(&Room{}).Where("id = ?", roomID).Update("status", status).Error
}

func (r *repository) BulkUpdate(ctx context.Context, ids []uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&Room{}).Where("id IN ?", ids).Updates(updates).Error
}

func (r *repository) DeleteMany(ctx context.Context, ids []uint) error {
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Room{}).Error
}
