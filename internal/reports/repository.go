package reports

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	BookingRows(ctx context.Context, filter Filter) ([]BookingReportRow, error)
	RoomRows(ctx context.Context) ([]RoomReportRow, error)
	ContactRows(ctx context.Context, filter Filter) ([]ContactReportRow, error)
	PaymentRows(ctx context.Context, filter Filter) ([]PaymentReportRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func applyRange(q *gorm.DB, filter Filter, column string) *gorm.DB {
	if filter.From != nil {
		q = q.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where(column+" <= ?", *filter.To)
	}
	return q
}

func (r *repository) BookingRows(ctx context.Context, filter Filter) ([]BookingReportRow, error) {
	var rows []BookingReportRow
	q := r.db.WithContext(ctx).Table("bookings").
		Select(`bookings.id,
			rooms.number AS room_number,
			bookings.tenant_first_name || ' ' || bookings.tenant_last_name AS tenant_name,
			bookings.tenant_email,
			bookings.start_date, bookings.end_date, bookings.status, bookings.total_amount`).
		Joins("JOIN rooms ON rooms.id = bookings.room_id")
	q = applyRange(q, filter, "bookings.created_at")
	err := q.Order("bookings.start_date DESC").Scan(&rows).Error
	return rows, err
}

func (r *repository) RoomRows(ctx context.Context) ([]RoomReportRow, error) {
	var rows []RoomReportRow
	err := r.db.WithContext(ctx).Table("rooms").
		Select("id, number, name, floor, surface, monthly_price, status, is_active").
		Order("number ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) ContactRows(ctx context.Context, filter Filter) ([]ContactReportRow, error) {
	var rows []ContactReportRow
	q := r.db.WithContext(ctx).Table("contacts").
		Select("id, first_name || ' ' || last_name AS name, email, phone, subject, status, created_at")
	q = applyRange(q, filter, "created_at")
	err := q.Order("created_at DESC").Scan(&rows).Error
	return rows, err
}

func (r *repository) PaymentRows(ctx context.Context, filter Filter) ([]PaymentReportRow, error) {
	var rows []PaymentReportRow
	q := r.db.WithContext(ctx).Table("payments").
		Select(`payments.id, payments.booking_id,
			bookings.tenant_first_name || ' ' || bookings.tenant_last_name AS tenant_name,
			payments.amount, payments.type, payments.status, payments.paid_at`).
		Joins("JOIN bookings ON bookings.id = payments.booking_id")
	q = applyRange(q, filter, "payments.created_at")
	err := q.Order("payments.created_at DESC").Scan(&rows).Error
	return rows, err
}
