package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/payment"
	"github.com/hlefebvre/coliving-backend/internal/room"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditlog.AuditLog{}, &room.Room{}, &Booking{}, &payment.Payment{}))
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	db := setupTestDB(t)
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	svc := NewService(NewRepository(db), room.NewRepository(db), auditSvc)
	return svc, db
}

func createTestRoom(t *testing.T, db *gorm.DB, number int) *room.Room {
	rm := &room.Room{
		Name:            "Chambre test",
		Number:          number,
		MonthlyPrice:    650,
		SecurityDeposit: 500,
		Status:          room.StatusAvailable,
		IsActive:        true,
	}
	require.NoError(t, db.Create(rm).Error)
	return rm
}

func TestMonthsOfStay(t *testing.T) {
	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	feb20 := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, monthsOfStay(jan1, nil), "open-ended stays bill one month")
	assert.Equal(t, 1, monthsOfStay(jan1, &feb1), "exactly one month")
	assert.Equal(t, 2, monthsOfStay(jan1, &feb20), "partial months round up")
}

func TestCreateBooking_OpenEndedBillsOneMonth(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 101)

	b, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Marie",
		TenantLastName:  "Dupont",
		TenantEmail:     "marie@example.com",
		StartDate:       "2026-03-01",
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	assert.Nil(t, b.EndDate)
	assert.Equal(t, 650.0+500.0, b.TotalAmount)

	// The deposit payment is created in the same transaction.
	var deposit payment.Payment
	require.NoError(t, db.Where("booking_id = ?", b.ID).First(&deposit).Error)
	assert.Equal(t, payment.TypeDeposit, deposit.Type)
	assert.Equal(t, payment.StatusPending, deposit.Status)
	assert.Equal(t, 500.0, deposit.Amount)
}

func TestCreateBooking_FixedTermTotal(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 102)

	end := "2026-04-15"
	b, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Paul",
		TenantLastName:  "Martin",
		TenantEmail:     "paul@example.com",
		StartDate:       "2026-03-01",
		EndDate:         &end,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	// 2026-03-01 to 2026-04-15 spans two monthly periods.
	assert.Equal(t, 2*650.0+500.0, b.TotalAmount)
}

func TestCreateBooking_OverlapRejectedWithoutPayment(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 103)
	ctx := context.Background()

	end := "2026-06-01"
	_, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Marie",
		TenantLastName:  "Dupont",
		TenantEmail:     "marie@example.com",
		StartDate:       "2026-03-01",
		EndDate:         &end,
		Status:          StatusConfirmed,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Paul",
		TenantLastName:  "Martin",
		TenantEmail:     "paul@example.com",
		StartDate:       "2026-04-01",
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	// The rejected booking must not leave rows behind.
	var bookings int64
	require.NoError(t, db.Model(&Booking{}).Count(&bookings).Error)
	assert.Equal(t, int64(1), bookings)

	var payments int64
	require.NoError(t, db.Model(&payment.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(1), payments)
}

func TestCreateBooking_MaintenanceRoomRejected(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 104)
	require.NoError(t, db.Model(rm).Update("status", room.StatusMaintenance).Error)

	_, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Marie",
		TenantLastName:  "Dupont",
		TenantEmail:     "marie@example.com",
		StartDate:       "2026-03-01",
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateBooking_OccupiedRoomRejectedWithoutPayment(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 107)
	require.NoError(t, db.Model(rm).Update("status", room.StatusOccupied).Error)

	_, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Marie",
		TenantLastName:  "Dupont",
		TenantEmail:     "marie@example.com",
		StartDate:       "2026-03-01",
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	// The rejection leaves no booking and no deposit behind.
	var bookings, payments int64
	require.NoError(t, db.Model(&Booking{}).Count(&bookings).Error)
	require.NoError(t, db.Model(&payment.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(0), bookings)
	assert.Equal(t, int64(0), payments)
}

func TestBulkUpdateStatus_ActivateOccupiesRoom(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 105)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID:          rm.ID,
		TenantFirstName: "Marie",
		TenantLastName:  "Dupont",
		TenantEmail:     "marie@example.com",
		StartDate:       "2026-03-01",
		Status:          StatusConfirmed,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.BulkUpdateStatus(ctx, BulkBookingRequest{
		Action:     "bulk_status",
		BookingIDs: []uint{b.ID},
		Status:     StatusActive,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	var got Booking
	require.NoError(t, db.First(&got, b.ID).Error)
	assert.Equal(t, StatusActive, got.Status)

	var gotRoom room.Room
	require.NoError(t, db.First(&gotRoom, rm.ID).Error)
	assert.Equal(t, room.StatusOccupied, gotRoom.Status)
}

func TestBulkUpdateStatus_CancelFreesRoomOnlyWhenLastBlocking(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 106)
	ctx := context.Background()

	end1 := "2026-02-01"
	b1, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Marie", TenantLastName: "Dupont",
		TenantEmail: "marie@example.com", StartDate: "2026-01-01", EndDate: &end1,
		Status: StatusConfirmed,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	end2 := "2026-05-01"
	b2, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Paul", TenantLastName: "Martin",
		TenantEmail: "paul@example.com", StartDate: "2026-03-01", EndDate: &end2,
		Status: StatusConfirmed,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.BulkUpdateStatus(ctx, BulkBookingRequest{
		Action: "bulk_status", BookingIDs: []uint{b1.ID}, Status: StatusActive,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	// b2 is still CONFIRMED, so cancelling b1 must not free the room.
	_, err = svc.BulkUpdateStatus(ctx, BulkBookingRequest{
		Action: "bulk_status", BookingIDs: []uint{b1.ID}, Status: StatusCancelled,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	var gotRoom room.Room
	require.NoError(t, db.First(&gotRoom, rm.ID).Error)
	assert.Equal(t, room.StatusOccupied, gotRoom.Status)

	// Cancelling the last blocking booking frees it.
	_, err = svc.BulkUpdateStatus(ctx, BulkBookingRequest{
		Action: "bulk_status", BookingIDs: []uint{b2.ID}, Status: StatusCancelled,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, db.First(&gotRoom, rm.ID).Error)
	assert.Equal(t, room.StatusAvailable, gotRoom.Status)
}

func TestBulkUpdateStatus_InvalidTransitionAbortsBatch(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 107)
	ctx := context.Background()

	end1 := "2026-02-01"
	b1, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Marie", TenantLastName: "Dupont",
		TenantEmail: "marie@example.com", StartDate: "2026-01-01", EndDate: &end1,
		Status: StatusConfirmed,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	end2 := "2026-05-01"
	b2, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Paul", TenantLastName: "Martin",
		TenantEmail: "paul@example.com", StartDate: "2026-03-01", EndDate: &end2,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	// b2 is still PENDING: PENDING -> ACTIVE is illegal and must roll back b1 too.
	_, err = svc.BulkUpdateStatus(ctx, BulkBookingRequest{
		Action: "bulk_status", BookingIDs: []uint{b1.ID, b2.ID}, Status: StatusActive,
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var got Booking
	require.NoError(t, db.First(&got, b1.ID).Error)
	assert.Equal(t, StatusConfirmed, got.Status)

	var gotRoom room.Room
	require.NoError(t, db.First(&gotRoom, rm.ID).Error)
	assert.Equal(t, room.StatusAvailable, gotRoom.Status)
}

func TestBulkDeleteBookings_AllOrNothing(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 108)
	ctx := context.Background()

	end1 := "2026-02-01"
	b1, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Marie", TenantLastName: "Dupont",
		TenantEmail: "marie@example.com", StartDate: "2026-01-01", EndDate: &end1,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	end2 := "2026-05-01"
	b2, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Paul", TenantLastName: "Martin",
		TenantEmail: "paul@example.com", StartDate: "2026-03-01", EndDate: &end2,
		Status: StatusConfirmed,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, db.Model(&Booking{}).Where("id = ?", b1.ID).Update("status", StatusCancelled).Error)

	// b2 is CONFIRMED: the whole batch is refused.
	err = svc.BulkDeleteBookings(ctx, []uint{b1.ID, b2.ID}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrNotDeletable)

	var count int64
	require.NoError(t, db.Model(&Booking{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Once both are terminal, the batch goes through and payments follow.
	require.NoError(t, db.Model(&Booking{}).Where("id = ?", b2.ID).Update("status", StatusEnded).Error)
	require.NoError(t, svc.BulkDeleteBookings(ctx, []uint{b1.ID, b2.ID}, 1, "127.0.0.1"))

	require.NoError(t, db.Model(&Booking{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&payment.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateBooking_DateChangeRecomputesTotal(t *testing.T) {
	svc, db := newTestService(t)
	rm := createTestRoom(t, db, 109)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingRequest{
		RoomID: rm.ID, TenantFirstName: "Marie", TenantLastName: "Dupont",
		TenantEmail: "marie@example.com", StartDate: "2026-03-01",
	}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 650.0+500.0, b.TotalAmount)

	end := "2026-06-01"
	updated, err := svc.UpdateBooking(ctx, b.ID, UpdateBookingRequest{EndDate: &end}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3*650.0+500.0, updated.TotalAmount)
}
