package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

// bookingRow seeds the bookings table without importing the booking package.
type bookingRow struct {
	ID     uint
	RoomID uint
	Status string
}

func (bookingRow) TableName() string { return "bookings" }

func setupTestService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditlog.AuditLog{}, &Room{}, &bookingRow{}))

	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	return NewService(NewRepository(db), auditSvc), db
}

func createRoom(t *testing.T, svc Service, number int) *Room {
	rm, err := svc.CreateRoom(context.Background(), CreateRoomRequest{
		Name:         "Chambre",
		Number:       number,
		MonthlyPrice: 600,
	}, 1, "127.0.0.1")
	require.NoError(t, err)
	return rm
}

func TestCreateRoom_Defaults(t *testing.T) {
	svc, _ := setupTestService(t)

	rm, err := svc.CreateRoom(context.Background(), CreateRoomRequest{
		Name:         "Chambre côté cour",
		Number:       12,
		MonthlyPrice: 680,
		Extras:       []string{"machine à café", "vue jardin"},
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatusAvailable, rm.Status)
	assert.True(t, rm.IsActive)
	assert.Equal(t, BedSimple, rm.BedType)
	assert.Equal(t, KitchenShared, rm.KitchenType)
	assert.JSONEq(t, `["machine à café","vue jardin"]`, string(rm.Extras))
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	svc, _ := setupTestService(t)
	createRoom(t, svc, 14)

	_, err := svc.CreateRoom(context.Background(), CreateRoomRequest{
		Name:         "Doublon",
		Number:       14,
		MonthlyPrice: 700,
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrDuplicateNumber)
}

func TestBulkUpdateRooms_MaintenanceRefusedWithActiveBookings(t *testing.T) {
	svc, db := setupTestService(t)
	r1 := createRoom(t, svc, 21)
	r2 := createRoom(t, svc, 22)

	require.NoError(t, db.Create(&bookingRow{RoomID: r2.ID, Status: "CONFIRMED"}).Error)

	_, err := svc.BulkUpdateRooms(context.Background(), BulkRoomRequest{
		Action:  "bulk_status",
		RoomIDs: []uint{r1.ID, r2.ID},
		Status:  StatusMaintenance,
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrRoomsHaveBookings)

	// Nothing in the batch moved.
	var got Room
	require.NoError(t, db.First(&got, r1.ID).Error)
	assert.Equal(t, StatusAvailable, got.Status)
}

func TestBulkUpdateRooms_StatusApplied(t *testing.T) {
	svc, db := setupTestService(t)
	r1 := createRoom(t, svc, 23)
	r2 := createRoom(t, svc, 24)

	n, err := svc.BulkUpdateRooms(context.Background(), BulkRoomRequest{
		Action:  "bulk_status",
		RoomIDs: []uint{r1.ID, r2.ID},
		Status:  StatusUnavailable,
	}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var count int64
	require.NoError(t, db.Model(&Room{}).Where("status = ?", StatusUnavailable).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestBulkUpdateRooms_Activate(t *testing.T) {
	svc, db := setupTestService(t)
	r1 := createRoom(t, svc, 25)

	off := false
	_, err := svc.BulkUpdateRooms(context.Background(), BulkRoomRequest{
		Action:   "bulk_activate",
		RoomIDs:  []uint{r1.ID},
		IsActive: &off,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	var got Room
	require.NoError(t, db.First(&got, r1.ID).Error)
	assert.False(t, got.IsActive)
}

func TestBulkDeleteRooms_AllOrNothing(t *testing.T) {
	svc, db := setupTestService(t)
	r1 := createRoom(t, svc, 31)
	r2 := createRoom(t, svc, 32)

	require.NoError(t, db.Create(&bookingRow{RoomID: r1.ID, Status: "ACTIVE"}).Error)

	err := svc.BulkDeleteRooms(context.Background(), []uint{r1.ID, r2.ID}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrRoomsHaveBookings)

	var count int64
	require.NoError(t, db.Model(&Room{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestDeleteRoom_BlockedByBookings(t *testing.T) {
	svc, db := setupTestService(t)
	rm := createRoom(t, svc, 33)
	require.NoError(t, db.Create(&bookingRow{RoomID: rm.ID, Status: "CONFIRMED"}).Error)

	err := svc.DeleteRoom(context.Background(), rm.ID, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrRoomsHaveBookings)

	// An ended booking no longer blocks.
	require.NoError(t, db.Model(&bookingRow{}).Where("room_id = ?", rm.ID).Update("status", "ENDED").Error)
	require.NoError(t, svc.DeleteRoom(context.Background(), rm.ID, 1, "127.0.0.1"))
}

func TestListPublicRooms_OnlyActiveAvailable(t *testing.T) {
	svc, db := setupTestService(t)
	createRoom(t, svc, 41)
	r2 := createRoom(t, svc, 42)
	r3 := createRoom(t, svc, 43)

	require.NoError(t, db.Model(&Room{}).Where("id = ?", r2.ID).Update("status", StatusOccupied).Error)
	require.NoError(t, db.Model(&Room{}).Where("id = ?", r3.ID).Update("is_active", false).Error)

	rooms, err := svc.ListPublicRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 41, rooms[0].Number)
}

func TestUpdateRoom_PartialFields(t *testing.T) {
	svc, _ := setupTestService(t)
	rm := createRoom(t, svc, 51)

	price := 720.0
	balcony := true
	updated, err := svc.UpdateRoom(context.Background(), rm.ID, UpdateRoomRequest{
		MonthlyPrice: &price,
		HasBalcony:   &balcony,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, 720.0, updated.MonthlyPrice)
	assert.True(t, updated.HasBalcony)
	assert.Equal(t, "Chambre", updated.Name, "untouched fields keep their value")
}
