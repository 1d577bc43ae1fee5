package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

// ErrDuplicateNumber is surfaced verbatim to the back office UI.
var ErrDuplicateNumber = errors.New("Une chambre avec ce numéro existe déjà")

// ErrRoomsHaveBookings rejects bulk operations touching occupied rooms.
var ErrRoomsHaveBookings = errors.New("Certaines chambres ont des réservations actives")

type PaginatedRooms struct {
	Data       []Room `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

type Service interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest, userID uint, ip string) (*Room, error)
	UpdateRoom(ctx context.Context, id uint, req UpdateRoomRequest, userID uint, ip string) (*Room, error)
	DeleteRoom(ctx context.Context, id uint, userID uint, ip string) error
	GetRoom(ctx context.Context, id uint) (*Room, error)
	ListRooms(ctx context.Context, filter ListFilter) (*PaginatedRooms, error)
	ListPublicRooms(ctx context.Context) ([]Room, error)
	BulkUpdateRooms(ctx context.Context, req BulkRoomRequest, userID uint, ip string) (int, error)
	BulkDeleteRooms(ctx context.Context, ids []uint, userID uint, ip string) error
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func encodeExtras(extras []string) datatypes.JSON {
	if len(extras) == 0 {
		return nil
	}
	raw, err := json.Marshal(extras)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func (s *service) CreateRoom(ctx context.Context, req CreateRoomRequest, userID uint, ip string) (*Room, error) {
	if existing, err := s.repo.GetByNumber(ctx, req.Number); err == nil && existing != nil {
		log.Printf("⚠️ Room creation rejected, number %d already taken", req.Number)
		return nil, ErrDuplicateNumber
	}

	status := req.Status
	if status == "" {
		status = StatusAvailable
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid room status: %s", status)
	}

	bedType := req.BedType
	if bedType == "" {
		bedType = BedSimple
	}
	kitchenType := req.KitchenType
	if kitchenType == "" {
		kitchenType = KitchenShared
	}

	room := &Room{
		Name:               req.Name,
		Number:             req.Number,
		Floor:              req.Floor,
		Surface:            req.Surface,
		MonthlyPrice:       req.MonthlyPrice,
		SecurityDeposit:    req.SecurityDeposit,
		Status:             status,
		IsActive:           true,
		HasBalcony:         req.HasBalcony,
		HasPrivateBathroom: req.HasPrivateBathroom,
		HasDesk:            req.HasDesk,
		HasTV:              req.HasTV,
		BedType:            bedType,
		KitchenType:        kitchenType,
		Extras:             encodeExtras(req.Extras),
		Description:        req.Description,
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "room_create", map[string]interface{}{"number": req.Number, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Printf("✅ Room %d created (id=%d)", room.Number, room.ID)
	s.auditSvc.LogAction(ctx, &userID, "room_create", map[string]interface{}{"room_id": room.ID, "number": room.Number}, ip, "success")
	return room, nil
}

func (s *service) UpdateRoom(ctx context.Context, id uint, req UpdateRoomRequest, userID uint, ip string) (*Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("room not found: %w", err)
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Surface != nil {
		room.Surface = *req.Surface
	}
	if req.MonthlyPrice != nil {
		room.MonthlyPrice = *req.MonthlyPrice
	}
	if req.SecurityDeposit != nil {
		room.SecurityDeposit = *req.SecurityDeposit
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf("invalid room status: %s", *req.Status)
		}
		room.Status = *req.Status
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	if req.HasBalcony != nil {
		room.HasBalcony = *req.HasBalcony
	}
	if req.HasPrivateBathroom != nil {
		room.HasPrivateBathroom = *req.HasPrivateBathroom
	}
	if req.HasDesk != nil {
		room.HasDesk = *req.HasDesk
	}
	if req.HasTV != nil {
		room.HasTV = *req.HasTV
	}
	if req.BedType != nil {
		room.BedType = *req.BedType
	}
	if req.KitchenType != nil {
		room.KitchenType = *req.KitchenType
	}
	if req.Extras != nil {
		room.Extras = encodeExtras(req.Extras)
	}
	if req.Description != nil {
		room.Description = *req.Description
	}

	if err := s.repo.Update(ctx, room); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "room_update", map[string]interface{}{"room_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "room_update", map[string]interface{}{"room_id": id}, ip, "success")
	return room, nil
}

func (s *service) DeleteRoom(ctx context.Context, id uint, userID uint, ip string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("room not found: %w", err)
	}

	counts, err := s.repo.CountActiveBookings(ctx, []uint{id})
	if err != nil {
		return fmt.Errorf("failed to check bookings: %w", err)
	}
	if counts[id] > 0 {
		log.Printf("⚠️ Room %d deletion blocked, active bookings exist", id)
		return ErrRoomsHaveBookings
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "room_delete", map[string]interface{}{"room_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to delete room: %w", err)
	}

	log.Printf("✅ Room %d deleted", id)
	s.auditSvc.LogAction(ctx, &userID, "room_delete", map[string]interface{}{"room_id": id}, ip, "success")
	return nil
}

func (s *service) GetRoom(ctx context.Context, id uint) (*Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room not found")
		}
		return nil, err
	}
	return room, nil
}

func (s *service) ListRooms(ctx context.Context, filter ListFilter) (*PaginatedRooms, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return &PaginatedRooms{
		Data:       rooms,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *service) ListPublicRooms(ctx context.Context) ([]Room, error) {
	return s.repo.ListPublic(ctx)
}

// BulkUpdateRooms applies bulk_status or bulk_activate to a batch of rooms.
// Moving rooms to MAINTENANCE or UNAVAILABLE is refused for the whole batch
// when any target room still has a confirmed or active booking.
func (s *service) BulkUpdateRooms(ctx context.Context, req BulkRoomRequest, userID uint, ip string) (int, error) {
	rooms, err := s.repo.GetByIDs(ctx, req.RoomIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load rooms: %w", err)
	}
	if len(rooms) != len(req.RoomIDs) {
		return 0, fmt.Errorf("some rooms do not exist")
	}

	var updates map[string]interface{}
	switch req.Action {
	case "bulk_status":
		if !ValidStatus(req.Status) {
			return 0, fmt.Errorf("invalid room status: %s", req.Status)
		}
		if req.Status == StatusMaintenance || req.Status == StatusUnavailable {
			counts, err := s.repo.CountActiveBookings(ctx, req.RoomIDs)
			if err != nil {
				return 0, fmt.Errorf("failed to check bookings: %w", err)
			}
			for _, id := range req.RoomIDs {
				if counts[id] > 0 {
					log.Printf("⚠️ Bulk status %s refused, room %d has active bookings", req.Status, id)
					return 0, ErrRoomsHaveBookings
				}
			}
		}
		updates = map[string]interface{}{"status": req.Status}
	case "bulk_activate":
		if req.IsActive == nil {
			return 0, fmt.Errorf("is_active is required for bulk_activate")
		}
		updates = map[string]interface{}{"is_active": *req.IsActive}
	default:
		return 0, fmt.Errorf("unknown bulk action: %s", req.Action)
	}

	if err := s.repo.BulkUpdate(ctx, req.RoomIDs, updates); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "room_bulk_update", map[string]interface{}{"action": req.Action, "room_ids": req.RoomIDs, "error": err.Error()}, ip, "failure")
		return 0, fmt.Errorf("bulk update failed: %w", err)
	}

	log.Printf("✅ Bulk %s applied to %d rooms", req.Action, len(req.RoomIDs))
	s.auditSvc.LogAction(ctx, &userID, "room_bulk_update", map[string]interface{}{"action": req.Action, "room_ids": req.RoomIDs}, ip, "success")
	return len(req.RoomIDs), nil
}

// BulkDeleteRooms removes a batch of rooms. The batch is all or nothing: if
// any room has a confirmed or active booking, no room is deleted.
func (s *service) BulkDeleteRooms(ctx context.Context, ids []uint, userID uint, ip string) error {
	if len(ids) == 0 {
		return fmt.Errorf("no room ids provided")
	}

	counts, err := s.repo.CountActiveBookings(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check bookings: %w", err)
	}
	for _, id := range ids {
		if counts[id] > 0 {
			log.Printf("⚠️ Bulk delete refused, room %d has active bookings", id)
			return ErrRoomsHaveBookings
		}
	}

	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "room_bulk_delete", map[string]interface{}{"room_ids": ids, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("bulk delete failed: %w", err)
	}

	log.Printf("✅ %d rooms deleted", len(ids))
	s.auditSvc.LogAction(ctx, &userID, "room_bulk_delete", map[string]interface{}{"room_ids": ids}, ip, "success")
	return nil
}
