package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/payment"
	"github.com/hlefebvre/coliving-backend/internal/room"
)

// Errors surfaced verbatim to the back office UI.
var (
	ErrRoomUnavailable   = errors.New("Cette chambre n'est pas disponible pour les dates sélectionnées")
	ErrNotDeletable      = errors.New("Seules les réservations annulées ou terminées peuvent être supprimées")
	ErrInvalidTransition = errors.New("Transition de statut invalide")
)

type PaginatedBookings struct {
	Data       []Booking `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest, userID uint, ip string) (*Booking, error)
	UpdateBooking(ctx context.Context, id uint, req UpdateBookingRequest, userID uint, ip string) (*Booking, error)
	DeleteBooking(ctx context.Context, id uint, userID uint, ip string) error
	BulkDeleteBookings(ctx context.Context, ids []uint, userID uint, ip string) error
	GetBooking(ctx context.Context, id uint) (*Booking, error)
	ListBookings(ctx context.Context, filter ListFilter) (*PaginatedBookings, error)
	BulkUpdateStatus(ctx context.Context, req BulkBookingRequest, userID uint, ip string) (int, error)
}

type service struct {
	repo     Repository
	roomRepo room.Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, roomRepo room.Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, roomRepo: roomRepo, auditSvc: auditSvc}
}

// monthsOfStay returns the number of monthly periods a stay covers, rounding
// partial months up. Open-ended stays are billed one month up front.
func monthsOfStay(start time.Time, end *time.Time) int {
	if end == nil {
		return 1
	}
	months := 0
	cursor := start
	for cursor.Before(*end) {
		cursor = cursor.AddDate(0, 1, 0)
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// allowedTransition encodes the forward-only booking lifecycle.
func allowedTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusEnded || to == StatusCancelled
	}
	return false
}

// CreateBooking checks availability and creates the booking together with its
// security deposit payment in a single transaction. A rejected booking leaves
// no payment row behind.
func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest, userID uint, ip string) (*Booking, error) {
	start, err := parseDay(req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		t, err := parseDay(*req.EndDate)
		if err != nil {
			return nil, err
		}
		if !t.After(start) {
			return nil, fmt.Errorf("end date must be after start date")
		}
		end = &t
	}

	rm, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("room not found: %w", err)
	}
	if !rm.IsActive || rm.Status == room.StatusMaintenance || rm.Status == room.StatusUnavailable {
		return nil, ErrRoomUnavailable
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	months := monthsOfStay(start, end)
	b := &Booking{
		RoomID:          rm.ID,
		TenantFirstName: req.TenantFirstName,
		TenantLastName:  req.TenantLastName,
		TenantEmail:     req.TenantEmail,
		TenantPhone:     req.TenantPhone,
		StartDate:       start,
		EndDate:         end,
		Status:          status,
		MonthlyRent:     rm.MonthlyPrice,
		SecurityDeposit: rm.SecurityDeposit,
		TotalAmount:     float64(months)*rm.MonthlyPrice + rm.SecurityDeposit,
		Notes:           req.Notes,
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overlapping, err := s.repo.CountOverlapping(ctx, tx, rm.ID, start, end, 0)
		if err != nil {
			return fmt.Errorf("availability check failed: %w", err)
		}
		if overlapping > 0 || rm.Status == room.StatusOccupied {
			return ErrRoomUnavailable
		}

		if err := s.repo.Create(ctx, tx, b); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if b.SecurityDeposit > 0 {
			deposit := &payment.Payment{
				BookingID: b.ID,
				Amount:    b.SecurityDeposit,
				Type:      payment.TypeDeposit,
				Status:    payment.StatusPending,
			}
			if err := tx.WithContext(ctx).Create(deposit).Error; err != nil {
				return fmt.Errorf("failed to create deposit payment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRoomUnavailable) {
			log.Printf("⚠️ Booking rejected, room %d unavailable for %s", rm.ID, req.StartDate)
			s.auditSvc.LogAction(ctx, &userID, "booking_create", map[string]interface{}{"room_id": rm.ID, "reason": "room unavailable"}, ip, "failure")
			return nil, ErrRoomUnavailable
		}
		s.auditSvc.LogAction(ctx, &userID, "booking_create", map[string]interface{}{"room_id": rm.ID, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	log.Printf("✅ Booking %d created for room %d (%s %s)", b.ID, rm.ID, b.TenantFirstName, b.TenantLastName)
	s.auditSvc.LogAction(ctx, &userID, "booking_create", map[string]interface{}{"booking_id": b.ID, "room_id": rm.ID, "total_amount": b.TotalAmount}, ip, "success")
	b.Room = *rm
	return b, nil
}

func (s *service) UpdateBooking(ctx context.Context, id uint, req UpdateBookingRequest, userID uint, ip string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking not found: %w", err)
	}
	if b.Status == StatusEnded || b.Status == StatusCancelled {
		return nil, fmt.Errorf("ended or cancelled bookings cannot be modified")
	}

	if req.TenantFirstName != nil {
		b.TenantFirstName = *req.TenantFirstName
	}
	if req.TenantLastName != nil {
		b.TenantLastName = *req.TenantLastName
	}
	if req.TenantEmail != nil {
		b.TenantEmail = *req.TenantEmail
	}
	if req.TenantPhone != nil {
		b.TenantPhone = *req.TenantPhone
	}

	datesChanged := false
	if req.StartDate != nil {
		start, err := parseDay(*req.StartDate)
		if err != nil {
			return nil, err
		}
		b.StartDate = start
		datesChanged = true
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			b.EndDate = nil
		} else {
			end, err := parseDay(*req.EndDate)
			if err != nil {
				return nil, err
			}
			b.EndDate = &end
		}
		datesChanged = true
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}

	if b.EndDate != nil && !b.EndDate.After(b.StartDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	if datesChanged {
		overlapping, err := s.repo.CountOverlapping(ctx, nil, b.RoomID, b.StartDate, b.EndDate, b.ID)
		if err != nil {
			return nil, fmt.Errorf("availability check failed: %w", err)
		}
		if overlapping > 0 {
			return nil, ErrRoomUnavailable
		}
		months := monthsOfStay(b.StartDate, b.EndDate)
		b.TotalAmount = float64(months)*b.MonthlyRent + b.SecurityDeposit
	}

	if err := s.repo.Update(ctx, b); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "booking_update", map[string]interface{}{"booking_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "booking_update", map[string]interface{}{"booking_id": id}, ip, "success")
	return b, nil
}

// DeleteBooking removes a cancelled or ended booking and its payments.
func (s *service) DeleteBooking(ctx context.Context, id uint, userID uint, ip string) error {
	return s.deleteBookings(ctx, []uint{id}, userID, ip)
}

// BulkDeleteBookings removes a batch of bookings. The batch is all or
// nothing: one undeletable booking rejects the whole request.
func (s *service) BulkDeleteBookings(ctx context.Context, ids []uint, userID uint, ip string) error {
	return s.deleteBookings(ctx, ids, userID, ip)
}

func (s *service) deleteBookings(ctx context.Context, ids []uint, userID uint, ip string) error {
	bookings, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	if len(bookings) != len(ids) {
		return fmt.Errorf("some bookings do not exist")
	}
	for _, b := range bookings {
		if b.Status != StatusCancelled && b.Status != StatusEnded {
			log.Printf("⚠️ Delete refused, booking %d is %s", b.ID, b.Status)
			return ErrNotDeletable
		}
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id IN ?", ids).Delete(&payment.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		for _, id := range ids {
			if err := s.repo.Delete(ctx, tx, id); err != nil {
				return fmt.Errorf("failed to delete booking %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, "booking_delete", map[string]interface{}{"booking_ids": ids, "error": err.Error()}, ip, "failure")
		return err
	}

	log.Printf("✅ %d bookings deleted", len(ids))
	s.auditSvc.LogAction(ctx, &userID, "booking_delete", map[string]interface{}{"booking_ids": ids}, ip, "success")
	return nil
}

func (s *service) GetBooking(ctx context.Context, id uint) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListBookings(ctx context.Context, filter ListFilter) (*PaginatedBookings, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return &PaginatedBookings{
		Data:       bookings,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// BulkUpdateStatus moves a batch of bookings through the lifecycle in one
// transaction, keeping room statuses in sync. An activated booking occupies
// its room; a cancelled or ended booking frees the room once no other
// confirmed or active booking remains on it.
func (s *service) BulkUpdateStatus(ctx context.Context, req BulkBookingRequest, userID uint, ip string) (int, error) {
	if !ValidStatus(req.Status) {
		return 0, fmt.Errorf("invalid booking status: %s", req.Status)
	}

	bookings, err := s.repo.GetByIDs(ctx, req.BookingIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load bookings: %w", err)
	}
	if len(bookings) != len(req.BookingIDs) {
		return 0, fmt.Errorf("some bookings do not exist")
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range bookings {
			if b.Status == req.Status {
				continue
			}
			if !allowedTransition(b.Status, req.Status) {
				log.Printf("⚠️ Transition %s -> %s refused for booking %d", b.Status, req.Status, b.ID)
				return fmt.Errorf("%w: %s -> %s (réservation %d)", ErrInvalidTransition, b.Status, req.Status, b.ID)
			}

			if err := s.repo.UpdateStatus(ctx, tx, b.ID, req.Status); err != nil {
				return fmt.Errorf("failed to update booking %d: %w", b.ID, err)
			}

			switch req.Status {
			case StatusActive:
				if err := s.roomRepo.SetStatus(ctx, tx, b.RoomID, room.StatusOccupied); err != nil {
					return fmt.Errorf("failed to occupy room %d: %w", b.RoomID, err)
				}
			case StatusCancelled, StatusEnded:
				blocking, err := s.repo.CountBlockingForRoom(ctx, tx, b.RoomID, b.ID)
				if err != nil {
					return fmt.Errorf("failed to check room %d: %w", b.RoomID, err)
				}
				if blocking == 0 {
					if err := s.roomRepo.SetStatus(ctx, tx, b.RoomID, room.StatusAvailable); err != nil {
						return fmt.Errorf("failed to free room %d: %w", b.RoomID, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, "booking_bulk_status", map[string]interface{}{"booking_ids": req.BookingIDs, "status": req.Status, "error": err.Error()}, ip, "failure")
		return 0, err
	}

	log.Printf("🔄 %d bookings moved to %s", len(req.BookingIDs), req.Status)
	s.auditSvc.LogAction(ctx, &userID, "booking_bulk_status", map[string]interface{}{"booking_ids": req.BookingIDs, "status": req.Status}, ip, "success")
	return len(req.BookingIDs), nil
}
