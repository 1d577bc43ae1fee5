package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/booking"
	"github.com/hlefebvre/coliving-backend/internal/contact"
	"github.com/hlefebvre/coliving-backend/internal/contract"
	"github.com/hlefebvre/coliving-backend/internal/payment"
	"github.com/hlefebvre/coliving-backend/internal/room"
	"github.com/hlefebvre/coliving-backend/utils"
)

const cacheTTL = 60 * time.Second

// Stats is the admin dashboard payload for a trailing window.
type Stats struct {
	PeriodDays int `json:"period_days"`

	TotalRooms     int64 `json:"total_rooms"`
	AvailableRooms int64 `json:"available_rooms"`
	OccupiedRooms  int64 `json:"occupied_rooms"`

	NewBookings    int64 `json:"new_bookings"`
	ActiveBookings int64 `json:"active_bookings"`

	Revenue        float64 `json:"revenue"`
	PendingAmount  float64 `json:"pending_amount"`
	NewContacts    int64   `json:"new_contacts"`
	UnreadContacts int64   `json:"unread_contacts"`

	ContractsByStatus map[string]int64 `json:"contracts_by_status"`

	OccupancyRate float64 `json:"occupancy_rate"` // percent
}

type Service interface {
	GetStats(ctx context.Context, periodDays int) (*Stats, error)
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &service{db: db}
}

// GetStats computes rollups over a trailing window, cached for a minute.
func (s *service) GetStats(ctx context.Context, periodDays int) (*Stats, error) {
	if periodDays < 1 {
		periodDays = 30
	}

	cacheKey := fmt.Sprintf("dashboard:stats:%d", periodDays)
	if cached := utils.CacheGet(ctx, cacheKey); cached != "" {
		var stats Stats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	since := time.Now().AddDate(0, 0, -periodDays)
	stats := &Stats{PeriodDays: periodDays, ContractsByStatus: make(map[string]int64)}

	if err := s.db.WithContext(ctx).Model(&room.Room{}).Count(&stats.TotalRooms).Error; err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}
	s.db.WithContext(ctx).Model(&room.Room{}).Where("status = ?", room.StatusAvailable).Count(&stats.AvailableRooms)
	s.db.WithContext(ctx).Model(&room.Room{}).Where("status = ?", room.StatusOccupied).Count(&stats.OccupiedRooms)

	s.db.WithContext(ctx).Model(&booking.Booking{}).Where("created_at >= ?", since).Count(&stats.NewBookings)
	s.db.WithContext(ctx).Model(&booking.Booking{}).
		Where("status IN ?", []string{booking.StatusConfirmed, booking.StatusActive}).
		Count(&stats.ActiveBookings)

	s.db.WithContext(ctx).Model(&payment.Payment{}).
		Where("status = ? AND paid_at >= ?", payment.StatusPaid, since).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.Revenue)
	s.db.WithContext(ctx).Model(&payment.Payment{}).
		Where("status = ?", payment.StatusPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PendingAmount)

	s.db.WithContext(ctx).Model(&contact.Contact{}).Where("created_at >= ?", since).Count(&stats.NewContacts)
	s.db.WithContext(ctx).Model(&contact.Contact{}).Where("status = ?", contact.StatusNew).Count(&stats.UnreadContacts)

	type statusCount struct {
		Status string
		N      int64
	}
	var rows []statusCount
	s.db.WithContext(ctx).Model(&contract.Contract{}).
		Select("status, COUNT(*) as n").Group("status").Scan(&rows)
	for _, r := range rows {
		stats.ContractsByStatus[r.Status] = r.N
	}

	if stats.TotalRooms > 0 {
		stats.OccupancyRate = float64(stats.OccupiedRooms) / float64(stats.TotalRooms) * 100
	}

	if raw, err := json.Marshal(stats); err == nil {
		utils.CacheSet(ctx, cacheKey, string(raw), cacheTTL)
	}
	return stats, nil
}
