package notification

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"

	"github.com/hlefebvre/coliving-backend/internal/auth"
	"github.com/hlefebvre/coliving-backend/utils"
)

type Service interface {
	NotifyStaff(ctx context.Context, nType, title, body string) error
	ListForUser(ctx context.Context, userID uint, limit int) ([]Notification, int64, error)
	MarkRead(ctx context.Context, userID uint, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	RegisterDevice(ctx context.Context, userID uint, req RegisterTokenRequest) error
	UnregisterDevice(ctx context.Context, token string) error
}

type service struct {
	repo     Repository
	authRepo auth.Repository
}

func NewService(repo Repository, authRepo auth.Repository) Service {
	return &service{repo: repo, authRepo: authRepo}
}

// NotifyStaff fans an event out to every admin and manager: one in-app row
// each, plus a push message when FCM is configured.
func (s *service) NotifyStaff(ctx context.Context, nType, title, body string) error {
	var userIDs []uint
	for _, role := range []string{auth.RoleAdmin, auth.RoleManager} {
		ids, err := s.authRepo.GetUserIDsByRole(role)
		if err != nil {
			return fmt.Errorf("failed to resolve %s users: %w", role, err)
		}
		userIDs = append(userIDs, ids...)
	}
	if len(userIDs) == 0 {
		return nil
	}

	if err := s.repo.CreateForUsers(ctx, userIDs, nType, title, body); err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}

	s.push(ctx, userIDs, title, body)
	return nil
}

func (s *service) push(ctx context.Context, userIDs []uint, title, body string) {
	if !utils.IsFCMEnabled() {
		return
	}

	tokens, err := s.repo.TokensForUsers(ctx, userIDs)
	if err != nil || len(tokens) == 0 {
		return
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	resp, err := utils.FirebaseClient.SendEachForMulticast(ctx, msg)
	if err != nil {
		log.Printf("⚠️ FCM multicast failed: %v", err)
		return
	}
	if resp.FailureCount > 0 {
		for i, r := range resp.Responses {
			if r.Error != nil && messaging.IsUnregistered(r.Error) {
				s.repo.DeleteDeviceToken(ctx, tokens[i])
			}
		}
	}
}

func (s *service) ListForUser(ctx context.Context, userID uint, limit int) ([]Notification, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (s *service) MarkRead(ctx context.Context, userID uint, id uint) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) RegisterDevice(ctx context.Context, userID uint, req RegisterTokenRequest) error {
	platform := req.Platform
	if platform == "" {
		platform = "web"
	}
	return s.repo.UpsertDeviceToken(ctx, &DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: platform,
	})
}

func (s *service) UnregisterDevice(ctx context.Context, token string) error {
	return s.repo.DeleteDeviceToken(ctx, token)
}
