package notification

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateForUsers(ctx context.Context, userIDs []uint, nType, title, body string) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID uint, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	UpsertDeviceToken(ctx context.Context, t *DeviceToken) error
	DeleteDeviceToken(ctx context.Context, token string) error
	TokensForUsers(ctx context.Context, userIDs []uint) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) CreateForUsers(ctx context.Context, userIDs []uint, nType, title, body string) error {
	if len(userIDs) == 0 {
		return nil
	}
	notifications := make([]Notification, 0, len(userIDs))
	for _, id := range userIDs {
		notifications = append(notifications, Notification{
			UserID: id,
			Type:   nType,
			Title:  title,
			Body:   body,
		})
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uint, limit int) ([]Notification, error) {
	var notifications []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *repository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkRead(ctx context.Context, userID uint, id uint) error {
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (r *repository) MarkAllRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *repository) UpsertDeviceToken(ctx context.Context, t *DeviceToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform"}),
	}).Create(t).Error
}

func (r *repository) DeleteDeviceToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&DeviceToken{}).Error
}

func (r *repository) TokensForUsers(ctx context.Context, userIDs []uint) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&DeviceToken{}).
		Where("user_id IN ?", userIDs).
		Pluck("token", &tokens).Error
	return tokens, err
}
