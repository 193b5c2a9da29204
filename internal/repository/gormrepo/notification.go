package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = newID(notification.ID)
	return errs.Wrap(r.db.WithContext(ctx).Create(notification).Error, "failed to create notification")
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(repository.Limit(limit)).
		Find(&notifications).Error
	if err != nil {
		return nil, errs.Wrap(err, "failed to list notifications")
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return errs.Wrap(res.Error, "failed to mark notification read")
	}
	if res.RowsAffected == 0 {
		return errs.Markf(models.ErrNotFound, "notification %s not found", id)
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	return errs.Wrap(err, "failed to mark notifications read")
}

func (r *NotificationRepository) GetPreference(ctx context.Context, userID string) (models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultNotificationPreference(userID), nil
	}
	if err != nil {
		return models.NotificationPreference{}, errs.Wrap(err, "failed to get notification preference")
	}
	return pref, nil
}

func (r *NotificationRepository) SavePreference(ctx context.Context, pref *models.NotificationPreference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(pref).Error
	return errs.Wrap(err, "failed to save notification preference")
}
