package repository

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"time"

	"gorm.io/gorm"
)

type NotificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{
		db: db,
	}
}

func (r *NotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {

	result := r.db.
		WithContext(ctx).
		Create(n)

	return translate(result.Error)
}

func (r *NotificationRepo) GetNotification(ctx context.Context, id string) (model.Notification, error) {

	var n model.Notification

	result := r.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&n)

	if result.Error != nil {
		return model.Notification{}, translate(result.Error)
	}

	return n, nil
}

func (r *NotificationRepo) ListNotifications(ctx context.Context, recipientID string) ([]model.Notification, error) {

	var notifications []model.Notification

	result := r.db.
		WithContext(ctx).
		Where("to_user_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return notifications, nil
}

func (r *NotificationRepo) HasPendingRequest(ctx context.Context, fromID, toID string) (bool, error) {

	var count int64

	result := r.db.
		WithContext(ctx).
		Model(&model.Notification{}).
		Where("type = ? AND from_user_id = ? AND to_user_id = ? AND status = ?",
			model.FamilyRequest, fromID, toID, model.NotificationPending).
		Count(&count)

	if result.Error != nil {
		return false, translate(result.Error)
	}

	return count > 0, nil
}

// ResolveNotification records the recipient's answer. On accept the
// recipient's family_id moves to the requested family in the same transaction.
func (r *NotificationRepo) ResolveNotification(ctx context.Context, n model.Notification, status model.NotificationStatus, now time.Time) error {

	err := r.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			result := tx.
				Model(&model.Notification{}).
				Where("id = ? AND status = ?", n.ID, model.NotificationPending).
				Updates(map[string]any{"status": status, "updated_at": now})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}

			if status != model.NotificationAccepted {
				return nil
			}

			familyID := n.Payload.FamilyID
			return tx.
				Model(&model.Profile{}).
				Where("id = ?", n.ToUserID).
				Updates(map[string]any{"family_id": &familyID, "updated_at": now}).
				Error
		})

	return translate(err)
}

// PurgeResolved deletes answered requests last touched before cutoff.
func (r *NotificationRepo) PurgeResolved(ctx context.Context, cutoff time.Time) (int64, error) {

	result := r.db.
		WithContext(ctx).
		Where("status <> ? AND updated_at < ?", model.NotificationPending, cutoff.UTC()).
		Delete(&model.Notification{})

	if result.Error != nil {
		return 0, translate(result.Error)
	}

	return result.RowsAffected, nil
}
