package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository defines data access for notifications. Rows are
// append-only apart from the read/delivery flags.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, receiverID uuid.UUID) error
	MarkAllRead(ctx context.Context, receiverID uuid.UUID) error
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error)
	SetDeliveryFlags(ctx context.Context, id uuid.UUID, emailSent, smsSent bool) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return wrapErr("create notification", GetDB(ctx, r.db).Create(n).Error)
}

func (r *notificationRepository) ListByReceiver(ctx context.Context, receiverID uuid.UUID, page, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Notification{}).
		Where("receiver_id = ?", receiverID).
		Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count notifications", err)
	}

	offset := (page - 1) * limit
	if err := db.Preload("Sender").Preload("Request").
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, wrapErr("list notifications", err)
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, receiverID uuid.UUID) error {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("read", true)
	if res.Error != nil {
		return wrapErr("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("mark notification read", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	err := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("receiver_id = ? AND read = false", receiverID).
		Update("read", true).Error
	return wrapErr("mark all notifications read", err)
}

func (r *notificationRepository) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("receiver_id = ? AND read = false", receiverID).
		Count(&count).Error; err != nil {
		return 0, wrapErr("count unread notifications", err)
	}
	return count, nil
}

func (r *notificationRepository) SetDeliveryFlags(ctx context.Context, id uuid.UUID, emailSent, smsSent bool) error {
	err := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"email_sent": emailSent, "sms_sent": smsSent}).Error
	return wrapErr("set delivery flags", err)
}
