// internal/services/notification_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type NotificationService struct {
	db *gorm.DB
}

type NotificationRequest struct {
	UserID    string                  `json:"user_id" validate:"required,max=128"`
	Message   string                  `json:"message" validate:"required,max=2000"`
	Type      models.NotificationType `json:"type" validate:"required,oneof=INFO ALERT CANCELLATION_REQUEST"`
	RelatedID *uuid.UUID              `json:"related_id,omitempty"`
}

type UnreadCount struct {
	UserID string `json:"user_id"`
	Unread int64  `json:"unread"`
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// message renders a notification in the server's default locale.
func message(key string, args ...interface{}) string {
	return i18n.T(i18n.DefaultLanguage(), key, args...)
}

// notify writes a notification in the caller's transaction.
func notify(tx *gorm.DB, userID string, kind models.NotificationType, text string, relatedID *uuid.UUID) error {
	if userID == "" {
		return nil
	}
	n := &models.Notification{
		UserID:    userID,
		Message:   text,
		Type:      kind,
		RelatedID: relatedID,
		Status:    models.NotificationStatusUnread,
	}
	if kind == models.NotificationTypeCancellationRequest {
		n.Status = models.NotificationStatusActionRequired
		n.ActionStatus = models.ActionStatusPending
	}
	if err := tx.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// resolveCancellation closes the farmer's pending cancellation prompts for a
// booking.
func resolveCancellation(tx *gorm.DB, farmerID string, bookingID uuid.UUID, outcome models.NotificationActionStatus) error {
	err := tx.Model(&models.Notification{}).
		Where("user_id = ? AND related_id = ? AND type = ? AND status = ?",
			farmerID, bookingID, models.NotificationTypeCancellationRequest, models.NotificationStatusActionRequired).
		Updates(map[string]interface{}{
			"status":        models.NotificationStatusActionTaken,
			"action_status": outcome,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to resolve cancellation notifications: %w", err)
	}
	return nil
}

func (s *NotificationService) Create(ctx context.Context, actor Actor, req *NotificationRequest) (*models.Notification, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("only administrators can create notifications")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	n := &models.Notification{
		UserID:    req.UserID,
		Message:   req.Message,
		Type:      req.Type,
		RelatedID: req.RelatedID,
		Status:    models.NotificationStatusUnread,
	}
	if req.Type == models.NotificationTypeCancellationRequest {
		n.Status = models.NotificationStatusActionRequired
		n.ActionStatus = models.ActionStatusPending
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, actor Actor, userID string) ([]models.Notification, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, forbidden("cannot read another user's notifications")
	}

	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor, userID string) (*UnreadCount, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, forbidden("cannot read another user's notifications")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND status NOT IN ?", userID,
			[]models.NotificationStatus{models.NotificationStatusRead, models.NotificationStatusActionTaken}).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	return &UnreadCount{UserID: userID, Unread: count}, nil
}

// MarkRead leaves notifications that still need an answer untouched so a
// pending cancellation cannot be dismissed without a decision.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "notification")
	}
	if n.UserID != actor.ID && !actor.IsAdmin() {
		return nil, forbidden("notification belongs to another user")
	}

	if n.Status == models.NotificationStatusUnread {
		if err := s.db.WithContext(ctx).Model(&n).Update("status", models.NotificationStatusRead).Error; err != nil {
			return nil, fmt.Errorf("failed to update notification: %w", err)
		}
		n.Status = models.NotificationStatusRead
	}
	return &n, nil
}
