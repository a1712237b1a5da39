// internal/models/notification.go
package models

import (
	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID       string                   `json:"user_id" gorm:"size:128;not null;index"`
	Message      string                   `json:"message" gorm:"type:text;not null"`
	Type         NotificationType         `json:"type" gorm:"type:varchar(30);not null;index"`
	RelatedID    *uuid.UUID               `json:"related_id,omitempty" gorm:"type:uuid;index"`
	Status       NotificationStatus       `json:"status" gorm:"type:varchar(20);default:'UNREAD';index"`
	ActionStatus NotificationActionStatus `json:"action_status,omitempty" gorm:"type:varchar(20)"`
}

// IsUnread is true until the notification is read or acted upon.
func (n *Notification) IsUnread() bool {
	return n.Status != NotificationStatusRead && n.Status != NotificationStatusActionTaken
}
