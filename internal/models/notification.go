package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTopicApproved  NotificationType = "TOPIC_APPROVED"
	NotificationTopicRejected  NotificationType = "TOPIC_REJECTED"
	NotificationTopicQualified NotificationType = "TOPIC_QUALIFIED"
	NotificationTopicConverted NotificationType = "TOPIC_CONVERTED"
)

// Notification is a user-visible event produced by lifecycle transitions
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	TopicID   *uint            `gorm:"index" json:"topic_id,omitempty"`
	Type      NotificationType `gorm:"size:50;not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Read      bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "notifications"
}
