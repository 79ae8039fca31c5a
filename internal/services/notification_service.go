package services

import (
	"gorm.io/gorm"

	"spark/internal/models"
)

// NotificationService records and serves user-visible lifecycle events
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Create records a notification for a user
func (s *NotificationService) Create(userID uint, topicID *uint, kind models.NotificationType, message string) error {
	notification := models.Notification{
		UserID:  userID,
		TopicID: topicID,
		Type:    kind,
		Message: message,
	}
	return s.db.Create(&notification).Error
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(userID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

// UnreadCount returns the number of unread notifications for a user
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks a single notification as read. Scoped to the owner so one
// user cannot touch another's notifications.
func (s *NotificationService) MarkRead(notificationID, userID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
