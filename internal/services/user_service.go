package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"spark/internal/models"
)

// UserService handles user-related business logic
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetStatus changes an account's status (suspend, activate, ban)
func (s *UserService) SetStatus(userID uint, status models.UserStatus) error {
	switch status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
	default:
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update user status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	log.Printf("User %d status set to %s", userID, status)
	return nil
}

// DeleteUser hard-deletes an account. The user's votes are removed and the
// denormalized counters on the affected topics are walked back so the
// counter invariant survives the deletion.
func (s *UserService) DeleteUser(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var votes []models.Vote
		if err := tx.Where("user_id = ?", userID).Find(&votes).Error; err != nil {
			return fmt.Errorf("failed to load votes: %w", err)
		}
		for _, vote := range votes {
			err := tx.Model(&models.Topic{}).
				Where("id = ?", vote.TopicID).
				UpdateColumn("vote_count",
					gorm.Expr("CASE WHEN vote_count > 0 THEN vote_count - 1 ELSE 0 END")).Error
			if err != nil {
				return fmt.Errorf("failed to adjust vote count for topic %d: %w", vote.TopicID, err)
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("failed to delete votes: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notifications: %w", err)
		}

		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		log.Printf("User %d deleted (%d votes removed)", userID, len(votes))
		return nil
	})
}
