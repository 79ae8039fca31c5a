package repository

import (
	"context"

	"spark/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx runs fn inside a database transaction, handing it a Repository
// bound to the transaction handle.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// GetTopicByID retrieves a topic by ID
func (r *Repository) GetTopicByID(ctx context.Context, topicID uint) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).Where("id = ?", topicID).First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateVote inserts a vote row. The (user_id, topic_id) unique index makes
// this fail with gorm.ErrDuplicatedKey under a concurrent double-cast.
func (r *Repository) CreateVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// DeleteVote removes the vote for (userID, topicID) and reports whether a
// row was actually deleted.
func (r *Repository) DeleteVote(ctx context.Context, userID, topicID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Delete(&models.Vote{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasVote reports whether a vote exists for (userID, topicID)
func (r *Repository) HasVote(ctx context.Context, userID, topicID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Count(&count).Error
	return count > 0, err
}

// IncrementVoteCount adjusts the denormalized counter in a single UPDATE so
// concurrent votes never lose updates. Decrements floor at zero.
func (r *Repository) IncrementVoteCount(ctx context.Context, topicID uint, delta int) error {
	expr := gorm.Expr("vote_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN vote_count + ? < 0 THEN 0 ELSE vote_count + ? END", delta, delta)
	}
	return r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ?", topicID).
		UpdateColumn("vote_count", expr).Error
}

// PromoteQualified flips an APPROVED topic whose counter has reached its
// threshold to QUALIFIED. The conditional WHERE makes the call idempotent
// and safe against a concurrent promotion.
func (r *Repository) PromoteQualified(ctx context.Context, topicID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ? AND status = ? AND vote_threshold IS NOT NULL AND vote_count >= vote_threshold",
			topicID, models.TopicStatusApproved).
		Update("status", models.TopicStatusQualified)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountVotes returns the true number of vote rows for a topic
func (r *Repository) CountVotes(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("topic_id = ?", topicID).
		Count(&count).Error
	return count, err
}
