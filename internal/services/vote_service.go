package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"spark/internal/models"
	"spark/internal/repository"
)

// VoteResult is returned by cast/retract so callers can observe the updated
// counter and detect an APPROVED→QUALIFIED flip
type VoteResult struct {
	TopicID   uint               `json:"topic_id"`
	VoteCount int                `json:"vote_count"`
	Status    models.TopicStatus `json:"status"`
	Qualified bool               `json:"qualified"`
}

// VoteService is the vote ledger: it keeps the at-most-one-vote-per-user-
// per-topic rule and the denormalized counter consistent, and triggers
// qualification checks on every mutation.
type VoteService struct {
	repo          *repository.Repository
	notifications *NotificationService
}

// NewVoteService creates a new VoteService
func NewVoteService(repo *repository.Repository, notifications *NotificationService) *VoteService {
	return &VoteService{
		repo:          repo,
		notifications: notifications,
	}
}

// CastVote records a vote for (userID, topicID). Voting is open while the
// topic is APPROVED or QUALIFIED. The insert, counter increment and
// qualification check run in one transaction; the unique index on
// (user_id, topic_id) closes the double-submit race.
func (s *VoteService) CastVote(ctx context.Context, topicID, userID uint) (*VoteResult, error) {
	var result VoteResult
	var topic *models.Topic

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user.Status != models.UserStatusActive {
			return ErrUserRestricted
		}

		t, err := tx.GetTopicByID(ctx, topicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return fmt.Errorf("failed to load topic: %w", err)
		}

		if t.Status != models.TopicStatusApproved && t.Status != models.TopicStatusQualified {
			return ErrVotingClosed
		}

		exists, err := tx.HasVote(ctx, userID, topicID)
		if err != nil {
			return fmt.Errorf("failed to check existing vote: %w", err)
		}
		if exists {
			return ErrDuplicateVote
		}

		vote := models.Vote{UserID: userID, TopicID: topicID}
		if err := tx.CreateVote(ctx, &vote); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateVote
			}
			return fmt.Errorf("failed to record vote: %w", err)
		}

		if err := tx.IncrementVoteCount(ctx, topicID, 1); err != nil {
			return fmt.Errorf("failed to update vote count: %w", err)
		}

		qualified, err := tx.PromoteQualified(ctx, topicID)
		if err != nil {
			return fmt.Errorf("failed to check qualification: %w", err)
		}

		updated, err := tx.GetTopicByID(ctx, topicID)
		if err != nil {
			return fmt.Errorf("failed to reload topic: %w", err)
		}
		topic = updated
		result = VoteResult{
			TopicID:   topicID,
			VoteCount: updated.VoteCount,
			Status:    updated.Status,
			Qualified: qualified,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Qualified {
		s.notifyQualified(topic)
	}
	return &result, nil
}

// RetractVote removes the vote for (userID, topicID) and decrements the
// counter, floored at zero. Qualification is one-way: dropping below the
// threshold never demotes a QUALIFIED topic.
func (s *VoteService) RetractVote(ctx context.Context, topicID, userID uint) (*VoteResult, error) {
	var result VoteResult

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.GetTopicByID(ctx, topicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return fmt.Errorf("failed to load topic: %w", err)
		}

		deleted, err := tx.DeleteVote(ctx, userID, topicID)
		if err != nil {
			return fmt.Errorf("failed to delete vote: %w", err)
		}
		if !deleted {
			return ErrVoteNotFound
		}

		if err := tx.IncrementVoteCount(ctx, topicID, -1); err != nil {
			return fmt.Errorf("failed to update vote count: %w", err)
		}

		updated, err := tx.GetTopicByID(ctx, topicID)
		if err != nil {
			return fmt.Errorf("failed to reload topic: %w", err)
		}
		result = VoteResult{
			TopicID:   topicID,
			VoteCount: updated.VoteCount,
			Status:    updated.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// HasVoted reports whether userID has an active vote on topicID
func (s *VoteService) HasVoted(ctx context.Context, topicID, userID uint) (bool, error) {
	return s.repo.HasVote(ctx, userID, topicID)
}

func (s *VoteService) notifyQualified(topic *models.Topic) {
	if s.notifications == nil || topic == nil {
		return
	}
	topicID := topic.ID
	err := s.notifications.Create(topic.ProposedByID, &topicID, models.NotificationTopicQualified,
		fmt.Sprintf("Your topic %q reached its vote threshold and is now qualified.", topic.Title))
	if err != nil {
		log.Printf("Warning: failed to create qualified notification for topic %d: %v", topic.ID, err)
	}
	log.Printf("Topic %d qualified with %d votes", topic.ID, topic.VoteCount)
}
