package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spark/internal/config"
	"spark/internal/models"
)

// allowedTransitions is the single chokepoint for topic lifecycle moves.
// Qualification is driven by the vote ledger, everything else by admin action.
var allowedTransitions = map[models.TopicStatus][]models.TopicStatus{
	models.TopicStatusPending:   {models.TopicStatusApproved, models.TopicStatusRejected},
	models.TopicStatusApproved:  {models.TopicStatusQualified},
	models.TopicStatusQualified: {models.TopicStatusConverted},
	models.TopicStatusConverted: {models.TopicStatusCompleted},
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another
func CanTransition(from, to models.TopicStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TopicService enforces the topic lifecycle: proposal, review, qualification
// and conversion into research
type TopicService struct {
	db            *gorm.DB
	cfg           config.SparkConfig
	notifications *NotificationService
}

// NewTopicService creates a new TopicService
func NewTopicService(db *gorm.DB, cfg config.SparkConfig, notifications *NotificationService) *TopicService {
	return &TopicService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
	}
}

// ProposeTopicRequest is the input for a user-submitted topic
type ProposeTopicRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Industry    string `json:"industry" binding:"required"`
	Country     string `json:"country" binding:"required"`
}

// Propose creates a new topic in PENDING on behalf of proposerID
func (s *TopicService) Propose(proposerID uint, req *ProposeTopicRequest) (*models.Topic, error) {
	if err := s.validateProposal(req); err != nil {
		return nil, err
	}

	var proposer models.User
	if err := s.db.First(&proposer, proposerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load proposer: %w", err)
	}
	if proposer.Status != models.UserStatusActive {
		return nil, ErrUserRestricted
	}

	topic := models.Topic{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Industry:     req.Industry,
		Country:      req.Country,
		Status:       models.TopicStatusPending,
		ProposedByID: proposerID,
	}

	if err := s.db.Create(&topic).Error; err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	log.Printf("Topic %d proposed by user %d", topic.ID, proposerID)
	return &topic, nil
}

func (s *TopicService) validateProposal(req *ProposeTopicRequest) error {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	if title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len([]rune(title)) > s.cfg.TitleMaxLength {
		return &ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("must be at most %d characters", s.cfg.TitleMaxLength),
		}
	}
	if description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if len([]rune(description)) > s.cfg.DescriptionMaxLength {
		return &ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("must be at most %d characters", s.cfg.DescriptionMaxLength),
		}
	}
	if req.Industry == "" {
		return &ValidationError{Field: "industry", Reason: "must not be empty"}
	}
	if req.Country == "" {
		return &ValidationError{Field: "country", Reason: "must not be empty"}
	}
	return nil
}

// Approve moves a PENDING topic to APPROVED, setting its vote threshold and
// voting deadline. The status, threshold, dates and approver are applied in
// a single conditional UPDATE so a concurrent approve/reject cannot race.
func (s *TopicService) Approve(topicID uint, voteThreshold int, approverID uint) (*models.Topic, error) {
	if voteThreshold < 1 {
		return nil, &ValidationError{Field: "vote_threshold", Reason: "must be at least 1"}
	}

	now := time.Now()
	deadline := now.AddDate(0, 0, s.cfg.VotingPeriodDays)

	result := s.db.Model(&models.Topic{}).
		Where("id = ? AND status = ?", topicID, models.TopicStatusPending).
		Updates(map[string]interface{}{
			"status":         models.TopicStatusApproved,
			"vote_threshold": voteThreshold,
			"approval_date":  now,
			"deadline":       deadline,
			"approved_by_id": approverID,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to approve topic: %w", result.Error)
	}

	topic, err := s.getTopic(topicID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, &InvalidTransitionError{Op: "approve", From: topic.Status}
	}

	s.notify(topic.ProposedByID, topic.ID, models.NotificationTopicApproved,
		fmt.Sprintf("Your topic %q was approved. It needs %d votes by %s.",
			topic.Title, voteThreshold, deadline.Format("2006-01-02")))

	log.Printf("Topic %d approved by admin %d (threshold %d)", topicID, approverID, voteThreshold)
	return topic, nil
}

// Reject moves a PENDING topic to REJECTED with a mandatory reason
func (s *TopicService) Reject(topicID uint, reason string, approverID uint) (*models.Topic, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "rejection_reason", Reason: "must not be empty"}
	}

	result := s.db.Model(&models.Topic{}).
		Where("id = ? AND status = ?", topicID, models.TopicStatusPending).
		Updates(map[string]interface{}{
			"status":           models.TopicStatusRejected,
			"rejection_reason": reason,
			"approved_by_id":   approverID,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reject topic: %w", result.Error)
	}

	topic, err := s.getTopic(topicID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, &InvalidTransitionError{Op: "reject", From: topic.Status}
	}

	s.notify(topic.ProposedByID, topic.ID, models.NotificationTopicRejected,
		fmt.Sprintf("Your topic %q was rejected: %s", topic.Title, reason))

	log.Printf("Topic %d rejected by admin %d", topicID, approverID)
	return topic, nil
}

// Convert turns a QUALIFIED topic into a DRAFT research record. The status
// flip and the research insert happen in one transaction.
func (s *TopicService) Convert(topicID uint) (*models.Research, error) {
	var research models.Research
	var topic *models.Topic

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Topic{}).
			Where("id = ? AND status = ?", topicID, models.TopicStatusQualified).
			Update("status", models.TopicStatusConverted)
		if result.Error != nil {
			return fmt.Errorf("failed to convert topic: %w", result.Error)
		}

		var t models.Topic
		if err := tx.First(&t, topicID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return fmt.Errorf("failed to load topic: %w", err)
		}
		topic = &t

		if result.RowsAffected == 0 {
			return &InvalidTransitionError{Op: "convert", From: t.Status}
		}

		research = models.Research{
			ID:          uuid.New(),
			TopicID:     t.ID,
			Title:       t.Title,
			Status:      models.ResearchStatusDraft,
			IsPublished: false,
		}
		if err := tx.Create(&research).Error; err != nil {
			return fmt.Errorf("failed to create research: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(topic.ProposedByID, topic.ID, models.NotificationTopicConverted,
		fmt.Sprintf("Your topic %q is being converted into a research report.", topic.Title))

	log.Printf("Topic %d converted to research %s", topicID, research.ID)
	return &research, nil
}

// CheckQualification promotes an APPROVED topic whose vote count has reached
// its threshold. No-op for any other status, so repeated calls are safe.
func (s *TopicService) CheckQualification(topicID uint) (bool, error) {
	result := s.db.Model(&models.Topic{}).
		Where("id = ? AND status = ? AND vote_threshold IS NOT NULL AND vote_count >= vote_threshold",
			topicID, models.TopicStatusApproved).
		Update("status", models.TopicStatusQualified)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check qualification: %w", result.Error)
	}

	qualified := result.RowsAffected > 0
	if qualified {
		if topic, err := s.getTopic(topicID); err == nil {
			s.notify(topic.ProposedByID, topic.ID, models.NotificationTopicQualified,
				fmt.Sprintf("Your topic %q reached its vote threshold and is now qualified.", topic.Title))
		}
		log.Printf("Topic %d qualified", topicID)
	}
	return qualified, nil
}

// GetTopicByID retrieves a topic with its proposer preloaded
func (s *TopicService) GetTopicByID(topicID uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.Preload("ProposedBy").First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

// TopicFilter narrows topic listings
type TopicFilter struct {
	Status   models.TopicStatus
	Industry string
	Country  string
	Limit    int
	Offset   int
}

// ListTopics returns topics matching the filter, newest first
func (s *TopicService) ListTopics(filter TopicFilter) ([]models.Topic, int64, error) {
	query := s.db.Model(&models.Topic{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}

	var total int64
	query.Count(&total)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var topics []models.Topic
	if err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&topics).Error; err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

// ListTopicsByProposer returns all topics submitted by a user, newest first
func (s *TopicService) ListTopicsByProposer(proposerID uint) ([]models.Topic, error) {
	var topics []models.Topic
	if err := s.db.Where("proposed_by_id = ?", proposerID).
		Order("created_at DESC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// DeleteTopic hard-deletes a topic together with its votes and notifications
func (s *TopicService) DeleteTopic(topicID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.First(&topic, topicID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return err
		}
		if err := tx.Where("topic_id = ?", topicID).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("failed to delete votes: %w", err)
		}
		if err := tx.Where("topic_id = ?", topicID).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notifications: %w", err)
		}
		if err := tx.Delete(&models.Topic{}, topicID).Error; err != nil {
			return fmt.Errorf("failed to delete topic: %w", err)
		}
		return nil
	})
}

func (s *TopicService) getTopic(topicID uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

// notify records a notification for the proposer; delivery is best effort
// and never fails the transition that produced it
func (s *TopicService) notify(userID, topicID uint, kind models.NotificationType, message string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Create(userID, &topicID, kind, message); err != nil {
		log.Printf("Warning: failed to create %s notification for user %d: %v", kind, userID, err)
	}
}
