package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spark/internal/models"
)

// ResearchService manages research reports produced from converted topics
type ResearchService struct {
	db *gorm.DB
}

// NewResearchService creates a new ResearchService
func NewResearchService(db *gorm.DB) *ResearchService {
	return &ResearchService{db: db}
}

// ListPublished returns published research, newest first
func (s *ResearchService) ListPublished(limit, offset int) ([]models.Research, int64, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.Model(&models.Research{}).Where("is_published = ?", true)

	var total int64
	query.Count(&total)

	var research []models.Research
	err := query.Preload("Opportunities").
		Order("published_at DESC").Limit(limit).Offset(offset).
		Find(&research).Error
	if err != nil {
		return nil, 0, err
	}
	return research, total, nil
}

// ListAll returns every research record regardless of publication state
func (s *ResearchService) ListAll(limit, offset int) ([]models.Research, int64, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int64
	s.db.Model(&models.Research{}).Count(&total)

	var research []models.Research
	err := s.db.Preload("Opportunities").Preload("Topic").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&research).Error
	if err != nil {
		return nil, 0, err
	}
	return research, total, nil
}

// GetByID returns a research record with its opportunities. When
// publishedOnly is set, drafts and archived reports are treated as missing.
func (s *ResearchService) GetByID(id uuid.UUID, publishedOnly bool) (*models.Research, error) {
	query := s.db.Preload("Opportunities").Preload("Topic")
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var research models.Research
	if err := query.Where("id = ?", id).First(&research).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResearchNotFound
		}
		return nil, err
	}
	return &research, nil
}

// OpportunityInput is the input for attaching an opportunity to a report
type OpportunityInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	MarketSize  decimal.Decimal `json:"market_size"`
	Score       int             `json:"score"`
}

// AddOpportunity attaches a market opportunity to a draft report
func (s *ResearchService) AddOpportunity(researchID uuid.UUID, input *OpportunityInput) (*models.Opportunity, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if input.MarketSize.IsNegative() {
		return nil, &ValidationError{Field: "market_size", Reason: "must not be negative"}
	}

	var research models.Research
	if err := s.db.First(&research, "id = ?", researchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResearchNotFound
		}
		return nil, err
	}

	opportunity := models.Opportunity{
		ID:          uuid.New(),
		ResearchID:  researchID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		MarketSize:  input.MarketSize,
		Score:       input.Score,
	}
	if err := s.db.Create(&opportunity).Error; err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return &opportunity, nil
}

// Publish moves a DRAFT report to PUBLISHED and completes its source topic.
// Both updates run in one transaction.
func (s *ResearchService) Publish(researchID uuid.UUID) (*models.Research, error) {
	var research models.Research

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.Research{}).
			Where("id = ? AND status = ?", researchID, models.ResearchStatusDraft).
			Updates(map[string]interface{}{
				"status":       models.ResearchStatusPublished,
				"is_published": true,
				"published_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to publish research: %w", result.Error)
		}

		if err := tx.First(&research, "id = ?", researchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResearchNotFound
			}
			return err
		}
		if result.RowsAffected == 0 {
			return &ValidationError{Field: "status", Reason: fmt.Sprintf("cannot publish research in status %s", research.Status)}
		}

		// the source topic's journey ends when the report ships
		err := tx.Model(&models.Topic{}).
			Where("id = ? AND status = ?", research.TopicID, models.TopicStatusConverted).
			Update("status", models.TopicStatusCompleted).Error
		if err != nil {
			return fmt.Errorf("failed to complete topic: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Research %s published (topic %d completed)", researchID, research.TopicID)
	return &research, nil
}

// Archive moves a published report to ARCHIVED and hides it from the
// public listing
func (s *ResearchService) Archive(researchID uuid.UUID) (*models.Research, error) {
	result := s.db.Model(&models.Research{}).
		Where("id = ? AND status = ?", researchID, models.ResearchStatusPublished).
		Updates(map[string]interface{}{
			"status":       models.ResearchStatusArchived,
			"is_published": false,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to archive research: %w", result.Error)
	}

	var research models.Research
	if err := s.db.First(&research, "id = ?", researchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResearchNotFound
		}
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("cannot archive research in status %s", research.Status)}
	}

	log.Printf("Research %s archived", researchID)
	return &research, nil
}
