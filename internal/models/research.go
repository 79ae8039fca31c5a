package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ResearchStatus string

const (
	ResearchStatusDraft     ResearchStatus = "DRAFT"
	ResearchStatusPublished ResearchStatus = "PUBLISHED"
	ResearchStatusArchived  ResearchStatus = "ARCHIVED"
)

// Research is the report produced when a qualified topic is converted
type Research struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID       uint           `gorm:"uniqueIndex;not null" json:"topic_id"`
	Topic         *Topic         `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Summary       string         `gorm:"type:text" json:"summary"`
	Status        ResearchStatus `gorm:"size:50;not null;default:DRAFT;index" json:"status"`
	IsPublished   bool           `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
	Opportunities []Opportunity  `gorm:"foreignKey:ResearchID" json:"opportunities,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Research model
func (Research) TableName() string {
	return "research"
}

// Opportunity is a market opportunity identified inside a research report
type Opportunity struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ResearchID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"research_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	MarketSize  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"market_size"`
	Score       int             `gorm:"default:0" json:"score"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for Opportunity model
func (Opportunity) TableName() string {
	return "opportunities"
}
