package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// JSONB for PostgreSQL JSON support
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j)
}

// AdminLog records admin actions for audit trail
type AdminLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdminID      uint      `gorm:"not null;index" json:"admin_id"`
	Admin        *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Action       string    `gorm:"size:100;not null" json:"action"`
	ResourceType string    `gorm:"size:50" json:"resource_type"`
	ResourceID   *uint     `json:"resource_id"`
	Details      JSONB     `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

// PlatformStats stores daily platform statistics
type PlatformStats struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Date              time.Time       `gorm:"uniqueIndex;not null" json:"date"`
	TotalUsers        int             `gorm:"default:0" json:"total_users"`
	ActiveUsers       int             `gorm:"default:0" json:"active_users"`
	TotalTopics       int             `gorm:"default:0" json:"total_topics"`
	PendingTopics     int             `gorm:"default:0" json:"pending_topics"`
	ApprovedTopics    int             `gorm:"default:0" json:"approved_topics"`
	QualifiedTopics   int             `gorm:"default:0" json:"qualified_topics"`
	TotalVotes        int             `gorm:"default:0" json:"total_votes"`
	PublishedResearch int             `gorm:"default:0" json:"published_research"`
	OpportunityValue  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"opportunity_value"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (PlatformStats) TableName() string {
	return "platform_stats"
}
