package models

import (
	"time"
)

type TopicStatus string

const (
	TopicStatusPending   TopicStatus = "PENDING"
	TopicStatusApproved  TopicStatus = "APPROVED"
	TopicStatusRejected  TopicStatus = "REJECTED"
	TopicStatusQualified TopicStatus = "QUALIFIED"
	TopicStatusConverted TopicStatus = "CONVERTED"
	TopicStatusCompleted TopicStatus = "COMPLETED"
)

// Topic represents a user-proposed research topic moving through the
// review/voting/conversion lifecycle
type Topic struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Title           string      `gorm:"size:255;not null" json:"title"`
	Description     string      `gorm:"type:text;not null" json:"description"`
	Industry        string      `gorm:"size:100;not null;index" json:"industry"`
	Country         string      `gorm:"size:100;not null;index" json:"country"`
	Status          TopicStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	VoteCount       int         `gorm:"not null;default:0" json:"vote_count"`
	VoteThreshold   *int        `json:"vote_threshold,omitempty"`
	ApprovalDate    *time.Time  `json:"approval_date,omitempty"`
	Deadline        *time.Time  `json:"deadline,omitempty"`
	RejectionReason *string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ProposedByID    uint        `gorm:"not null;index" json:"proposed_by_id"`
	ProposedBy      *User       `gorm:"foreignKey:ProposedByID" json:"proposed_by,omitempty"`
	ApprovedByID    *uint       `gorm:"index" json:"approved_by_id,omitempty"`
	ApprovedBy      *User       `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	Votes           []Vote      `gorm:"foreignKey:TopicID" json:"votes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName specifies the table name for Topic model
func (Topic) TableName() string {
	return "topics"
}
