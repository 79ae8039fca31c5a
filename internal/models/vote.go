package models

import (
	"time"
)

// Vote records a single user's vote on a topic. The composite unique index
// makes the at-most-one-vote-per-user-per-topic rule a storage-level
// constraint rather than an application promise.
type Vote struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_votes_user_topic" json:"user_id"`
	User    *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TopicID uint      `gorm:"not null;uniqueIndex:idx_votes_user_topic;index" json:"topic_id"`
	Topic   *Topic    `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	VotedAt time.Time `gorm:"autoCreateTime" json:"voted_at"`
}

// TableName specifies the table name for Vote model
func (Vote) TableName() string {
	return "votes"
}
