package models

import (
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusBanned    UserStatus = "BANNED"
)

type SubscriptionPlan string

const (
	PlanFree SubscriptionPlan = "FREE"
	PlanPro  SubscriptionPlan = "PRO"
)

// User represents a registered account on the platform
type User struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Email        string           `gorm:"uniqueIndex;not null" json:"email"`
	Name         string           `gorm:"size:100;not null" json:"name"`
	PasswordHash string           `gorm:"not null" json:"-"`
	Role         UserRole         `gorm:"size:20;not null;default:USER;index" json:"role"`
	Status       UserStatus       `gorm:"size:20;not null;default:ACTIVE;index" json:"status"`
	Plan         SubscriptionPlan `gorm:"size:20;not null;default:FREE" json:"plan"`
	Industry     *string          `gorm:"size:100" json:"industry,omitempty"`
	Country      *string          `gorm:"size:100" json:"country,omitempty"`
	ProfileType  *string          `gorm:"size:50" json:"profile_type,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
