package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spark/internal/models"
)

// AdminService provides dashboard data, user administration and the audit trail
type AdminService struct {
	db *gorm.DB
}

// NewAdminService creates a new AdminService
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// DashboardData holds the headline numbers for the admin dashboard
type DashboardData struct {
	TotalUsers      int64             `json:"total_users"`
	TotalTopics     int64             `json:"total_topics"`
	PendingTopics   int64             `json:"pending_topics"`
	QualifiedTopics int64             `json:"qualified_topics"`
	TotalVotes      int64             `json:"total_votes"`
	TotalResearch   int64             `json:"total_research"`
	RecentLogs      []models.AdminLog `json:"recent_logs"`
}

// GetDashboard returns the headline counts and recent admin activity
func (s *AdminService) GetDashboard() (*DashboardData, error) {
	data := &DashboardData{}

	s.db.Model(&models.User{}).Count(&data.TotalUsers)
	s.db.Model(&models.Topic{}).Count(&data.TotalTopics)
	s.db.Model(&models.Topic{}).Where("status = ?", models.TopicStatusPending).Count(&data.PendingTopics)
	s.db.Model(&models.Topic{}).Where("status = ?", models.TopicStatusQualified).Count(&data.QualifiedTopics)
	s.db.Model(&models.Vote{}).Count(&data.TotalVotes)
	s.db.Model(&models.Research{}).Count(&data.TotalResearch)

	if err := s.db.Preload("Admin").Order("created_at DESC").Limit(10).
		Find(&data.RecentLogs).Error; err != nil {
		return nil, err
	}
	return data, nil
}

// GetAllUsers returns users with optional search over email and name
func (s *AdminService) GetAllUsers(limit int, offset int, search string) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("email LIKE ? OR name LIKE ?", pattern, pattern)
	}

	query.Count(&total)
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// LogAdminAction records an admin action for the audit trail
func (s *AdminService) LogAdminAction(adminID uint, action string, resourceType string,
	resourceID *uint, details map[string]interface{}) error {

	adminLog := models.AdminLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      models.JSONB(details),
	}

	return s.db.Create(&adminLog).Error
}

// GetAdminLogs returns admin activity logs, newest first
func (s *AdminService) GetAdminLogs(limit int, offset int) ([]models.AdminLog, error) {
	var logs []models.AdminLog
	if err := s.db.Preload("Admin").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// GetPlatformStats returns platform statistics for a date, computing and
// caching the daily row on first request
func (s *AdminService) GetPlatformStats(date time.Time) (*models.PlatformStats, error) {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var stats models.PlatformStats
	result := s.db.Where("date = ?", dateOnly).First(&stats)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		stats = s.calculatePlatformStats(dateOnly)
		if err := s.db.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}

	return &stats, result.Error
}

// SnapshotPlatformStats recomputes and upserts the stats row for a date
func (s *AdminService) SnapshotPlatformStats(date time.Time) error {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	computed := s.calculatePlatformStats(dateOnly)

	var existing models.PlatformStats
	result := s.db.Where("date = ?", dateOnly).First(&existing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return s.db.Create(&computed).Error
	}
	if result.Error != nil {
		return result.Error
	}

	computed.ID = existing.ID
	computed.CreatedAt = existing.CreatedAt
	return s.db.Save(&computed).Error
}

// calculatePlatformStats calculates platform statistics
func (s *AdminService) calculatePlatformStats(date time.Time) models.PlatformStats {
	var totalUsers, activeUsers int64
	var totalTopics, pendingTopics, approvedTopics, qualifiedTopics int64
	var totalVotes, publishedResearch int64

	s.db.Model(&models.User{}).Count(&totalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&activeUsers)
	s.db.Model(&models.Topic{}).Count(&totalTopics)
	s.db.Model(&models.Topic{}).Where("status = ?", models.TopicStatusPending).Count(&pendingTopics)
	s.db.Model(&models.Topic{}).Where("status = ?", models.TopicStatusApproved).Count(&approvedTopics)
	s.db.Model(&models.Topic{}).Where("status = ?", models.TopicStatusQualified).Count(&qualifiedTopics)
	s.db.Model(&models.Vote{}).Count(&totalVotes)
	s.db.Model(&models.Research{}).Where("is_published = ?", true).Count(&publishedResearch)

	opportunityValue := decimal.Zero
	var sum *string
	row := s.db.Model(&models.Opportunity{}).
		Select("CAST(COALESCE(SUM(market_size), 0) AS TEXT)").Row()
	if err := row.Scan(&sum); err == nil && sum != nil {
		if parsed, err := decimal.NewFromString(*sum); err == nil {
			opportunityValue = parsed
		}
	}

	return models.PlatformStats{
		Date:              date,
		TotalUsers:        int(totalUsers),
		ActiveUsers:       int(activeUsers),
		TotalTopics:       int(totalTopics),
		PendingTopics:     int(pendingTopics),
		ApprovedTopics:    int(approvedTopics),
		QualifiedTopics:   int(qualifiedTopics),
		TotalVotes:        int(totalVotes),
		PublishedResearch: int(publishedResearch),
		OpportunityValue:  opportunityValue,
	}
}
