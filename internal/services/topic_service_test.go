package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spark/internal/config"
	"spark/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// :memory: is unique per connection unless using cache=shared, and the
	// handle stays open for the duration of the test function.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Vote{},
		&models.Notification{},
		&models.Research{},
		&models.Opportunity{},
		&models.AdminLog{},
		&models.PlatformStats{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// Clean all tables so state never leaks between tests on the shared DB
	db.Exec("DELETE FROM admin_logs")
	db.Exec("DELETE FROM platform_stats")
	db.Exec("DELETE FROM opportunities")
	db.Exec("DELETE FROM research")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM votes")
	db.Exec("DELETE FROM topics")
	db.Exec("DELETE FROM users")

	return db
}

func testSparkConfig() config.SparkConfig {
	return config.SparkConfig{
		DefaultVoteThreshold: 50,
		VotingPeriodDays:     30,
		TitleMaxLength:       100,
		DescriptionMaxLength: 500,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email string, status models.UserStatus) *models.User {
	user := models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "x",
		Role:         models.UserRoleUser,
		Status:       status,
		Plan:         models.PlanFree,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func proposeTestTopic(t *testing.T, svc *TopicService, proposerID uint) *models.Topic {
	topic, err := svc.Propose(proposerID, &ProposeTopicRequest{
		Title:       "EV charging demand in rural areas",
		Description: "How big is the market for rural EV charging infrastructure?",
		Industry:    "Energy",
		Country:     "DE",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	return topic
}

func TestProposeValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), nil)
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)

	// Title over the configured limit is rejected and nothing is persisted
	_, err := svc.Propose(user.ID, &ProposeTopicRequest{
		Title:       strings.Repeat("a", 101),
		Description: "valid description",
		Industry:    "Energy",
		Country:     "DE",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var count int64
	db.Model(&models.Topic{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no topics after failed propose, got %d", count)
	}

	// Missing required fields
	_, err = svc.Propose(user.ID, &ProposeTopicRequest{
		Title:       "Valid title",
		Description: "",
		Industry:    "Energy",
		Country:     "DE",
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty description, got %v", err)
	}

	// Valid proposal lands in PENDING with a zero counter
	topic := proposeTestTopic(t, svc, user.ID)
	if topic.Status != models.TopicStatusPending {
		t.Errorf("expected status PENDING, got %s", topic.Status)
	}
	if topic.VoteCount != 0 {
		t.Errorf("expected vote count 0, got %d", topic.VoteCount)
	}
	if topic.VoteThreshold != nil || topic.Deadline != nil {
		t.Error("threshold and deadline must be unset before approval")
	}
}

func TestProposeSuspendedUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), nil)
	user := createTestUser(t, db, "suspended@example.com", models.UserStatusSuspended)

	_, err := svc.Propose(user.ID, &ProposeTopicRequest{
		Title:       "Valid title",
		Description: "Valid description",
		Industry:    "Energy",
		Country:     "DE",
	})
	if !errors.Is(err, ErrUserRestricted) {
		t.Fatalf("expected ErrUserRestricted, got %v", err)
	}
}

func TestApprove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), NewNotificationService(db))
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, svc, user.ID)

	approved, err := svc.Approve(topic.ID, 50, admin.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if approved.Status != models.TopicStatusApproved {
		t.Errorf("expected status APPROVED, got %s", approved.Status)
	}
	if approved.VoteThreshold == nil || *approved.VoteThreshold != 50 {
		t.Errorf("expected vote threshold 50, got %v", approved.VoteThreshold)
	}
	if approved.ApprovalDate == nil || approved.Deadline == nil {
		t.Fatal("approval date and deadline must be set")
	}
	wantDeadline := approved.ApprovalDate.AddDate(0, 0, 30)
	if diff := approved.Deadline.Sub(wantDeadline); diff > time.Second || diff < -time.Second {
		t.Errorf("expected deadline 30 days after approval, got %s", approved.Deadline)
	}
	if approved.ApprovedByID == nil || *approved.ApprovedByID != admin.ID {
		t.Errorf("expected approver %d, got %v", admin.ID, approved.ApprovedByID)
	}

	// The proposer got a notification
	var notifs int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", user.ID, models.NotificationTopicApproved).
		Count(&notifs)
	if notifs != 1 {
		t.Errorf("expected 1 approval notification, got %d", notifs)
	}

	// Approving again is an invalid transition and changes nothing
	_, err = svc.Approve(topic.ID, 10, admin.ID)
	var te *InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if *reloaded.VoteThreshold != 50 {
		t.Errorf("failed approve must not change threshold, got %d", *reloaded.VoteThreshold)
	}
}

func TestApproveInvalidThreshold(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), nil)
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, svc, user.ID)

	_, err := svc.Approve(topic.ID, 0, user.ID)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for threshold 0, got %v", err)
	}

	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.Status != models.TopicStatusPending {
		t.Errorf("topic must stay PENDING, got %s", reloaded.Status)
	}
}

func TestReject(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), nil)
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, svc, user.ID)

	// Empty reason fails and leaves the topic PENDING
	_, err := svc.Reject(topic.ID, "   ", admin.ID)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty reason, got %v", err)
	}

	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.Status != models.TopicStatusPending {
		t.Fatalf("topic must stay PENDING after failed reject, got %s", reloaded.Status)
	}

	rejected, err := svc.Reject(topic.ID, "duplicate of an existing topic", admin.ID)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.TopicStatusRejected {
		t.Errorf("expected status REJECTED, got %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "duplicate of an existing topic" {
		t.Errorf("expected rejection reason to be stored, got %v", rejected.RejectionReason)
	}

	// Rejecting a rejected topic is an invalid transition
	_, err = svc.Reject(topic.ID, "again", admin.ID)
	var te *InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestConvert(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), nil)
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, svc, user.ID)

	// Converting a PENDING topic is refused
	_, err := svc.Convert(topic.ID)
	var te *InvalidTransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	if _, err := svc.Approve(topic.ID, 1, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	db.Model(&models.Topic{}).Where("id = ?", topic.ID).Update("vote_count", 1)
	if _, err := svc.CheckQualification(topic.ID); err != nil {
		t.Fatalf("CheckQualification failed: %v", err)
	}

	research, err := svc.Convert(topic.ID)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if research.TopicID != topic.ID {
		t.Errorf("research must reference topic %d, got %d", topic.ID, research.TopicID)
	}
	if research.Status != models.ResearchStatusDraft {
		t.Errorf("expected research status DRAFT, got %s", research.Status)
	}
	if research.IsPublished {
		t.Error("new research must not be published")
	}

	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.Status != models.TopicStatusConverted {
		t.Errorf("expected topic status CONVERTED, got %s", reloaded.Status)
	}

	// Double convert fails and does not create a second research record
	_, err = svc.Convert(topic.ID)
	if !errors.As(err, &te) {
		t.Fatalf("expected InvalidTransitionError on second convert, got %v", err)
	}
	var count int64
	db.Model(&models.Research{}).Where("topic_id = ?", topic.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 research record, got %d", count)
	}
}

func TestCheckQualificationIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), nil)
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, svc, user.ID)

	// Not qualified while PENDING or under the threshold
	qualified, err := svc.CheckQualification(topic.ID)
	if err != nil || qualified {
		t.Fatalf("PENDING topic must not qualify (qualified=%v err=%v)", qualified, err)
	}

	if _, err := svc.Approve(topic.ID, 2, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	qualified, err = svc.CheckQualification(topic.ID)
	if err != nil || qualified {
		t.Fatalf("topic under threshold must not qualify (qualified=%v err=%v)", qualified, err)
	}

	db.Model(&models.Topic{}).Where("id = ?", topic.ID).Update("vote_count", 2)

	qualified, err = svc.CheckQualification(topic.ID)
	if err != nil {
		t.Fatalf("CheckQualification failed: %v", err)
	}
	if !qualified {
		t.Fatal("expected topic to qualify at threshold")
	}

	// Second call is a no-op
	qualified, err = svc.CheckQualification(topic.ID)
	if err != nil {
		t.Fatalf("CheckQualification failed: %v", err)
	}
	if qualified {
		t.Error("second qualification check must report no change")
	}

	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.Status != models.TopicStatusQualified {
		t.Errorf("expected status QUALIFIED, got %s", reloaded.Status)
	}
}

func TestDeleteTopicCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTopicService(db, testSparkConfig(), NewNotificationService(db))
	user := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, svc, user.ID)

	if _, err := svc.Approve(topic.ID, 5, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	db.Create(&models.Vote{UserID: user.ID, TopicID: topic.ID})
	db.Create(&models.Vote{UserID: admin.ID, TopicID: topic.ID})

	if err := svc.DeleteTopic(topic.ID); err != nil {
		t.Fatalf("DeleteTopic failed: %v", err)
	}

	var topics, votes, notifs int64
	db.Model(&models.Topic{}).Where("id = ?", topic.ID).Count(&topics)
	db.Model(&models.Vote{}).Where("topic_id = ?", topic.ID).Count(&votes)
	db.Model(&models.Notification{}).Where("topic_id = ?", topic.ID).Count(&notifs)
	if topics != 0 || votes != 0 || notifs != 0 {
		t.Errorf("expected full cascade, got topics=%d votes=%d notifications=%d", topics, votes, notifs)
	}

	if err := svc.DeleteTopic(topic.ID); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("expected ErrTopicNotFound on second delete, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.TopicStatus
		want     bool
	}{
		{models.TopicStatusPending, models.TopicStatusApproved, true},
		{models.TopicStatusPending, models.TopicStatusRejected, true},
		{models.TopicStatusPending, models.TopicStatusQualified, false},
		{models.TopicStatusApproved, models.TopicStatusQualified, true},
		{models.TopicStatusApproved, models.TopicStatusRejected, false},
		{models.TopicStatusQualified, models.TopicStatusConverted, true},
		{models.TopicStatusQualified, models.TopicStatusApproved, false},
		{models.TopicStatusConverted, models.TopicStatusCompleted, true},
		{models.TopicStatusRejected, models.TopicStatusApproved, false},
		{models.TopicStatusCompleted, models.TopicStatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
