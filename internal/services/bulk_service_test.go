package services

import (
	"errors"
	"testing"

	"spark/internal/models"
)

func TestBulkApprovePartialFailure(t *testing.T) {
	db := setupTestDB(t)
	topics := NewTopicService(db, testSparkConfig(), nil)
	bulk := NewBulkService(topics, NewUserService(db), NewAdminService(db))

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topicA := proposeTestTopic(t, topics, proposer.ID)
	topicB := proposeTestTopic(t, topics, proposer.ID)
	const missingID = uint(99999)

	result, err := bulk.ApproveTopics([]uint{topicA.ID, missingID, topicB.ID}, 25, admin.ID)
	if err != nil {
		t.Fatalf("ApproveTopics failed: %v", err)
	}

	if len(result.Succeeded) != 2 {
		t.Errorf("expected 2 successes, got %v", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].ID != missingID {
		t.Errorf("expected failure for %d, got %v", missingID, result.Failed)
	}

	// Both valid topics ended up APPROVED with the uniform threshold
	for _, id := range []uint{topicA.ID, topicB.ID} {
		var topic models.Topic
		db.First(&topic, id)
		if topic.Status != models.TopicStatusApproved {
			t.Errorf("topic %d: expected APPROVED, got %s", id, topic.Status)
		}
		if topic.VoteThreshold == nil || *topic.VoteThreshold != 25 {
			t.Errorf("topic %d: expected threshold 25, got %v", id, topic.VoteThreshold)
		}
	}

	// The batch was audit-logged
	var logCount int64
	db.Model(&models.AdminLog{}).Where("action = ?", "BULK_APPROVE_TOPICS").Count(&logCount)
	if logCount != 1 {
		t.Errorf("expected 1 audit log entry, got %d", logCount)
	}
}

func TestBulkRejectValidation(t *testing.T) {
	db := setupTestDB(t)
	topics := NewTopicService(db, testSparkConfig(), nil)
	bulk := NewBulkService(topics, NewUserService(db), NewAdminService(db))

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, topics, proposer.ID)

	// An empty reason fails the whole batch up front
	var ve *ValidationError
	_, err := bulk.RejectTopics([]uint{topic.ID}, "  ", admin.ID)
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty reason, got %v", err)
	}
	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.Status != models.TopicStatusPending {
		t.Errorf("topic must stay PENDING, got %s", reloaded.Status)
	}

	// An empty id list is malformed input, not an empty success
	_, err = bulk.RejectTopics(nil, "low quality", admin.ID)
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty ids, got %v", err)
	}

	result, err := bulk.RejectTopics([]uint{topic.ID}, "low quality", admin.ID)
	if err != nil {
		t.Fatalf("RejectTopics failed: %v", err)
	}
	if len(result.Succeeded) != 1 || len(result.Failed) != 0 {
		t.Errorf("unexpected result %+v", result)
	}

	db.First(&reloaded, topic.ID)
	if reloaded.Status != models.TopicStatusRejected {
		t.Errorf("expected REJECTED, got %s", reloaded.Status)
	}
	if reloaded.RejectionReason == nil || *reloaded.RejectionReason != "low quality" {
		t.Errorf("expected uniform reason, got %v", reloaded.RejectionReason)
	}
}

func TestBulkDeleteTopics(t *testing.T) {
	db := setupTestDB(t)
	topics := NewTopicService(db, testSparkConfig(), nil)
	bulk := NewBulkService(topics, NewUserService(db), NewAdminService(db))

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topicA := proposeTestTopic(t, topics, proposer.ID)
	topicB := proposeTestTopic(t, topics, proposer.ID)
	db.Create(&models.Vote{UserID: admin.ID, TopicID: topicA.ID})

	result, err := bulk.DeleteTopics([]uint{topicA.ID, topicB.ID, 99999}, admin.ID)
	if err != nil {
		t.Fatalf("DeleteTopics failed: %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	var topicCount, voteCount int64
	db.Model(&models.Topic{}).Count(&topicCount)
	db.Model(&models.Vote{}).Count(&voteCount)
	if topicCount != 0 || voteCount != 0 {
		t.Errorf("expected full cleanup, got topics=%d votes=%d", topicCount, voteCount)
	}
}

func TestBulkUserStatusOps(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	bulk := NewBulkService(NewTopicService(db, testSparkConfig(), nil), users, NewAdminService(db))

	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	userA := createTestUser(t, db, "a@example.com", models.UserStatusActive)
	userB := createTestUser(t, db, "b@example.com", models.UserStatusActive)

	result, err := bulk.SuspendUsers([]uint{userA.ID, userB.ID, 99999}, admin.ID)
	if err != nil {
		t.Fatalf("SuspendUsers failed: %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 1 {
		t.Errorf("unexpected result %+v", result)
	}

	var reloaded models.User
	db.First(&reloaded, userA.ID)
	if reloaded.Status != models.UserStatusSuspended {
		t.Errorf("expected SUSPENDED, got %s", reloaded.Status)
	}

	if _, err := bulk.ActivateUsers([]uint{userA.ID}, admin.ID); err != nil {
		t.Fatalf("ActivateUsers failed: %v", err)
	}
	db.First(&reloaded, userA.ID)
	if reloaded.Status != models.UserStatusActive {
		t.Errorf("expected ACTIVE, got %s", reloaded.Status)
	}
}

func TestBulkDeleteUsersAdjustsCounters(t *testing.T) {
	db := setupTestDB(t)
	topics := NewTopicService(db, testSparkConfig(), nil)
	users := NewUserService(db)
	bulk := NewBulkService(topics, users, NewAdminService(db))

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	voter := createTestUser(t, db, "voter@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, topics, proposer.ID)
	if _, err := topics.Approve(topic.ID, 50, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	db.Create(&models.Vote{UserID: voter.ID, TopicID: topic.ID})
	db.Model(&models.Topic{}).Where("id = ?", topic.ID).Update("vote_count", 1)

	result, err := bulk.DeleteUsers([]uint{voter.ID}, admin.ID)
	if err != nil {
		t.Fatalf("DeleteUsers failed: %v", err)
	}
	if len(result.Succeeded) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	// The deleted user's vote is gone and the topic counter walked back
	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.VoteCount != 0 {
		t.Errorf("expected vote count 0 after voter deletion, got %d", reloaded.VoteCount)
	}
	var voteCount int64
	db.Model(&models.Vote{}).Where("user_id = ?", voter.ID).Count(&voteCount)
	if voteCount != 0 {
		t.Errorf("expected voter's votes removed, got %d", voteCount)
	}
}
