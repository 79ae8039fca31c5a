package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"spark/internal/models"
	"spark/internal/repository"
)

func TestCastVoteLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	notifications := NewNotificationService(db)
	topics := NewTopicService(db, testSparkConfig(), notifications)
	votes := NewVoteService(repository.NewRepository(db), notifications)

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, topics, proposer.ID)

	// Voting on a PENDING topic is refused
	_, err := votes.CastVote(ctx, topic.ID, proposer.ID)
	if !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed, got %v", err)
	}

	if _, err := topics.Approve(topic.ID, 3, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Three distinct users vote; the third crosses the threshold
	var voters []*models.User
	for i := 0; i < 3; i++ {
		voters = append(voters, createTestUser(t, db, fmt.Sprintf("voter%d@example.com", i), models.UserStatusActive))
	}

	for i, voter := range voters {
		result, err := votes.CastVote(ctx, topic.ID, voter.ID)
		if err != nil {
			t.Fatalf("CastVote %d failed: %v", i, err)
		}
		if result.VoteCount != i+1 {
			t.Errorf("vote %d: expected count %d, got %d", i, i+1, result.VoteCount)
		}
		if i < 2 {
			if result.Qualified || result.Status != models.TopicStatusApproved {
				t.Errorf("vote %d must not qualify (qualified=%v status=%s)", i, result.Qualified, result.Status)
			}
		} else {
			if !result.Qualified {
				t.Error("threshold-crossing vote must report qualified=true")
			}
			if result.Status != models.TopicStatusQualified {
				t.Errorf("expected status QUALIFIED, got %s", result.Status)
			}
		}
	}

	// Counter matches the true row count
	rowCount, err := repository.NewRepository(db).CountVotes(ctx, topic.ID)
	if err != nil {
		t.Fatalf("CountVotes failed: %v", err)
	}
	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if int64(reloaded.VoteCount) != rowCount {
		t.Errorf("vote_count %d diverged from row count %d", reloaded.VoteCount, rowCount)
	}

	// The proposer was notified about qualification exactly once
	var notifCount int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", proposer.ID, models.NotificationTopicQualified).
		Count(&notifCount)
	if notifCount != 1 {
		t.Errorf("expected 1 qualified notification, got %d", notifCount)
	}
}

func TestDuplicateVote(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	topics := NewTopicService(db, testSparkConfig(), nil)
	votes := NewVoteService(repository.NewRepository(db), nil)

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	voter := createTestUser(t, db, "voter@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, topics, proposer.ID)
	if _, err := topics.Approve(topic.ID, 50, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if _, err := votes.CastVote(ctx, topic.ID, voter.ID); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	_, err := votes.CastVote(ctx, topic.ID, voter.ID)
	if !errors.Is(err, ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}

	// The failed duplicate left the counter untouched
	var reloaded models.Topic
	db.First(&reloaded, topic.ID)
	if reloaded.VoteCount != 1 {
		t.Errorf("expected vote count 1 after duplicate, got %d", reloaded.VoteCount)
	}

	voted, err := votes.HasVoted(ctx, topic.ID, voter.ID)
	if err != nil || !voted {
		t.Errorf("expected HasVoted=true, got %v (err %v)", voted, err)
	}
}

func TestRetractVote(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	topics := NewTopicService(db, testSparkConfig(), nil)
	votes := NewVoteService(repository.NewRepository(db), nil)

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	topic := proposeTestTopic(t, topics, proposer.ID)
	if _, err := topics.Approve(topic.ID, 2, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	voterA := createTestUser(t, db, "a@example.com", models.UserStatusActive)
	voterB := createTestUser(t, db, "b@example.com", models.UserStatusActive)

	if _, err := votes.CastVote(ctx, topic.ID, voterA.ID); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	result, err := votes.CastVote(ctx, topic.ID, voterB.ID)
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if !result.Qualified {
		t.Fatal("expected second vote to qualify the topic")
	}

	// Retracting below the threshold decrements the counter but keeps
	// QUALIFIED: qualification is one-way
	retracted, err := votes.RetractVote(ctx, topic.ID, voterA.ID)
	if err != nil {
		t.Fatalf("RetractVote failed: %v", err)
	}
	if retracted.VoteCount != 1 {
		t.Errorf("expected vote count 1, got %d", retracted.VoteCount)
	}
	if retracted.Status != models.TopicStatusQualified {
		t.Errorf("retraction must not demote QUALIFIED, got %s", retracted.Status)
	}

	// Retracting a vote that no longer exists is a typed error
	_, err = votes.RetractVote(ctx, topic.ID, voterA.ID)
	if !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound, got %v", err)
	}

	// Voting stays open while QUALIFIED
	if _, err := votes.CastVote(ctx, topic.ID, voterA.ID); err != nil {
		t.Fatalf("voting on a QUALIFIED topic must be allowed: %v", err)
	}
}

func TestVoteRestrictedAndMissing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	topics := NewTopicService(db, testSparkConfig(), nil)
	votes := NewVoteService(repository.NewRepository(db), nil)

	proposer := createTestUser(t, db, "proposer@example.com", models.UserStatusActive)
	admin := createTestUser(t, db, "admin@example.com", models.UserStatusActive)
	suspended := createTestUser(t, db, "suspended@example.com", models.UserStatusSuspended)
	topic := proposeTestTopic(t, topics, proposer.ID)
	if _, err := topics.Approve(topic.ID, 10, admin.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if _, err := votes.CastVote(ctx, topic.ID, suspended.ID); !errors.Is(err, ErrUserRestricted) {
		t.Errorf("expected ErrUserRestricted for suspended voter, got %v", err)
	}

	if _, err := votes.CastVote(ctx, 99999, proposer.ID); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("expected ErrTopicNotFound, got %v", err)
	}

	if _, err := votes.RetractVote(ctx, 99999, proposer.ID); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("expected ErrTopicNotFound on retract, got %v", err)
	}
}
