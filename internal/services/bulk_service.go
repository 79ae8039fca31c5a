package services

import (
	"log"
	"strings"

	"spark/internal/models"
)

// BulkFailure reports why a single item in a batch failed
type BulkFailure struct {
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult aggregates per-item outcomes of a batch operation
type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkService applies a lifecycle or account operation across many entities.
// Items fail independently: one bad ID never aborts the rest of the batch.
type BulkService struct {
	topics *TopicService
	users  *UserService
	admin  *AdminService
}

// NewBulkService creates a new BulkService
func NewBulkService(topics *TopicService, users *UserService, admin *AdminService) *BulkService {
	return &BulkService{
		topics: topics,
		users:  users,
		admin:  admin,
	}
}

// apply runs op for every id, collecting per-item failures
func (s *BulkService) apply(ids []uint, op func(id uint) error) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "ids", Reason: "must not be empty"}
	}

	result := &BulkResult{
		Succeeded: make([]uint, 0, len(ids)),
		Failed:    make([]BulkFailure, 0),
	}
	for _, id := range ids {
		if err := op(id); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

// ApproveTopics approves every topic with a uniform vote threshold
func (s *BulkService) ApproveTopics(ids []uint, voteThreshold int, adminID uint) (*BulkResult, error) {
	if voteThreshold < 1 {
		return nil, &ValidationError{Field: "vote_threshold", Reason: "must be at least 1"}
	}

	result, err := s.apply(ids, func(id uint) error {
		_, err := s.topics.Approve(id, voteThreshold, adminID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logBulk(adminID, "BULK_APPROVE_TOPICS", "TOPIC", result, models.JSONB{
		"vote_threshold": voteThreshold,
	})
	return result, nil
}

// RejectTopics rejects every topic with a uniform non-empty reason
func (s *BulkService) RejectTopics(ids []uint, reason string, adminID uint) (*BulkResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "rejection_reason", Reason: "must not be empty"}
	}

	result, err := s.apply(ids, func(id uint) error {
		_, err := s.topics.Reject(id, reason, adminID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logBulk(adminID, "BULK_REJECT_TOPICS", "TOPIC", result, models.JSONB{
		"reason": reason,
	})
	return result, nil
}

// DeleteTopics hard-deletes every topic along with its votes
func (s *BulkService) DeleteTopics(ids []uint, adminID uint) (*BulkResult, error) {
	result, err := s.apply(ids, func(id uint) error {
		return s.topics.DeleteTopic(id)
	})
	if err != nil {
		return nil, err
	}

	s.logBulk(adminID, "BULK_DELETE_TOPICS", "TOPIC", result, nil)
	return result, nil
}

// SuspendUsers suspends every account in the list
func (s *BulkService) SuspendUsers(ids []uint, adminID uint) (*BulkResult, error) {
	result, err := s.apply(ids, func(id uint) error {
		return s.users.SetStatus(id, models.UserStatusSuspended)
	})
	if err != nil {
		return nil, err
	}

	s.logBulk(adminID, "BULK_SUSPEND_USERS", "USER", result, nil)
	return result, nil
}

// ActivateUsers re-activates every account in the list
func (s *BulkService) ActivateUsers(ids []uint, adminID uint) (*BulkResult, error) {
	result, err := s.apply(ids, func(id uint) error {
		return s.users.SetStatus(id, models.UserStatusActive)
	})
	if err != nil {
		return nil, err
	}

	s.logBulk(adminID, "BULK_ACTIVATE_USERS", "USER", result, nil)
	return result, nil
}

// DeleteUsers hard-deletes every account in the list
func (s *BulkService) DeleteUsers(ids []uint, adminID uint) (*BulkResult, error) {
	result, err := s.apply(ids, func(id uint) error {
		return s.users.DeleteUser(id)
	})
	if err != nil {
		return nil, err
	}

	s.logBulk(adminID, "BULK_DELETE_USERS", "USER", result, nil)
	return result, nil
}

func (s *BulkService) logBulk(adminID uint, action, resourceType string, result *BulkResult, details models.JSONB) {
	if s.admin == nil {
		return
	}
	if details == nil {
		details = models.JSONB{}
	}
	details["succeeded"] = len(result.Succeeded)
	details["failed"] = len(result.Failed)
	if err := s.admin.LogAdminAction(adminID, action, resourceType, nil, details); err != nil {
		log.Printf("Warning: failed to log %s: %v", action, err)
	}
}
