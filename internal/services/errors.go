package services

import (
	"errors"
	"fmt"

	"spark/internal/models"
)

var (
	// ErrTopicNotFound is returned when a referenced topic does not exist
	ErrTopicNotFound = errors.New("topic not found")

	// ErrUserNotFound is returned when a referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrResearchNotFound is returned when a referenced research record does not exist
	ErrResearchNotFound = errors.New("research not found")

	// ErrDuplicateVote is returned when a user already has an active vote on a topic
	ErrDuplicateVote = errors.New("vote already exists for this topic")

	// ErrVoteNotFound is returned when retracting a vote that does not exist
	ErrVoteNotFound = errors.New("no vote exists for this topic")

	// ErrVotingClosed is returned when casting a vote on a topic that is not open for voting
	ErrVotingClosed = errors.New("topic is not open for voting")

	// ErrUserRestricted is returned when a suspended or banned user attempts a mutation
	ErrUserRestricted = errors.New("account is suspended or banned")

	// ErrInvalidCredentials is returned on a failed login attempt
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering with an email already in use
	ErrEmailTaken = errors.New("email is already registered")
)

// ValidationError reports malformed input on a single field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a lifecycle operation attempted from a
// status that does not permit it
type InvalidTransitionError struct {
	Op   string
	From models.TopicStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s topic in status %s", e.Op, e.From)
}

// IsClientError reports whether an error should surface as a 4xx rather
// than a storage failure
func IsClientError(err error) bool {
	var ve *ValidationError
	var te *InvalidTransitionError
	if errors.As(err, &ve) || errors.As(err, &te) {
		return true
	}
	return errors.Is(err, ErrTopicNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrResearchNotFound) ||
		errors.Is(err, ErrDuplicateVote) ||
		errors.Is(err, ErrVoteNotFound) ||
		errors.Is(err, ErrVotingClosed) ||
		errors.Is(err, ErrUserRestricted) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrEmailTaken)
}
