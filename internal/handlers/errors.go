package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spark/internal/services"
)

// respondError maps service errors onto HTTP status codes. Anything not in
// the service taxonomy is reported as a storage failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTopicNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrResearchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateVote),
		errors.Is(err, services.ErrVoteNotFound),
		errors.Is(err, services.ErrVotingClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUserRestricted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		var transitionErr *services.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if services.IsClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
