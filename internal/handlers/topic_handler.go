package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spark/internal/auth"
	"spark/internal/models"
	"spark/internal/services"
)

// TopicHandler handles topic browsing, proposals and voting
type TopicHandler struct {
	topicService *services.TopicService
	voteService  *services.VoteService
}

// NewTopicHandler creates a new TopicHandler
func NewTopicHandler(topicService *services.TopicService, voteService *services.VoteService) *TopicHandler {
	return &TopicHandler{
		topicService: topicService,
		voteService:  voteService,
	}
}

// GetTopics returns topics with optional filtering
// GET /api/topics
func (h *TopicHandler) GetTopics(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := services.TopicFilter{
		Status:   models.TopicStatus(c.DefaultQuery("status", string(models.TopicStatusApproved))),
		Industry: c.Query("industry"),
		Country:  c.Query("country"),
		Limit:    limit,
		Offset:   offset,
	}

	topics, total, err := h.topicService.ListTopics(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    topics,
		"total":   total,
		"count":   len(topics),
	})
}

// GetTopicByID returns a single topic
// GET /api/topics/:id
func (h *TopicHandler) GetTopicByID(c *gin.Context) {
	topicID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	topic, err := h.topicService.GetTopicByID(topicID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    topic,
	})
}

// ProposeTopic creates a new topic in PENDING
// POST /api/topics
func (h *TopicHandler) ProposeTopic(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.ProposeTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic, err := h.topicService.Propose(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    topic,
	})
}

// GetMyTopics returns the authenticated user's proposals
// GET /api/topics/mine
func (h *TopicHandler) GetMyTopics(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	topics, err := h.topicService.ListTopicsByProposer(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    topics,
		"count":   len(topics),
	})
}

// CastVote records the caller's vote on a topic
// POST /api/topics/:id/vote
func (h *TopicHandler) CastVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	topicID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	result, err := h.voteService.CastVote(c.Request.Context(), topicID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// RetractVote removes the caller's vote from a topic
// DELETE /api/topics/:id/vote
func (h *TopicHandler) RetractVote(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	topicID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	result, err := h.voteService.RetractVote(c.Request.Context(), topicID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// parseID parses a numeric path parameter
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
