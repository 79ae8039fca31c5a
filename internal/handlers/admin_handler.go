package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"spark/internal/auth"
	"spark/internal/models"
	"spark/internal/services"
)

// AdminHandler handles the admin dashboard and moderation endpoints
type AdminHandler struct {
	adminService *services.AdminService
	topicService *services.TopicService
	userService  *services.UserService
	bulkService  *services.BulkService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService, topicService *services.TopicService,
	userService *services.UserService, bulkService *services.BulkService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		topicService: topicService,
		userService:  userService,
		bulkService:  bulkService,
	}
}

// GetDashboard returns admin dashboard data
// GET /api/admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	data, err := h.adminService.GetDashboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// GetPlatformStats returns platform statistics for a date
// GET /api/admin/stats
func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	stats, err := h.adminService.GetPlatformStats(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// GetAdminLogs returns the admin audit trail
// GET /api/admin/logs
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.adminService.GetAdminLogs(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

// GetTopics returns topics across all statuses for review
// GET /api/admin/topics
func (h *AdminHandler) GetTopics(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := services.TopicFilter{
		Status:   models.TopicStatus(c.Query("status")),
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

// ApproveTopic approves a pending topic with a vote threshold
// POST /api/admin/topics/:id/approve
func (h *AdminHandler) ApproveTopic(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	topicID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	var req struct {
		VoteThreshold int `json:"vote_threshold" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic, err := h.topicService.Approve(topicID, req.VoteThreshold, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(adminID, "APPROVE_TOPIC", topicID, models.JSONB{"vote_threshold": req.VoteThreshold})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Topic approved",
		"data":    topic,
	})
}

// RejectTopic rejects a pending topic with a reason
// POST /api/admin/topics/:id/reject
func (h *AdminHandler) RejectTopic(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	topicID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	var req struct {
		RejectionReason string `json:"rejection_reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic, err := h.topicService.Reject(topicID, req.RejectionReason, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(adminID, "REJECT_TOPIC", topicID, models.JSONB{"reason": req.RejectionReason})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Topic rejected",
		"data":    topic,
	})
}

// ConvertTopic converts a qualified topic into a draft research record
// POST /api/admin/topics/:id/convert
func (h *AdminHandler) ConvertTopic(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	topicID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	research, err := h.topicService.Convert(topicID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logAction(adminID, "CONVERT_TOPIC", topicID, nil)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Topic converted to research",
		"data":    research,
	})
}

// BulkApproveTopics approves a batch of topics with a uniform threshold
// POST /api/admin/topics/bulk-approve
func (h *AdminHandler) BulkApproveTopics(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	var req struct {
		TopicIDs      []uint `json:"topic_ids" binding:"required"`
		VoteThreshold int    `json:"vote_threshold" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bulkService.ApproveTopics(req.TopicIDs, req.VoteThreshold, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// BulkRejectTopics rejects a batch of topics with a uniform reason
// POST /api/admin/topics/bulk-reject
func (h *AdminHandler) BulkRejectTopics(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	var req struct {
		TopicIDs        []uint `json:"topic_ids" binding:"required"`
		RejectionReason string `json:"rejection_reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bulkService.RejectTopics(req.TopicIDs, req.RejectionReason, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// BulkDeleteTopics hard-deletes a batch of topics and their votes
// POST /api/admin/topics/bulk-delete
func (h *AdminHandler) BulkDeleteTopics(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	var req struct {
		TopicIDs []uint `json:"topic_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bulkService.DeleteTopics(req.TopicIDs, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetUsers returns all users with optional search
// GET /api/admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := c.Query("search")

	users, total, err := h.adminService.GetAllUsers(limit, offset, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// UpdateUserStatus changes a single account's status
// PUT /api/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.SetStatus(userID, req.Status); err != nil {
		respondError(c, err)
		return
	}

	h.logAction(adminID, "UPDATE_USER_STATUS", userID, models.JSONB{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User status updated",
	})
}

// BulkSuspendUsers suspends a batch of accounts
// POST /api/admin/users/bulk-suspend
func (h *AdminHandler) BulkSuspendUsers(c *gin.Context) {
	h.bulkUserOp(c, h.bulkService.SuspendUsers)
}

// BulkActivateUsers re-activates a batch of accounts
// POST /api/admin/users/bulk-activate
func (h *AdminHandler) BulkActivateUsers(c *gin.Context) {
	h.bulkUserOp(c, h.bulkService.ActivateUsers)
}

// BulkDeleteUsers hard-deletes a batch of accounts
// POST /api/admin/users/bulk-delete
func (h *AdminHandler) BulkDeleteUsers(c *gin.Context) {
	h.bulkUserOp(c, h.bulkService.DeleteUsers)
}

func (h *AdminHandler) bulkUserOp(c *gin.Context, op func(ids []uint, adminID uint) (*services.BulkResult, error)) {
	adminID, _ := auth.GetUserID(c)

	var req struct {
		UserIDs []uint `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := op(req.UserIDs, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

func (h *AdminHandler) logAction(adminID uint, action string, resourceID uint, details models.JSONB) {
	resourceType := "TOPIC"
	if action == "UPDATE_USER_STATUS" {
		resourceType = "USER"
	}
	_ = h.adminService.LogAdminAction(adminID, action, resourceType, &resourceID, details)
}
