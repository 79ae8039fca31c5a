package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spark/internal/services"
)

// ResearchHandler serves published research and admin report management
type ResearchHandler struct {
	researchService *services.ResearchService
}

// NewResearchHandler creates a new ResearchHandler
func NewResearchHandler(researchService *services.ResearchService) *ResearchHandler {
	return &ResearchHandler{researchService: researchService}
}

// GetPublished returns published research reports
// GET /api/research
func (h *ResearchHandler) GetPublished(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	research, total, err := h.researchService.ListPublished(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch research"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    research,
		"total":   total,
		"count":   len(research),
	})
}

// GetPublishedByID returns a single published report
// GET /api/research/:id
func (h *ResearchHandler) GetPublishedByID(c *gin.Context) {
	researchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid research id"})
		return
	}

	research, err := h.researchService.GetByID(researchID, true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    research,
	})
}

// GetAll returns every report for the admin dashboard
// GET /api/admin/research
func (h *ResearchHandler) GetAll(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	research, total, err := h.researchService.ListAll(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch research"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    research,
		"total":   total,
		"count":   len(research),
	})
}

// AddOpportunity attaches a market opportunity to a report
// POST /api/admin/research/:id/opportunities
func (h *ResearchHandler) AddOpportunity(c *gin.Context) {
	researchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid research id"})
		return
	}

	var input services.OpportunityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opportunity, err := h.researchService.AddOpportunity(researchID, &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    opportunity,
	})
}

// Publish moves a draft report to PUBLISHED
// POST /api/admin/research/:id/publish
func (h *ResearchHandler) Publish(c *gin.Context) {
	researchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid research id"})
		return
	}

	research, err := h.researchService.Publish(researchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Research published",
		"data":    research,
	})
}

// Archive hides a published report
// POST /api/admin/research/:id/archive
func (h *ResearchHandler) Archive(c *gin.Context) {
	researchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid research id"})
		return
	}

	research, err := h.researchService.Archive(researchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Research archived",
		"data":    research,
	})
}
