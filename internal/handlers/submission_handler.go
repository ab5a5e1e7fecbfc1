package handlers

import (
	"net/http"

	"fit-challenge/internal/auth"
	"fit-challenge/internal/models"
	"fit-challenge/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit records a video submission for a challenge
// POST /api/challenges/:id/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), challengeID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListPending returns the review queue
// GET /api/submissions?status=pending
func (h *SubmissionHandler) ListPending(c *gin.Context) {
	status := models.SubmissionStatus(c.DefaultQuery("status", string(models.SubmissionStatusPending)))
	limit, offset := paginate(c)

	submissions, err := h.submissionService.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// Validate applies a review decision to a pending submission
// POST /api/submissions/:id/validate
func (h *SubmissionHandler) Validate(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}

	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.submissionService.Validate(c.Request.Context(), submissionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}
