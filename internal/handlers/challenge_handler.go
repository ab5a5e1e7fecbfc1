package handlers

import (
	"net/http"

	"fit-challenge/internal/auth"
	"fit-challenge/internal/models"
	"fit-challenge/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChallengeHandler struct {
	challengeService  *services.ChallengeService
	entryService      *services.EntryService
	settlementService *services.SettlementService
}

func NewChallengeHandler(
	challengeService *services.ChallengeService,
	entryService *services.EntryService,
	settlementService *services.SettlementService,
) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService:  challengeService,
		entryService:      entryService,
		settlementService: settlementService,
	}
}

// CreateChallenge creates a new challenge
// POST /api/challenges
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challengeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

// ListChallenges lists challenges, optionally filtered by status
// GET /api/challenges
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	limit, offset := paginate(c)
	status := models.ChallengeStatus(c.Query("status"))

	challenges, err := h.challengeService.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list challenges"})
		return
	}

	c.JSON(http.StatusOK, challenges)
}

// GetChallenge retrieves a challenge by ID
// GET /api/challenges/:id
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	challenge, err := h.challengeService.Get(c.Request.Context(), challengeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// JoinChallenge enters the current user into a challenge
// POST /api/challenges/:id/join
func (h *ChallengeHandler) JoinChallenge(c *gin.Context) {
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

	participant, err := h.entryService.Join(c.Request.Context(), challengeID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participant)
}

// GetLeaderboard returns the ranking projection for a challenge
// GET /api/challenges/:id/leaderboard
func (h *ChallengeHandler) GetLeaderboard(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	entries, err := h.settlementService.GetLeaderboard(c.Request.Context(), challengeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// SettleChallenge runs settlement for a completed challenge
// POST /api/challenges/:id/settle
func (h *ChallengeHandler) SettleChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	payouts, err := h.settlementService.Settle(c.Request.Context(), challengeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// GetChallengePayouts lists the payout set for a challenge
// GET /api/challenges/:id/payouts
func (h *ChallengeHandler) GetChallengePayouts(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	payouts, err := h.settlementService.GetChallengePayouts(c.Request.Context(), challengeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get payouts"})
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// ProcessPayout posts the prize transaction for one payout
// POST /api/payouts/:id/process
func (h *ChallengeHandler) ProcessPayout(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}

	payout, err := h.settlementService.ProcessPayout(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}
