package handlers

import (
	"net/http"
	"strconv"

	"fit-challenge/internal/auth"
	"fit-challenge/internal/models"
	"fit-challenge/internal/services"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletService *services.WalletService
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetWallet returns the balance and recent transactions
// GET /api/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	limit, offset := paginate(c)
	transactions, err := h.walletService.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, models.WalletResponse{
		Balance:      balance,
		Transactions: transactions,
	})
}

// Deposit credits the wallet after the payment provider confirms a
// deposit
// POST /api/wallet/deposit
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.walletService.Deposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// Withdraw debits the wallet for an outgoing payment
// POST /api/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.walletService.Withdraw(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// paginate parses limit/offset query parameters with sane bounds
func paginate(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
