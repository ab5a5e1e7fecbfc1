package handlers

import (
	"errors"
	"net/http"

	"fit-challenge/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses: not-found 404,
// conflict/idempotency guards 409, insufficient funds 402, business
// rejections and validation 400.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest

	switch {
	case errors.Is(err, services.ErrChallengeNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrPayoutNotFound),
		errors.Is(err, services.ErrWalletNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrAlreadySettled),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrPayoutAlreadyProcessed),
		errors.Is(err, services.ErrDuplicateSubmission):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrPayoutExceedsPool):
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
