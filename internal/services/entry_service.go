package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryFeePercent is the platform cut taken from every entry fee before
// the remainder is added to the prize pool. Independent from
// SettlementFeePercent, which is applied to the pool at settlement.
const EntryFeePercent = 10

// EntryService orchestrates the join-challenge protocol: eligibility,
// payment and registration as one atomic unit. From the outside only
// "not joined" or "joined" are ever observable: a failure after the
// debit rolls the debit back too.
type EntryService struct {
	repo *repository.Repository
}

func NewEntryService(repo *repository.Repository) *EntryService {
	return &EntryService{repo: repo}
}

// Join enters a user into a challenge, deducting the entry fee and
// funding the prize pool with the net amount.
func (s *EntryService) Join(ctx context.Context, challengeID, userID uuid.UUID) (*models.Participant, error) {
	var participant *models.Participant

	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		challenge, err := r.GetChallengeByID(ctx, challengeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to get challenge: %w", err)
		}

		now := time.Now()
		if !challenge.Joinable(now) {
			return ErrChallengeEnded
		}
		if challenge.MaxParticipants != nil && challenge.ParticipantsCount >= *challenge.MaxParticipants {
			return ErrChallengeFull
		}

		if _, err := r.GetParticipant(ctx, challengeID, userID); err == nil {
			return ErrAlreadyJoined
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check participant: %w", err)
		}

		platformFee := roundPercent(challenge.EntryFee, EntryFeePercent)
		netFee := challenge.EntryFee - platformFee

		if challenge.EntryFee > 0 {
			ok, err := r.DebitWallet(ctx, userID, challenge.EntryFee)
			if err != nil {
				return fmt.Errorf("failed to debit entry fee: %w", err)
			}
			if !ok {
				return ErrInsufficientFunds
			}
		}

		// The cap is re-checked inside the counter update so a concurrent
		// join cannot overfill the challenge.
		ok, err := r.RegisterEntry(ctx, challengeID, netFee)
		if err != nil {
			return fmt.Errorf("failed to register entry: %w", err)
		}
		if !ok {
			return ErrChallengeFull
		}

		participant = &models.Participant{
			ID:            uuid.New(),
			ChallengeID:   challengeID,
			UserID:        userID,
			PaymentStatus: "completed",
			JoinedAt:      now,
		}
		if err := r.CreateParticipant(ctx, participant); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("failed to create participant: %w", err)
		}

		if challenge.EntryFee > 0 {
			// Two ledger entries per paid join: the net contribution to
			// the pool and the platform's cut. Together they equal the
			// wallet debit, keeping the ledger sum equal to the balance.
			entries := []*models.Transaction{
				{
					ID:          uuid.New(),
					UserID:      userID,
					ChallengeID: &challengeID,
					Type:        models.TransactionTypeEntryFee,
					Amount:      netFee,
					Status:      models.TransactionStatusCompleted,
					Description: "challenge entry fee",
					CreatedAt:   now,
				},
				{
					ID:          uuid.New(),
					UserID:      userID,
					ChallengeID: &challengeID,
					Type:        models.TransactionTypeEntryFee,
					Amount:      platformFee,
					Status:      models.TransactionStatusCompleted,
					Description: "platform fee",
					CreatedAt:   now,
				},
			}
			for _, tx := range entries {
				if tx.Amount == 0 {
					continue
				}
				if err := r.CreateTransaction(ctx, tx); err != nil {
					return fmt.Errorf("failed to record entry transaction: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User %s joined challenge %s", userID, challengeID)
	return participant, nil
}

// roundPercent computes round(amount * percent / 100) with half-up
// rounding, matching Math.round on the fee calculation.
func roundPercent(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}
