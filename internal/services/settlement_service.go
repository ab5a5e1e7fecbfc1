package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SettlementFeePercent is the platform cut taken from the prize pool at
// settlement, on top of the EntryFeePercent already netted out of each
// entry. Both fees are deliberate, independently documented constants.
const SettlementFeePercent = 20

const leaderboardCacheTTL = 5 * time.Minute

// SettlementService converts a closed challenge's approved submissions
// into prize payouts, exactly once per challenge.
type SettlementService struct {
	repo  *repository.Repository
	cache *redis.Client
}

// NewSettlementService creates a settlement service. cache may be nil,
// in which case leaderboard reads go straight to the database.
func NewSettlementService(repo *repository.Repository, cache *redis.Client) *SettlementService {
	return &SettlementService{repo: repo, cache: cache}
}

// RecomputeLeaderboard refreshes the ranking projection for a challenge
// from its approved submissions. Ties on final score rank by earliest
// submission.
func (s *SettlementService) RecomputeLeaderboard(ctx context.Context, challengeID uuid.UUID) error {
	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		submissions, err := r.GetApprovedSubmissions(ctx, challengeID)
		if err != nil {
			return fmt.Errorf("failed to get approved submissions: %w", err)
		}

		submissions = rankSubmissions(submissions)

		entries := make([]*models.LeaderboardEntry, 0, len(submissions))
		now := time.Now()
		for i, sub := range submissions {
			entries = append(entries, &models.LeaderboardEntry{
				ID:          uuid.New(),
				ChallengeID: challengeID,
				UserID:      sub.UserID,
				Score:       *sub.FinalScore,
				Rank:        i + 1,
				UpdatedAt:   now,
			})
		}

		return r.ReplaceLeaderboard(ctx, challengeID, entries)
	})
	if err != nil {
		return err
	}

	s.invalidateLeaderboardCache(ctx, challengeID)
	return nil
}

// GetLeaderboard returns the ranking projection, read through the cache
// when one is configured.
func (s *SettlementService) GetLeaderboard(ctx context.Context, challengeID uuid.UUID) ([]*models.LeaderboardEntry, error) {
	key := leaderboardCacheKey(challengeID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var entries []*models.LeaderboardEntry
			if jsonErr := json.Unmarshal(cached, &entries); jsonErr == nil {
				return entries, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("Warning: leaderboard cache read failed: %v", err)
		}
	}

	entries, err := s.repo.GetLeaderboard(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, data, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("Warning: leaderboard cache write failed: %v", err)
			}
		}
	}

	return entries, nil
}

// Settle ranks the approved submissions of a completed challenge and
// creates one pending payout per winning rank. Safe to retry: the
// settled_at stamp and the (challenge_id, rank) unique index guarantee
// at most one payout set per challenge.
func (s *SettlementService) Settle(ctx context.Context, challengeID uuid.UUID) ([]*models.Payout, error) {
	var payouts []*models.Payout

	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		challenge, err := r.GetChallengeByID(ctx, challengeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to get challenge: %w", err)
		}

		if challenge.Status != models.ChallengeStatusCompleted {
			return ErrChallengeNotEnded
		}
		if challenge.SettledAt != nil {
			return ErrAlreadySettled
		}

		ok, err := r.MarkSettled(ctx, challengeID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to mark settled: %w", err)
		}
		if !ok {
			return ErrAlreadySettled
		}

		submissions, err := r.GetApprovedSubmissions(ctx, challengeID)
		if err != nil {
			return fmt.Errorf("failed to get approved submissions: %w", err)
		}
		submissions = rankSubmissions(submissions)

		if len(submissions) == 0 {
			// No approved submissions: the pool is forfeited to the
			// platform. The challenge stays settled with no payouts.
			log.Printf("Challenge %s settled with no approved submissions; pool of %d forfeited", challengeID, challenge.PrizePool)
			return nil
		}

		shares := challenge.PrizeDistributionP.Shares()
		if shares == nil {
			return ErrInvalidPrizeDistribution
		}

		platformFee := challenge.PrizePool * SettlementFeePercent / 100
		remainingPool := challenge.PrizePool - platformFee

		winners := len(submissions)
		if winners > len(shares) {
			winners = len(shares)
		}

		now := time.Now()
		var total int64
		payouts = make([]*models.Payout, 0, winners)
		for i := 0; i < winners; i++ {
			amount := remainingPool * shares[i] / 100
			// Zero-amount ranks get no payout row; a prize of zero
			// cannot be posted to the ledger.
			if amount == 0 {
				continue
			}
			total += amount
			payouts = append(payouts, &models.Payout{
				ID:          uuid.New(),
				ChallengeID: challengeID,
				UserID:      submissions[i].UserID,
				Amount:      amount,
				Rank:        i + 1,
				Status:      models.PayoutStatusPending,
				CreatedAt:   now,
			})
		}

		if total > challenge.PrizePool {
			return ErrPayoutExceedsPool
		}

		if len(payouts) == 0 {
			log.Printf("Challenge %s settled with an empty pool; no payouts created", challengeID)
			return nil
		}

		if err := r.CreatePayouts(ctx, payouts); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySettled
			}
			return fmt.Errorf("failed to create payouts: %w", err)
		}

		// The pool is drawn down by exactly the computed payouts; the
		// settlement fee remainder stays with the platform.
		ok, err = r.DeductPrizePool(ctx, challengeID, total)
		if err != nil {
			return fmt.Errorf("failed to deduct prize pool: %w", err)
		}
		if !ok {
			return ErrPayoutExceedsPool
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Challenge %s settled with %d payouts", challengeID, len(payouts))
	return payouts, nil
}

// ProcessPayout posts the prize transaction for one payout and marks it
// completed. Retrying a processed payout returns ErrPayoutAlreadyProcessed
// without moving any money.
func (s *SettlementService) ProcessPayout(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var payout *models.Payout

	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		var err error
		payout, err = r.GetPayoutByID(ctx, payoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayoutNotFound
			}
			return fmt.Errorf("failed to get payout: %w", err)
		}

		now := time.Now()
		ok, err := r.CompletePayout(ctx, payoutID, now)
		if err != nil {
			return fmt.Errorf("failed to complete payout: %w", err)
		}
		if !ok {
			return ErrPayoutAlreadyProcessed
		}

		if err := r.CreditWallet(ctx, payout.UserID, payout.Amount); err != nil {
			return fmt.Errorf("failed to credit winner: %w", err)
		}

		tx := &models.Transaction{
			ID:          uuid.New(),
			UserID:      payout.UserID,
			ChallengeID: &payout.ChallengeID,
			Type:        models.TransactionTypePrize,
			Amount:      payout.Amount,
			Status:      models.TransactionStatusCompleted,
			Description: fmt.Sprintf("prize for rank %d", payout.Rank),
			CreatedAt:   now,
		}
		if err := r.CreateTransaction(ctx, tx); err != nil {
			return fmt.Errorf("failed to record prize transaction: %w", err)
		}

		payout.Status = models.PayoutStatusCompleted
		payout.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Payout %s processed: %d cents to user %s", payoutID, payout.Amount, payout.UserID)
	return payout, nil
}

// GetChallengePayouts lists the payout set for a challenge
func (s *SettlementService) GetChallengePayouts(ctx context.Context, challengeID uuid.UUID) ([]*models.Payout, error) {
	return s.repo.GetChallengePayouts(ctx, challengeID)
}

// rankSubmissions drops submissions without a final score and orders
// the rest best first: highest final score, ties broken by earliest
// submission time.
func rankSubmissions(submissions []*models.Submission) []*models.Submission {
	ranked := make([]*models.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.FinalScore != nil {
			ranked = append(ranked, sub)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		cmp := ranked[i].FinalScore.Cmp(*ranked[j].FinalScore)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
	})
	return ranked
}

func (s *SettlementService) invalidateLeaderboardCache(ctx context.Context, challengeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardCacheKey(challengeID)).Err(); err != nil {
		log.Printf("Warning: leaderboard cache invalidation failed: %v", err)
	}
}

func leaderboardCacheKey(challengeID uuid.UUID) string {
	return fmt.Sprintf("leaderboard:%s", challengeID)
}
