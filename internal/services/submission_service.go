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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Final score weighting. Fixed policy constants; scores are only
// comparable within a challenge if every submission is weighted the same.
var (
	formScoreWeight = decimal.NewFromFloat(0.6)
	repCountWeight  = decimal.NewFromFloat(0.4)
)

// SubmissionService accepts one attempt per participant per challenge and
// turns reviewer decisions into comparable scores.
type SubmissionService struct {
	settlement *SettlementService
	repo       *repository.Repository
}

func NewSubmissionService(repo *repository.Repository, settlement *SettlementService) *SubmissionService {
	return &SubmissionService{
		repo:       repo,
		settlement: settlement,
	}
}

// Submit records a pending submission. The video has already been handed
// to media storage; only the opaque URL arrives here.
func (s *SubmissionService) Submit(
	ctx context.Context,
	challengeID, userID uuid.UUID,
	req *models.SubmitRequest,
) (*models.Submission, error) {
	var submission *models.Submission

	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		if _, err := r.GetChallengeByID(ctx, challengeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to get challenge: %w", err)
		}

		if _, err := r.GetParticipant(ctx, challengeID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAParticipant
			}
			return fmt.Errorf("failed to check participant: %w", err)
		}

		count, err := r.CountActiveSubmissions(ctx, challengeID, userID)
		if err != nil {
			return fmt.Errorf("failed to check existing submissions: %w", err)
		}
		if count > 0 {
			return ErrDuplicateSubmission
		}

		submission = &models.Submission{
			ID:            uuid.New(),
			ChallengeID:   challengeID,
			UserID:        userID,
			VideoURL:      req.VideoURL,
			DeclaredScore: req.DeclaredScore,
			Notes:         req.Notes,
			Status:        models.SubmissionStatusPending,
			SubmittedAt:   time.Now(),
		}
		if err := r.CreateSubmission(ctx, submission); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSubmission
			}
			return fmt.Errorf("failed to create submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return submission, nil
}

// Validate applies a reviewer's decision to a pending submission and
// computes the final score. Reviewed submissions cannot be re-reviewed.
func (s *SubmissionService) Validate(
	ctx context.Context,
	submissionID uuid.UUID,
	req *models.ValidateRequest,
) (*models.Submission, error) {
	if req.FormScore < 0 || req.FormScore > 100 {
		return nil, fmt.Errorf("%w: form score must be between 0 and 100", ErrInvalidAmount)
	}
	if req.RepCount < 0 {
		return nil, fmt.Errorf("%w: rep count must be non-negative", ErrInvalidAmount)
	}

	var submission *models.Submission
	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		var err error
		submission, err = r.GetSubmissionByID(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}

		if submission.Status != models.SubmissionStatusPending {
			return ErrAlreadyReviewed
		}

		finalScore := FinalScore(req.FormScore, req.RepCount)
		now := time.Now()

		submission.FormScore = &req.FormScore
		submission.RepCount = &req.RepCount
		submission.FinalScore = &finalScore
		submission.ValidationNotes = req.Notes
		submission.ReviewedAt = &now
		if req.Approve {
			submission.Status = models.SubmissionStatusApproved
		} else {
			submission.Status = models.SubmissionStatusRejected
			if req.Notes != "" {
				submission.RejectionReason = &req.Notes
			}
		}

		return r.UpdateSubmission(ctx, submission)
	})
	if err != nil {
		return nil, err
	}

	// Ranks depend on all approved submissions, so approval triggers a
	// full leaderboard recompute rather than inline math.
	if submission.Status == models.SubmissionStatusApproved {
		if err := s.settlement.RecomputeLeaderboard(ctx, submission.ChallengeID); err != nil {
			log.Printf("Warning: leaderboard recompute failed for challenge %s: %v", submission.ChallengeID, err)
		}
	}

	return submission, nil
}

// FinalScore computes the weighted score: formScore*0.6 + repCount*0.4
func FinalScore(formScore, repCount int) decimal.Decimal {
	return decimal.NewFromInt(int64(formScore)).Mul(formScoreWeight).
		Add(decimal.NewFromInt(int64(repCount)).Mul(repCountWeight))
}

// ListByStatus returns the review queue for a given status
func (s *SubmissionService) ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]*models.Submission, error) {
	return s.repo.ListSubmissionsByStatus(ctx, status, limit, offset)
}
