package repository

import (
	"context"
	"time"

	"fit-challenge/internal/models"

	"github.com/google/uuid"
)

// CreateSubmission creates a new submission
func (r *Repository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetSubmissionByID retrieves a submission by ID
func (r *Repository) GetSubmissionByID(ctx context.Context, submissionID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Where("id = ?", submissionID).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpdateSubmission saves a reviewed submission
func (r *Repository) UpdateSubmission(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// CountActiveSubmissions counts non-rejected submissions for a
// (challenge, user) pair. Anything above zero blocks a new submission.
func (r *Repository) CountActiveSubmissions(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("challenge_id = ? AND user_id = ? AND status != ?", challengeID, userID, models.SubmissionStatusRejected).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetApprovedSubmissions retrieves all approved submissions for a challenge
func (r *Repository) GetApprovedSubmissions(ctx context.Context, challengeID uuid.UUID) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND status = ?", challengeID, models.SubmissionStatusApproved).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListSubmissionsByStatus retrieves submissions in a given status,
// oldest first (review queue order)
func (r *Repository) ListSubmissionsByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// ReplaceLeaderboard swaps the ranking projection for a challenge
func (r *Repository) ReplaceLeaderboard(ctx context.Context, challengeID uuid.UUID, entries []*models.LeaderboardEntry) error {
	if err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Delete(&models.LeaderboardEntry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// GetLeaderboard retrieves the ranking projection for a challenge
func (r *Repository) GetLeaderboard(ctx context.Context, challengeID uuid.UUID) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("rank ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CreatePayouts inserts the payout set computed at settlement
func (r *Repository) CreatePayouts(ctx context.Context, payouts []*models.Payout) error {
	return r.db.WithContext(ctx).Create(payouts).Error
}

// GetPayoutByID retrieves a payout by ID
func (r *Repository) GetPayoutByID(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).Where("id = ?", payoutID).First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// GetChallengePayouts retrieves all payouts for a challenge, by rank
func (r *Repository) GetChallengePayouts(ctx context.Context, challengeID uuid.UUID) ([]*models.Payout, error) {
	var payouts []*models.Payout
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("rank ASC").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

// CompletePayout flips a pending payout to completed exactly once.
// Returns false when the payout was already processed.
func (r *Repository) CompletePayout(ctx context.Context, payoutID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", payoutID, models.PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":       models.PayoutStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
