package repository

import (
	"context"
	"time"

	"fit-challenge/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateChallenge creates a new challenge
func (r *Repository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// GetChallengeByID retrieves a challenge by ID
func (r *Repository) GetChallengeByID(ctx context.Context, challengeID uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("id = ?", challengeID).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListChallenges retrieves challenges, optionally filtered by status,
// newest first
func (r *Repository) ListChallenges(ctx context.Context, status models.ChallengeStatus, limit, offset int) ([]*models.Challenge, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var challenges []*models.Challenge
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// RegisterEntry adds a paid entry to the challenge counters: prize pool
// grows by the net fee and the participant count by one. The max
// participants cap is enforced inside the same UPDATE; zero rows affected
// means the challenge was already full.
func (r *Repository) RegisterEntry(ctx context.Context, challengeID uuid.UUID, netFee int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ? AND (max_participants IS NULL OR participants_count < max_participants)", challengeID).
		Updates(map[string]interface{}{
			"prize_pool":         gorm.Expr("prize_pool + ?", netFee),
			"participants_count": gorm.Expr("participants_count + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeductPrizePool draws the pool down by the settled payout total. The
// pool can never go negative: the deduction is conditional on
// sufficiency.
func (r *Repository) DeductPrizePool(ctx context.Context, challengeID uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ? AND prize_pool >= ?", challengeID, amount).
		Update("prize_pool", gorm.Expr("prize_pool - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateParticipant inserts the join record. The unique index on
// (challenge_id, user_id) rejects a second insert for the same pair.
func (r *Repository) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// GetParticipant retrieves the join record for a (challenge, user) pair
func (r *Repository) GetParticipant(ctx context.Context, challengeID, userID uuid.UUID) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// UpdateChallengeStatus moves a challenge from one status to another.
// Returns false when the challenge was not in the expected status.
func (r *Repository) UpdateChallengeStatus(ctx context.Context, challengeID uuid.UUID, from, to models.ChallengeStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ? AND status = ?", challengeID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkSettled stamps settled_at exactly once. A concurrent retry loses
// the conditional update and observes zero rows affected.
func (r *Repository) MarkSettled(ctx context.Context, challengeID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ? AND settled_at IS NULL", challengeID).
		Update("settled_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindChallengesToActivate returns scheduled challenges whose start time
// has passed
func (r *Repository) FindChallengesToActivate(ctx context.Context, now time.Time, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_time <= ?", models.ChallengeStatusScheduled, now).
		Limit(limit).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// FindChallengesToClose returns active challenges whose end time has passed
func (r *Repository) FindChallengesToClose(ctx context.Context, now time.Time, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", models.ChallengeStatusActive, now).
		Limit(limit).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// FindUnsettledCompleted returns completed challenges that have not been
// settled yet
func (r *Repository) FindUnsettledCompleted(ctx context.Context, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ? AND settled_at IS NULL", models.ChallengeStatusCompleted).
		Limit(limit).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}
