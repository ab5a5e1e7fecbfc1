package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
)

// Payout is a computed prize owed to a ranked winner. It is distinct from
// the Transaction that moves the money; processing the payout posts that
// transaction and flips the status to completed. The (challenge_id, rank)
// pair is unique so settlement can create at most one payout set.
type Payout struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_payout_challenge_rank" json:"challenge_id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Rank        int          `gorm:"not null;uniqueIndex:idx_payout_challenge_rank" json:"rank"`
	Status      PayoutStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (Payout) TableName() string {
	return "payouts"
}

// LeaderboardEntry is the persisted ranking projection for a challenge,
// refreshed whenever a submission is approved.
type LeaderboardEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leaderboard_challenge_user" json:"challenge_id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_leaderboard_challenge_user" json:"user_id"`
	Score       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"score"`
	Rank        int             `gorm:"not null" json:"rank"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "challenge_leaderboards"
}
