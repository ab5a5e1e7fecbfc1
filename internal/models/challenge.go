package models

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeStatus string

const (
	ChallengeStatusDraft     ChallengeStatus = "draft"
	ChallengeStatusScheduled ChallengeStatus = "scheduled"
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusCancelled ChallengeStatus = "cancelled"
)

type PrizeDistribution string

const (
	DistributionWinnerTakesAll PrizeDistribution = "winner_takes_all"
	DistributionTop3Split      PrizeDistribution = "top_3_split"
	DistributionTop5Split      PrizeDistribution = "top_5_split"
)

// Shares returns the percentage split per rank for the policy.
// Percentages are integers summing to 100.
func (p PrizeDistribution) Shares() []int64 {
	switch p {
	case DistributionWinnerTakesAll:
		return []int64{100}
	case DistributionTop3Split:
		return []int64{50, 30, 20}
	case DistributionTop5Split:
		return []int64{40, 25, 15, 10, 10}
	}
	return nil
}

// Valid reports whether the policy is one of the known distribution tables.
func (p PrizeDistribution) Valid() bool {
	return p.Shares() != nil
}

// Challenge represents a competition instance. EntryFee and PrizePool are
// cents. PrizePool only grows while the challenge is active (each paid
// entry adds its net fee) and is only drawn down by settlement, once.
type Challenge struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title              string            `gorm:"size:255;not null" json:"title"`
	Description        string            `gorm:"type:text" json:"description"`
	EntryFee           int64             `gorm:"not null" json:"entry_fee"`
	PrizePool          int64             `gorm:"not null;default:0" json:"prize_pool"`
	Status             ChallengeStatus   `gorm:"size:50;not null;default:draft;index" json:"status"`
	StartTime          time.Time         `gorm:"not null" json:"start_time"`
	EndTime            time.Time         `gorm:"not null;index" json:"end_time"`
	MaxParticipants    *int              `json:"max_participants,omitempty"`
	ParticipantsCount  int               `gorm:"not null;default:0" json:"participants_count"`
	PrizeDistributionP PrizeDistribution `gorm:"column:prize_distribution;size:50;not null;default:top_3_split" json:"prize_distribution"`
	ScoringMethod      string            `gorm:"size:100" json:"scoring_method"`
	VideoDurationLimit int               `gorm:"default:60" json:"video_duration_limit"`
	SettledAt          *time.Time        `json:"settled_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// Joinable reports whether new participants may still enter.
func (c *Challenge) Joinable(now time.Time) bool {
	if c.Status != ChallengeStatusActive && c.Status != ChallengeStatusScheduled {
		return false
	}
	return now.Before(c.EndTime)
}

// Participant is the join record between a user and a challenge.
// The (challenge_id, user_id) pair is unique at the store level so two
// concurrent joins cannot both succeed.
type Participant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_challenge_user" json:"challenge_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_challenge_user" json:"user_id"`
	PaymentStatus string    `gorm:"size:50;not null;default:completed" json:"payment_status"`
	JoinedAt      time.Time `gorm:"not null" json:"joined_at"`
}

func (Participant) TableName() string {
	return "challenge_participants"
}

// CreateChallengeRequest represents a challenge-authoring request
type CreateChallengeRequest struct {
	Title              string            `json:"title" binding:"required,max=255"`
	Description        string            `json:"description"`
	EntryFee           int64             `json:"entry_fee" binding:"min=0"`
	StartTime          time.Time         `json:"start_time" binding:"required"`
	EndTime            time.Time         `json:"end_time" binding:"required"`
	MaxParticipants    *int              `json:"max_participants"`
	PrizeDistribution  PrizeDistribution `json:"prize_distribution"`
	ScoringMethod      string            `json:"scoring_method"`
	VideoDurationLimit int               `json:"video_duration_limit"`
}
