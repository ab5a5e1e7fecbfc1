package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is one user's attempt at a challenge. The video itself lives
// with the media storage collaborator; only the opaque URL is kept here.
// A user may hold at most one non-rejected submission per challenge.
type Submission struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"challenge_id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	VideoURL        string           `gorm:"size:500;not null" json:"video_url"`
	DeclaredScore   int              `gorm:"not null;default:0" json:"declared_score"`
	Notes           string           `gorm:"type:text" json:"notes"`
	FormScore       *int             `json:"form_score,omitempty"`
	RepCount        *int             `json:"rep_count,omitempty"`
	FinalScore      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"final_score,omitempty"`
	Status          SubmissionStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	RejectionReason *string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	ValidationNotes string           `gorm:"type:text" json:"validation_notes"`
	SubmittedAt     time.Time        `gorm:"not null;index" json:"submitted_at"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmitRequest represents a video submission for a challenge
type SubmitRequest struct {
	VideoURL      string `json:"video_url" binding:"required,max=500"`
	DeclaredScore int    `json:"declared_score" binding:"min=0"`
	Notes         string `json:"notes"`
}

// ValidateRequest represents a reviewer's decision on a submission
type ValidateRequest struct {
	FormScore int    `json:"form_score" binding:"min=0,max=100"`
	RepCount  int    `json:"rep_count" binding:"min=0"`
	Notes     string `json:"notes"`
	Approve   bool   `json:"approve"`
}
