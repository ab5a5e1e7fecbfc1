package services

import "errors"

// Expected business outcomes. Conflict errors (AlreadyJoined,
// AlreadySettled, AlreadyReviewed, AlreadyProcessed, DuplicateSubmission)
// are normal results of races and retries, not alarms: the caller should
// treat them as "already in the desired state".
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")

	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeEnded    = errors.New("challenge has ended")
	ErrChallengeFull     = errors.New("challenge is full")
	ErrAlreadyJoined     = errors.New("already participating in this challenge")

	ErrNotAParticipant     = errors.New("must join the challenge before submitting")
	ErrDuplicateSubmission = errors.New("a non-rejected submission already exists")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrAlreadyReviewed     = errors.New("submission has already been reviewed")

	ErrChallengeNotEnded        = errors.New("challenge is still active")
	ErrAlreadySettled           = errors.New("challenge has already been settled")
	ErrPayoutNotFound           = errors.New("payout not found")
	ErrPayoutAlreadyProcessed   = errors.New("payout has already been processed")
	ErrPayoutExceedsPool        = errors.New("payout sum exceeds prize pool")
	ErrInvalidPrizeDistribution = errors.New("unknown prize distribution policy")
)
