package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService covers the authoring surface: creating and reading
// challenges. The ledger core only ever reads these fields.
type ChallengeService struct {
	repo *repository.Repository
}

func NewChallengeService(repo *repository.Repository) *ChallengeService {
	return &ChallengeService{repo: repo}
}

// Create creates a challenge. The prize pool always starts at zero and
// is funded exclusively by entries.
func (s *ChallengeService) Create(ctx context.Context, creatorID uuid.UUID, req *models.CreateChallengeRequest) (*models.Challenge, error) {
	if req.EntryFee < 0 {
		return nil, ErrInvalidAmount
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	distribution := req.PrizeDistribution
	if distribution == "" {
		distribution = models.DistributionTop3Split
	}
	if !distribution.Valid() {
		return nil, ErrInvalidPrizeDistribution
	}

	status := models.ChallengeStatusScheduled
	now := time.Now()
	if !req.StartTime.After(now) {
		status = models.ChallengeStatusActive
	}

	videoLimit := req.VideoDurationLimit
	if videoLimit <= 0 {
		videoLimit = 60
	}

	challenge := &models.Challenge{
		ID:                 uuid.New(),
		CreatorID:          creatorID,
		Title:              req.Title,
		Description:        req.Description,
		EntryFee:           req.EntryFee,
		PrizePool:          0,
		Status:             status,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		MaxParticipants:    req.MaxParticipants,
		PrizeDistributionP: distribution,
		ScoringMethod:      req.ScoringMethod,
		VideoDurationLimit: videoLimit,
		CreatedAt:          now,
	}

	if err := s.repo.CreateChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return challenge, nil
}

// Get retrieves a challenge by ID
func (s *ChallengeService) Get(ctx context.Context, challengeID uuid.UUID) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return challenge, nil
}

// List retrieves challenges, optionally filtered by status
func (s *ChallengeService) List(ctx context.Context, status models.ChallengeStatus, limit, offset int) ([]*models.Challenge, error) {
	return s.repo.ListChallenges(ctx, status, limit, offset)
}
