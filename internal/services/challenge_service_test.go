package services

import (
	"context"
	"testing"
	"time"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
)

func TestCreateChallengeDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewChallengeService(repo)
	creator := createTestUser(t, db, 0)
	ctx := context.Background()

	challenge, err := service.Create(ctx, creator.ID, &models.CreateChallengeRequest{
		Title:     "30-day plank",
		EntryFee:  5000,
		StartTime: time.Now().Add(-time.Minute),
		EndTime:   time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if challenge.Status != models.ChallengeStatusActive {
		t.Errorf("expected started challenge to be active, got %s", challenge.Status)
	}
	if challenge.PrizePool != 0 {
		t.Errorf("expected empty initial pool, got %d", challenge.PrizePool)
	}
	if challenge.PrizeDistributionP != models.DistributionTop3Split {
		t.Errorf("expected default top_3_split, got %s", challenge.PrizeDistributionP)
	}
	if challenge.VideoDurationLimit != 60 {
		t.Errorf("expected default video limit 60, got %d", challenge.VideoDurationLimit)
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewChallengeService(repo)
	creator := createTestUser(t, db, 0)
	ctx := context.Background()

	_, err := service.Create(ctx, creator.ID, &models.CreateChallengeRequest{
		Title:     "negative fee",
		EntryFee:  -1,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	})
	if err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount for negative fee, got %v", err)
	}

	_, err = service.Create(ctx, creator.ID, &models.CreateChallengeRequest{
		Title:     "backwards window",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now(),
	})
	if err == nil {
		t.Errorf("expected error for end before start")
	}

	_, err = service.Create(ctx, creator.ID, &models.CreateChallengeRequest{
		Title:             "bad split",
		StartTime:         time.Now(),
		EndTime:           time.Now().Add(time.Hour),
		PrizeDistribution: "top_7_split",
	})
	if err != ErrInvalidPrizeDistribution {
		t.Errorf("expected ErrInvalidPrizeDistribution, got %v", err)
	}
}

func TestCreateChallengeScheduled(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewChallengeService(repo)
	creator := createTestUser(t, db, 0)
	ctx := context.Background()

	challenge, err := service.Create(ctx, creator.ID, &models.CreateChallengeRequest{
		Title:     "next week",
		StartTime: time.Now().Add(7 * 24 * time.Hour),
		EndTime:   time.Now().Add(14 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if challenge.Status != models.ChallengeStatusScheduled {
		t.Errorf("expected future challenge to be scheduled, got %s", challenge.Status)
	}
}

// The closer job drives the lifecycle through these queries: scheduled
// challenges past their start time activate, active ones past their end
// time complete, completed unsettled ones settle.
func TestChallengeLifecycleQueries(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	seed := func(status models.ChallengeStatus, start, end time.Time) uuid.UUID {
		challenge := createTestChallenge(t, db, 0, models.DistributionTop3Split, nil)
		db.Model(&models.Challenge{}).Where("id = ?", challenge.ID).
			Updates(map[string]interface{}{"status": status, "start_time": start, "end_time": end})
		return challenge.ID
	}

	dueToStart := seed(models.ChallengeStatusScheduled, now.Add(-time.Minute), now.Add(time.Hour))
	seed(models.ChallengeStatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour))
	dueToClose := seed(models.ChallengeStatusActive, now.Add(-2*time.Hour), now.Add(-time.Minute))
	seed(models.ChallengeStatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	toActivate, err := repo.FindChallengesToActivate(ctx, now, 10)
	if err != nil {
		t.Fatalf("FindChallengesToActivate failed: %v", err)
	}
	if len(toActivate) != 1 || toActivate[0].ID != dueToStart {
		t.Errorf("expected only the due scheduled challenge, got %d results", len(toActivate))
	}

	toClose, err := repo.FindChallengesToClose(ctx, now, 10)
	if err != nil {
		t.Fatalf("FindChallengesToClose failed: %v", err)
	}
	if len(toClose) != 1 || toClose[0].ID != dueToClose {
		t.Errorf("expected only the expired active challenge, got %d results", len(toClose))
	}

	// The status flip is conditional, so a repeated tick is a no-op.
	ok, err := repo.UpdateChallengeStatus(ctx, dueToClose, models.ChallengeStatusActive, models.ChallengeStatusCompleted)
	if err != nil || !ok {
		t.Fatalf("expected status flip to apply, ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateChallengeStatus(ctx, dueToClose, models.ChallengeStatusActive, models.ChallengeStatusCompleted)
	if err != nil {
		t.Fatalf("repeat flip errored: %v", err)
	}
	if ok {
		t.Errorf("expected repeat status flip to affect no rows")
	}

	unsettled, err := repo.FindUnsettledCompleted(ctx, 10)
	if err != nil {
		t.Fatalf("FindUnsettledCompleted failed: %v", err)
	}
	if len(unsettled) != 1 || unsettled[0].ID != dueToClose {
		t.Errorf("expected the completed challenge pending settlement, got %d results", len(unsettled))
	}
}
