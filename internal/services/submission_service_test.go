package services

import (
	"context"
	"testing"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newSubmissionService(db *repository.Repository) (*SubmissionService, *SettlementService) {
	settlement := NewSettlementService(db, nil)
	return NewSubmissionService(db, settlement), settlement
}

func TestSubmitRequiresParticipation(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service, _ := newSubmissionService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 0, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 0)

	_, err := service.Submit(ctx, challenge.ID, user.ID, &models.SubmitRequest{
		VideoURL: "https://cdn.example.com/v/1.mp4",
	})
	if err != ErrNotAParticipant {
		t.Fatalf("expected ErrNotAParticipant, got %v", err)
	}
}

func TestDuplicateSubmissionAndResubmitAfterRejection(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service, _ := newSubmissionService(repo)
	entries := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 0, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 0)
	if _, err := entries.Join(ctx, challenge.ID, user.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	first, err := service.Submit(ctx, challenge.ID, user.ID, &models.SubmitRequest{
		VideoURL: "https://cdn.example.com/v/1.mp4",
	})
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if first.Status != models.SubmissionStatusPending {
		t.Errorf("expected pending status, got %s", first.Status)
	}

	// A second attempt while the first is pending is rejected.
	_, err = service.Submit(ctx, challenge.ID, user.ID, &models.SubmitRequest{
		VideoURL: "https://cdn.example.com/v/2.mp4",
	})
	if err != ErrDuplicateSubmission {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	// After a rejection the user may try again.
	if _, err := service.Validate(ctx, first.ID, &models.ValidateRequest{
		FormScore: 10,
		RepCount:  5,
		Notes:     "form breaks down after rep 3",
		Approve:   false,
	}); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if _, err := service.Submit(ctx, challenge.ID, user.ID, &models.SubmitRequest{
		VideoURL: "https://cdn.example.com/v/3.mp4",
	}); err != nil {
		t.Fatalf("resubmission after rejection failed: %v", err)
	}
}

func TestValidateScoreDeterminism(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service, _ := newSubmissionService(repo)
	entries := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 0, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 0)
	if _, err := entries.Join(ctx, challenge.ID, user.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	submission, err := service.Submit(ctx, challenge.ID, user.ID, &models.SubmitRequest{
		VideoURL:      "https://cdn.example.com/v/1.mp4",
		DeclaredScore: 20,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	reviewed, err := service.Validate(ctx, submission.ID, &models.ValidateRequest{
		FormScore: 80,
		RepCount:  20,
		Approve:   true,
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// 80*0.6 + 20*0.4 = 56, always.
	want := decimal.NewFromInt(56)
	if reviewed.FinalScore == nil || !reviewed.FinalScore.Equal(want) {
		t.Errorf("expected final score 56, got %v", reviewed.FinalScore)
	}
	if reviewed.Status != models.SubmissionStatusApproved {
		t.Errorf("expected approved status, got %s", reviewed.Status)
	}
	if reviewed.ReviewedAt == nil {
		t.Errorf("expected reviewed_at to be set")
	}

	// Approval refreshes the leaderboard projection.
	var lb []*models.LeaderboardEntry
	if lb, err = repo.GetLeaderboard(ctx, challenge.ID); err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(lb) != 1 || lb[0].Rank != 1 || lb[0].UserID != user.ID {
		t.Errorf("expected a single rank-1 leaderboard entry for the user, got %+v", lb)
	}
}

func TestFinalScoreWeighting(t *testing.T) {
	cases := []struct {
		form, reps int
		want       string
	}{
		{80, 20, "56"},
		{100, 0, "60"},
		{0, 100, "40"},
		{90, 90, "90"},
		{0, 0, "0"},
	}
	for _, c := range cases {
		want, _ := decimal.NewFromString(c.want)
		if got := FinalScore(c.form, c.reps); !got.Equal(want) {
			t.Errorf("FinalScore(%d, %d) = %s, want %s", c.form, c.reps, got, want)
		}
	}
}

func TestValidateAlreadyReviewed(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service, _ := newSubmissionService(repo)
	entries := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 0, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 0)
	if _, err := entries.Join(ctx, challenge.ID, user.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	submission, err := service.Submit(ctx, challenge.ID, user.ID, &models.SubmitRequest{
		VideoURL: "https://cdn.example.com/v/1.mp4",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := service.Validate(ctx, submission.ID, &models.ValidateRequest{
		FormScore: 70,
		RepCount:  30,
		Approve:   true,
	}); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	_, err = service.Validate(ctx, submission.ID, &models.ValidateRequest{
		FormScore: 99,
		RepCount:  99,
		Approve:   true,
	})
	if err != ErrAlreadyReviewed {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestValidateSubmissionNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service, _ := newSubmissionService(repo)
	ctx := context.Background()

	_, err := service.Validate(ctx, uuid.New(), &models.ValidateRequest{
		FormScore: 50,
		RepCount:  50,
		Approve:   true,
	})
	if err != ErrSubmissionNotFound {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}
