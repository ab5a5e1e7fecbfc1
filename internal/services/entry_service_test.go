package services

import (
	"context"
	"testing"
	"time"

	"fit-challenge/internal/models"
	"fit-challenge/internal/repository"

	"github.com/google/uuid"
)

func TestJoinChallenge(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	wallets := NewWalletService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 10000, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 20000)

	participant, err := service.Join(ctx, challenge.ID, user.ID)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if participant.ChallengeID != challenge.ID || participant.UserID != user.ID {
		t.Errorf("participant references wrong challenge or user")
	}

	balance, _ := wallets.GetBalance(ctx, user.ID)
	if balance != 10000 {
		t.Errorf("expected balance 10000 after entry fee, got %d", balance)
	}

	var updated models.Challenge
	db.First(&updated, "id = ?", challenge.ID)
	if updated.PrizePool != 9000 {
		t.Errorf("expected prize pool 9000 (net of 10%% platform fee), got %d", updated.PrizePool)
	}
	if updated.ParticipantsCount != 1 {
		t.Errorf("expected participants count 1, got %d", updated.ParticipantsCount)
	}

	var txs []*models.Transaction
	db.Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeEntryFee).
		Order("amount DESC").Find(&txs)
	if len(txs) != 2 {
		t.Fatalf("expected 2 entry_fee transactions (net + platform fee), got %d", len(txs))
	}
	if txs[0].Amount != 9000 || txs[1].Amount != 1000 {
		t.Errorf("expected entry transactions of 9000 and 1000, got %d and %d", txs[0].Amount, txs[1].Amount)
	}

	if err := wallets.Audit(ctx, user.ID); err != nil {
		t.Errorf("conservation violated after join: %v", err)
	}
}

func TestJoinInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 10000, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 5000)

	_, err := service.Join(ctx, challenge.ID, user.ID)
	if err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing may be left behind: no participant, no transaction, no
	// pool change, balance untouched.
	var participantCount, txCount int64
	db.Model(&models.Participant{}).Where("challenge_id = ?", challenge.ID).Count(&participantCount)
	db.Model(&models.Transaction{}).Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeEntryFee).Count(&txCount)
	if participantCount != 0 {
		t.Errorf("expected no participant, got %d", participantCount)
	}
	if txCount != 0 {
		t.Errorf("expected no entry transaction, got %d", txCount)
	}

	var updated models.Challenge
	db.First(&updated, "id = ?", challenge.ID)
	if updated.PrizePool != 0 || updated.ParticipantsCount != 0 {
		t.Errorf("expected untouched challenge, got pool=%d count=%d", updated.PrizePool, updated.ParticipantsCount)
	}

	var wallet models.Wallet
	db.First(&wallet, "user_id = ?", user.ID)
	if wallet.Balance != 5000 {
		t.Errorf("expected balance unchanged at 5000, got %d", wallet.Balance)
	}
}

func TestJoinTwice(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 10000, models.DistributionTop3Split, nil)
	user := createTestUser(t, db, 30000)

	if _, err := service.Join(ctx, challenge.ID, user.ID); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}

	_, err := service.Join(ctx, challenge.ID, user.ID)
	if err != ErrAlreadyJoined {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}

	// The account was debited exactly once.
	var wallet models.Wallet
	db.First(&wallet, "user_id = ?", user.ID)
	if wallet.Balance != 20000 {
		t.Errorf("expected balance 20000 after a single debit, got %d", wallet.Balance)
	}
}

func TestJoinChallengeFull(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	ctx := context.Background()

	max := 1
	challenge := createTestChallenge(t, db, 1000, models.DistributionWinnerTakesAll, &max)
	first := createTestUser(t, db, 5000)
	second := createTestUser(t, db, 5000)

	if _, err := service.Join(ctx, challenge.ID, first.ID); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}

	_, err := service.Join(ctx, challenge.ID, second.ID)
	if err != ErrChallengeFull {
		t.Fatalf("expected ErrChallengeFull, got %v", err)
	}

	var wallet models.Wallet
	db.First(&wallet, "user_id = ?", second.ID)
	if wallet.Balance != 5000 {
		t.Errorf("expected rejected joiner's balance unchanged, got %d", wallet.Balance)
	}
}

func TestJoinEndedChallenge(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 1000, models.DistributionTop3Split, nil)
	db.Model(&models.Challenge{}).Where("id = ?", challenge.ID).
		Update("end_time", time.Now().Add(-time.Minute))

	user := createTestUser(t, db, 5000)

	_, err := service.Join(ctx, challenge.ID, user.ID)
	if err != ErrChallengeEnded {
		t.Fatalf("expected ErrChallengeEnded, got %v", err)
	}
}

func TestJoinChallengeNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	ctx := context.Background()

	user := createTestUser(t, db, 5000)

	_, err := service.Join(ctx, uuid.New(), user.ID)
	if err != ErrChallengeNotFound {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestJoinFreeChallenge(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewEntryService(repo)
	ctx := context.Background()

	challenge := createTestChallenge(t, db, 0, models.DistributionWinnerTakesAll, nil)
	user := createTestUser(t, db, 0)

	if _, err := service.Join(ctx, challenge.ID, user.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	var txCount int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&txCount)
	if txCount != 0 {
		t.Errorf("expected no transactions for a free challenge, got %d", txCount)
	}

	var updated models.Challenge
	db.First(&updated, "id = ?", challenge.ID)
	if updated.ParticipantsCount != 1 {
		t.Errorf("expected participants count 1, got %d", updated.ParticipantsCount)
	}
}

func TestRoundPercent(t *testing.T) {
	cases := []struct {
		amount, percent, want int64
	}{
		{10000, 10, 1000},
		{9999, 10, 1000},
		{101, 10, 10},
		{105, 10, 11},
		{0, 10, 0},
	}
	for _, c := range cases {
		if got := roundPercent(c.amount, c.percent); got != c.want {
			t.Errorf("roundPercent(%d, %d) = %d, want %d", c.amount, c.percent, got, c.want)
		}
	}
}
