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

// WalletService is the single source of truth for money movement. Every
// balance change appends a Transaction and updates the cached wallet
// balance inside the same database transaction, so the cache can never
// disagree with the ledger.
type WalletService struct {
	repo *repository.Repository
}

func NewWalletService(repo *repository.Repository) *WalletService {
	return &WalletService{repo: repo}
}

// GetBalance returns the user's current balance in cents
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	wallet, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrWalletNotFound
		}
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet.Balance, nil
}

// GetTransactions returns the user's ledger entries, newest first
func (s *WalletService) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	return s.repo.GetUserTransactions(ctx, userID, limit, offset)
}

// Record appends an immutable ledger entry. Amount must be strictly
// positive; the sign is implied by the kind. Record does not check fund
// sufficiency; that is the caller's job, inside the same atomic unit.
func (s *WalletService) Record(
	ctx context.Context,
	userID uuid.UUID,
	challengeID *uuid.UUID,
	kind models.TransactionType,
	amount int64,
	status models.TransactionStatus,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		Type:        kind,
		Amount:      amount,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	return tx, nil
}

// ApplyDebit checks funds and debits the balance as one atomic unit.
// It does not record a transaction; callers post their own ledger
// entries alongside it. Returns ErrInsufficientFunds when the balance
// cannot cover the amount.
func (s *WalletService) ApplyDebit(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	ok, err := s.repo.DebitWallet(ctx, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}
	if !ok {
		return ErrInsufficientFunds
	}
	return nil
}

// Deposit credits the balance and records a completed deposit entry.
// Called by the payment collaborator after real money has moved in.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var tx *models.Transaction
	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		if err := r.CreditWallet(ctx, userID, amount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return fmt.Errorf("failed to credit wallet: %w", err)
		}

		tx = &models.Transaction{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      models.TransactionTypeDeposit,
			Amount:    amount,
			Status:    models.TransactionStatusCompleted,
			CreatedAt: time.Now(),
		}
		return r.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Withdraw debits the balance and records a completed withdrawal entry.
// The sufficiency check and the debit are one conditional UPDATE.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var tx *models.Transaction
	err := s.repo.Atomic(ctx, func(r *repository.Repository) error {
		ok, err := r.DebitWallet(ctx, userID, amount)
		if err != nil {
			return fmt.Errorf("failed to debit wallet: %w", err)
		}
		if !ok {
			return ErrInsufficientFunds
		}

		tx = &models.Transaction{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      models.TransactionTypeWithdrawal,
			Amount:    amount,
			Status:    models.TransactionStatusCompleted,
			CreatedAt: time.Now(),
		}
		return r.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Audit verifies the conservation invariant for one account: the cached
// balance must equal the signed sum of completed transactions. A mismatch
// is an integrity failure and is surfaced, never silently corrected.
func (s *WalletService) Audit(ctx context.Context, userID uuid.UUID) error {
	wallet, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	sum, err := s.repo.SumCompletedTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to sum transactions: %w", err)
	}

	if wallet.Balance != sum {
		return fmt.Errorf("ledger mismatch for user %s: balance=%d, transaction sum=%d", userID, wallet.Balance, sum)
	}
	return nil
}
