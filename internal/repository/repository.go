package repository

import (
	"context"

	"fit-challenge/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Atomic runs fn inside a single database transaction. The Repository
// handed to fn is bound to that transaction; any error rolls everything
// back.
func (r *Repository) Atomic(ctx context.Context, fn func(r *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWallet creates a wallet for a user
func (r *Repository) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

// GetWalletByUserID retrieves a user's wallet
func (r *Repository) GetWalletByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// DebitWallet decrements the balance only if sufficient funds remain.
// The check and the write are a single conditional UPDATE so two
// concurrent debits can never both pass against a stale balance.
// Returns false when the balance was insufficient.
func (r *Repository) DebitWallet(ctx context.Context, userID uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreditWallet increments the balance unconditionally
func (r *Repository) CreditWallet(ctx context.Context, userID uuid.UUID, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateTransaction appends an immutable ledger entry
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetUserTransactions retrieves a user's transactions, newest first
func (r *Repository) GetUserTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// SumCompletedTransactions returns the signed sum of a user's completed
// ledger entries: credits (prize, refund, deposit) minus debits
// (entry_fee, withdrawal).
func (r *Repository) SumCompletedTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(CASE WHEN type IN ('prize', 'refund', 'deposit') THEN amount ELSE -amount END), 0)
		 FROM transactions WHERE user_id = ? AND status = 'completed'`,
		userID,
	).Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
