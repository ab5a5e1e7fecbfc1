package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeEntryFee   TransactionType = "entry_fee"
	TransactionTypePrize      TransactionType = "prize"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// IsCredit reports whether the kind increases the account balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypePrize, TransactionTypeRefund, TransactionTypeDeposit:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Wallet holds the cached balance for a user. The balance is only ever
// changed together with an appended Transaction row, inside the same
// database transaction. Amounts are cents.
type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Transaction is an immutable ledger entry. Amount is always positive;
// the sign is implied by Type. Completed rows are never updated;
// corrections happen via a new offsetting transaction.
type Transaction struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	ChallengeID *uuid.UUID        `gorm:"type:uuid;index" json:"challenge_id,omitempty"`
	Type        TransactionType   `gorm:"size:50;not null;index" json:"type"`
	Amount      int64             `gorm:"not null" json:"amount"`
	Status      TransactionStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	Description string            `gorm:"type:text" json:"description"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// DepositRequest represents a confirmed deposit reported by the payment provider
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WithdrawRequest represents a withdrawal request
type WithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WalletResponse is the wallet view returned to the client
type WalletResponse struct {
	Balance      int64          `json:"balance"`
	Transactions []*Transaction `json:"transactions"`
}
