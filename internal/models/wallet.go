package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы транзакций кошелька
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeEscrow     = "escrow"
	TransactionTypeRelease    = "release"
	TransactionTypeRefund     = "refund"
)

// Статусы транзакций
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
)

// UserBalance представляет баланс пользователя. available — свободные
// средства, frozen — средства, удерживаемые в escrow по активным баунти.
type UserBalance struct {
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Available decimal.Decimal `db:"available" json:"available"`
	Frozen    decimal.Decimal `db:"frozen" json:"frozen"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// WalletTransaction представляет запись в ledger кошелька.
// Для escrow-транзакций: ровно одна pending запись типа escrow на баунти,
// которая разрешается ровно одним терминальным исходом (release или refund).
// user_id обнуляется при удалении аккаунта, запись сохраняется.
type WalletTransaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	BountyID    *uuid.UUID      `db:"bounty_id" json:"bounty_id,omitempty"`
	Type        string          `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
