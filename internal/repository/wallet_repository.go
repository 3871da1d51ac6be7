package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bountyhub/bountyhub-backend/internal/models"
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrEscrowNotFound       = errors.New("escrow not found")
	ErrEscrowAlreadySettled = errors.New("escrow already settled")
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetBalance возвращает баланс пользователя, создаёт если не существует.
func (r *WalletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	var balance models.UserBalance
	query := `
		INSERT INTO user_balances (user_id, available, frozen)
		VALUES ($1, 0, 0)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, available, frozen, updated_at
	`
	if err := r.db.GetContext(ctx, &balance, query, userID); err != nil {
		return nil, fmt.Errorf("wallet repository: get balance %w", err)
	}
	return &balance, nil
}

// Deposit пополняет баланс пользователя.
func (r *WalletRepository) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Обновляем баланс
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_balances (user_id, available, frozen)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE SET available = user_balances.available + $2, updated_at = NOW()
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: deposit update balance %w", err)
	}

	var transaction models.WalletTransaction
	err = tx.GetContext(ctx, &transaction, `
		INSERT INTO wallet_transactions (id, user_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, 'deposit', $3, 'completed', $4, NOW())
		RETURNING *
	`, uuid.New(), userID, amount, description)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: deposit create transaction %w", err)
	}

	return &transaction, tx.Commit()
}

// HoldTx замораживает средства постера под баунти и создаёт pending
// escrow-запись. Ровно одна pending escrow-запись на баунти.
func (r *WalletRepository) HoldTx(ctx context.Context, tx *sqlx.Tx, posterID, bountyID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error) {
	// Проверяем баланс постера под блокировкой
	var balance models.UserBalance
	err := tx.GetContext(ctx, &balance,
		`SELECT user_id, available, frozen, updated_at FROM user_balances WHERE user_id = $1 FOR UPDATE`, posterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}
	if balance.Available.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	// Замораживаем средства
	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances SET available = available - $2, frozen = frozen + $2, updated_at = NOW()
		WHERE user_id = $1
	`, posterID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: hold update balance %w", err)
	}

	var transaction models.WalletTransaction
	err = tx.GetContext(ctx, &transaction, `
		INSERT INTO wallet_transactions (id, user_id, bounty_id, type, amount, status, description)
		VALUES ($1, $2, $3, 'escrow', $4, 'pending', 'Заморозка вознаграждения по баунти')
		RETURNING *
	`, uuid.New(), posterID, bountyID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: hold create transaction %w", err)
	}

	return &transaction, nil
}

// getPendingEscrowTx находит pending escrow-запись баунти под блокировкой.
func (r *WalletRepository) getPendingEscrowTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.WalletTransaction, error) {
	var escrow models.WalletTransaction
	err := tx.GetContext(ctx, &escrow, `
		SELECT * FROM wallet_transactions
		WHERE bounty_id = $1 AND type = 'escrow' AND status = 'pending'
		FOR UPDATE
	`, bountyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return &escrow, nil
}

// getSettledTx возвращает терминальную транзакцию указанного типа по баунти,
// если escrow уже был разрешён ранее.
func (r *WalletRepository) getSettledTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID, txType string) (*models.WalletTransaction, error) {
	var settled models.WalletTransaction
	err := tx.GetContext(ctx, &settled, `
		SELECT * FROM wallet_transactions
		WHERE bounty_id = $1 AND type = $2 AND status = 'completed'
	`, bountyID, txType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return &settled, nil
}

// ReleaseTx выплачивает удержанные средства охотнику. Повторный вызов
// после успешной выплаты возвращает существующую транзакцию без изменений;
// вызов после возврата средств — ErrEscrowAlreadySettled.
func (r *WalletRepository) ReleaseTx(ctx context.Context, tx *sqlx.Tx, bountyID, hunterID uuid.UUID) (*models.WalletTransaction, error) {
	escrow, err := r.getPendingEscrowTx(ctx, tx, bountyID)
	if err != nil {
		if errors.Is(err, ErrEscrowNotFound) {
			if settled, sErr := r.getSettledTx(ctx, tx, bountyID, models.TransactionTypeRelease); sErr == nil {
				return settled, nil
			}
			if _, sErr := r.getSettledTx(ctx, tx, bountyID, models.TransactionTypeRefund); sErr == nil {
				return nil, ErrEscrowAlreadySettled
			}
		}
		return nil, err
	}

	// Снимаем заморозку у постера. Баланс мог быть удалён каскадом,
	// отсутствие строки не ошибка.
	if escrow.UserID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances SET frozen = frozen - $2, updated_at = NOW()
			WHERE user_id = $1
		`, escrow.UserID, escrow.Amount)
		if err != nil {
			return nil, fmt.Errorf("wallet repository: release unfreeze %w", err)
		}
	}

	// Начисляем охотнику
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_balances (user_id, available, frozen)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE SET available = user_balances.available + $2, updated_at = NOW()
	`, hunterID, escrow.Amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: release credit hunter %w", err)
	}

	// Закрываем escrow-запись
	_, err = tx.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = 'completed', completed_at = NOW() WHERE id = $1`, escrow.ID)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: release close escrow %w", err)
	}

	var release models.WalletTransaction
	err = tx.GetContext(ctx, &release, `
		INSERT INTO wallet_transactions (id, user_id, bounty_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, $3, 'release', $4, 'completed', 'Выплата вознаграждения за баунти', NOW())
		RETURNING *
	`, uuid.New(), hunterID, bountyID, escrow.Amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: release create transaction %w", err)
	}

	return &release, nil
}

// RefundTx возвращает удержанные средства постеру. Повторный вызов после
// успешного возврата возвращает существующую транзакцию без изменений;
// вызов после выплаты охотнику — ErrEscrowAlreadySettled.
func (r *WalletRepository) RefundTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.WalletTransaction, error) {
	escrow, err := r.getPendingEscrowTx(ctx, tx, bountyID)
	if err != nil {
		if errors.Is(err, ErrEscrowNotFound) {
			if settled, sErr := r.getSettledTx(ctx, tx, bountyID, models.TransactionTypeRefund); sErr == nil {
				return settled, nil
			}
			if _, sErr := r.getSettledTx(ctx, tx, bountyID, models.TransactionTypeRelease); sErr == nil {
				return nil, ErrEscrowAlreadySettled
			}
		}
		return nil, err
	}

	// Возвращаем средства постеру, если его баланс ещё существует.
	// При удалении аккаунта строка баланса удалена, средства сгорают
	// в пользу платформы, но ledger сохраняет след.
	if escrow.UserID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances SET available = available + $2, frozen = frozen - $2, updated_at = NOW()
			WHERE user_id = $1
		`, escrow.UserID, escrow.Amount)
		if err != nil {
			return nil, fmt.Errorf("wallet repository: refund update balance %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallet_transactions SET status = 'completed', completed_at = NOW() WHERE id = $1`, escrow.ID)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: refund close escrow %w", err)
	}

	var refund models.WalletTransaction
	err = tx.GetContext(ctx, &refund, `
		INSERT INTO wallet_transactions (id, user_id, bounty_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, $3, 'refund', $4, 'completed', 'Возврат вознаграждения за отменённое баунти', NOW())
		RETURNING *
	`, uuid.New(), escrow.UserID, bountyID, escrow.Amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: refund create transaction %w", err)
	}

	return &refund, nil
}

// GetEscrowByBountyID возвращает escrow-запись баунти в любом статусе.
func (r *WalletRepository) GetEscrowByBountyID(ctx context.Context, bountyID uuid.UUID) (*models.WalletTransaction, error) {
	var escrow models.WalletTransaction
	err := r.db.GetContext(ctx, &escrow, `
		SELECT * FROM wallet_transactions
		WHERE bounty_id = $1 AND type = 'escrow'
		ORDER BY created_at DESC LIMIT 1
	`, bountyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, err
	}
	return &escrow, nil
}

// ListTransactions возвращает историю транзакций пользователя.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	var transactions []models.WalletTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT * FROM wallet_transactions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return transactions, err
}

// WithdrawTx списывает средства с доступного баланса под заявку на вывод.
func (r *WalletRepository) WithdrawTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error) {
	var balance models.UserBalance
	err := tx.GetContext(ctx, &balance,
		`SELECT user_id, available, frozen, updated_at FROM user_balances WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}
	if balance.Available.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances SET available = available - $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw update balance %w", err)
	}

	var transaction models.WalletTransaction
	err = tx.GetContext(ctx, &transaction, `
		INSERT INTO wallet_transactions (id, user_id, type, amount, status, description)
		VALUES ($1, $2, 'withdrawal', $3, 'pending', 'Вывод средств')
		RETURNING *
	`, uuid.New(), userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw create transaction %w", err)
	}

	return &transaction, nil
}
