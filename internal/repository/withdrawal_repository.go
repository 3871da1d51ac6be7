package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/repository/common"
)

var ErrWithdrawalNotFound = errors.New("withdrawal not found")

type WithdrawalRepository struct {
	db *sqlx.DB
}

func NewWithdrawalRepository(db *sqlx.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// CreateTx сохраняет заявку на вывод внутри транзакции вместе со
// списанием средств (WalletRepository.WithdrawTx).
func (r *WithdrawalRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, w *models.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, user_id, payment_method_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	row := tx.QueryRowxContext(ctx, query, w.ID, w.UserID, w.PaymentMethodID, w.Amount, w.Status)
	if err := row.Scan(&w.CreatedAt); err != nil {
		return fmt.Errorf("withdrawal repository: create %w", err)
	}
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	return common.GetByID[models.Withdrawal](ctx, r.db, "withdrawals", id, ErrWithdrawalNotFound)
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	err := r.db.SelectContext(ctx, &withdrawals, `
		SELECT * FROM withdrawals WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return withdrawals, err
}

func (r *WithdrawalRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE withdrawals SET status = $2, processed_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("withdrawal repository: set status %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWithdrawalNotFound
	}
	return nil
}
