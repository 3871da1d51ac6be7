package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/models"
)

var ErrVerificationCodeNotFound = errors.New("verification code not found")

type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create сохраняет новый код, убирая неиспользованные коды того же канала.
func (r *VerificationRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM verification_codes WHERE user_id = $1 AND channel = $2 AND used_at IS NULL
	`, code.UserID, code.Channel)
	if err != nil {
		return fmt.Errorf("verification repository: cleanup %w", err)
	}

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO verification_codes (id, user_id, channel, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, code.ID, code.UserID, code.Channel, code.Code, code.ExpiresAt)
	if err := row.Scan(&code.CreatedAt); err != nil {
		return fmt.Errorf("verification repository: create %w", err)
	}

	return tx.Commit()
}

// GetActive возвращает неиспользованный код пользователя по каналу.
func (r *VerificationRepository) GetActive(ctx context.Context, userID uuid.UUID, channel string) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.GetContext(ctx, &code, `
		SELECT * FROM verification_codes
		WHERE user_id = $1 AND channel = $2 AND used_at IS NULL
		ORDER BY created_at DESC LIMIT 1
	`, userID, channel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *VerificationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE verification_codes SET used_at = NOW() WHERE id = $1`, id)
	return err
}
