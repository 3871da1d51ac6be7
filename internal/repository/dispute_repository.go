package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/repository/common"
)

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// CreateTx открывает спор внутри транзакции. Частичный уникальный индекс
// по (bounty_id) WHERE status = 'open' не даёт открыть второй спор.
func (r *DisputeRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, dispute *models.Dispute) error {
	query := `
		INSERT INTO disputes (id, bounty_id, initiator_id, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	row := tx.QueryRowxContext(ctx, query,
		dispute.ID, dispute.BountyID, dispute.InitiatorID, dispute.Reason, dispute.Status)
	if err := row.Scan(&dispute.CreatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("dispute repository: create %w", errors.New("dispute already open"))
		}
		return fmt.Errorf("dispute repository: create %w", err)
	}
	return nil
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return common.GetByID[models.Dispute](ctx, r.db, "disputes", id, ErrDisputeNotFound)
}

// GetOpenByBountyTx возвращает открытый спор баунти под блокировкой.
func (r *DisputeRepository) GetOpenByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := tx.GetContext(ctx, &dispute,
		`SELECT * FROM disputes WHERE bounty_id = $1 AND status = 'open' FOR UPDATE`, bountyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, err
	}
	return &dispute, nil
}

// ResolveTx закрывает спор с принятым решением.
func (r *DisputeRepository) ResolveTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, resolution string, resolvedBy uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE disputes SET status = 'resolved', resolution = $2, resolved_by = $3, resolved_at = NOW()
		WHERE id = $1 AND status = 'open'
	`, id, resolution, resolvedBy)
	if err != nil {
		return fmt.Errorf("dispute repository: resolve %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDisputeNotFound
	}
	return nil
}

func (r *DisputeRepository) ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE status = 'open'
		ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	return disputes, err
}
