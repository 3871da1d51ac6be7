package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/repository/common"
)

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrDuplicateRequest = errors.New("duplicate request")
)

type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create добавляет отклик. Уникальный индекс по (bounty_id, hunter_id)
// превращает повторный отклик в ErrDuplicateRequest.
func (r *RequestRepository) Create(ctx context.Context, request *models.BountyRequest) error {
	query := `
		INSERT INTO bounty_requests (id, bounty_id, hunter_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		request.ID, request.BountyID, request.HunterID, request.Message, request.Status)
	if err := row.Scan(&request.CreatedAt, &request.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("request repository: create %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BountyRequest, error) {
	return common.GetByID[models.BountyRequest](ctx, r.db, "bounty_requests", id, ErrRequestNotFound)
}

// GetForUpdateTx блокирует строку отклика на время транзакции.
func (r *RequestRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.BountyRequest, error) {
	var request models.BountyRequest
	err := tx.GetContext(ctx, &request, `SELECT * FROM bounty_requests WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepository) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.BountyRequest, error) {
	var requests []models.BountyRequest
	err := r.db.SelectContext(ctx, &requests,
		`SELECT * FROM bounty_requests WHERE bounty_id = $1 ORDER BY created_at`, bountyID)
	return requests, err
}

func (r *RequestRepository) ListByHunter(ctx context.Context, hunterID uuid.UUID, limit, offset int) ([]models.BountyRequest, error) {
	var requests []models.BountyRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM bounty_requests WHERE hunter_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, hunterID, limit, offset)
	return requests, err
}

// AcceptTx принимает отклик и отклоняет все остальные pending-отклики
// этого баунти одним запросом. Частичный уникальный индекс по
// (bounty_id) WHERE status = 'accepted' гарантирует единственного
// принятого охотника даже при гонке.
func (r *RequestRepository) AcceptTx(ctx context.Context, tx *sqlx.Tx, bountyID, requestID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE bounty_requests SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND bounty_id = $2 AND status = 'pending'
	`, requestID, bountyID)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("request repository: accept %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRequestNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bounty_requests SET status = 'rejected', updated_at = NOW()
		WHERE bounty_id = $1 AND id <> $2 AND status = 'pending'
	`, bountyID, requestID)
	if err != nil {
		return fmt.Errorf("request repository: reject siblings %w", err)
	}
	return nil
}

func setRequestStatus(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, status valueobject.RequestStatus) error {
	res, err := q.ExecContext(ctx, `
		UPDATE bounty_requests SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("request repository: set status %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// SetStatus меняет статус отклика вне транзакции.
func (r *RequestRepository) SetStatus(ctx context.Context, id uuid.UUID, status valueobject.RequestStatus) error {
	return setRequestStatus(ctx, r.db, id, status)
}

// SetStatusTx меняет статус отклика внутри транзакции.
func (r *RequestRepository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.RequestStatus) error {
	return setRequestStatus(ctx, tx, id, status)
}

// RejectPendingByBountyTx отклоняет все pending-отклики баунти.
func (r *RequestRepository) RejectPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE bounty_requests SET status = 'rejected', updated_at = NOW()
		WHERE bounty_id = $1 AND status = 'pending'
	`, bountyID)
	if err != nil {
		return 0, fmt.Errorf("request repository: reject pending by bounty %w", err)
	}
	return res.RowsAffected()
}

// RejectAcceptedByBountyTx отклоняет принятый отклик баунти. Используется
// при возврате баунти в открытый статус.
func (r *RequestRepository) RejectAcceptedByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bounty_requests SET status = 'rejected', updated_at = NOW()
		WHERE bounty_id = $1 AND status = 'accepted'
	`, bountyID)
	if err != nil {
		return fmt.Errorf("request repository: reject accepted by bounty %w", err)
	}
	return nil
}

// RejectPendingByHunterTx отклоняет все pending-отклики охотника.
// Используется каскадом удаления аккаунта.
func (r *RequestRepository) RejectPendingByHunterTx(ctx context.Context, tx *sqlx.Tx, hunterID uuid.UUID) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE bounty_requests SET status = 'rejected', updated_at = NOW()
		WHERE hunter_id = $1 AND status = 'pending'
	`, hunterID)
	if err != nil {
		return 0, fmt.Errorf("request repository: reject pending by hunter %w", err)
	}
	return res.RowsAffected()
}

// Delete удаляет собственный pending-отклик охотника.
func (r *RequestRepository) Delete(ctx context.Context, id, hunterID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM bounty_requests WHERE id = $1 AND hunter_id = $2 AND status = 'pending'
	`, id, hunterID)
	if err != nil {
		return fmt.Errorf("request repository: delete %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRequestNotFound
	}
	return nil
}
