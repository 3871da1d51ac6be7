package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/repository/common"
)

var ErrBountyNotFound = errors.New("bounty not found")

type BountyRepository struct {
	db *sqlx.DB
}

func NewBountyRepository(db *sqlx.DB) *BountyRepository {
	return &BountyRepository{db: db}
}

func (r *BountyRepository) Create(ctx context.Context, bounty *models.Bounty) error {
	query := `
		INSERT INTO bounties (id, poster_id, title, description, amount, is_for_honor, work_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		bounty.ID, bounty.PosterID, bounty.Title, bounty.Description,
		bounty.Amount, bounty.IsForHonor, bounty.WorkType, bounty.Status)
	return row.Scan(&bounty.CreatedAt, &bounty.UpdatedAt)
}

func (r *BountyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	return common.GetByID[models.Bounty](ctx, r.db, "bounties", id, ErrBountyNotFound)
}

// GetForUpdateTx блокирует строку баунти на время транзакции. Все операции,
// меняющие статус или escrow, начинаются с этого вызова.
func (r *BountyRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Bounty, error) {
	var bounty models.Bounty
	err := tx.GetContext(ctx, &bounty, `SELECT * FROM bounties WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBountyNotFound
		}
		return nil, err
	}
	return &bounty, nil
}

// BountyFilter задаёт параметры листинга открытых баунти.
type BountyFilter struct {
	Status     *valueobject.BountyStatus
	WorkType   *valueobject.WorkType
	IsForHonor *bool
	PosterID   *uuid.UUID
	HunterID   *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

func (r *BountyRepository) List(ctx context.Context, filter BountyFilter) ([]models.Bounty, error) {
	query := `
		SELECT b.*, (SELECT COUNT(*) FROM bounty_requests br WHERE br.bounty_id = b.id AND br.status = 'pending') AS requests_count
		FROM bounties b
		WHERE 1=1
	`
	args := []interface{}{}
	argN := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND b.status = $%d", argN)
		args = append(args, *filter.Status)
		argN++
	}
	if filter.WorkType != nil {
		query += fmt.Sprintf(" AND b.work_type = $%d", argN)
		args = append(args, *filter.WorkType)
		argN++
	}
	if filter.IsForHonor != nil {
		query += fmt.Sprintf(" AND b.is_for_honor = $%d", argN)
		args = append(args, *filter.IsForHonor)
		argN++
	}
	if filter.PosterID != nil {
		query += fmt.Sprintf(" AND b.poster_id = $%d", argN)
		args = append(args, *filter.PosterID)
		argN++
	}
	if filter.HunterID != nil {
		query += fmt.Sprintf(" AND b.accepted_hunter_id = $%d", argN)
		args = append(args, *filter.HunterID)
		argN++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (b.title ILIKE $%d OR b.description ILIKE $%d)", argN, argN)
		args = append(args, "%"+filter.Search+"%")
		argN++
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	query += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, filter.Limit, filter.Offset)

	var bounties []models.Bounty
	if err := r.db.SelectContext(ctx, &bounties, query, args...); err != nil {
		return nil, fmt.Errorf("bounty repository: list %w", err)
	}
	return bounties, nil
}

// ListByPosterForUpdateTx блокирует и возвращает все неудалённые баунти
// постера. Используется каскадом удаления аккаунта.
func (r *BountyRepository) ListByPosterForUpdateTx(ctx context.Context, tx *sqlx.Tx, posterID uuid.UUID) ([]models.Bounty, error) {
	var bounties []models.Bounty
	err := tx.SelectContext(ctx, &bounties,
		`SELECT * FROM bounties WHERE poster_id = $1 ORDER BY created_at FOR UPDATE`, posterID)
	return bounties, err
}

// ListByHunterForUpdateTx блокирует баунти, где пользователь — принятый
// охотник. Используется каскадом удаления аккаунта.
func (r *BountyRepository) ListByHunterForUpdateTx(ctx context.Context, tx *sqlx.Tx, hunterID uuid.UUID) ([]models.Bounty, error) {
	var bounties []models.Bounty
	err := tx.SelectContext(ctx, &bounties,
		`SELECT * FROM bounties WHERE accepted_hunter_id = $1 ORDER BY created_at FOR UPDATE`, hunterID)
	return bounties, err
}

// UpdateTx обновляет редактируемые поля баунти внутри транзакции.
func (r *BountyRepository) UpdateTx(ctx context.Context, tx *sqlx.Tx, bounty *models.Bounty) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE bounties
		SET title = $2, description = $3, amount = $4, is_for_honor = $5, work_type = $6, updated_at = NOW()
		WHERE id = $1
	`, bounty.ID, bounty.Title, bounty.Description, bounty.Amount, bounty.IsForHonor, bounty.WorkType)
	if err != nil {
		return fmt.Errorf("bounty repository: update %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBountyNotFound
	}
	return nil
}

// SetStatusTx обновляет статус и принятого охотника внутри транзакции.
func (r *BountyRepository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.BountyStatus, acceptedHunterID *uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bounties SET status = $2, accepted_hunter_id = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, acceptedHunterID)
	if err != nil {
		return fmt.Errorf("bounty repository: set status %w", err)
	}
	return nil
}

// --- История ---

// AddHistoryTx добавляет запись в историю баунти.
func (r *BountyRepository) AddHistoryTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error {
	oldJSON, err := marshalHistoryValue(oldValue)
	if err != nil {
		return err
	}
	newJSON, err := marshalHistoryValue(newValue)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bounty_history (id, bounty_id, user_id, action, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), bountyID, userID, action, oldJSON, newJSON)
	if err != nil {
		return fmt.Errorf("bounty repository: add history %w", err)
	}
	return nil
}

func (r *BountyRepository) ListHistory(ctx context.Context, bountyID uuid.UUID) ([]models.BountyHistory, error) {
	var history []models.BountyHistory
	err := r.db.SelectContext(ctx, &history,
		`SELECT * FROM bounty_history WHERE bounty_id = $1 ORDER BY created_at`, bountyID)
	return history, err
}

func marshalHistoryValue(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("bounty repository: marshal history value %w", err)
	}
	return data, nil
}
