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

var ErrSubmissionNotFound = errors.New("submission not found")

type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateTx сохраняет заявку о выполнении вместе с доказательствами.
func (r *SubmissionRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, submission *models.CompletionSubmission, proofURLs []string) error {
	query := `
		INSERT INTO completion_submissions (id, bounty_id, hunter_id, comment, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	row := tx.QueryRowxContext(ctx, query,
		submission.ID, submission.BountyID, submission.HunterID, submission.Comment, submission.Status)
	if err := row.Scan(&submission.CreatedAt, &submission.UpdatedAt); err != nil {
		return fmt.Errorf("submission repository: create %w", err)
	}

	if len(proofURLs) == 0 {
		return nil
	}

	inserter := common.NewBatchInserter(tx,
		`INSERT INTO submission_proofs (id, submission_id, url)`, 3, 100)
	for _, url := range proofURLs {
		proof := models.SubmissionProof{ID: uuid.New(), SubmissionID: submission.ID, URL: url}
		if err := inserter.Add(ctx, proof.ID, proof.SubmissionID, proof.URL); err != nil {
			return fmt.Errorf("submission repository: add proof %w", err)
		}
		submission.Proofs = append(submission.Proofs, proof)
	}
	if err := inserter.Flush(ctx); err != nil {
		return fmt.Errorf("submission repository: flush proofs %w", err)
	}
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CompletionSubmission, error) {
	submission, err := common.GetByID[models.CompletionSubmission](ctx, r.db, "completion_submissions", id, ErrSubmissionNotFound)
	if err != nil {
		return nil, err
	}
	if err := r.loadProofs(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// GetPendingByBountyTx возвращает pending-заявку баунти под блокировкой.
func (r *SubmissionRepository) GetPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.CompletionSubmission, error) {
	var submission models.CompletionSubmission
	err := tx.GetContext(ctx, &submission, `
		SELECT * FROM completion_submissions
		WHERE bounty_id = $1 AND status = 'pending'
		FOR UPDATE
	`, bountyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

// HasPendingTx проверяет наличие pending-заявки по баунти.
func (r *SubmissionRepository) HasPendingTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM completion_submissions WHERE bounty_id = $1 AND status = 'pending')
	`, bountyID)
	return exists, err
}

// SetStatusTx обновляет статус заявки и замечания постера.
func (r *SubmissionRepository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.SubmissionStatus, feedback *string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE completion_submissions SET status = $2, feedback = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, feedback)
	if err != nil {
		return fmt.Errorf("submission repository: set status %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// CountRevisionsTx возвращает число заявок, отправленных на доработку.
func (r *SubmissionRepository) CountRevisionsTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM completion_submissions
		WHERE bounty_id = $1 AND status = 'revision_requested'
	`, bountyID)
	return count, err
}

func (r *SubmissionRepository) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.CompletionSubmission, error) {
	var submissions []models.CompletionSubmission
	err := r.db.SelectContext(ctx, &submissions,
		`SELECT * FROM completion_submissions WHERE bounty_id = $1 ORDER BY created_at`, bountyID)
	if err != nil {
		return nil, err
	}
	for i := range submissions {
		if err := r.loadProofs(ctx, &submissions[i]); err != nil {
			return nil, err
		}
	}
	return submissions, nil
}

func (r *SubmissionRepository) loadProofs(ctx context.Context, submission *models.CompletionSubmission) error {
	err := r.db.SelectContext(ctx, &submission.Proofs,
		`SELECT * FROM submission_proofs WHERE submission_id = $1 ORDER BY created_at`, submission.ID)
	if err != nil {
		return fmt.Errorf("submission repository: load proofs %w", err)
	}
	return nil
}
