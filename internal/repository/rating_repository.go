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

var (
	ErrRatingNotFound  = errors.New("rating not found")
	ErrRatingDuplicate = errors.New("rating already exists")
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create сохраняет оценку. Уникальный индекс по (bounty_id, rater_id)
// не даёт оценить одно баунти дважды.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (id, bounty_id, rater_id, rated_id, score, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		rating.ID, rating.BountyID, rating.RaterID, rating.RatedID, rating.Score, rating.Comment)
	if err := row.Scan(&rating.CreatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrRatingDuplicate
		}
		return fmt.Errorf("rating repository: create %w", err)
	}
	return nil
}

func (r *RatingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.SelectContext(ctx, &ratings, `
		SELECT * FROM ratings WHERE rated_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return ratings, err
}

// GetSummary возвращает агрегат по полученным оценкам пользователя.
func (r *RatingRepository) GetSummary(ctx context.Context, userID uuid.UUID) (*models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT $1::uuid AS user_id,
		       COALESCE(AVG(score), 0) AS average_score,
		       COUNT(*) AS total_ratings
		FROM ratings WHERE rated_id = $2
	`, userID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.RatingSummary{UserID: userID}, nil
		}
		return nil, err
	}
	return &summary, nil
}

// GetByBountyAndRater возвращает оценку конкретного автора по баунти.
func (r *RatingRepository) GetByBountyAndRater(ctx context.Context, bountyID, raterID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.GetContext(ctx, &rating,
		`SELECT * FROM ratings WHERE bounty_id = $1 AND rater_id = $2`, bountyID, raterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}
