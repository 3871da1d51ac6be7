package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating представляет оценку, оставленную после завершения баунти.
// Постер оценивает охотника и наоборот; по одной оценке на пару
// (баунти, автор).
type Rating struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	BountyID  uuid.UUID  `db:"bounty_id" json:"bounty_id"`
	RaterID   *uuid.UUID `db:"rater_id" json:"rater_id,omitempty"`
	RatedID   *uuid.UUID `db:"rated_id" json:"rated_id,omitempty"`
	Score     int        `db:"score" json:"score"`
	Comment   *string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// RatingSummary — агрегат по полученным оценкам пользователя.
type RatingSummary struct {
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	AverageScore float64   `db:"average_score" json:"average_score"`
	TotalRatings int       `db:"total_ratings" json:"total_ratings"`
}
