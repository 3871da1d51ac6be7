package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
)

// CompletionSubmission представляет заявку охотника о выполнении баунти.
// На баунти может быть не более одной заявки в статусе pending.
type CompletionSubmission struct {
	ID        uuid.UUID                     `db:"id" json:"id"`
	BountyID  uuid.UUID                     `db:"bounty_id" json:"bounty_id"`
	HunterID  *uuid.UUID                    `db:"hunter_id" json:"hunter_id,omitempty"`
	Comment   *string                       `db:"comment" json:"comment,omitempty"`
	Status    valueobject.SubmissionStatus  `db:"status" json:"status"`
	Feedback  *string                       `db:"feedback" json:"feedback,omitempty"`
	CreatedAt time.Time                     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time                     `db:"updated_at" json:"updated_at"`

	Proofs []SubmissionProof `db:"-" json:"proofs,omitempty"`
}

// SubmissionProof — ссылка на доказательство выполнения (URL или текст),
// прикреплённая к заявке о выполнении.
type SubmissionProof struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	URL          string    `db:"url" json:"url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
