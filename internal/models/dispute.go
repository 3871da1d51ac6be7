package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы спора
const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

// Решения по спору
const (
	DisputeResolutionReleaseToHunter = "release_to_hunter"
	DisputeResolutionRefundToPoster  = "refund_to_poster"
)

// Dispute представляет спор по баунти. Создаётся автоматически при
// превышении лимита доработок либо вручную одной из сторон.
type Dispute struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BountyID    uuid.UUID  `db:"bounty_id" json:"bounty_id"`
	InitiatorID *uuid.UUID `db:"initiator_id" json:"initiator_id,omitempty"`
	Reason      string     `db:"reason" json:"reason"`
	Status      string     `db:"status" json:"status"`
	Resolution  *string    `db:"resolution" json:"resolution,omitempty"`
	ResolvedBy  *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
