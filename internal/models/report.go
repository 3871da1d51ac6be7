package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы жалобы
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusDismissed = "dismissed"
)

// Типы объектов жалобы
const (
	ReportTargetUser   = "user"
	ReportTargetBounty = "bounty"
)

// Report представляет жалобу пользователя на другого пользователя
// или на баунти.
type Report struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ReporterID *uuid.UUID `db:"reporter_id" json:"reporter_id,omitempty"`
	TargetType string     `db:"target_type" json:"target_type"`
	TargetID   uuid.UUID  `db:"target_id" json:"target_id"`
	Reason     string     `db:"reason" json:"reason"`
	Details    *string    `db:"details" json:"details,omitempty"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}
