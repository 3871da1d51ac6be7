package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
)

// Bounty описывает размещённое задание с вознаграждением.
// poster_id и accepted_hunter_id остаются NULL после удаления аккаунта,
// сама запись сохраняется как аудиторский след.
type Bounty struct {
	ID               uuid.UUID                `db:"id" json:"id"`
	PosterID         *uuid.UUID               `db:"poster_id" json:"poster_id,omitempty"`
	Title            string                   `db:"title" json:"title"`
	Description      string                   `db:"description" json:"description"`
	Amount           decimal.Decimal          `db:"amount" json:"amount"`
	IsForHonor       bool                     `db:"is_for_honor" json:"is_for_honor"`
	WorkType         valueobject.WorkType     `db:"work_type" json:"work_type"`
	Status           valueobject.BountyStatus `db:"status" json:"status"`
	AcceptedHunterID *uuid.UUID               `db:"accepted_hunter_id" json:"accepted_hunter_id,omitempty"`
	CreatedAt        time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time                `db:"updated_at" json:"updated_at"`

	RequestsCount *int `db:"requests_count" json:"requests_count,omitempty"`
}

// IsOwnedBy проверяет, что баунти принадлежит пользователю.
func (b *Bounty) IsOwnedBy(userID uuid.UUID) bool {
	return b.PosterID != nil && *b.PosterID == userID
}

// IsAcceptedHunter проверяет, что пользователь — принятый исполнитель.
func (b *Bounty) IsAcceptedHunter(userID uuid.UUID) bool {
	return b.AcceptedHunterID != nil && *b.AcceptedHunterID == userID
}

// HasReward сообщает, есть ли у баунти денежное вознаграждение.
func (b *Bounty) HasReward() bool {
	return !b.IsForHonor && b.Amount.IsPositive()
}

// BountyRequest представляет отклик охотника на баунти.
// hunter_id обнуляется при удалении аккаунта охотника, запись не удаляется.
type BountyRequest struct {
	ID        uuid.UUID                 `db:"id" json:"id"`
	BountyID  uuid.UUID                 `db:"bounty_id" json:"bounty_id"`
	HunterID  *uuid.UUID                `db:"hunter_id" json:"hunter_id,omitempty"`
	Message   *string                   `db:"message" json:"message,omitempty"`
	Status    valueobject.RequestStatus `db:"status" json:"status"`
	CreatedAt time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt time.Time                 `db:"updated_at" json:"updated_at"`
}

// BountyHistory фиксирует каждое изменение состояния баунти.
type BountyHistory struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	BountyID  uuid.UUID       `db:"bounty_id" json:"bounty_id"`
	UserID    *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	Action    string          `db:"action" json:"action"`
	OldValue  json.RawMessage `db:"old_value" json:"old_value,omitempty"`
	NewValue  json.RawMessage `db:"new_value" json:"new_value,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Действия в истории баунти.
const (
	HistoryActionCreated           = "created"
	HistoryActionRequestAccepted   = "request_accepted"
	HistoryActionRevisionRequested = "revision_requested"
	HistoryActionCompleted         = "completed"
	HistoryActionCancelled         = "cancelled"
	HistoryActionArchived          = "archived"
	HistoryActionReopened          = "reopened"
	HistoryActionDisputeResolved   = "dispute_resolved"
)
