package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений
const (
	NotificationNewRequest        = "new_request"
	NotificationRequestAccepted   = "request_accepted"
	NotificationRequestRejected   = "request_rejected"
	NotificationSubmissionCreated = "submission_created"
	NotificationRevisionRequested = "revision_requested"
	NotificationBountyCompleted   = "bounty_completed"
	NotificationBountyCancelled   = "bounty_cancelled"
	NotificationBountyReopened    = "bounty_reopened"
	NotificationDisputeOpened     = "dispute_opened"
	NotificationDisputeResolved   = "dispute_resolved"
	NotificationNewMessage        = "new_message"
	NotificationFundsReleased     = "funds_released"
	NotificationFundsRefunded     = "funds_refunded"
)

// Notification представляет уведомление пользователя. payload хранит
// произвольные данные, зависящие от типа (id баунти, сумма и т.п.).
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      string          `db:"body" json:"body"`
	Payload   json.RawMessage `db:"payload" json:"payload,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
