package models

import (
	"time"

	"github.com/google/uuid"
)

// Каналы верификации
const (
	VerificationChannelEmail = "email"
	VerificationChannelPhone = "phone"
)

// VerificationCode — одноразовый код подтверждения email или телефона.
type VerificationCode struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Channel   string    `db:"channel" json:"channel"`
	Code      string    `db:"code" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsExpired возвращает true, если срок действия кода истёк.
func (v *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
