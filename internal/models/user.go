package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User описывает сущность пользователя платформы. Один и тот же аккаунт
// может выступать и заказчиком, и охотником.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Username      string     `db:"username" json:"username"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	PhoneVerified bool       `db:"phone_verified" json:"phone_verified"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	IsAdmin       bool       `db:"is_admin" json:"-"`
	LastLoginAt   *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile описывает публичный профиль пользователя.
type Profile struct {
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	DisplayName string         `db:"display_name" json:"display_name"`
	Bio         *string        `db:"bio" json:"bio,omitempty"`
	Skills      pq.StringArray `db:"skills" json:"skills"`
	Location    *string        `db:"location" json:"location,omitempty"`
	Phone       *string        `db:"phone" json:"phone,omitempty"`
	Telegram    *string        `db:"telegram" json:"telegram,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PaymentMethod — сохранённый способ вывода средств. Персональные данные,
// удаляются каскадом вместе с аккаунтом.
type PaymentMethod struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CardLast4 string    `db:"card_last4" json:"card_last4"`
	BankName  string    `db:"bank_name" json:"bank_name"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PublicProfileStats содержит статистику для публичного профиля.
type PublicProfileStats struct {
	PostedBounties    int     `json:"posted_bounties"`
	CompletedBounties int     `json:"completed_bounties"`
	AverageRating     float64 `json:"average_rating"`
	TotalRatings      int     `json:"total_ratings"`
}
