package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation представляет диалог между постером и охотником в рамках
// баунти. Удаление баунти удаляет диалог вместе с сообщениями.
type Conversation struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	BountyID  uuid.UUID  `db:"bounty_id" json:"bounty_id"`
	PosterID  *uuid.UUID `db:"poster_id" json:"poster_id,omitempty"`
	HunterID  *uuid.UUID `db:"hunter_id" json:"hunter_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Message — сообщение в диалоге. sender_id обнуляется при удалении
// аккаунта отправителя, текст сохраняется для второй стороны.
type Message struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConversationID uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	SenderID       *uuid.UUID `db:"sender_id" json:"sender_id,omitempty"`
	Content        string     `db:"content" json:"content"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
