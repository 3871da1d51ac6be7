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

var ErrConversationNotFound = errors.New("conversation not found")

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// GetOrCreateConversation возвращает диалог по баунти, создавая при
// первом обращении.
func (r *MessageRepository) GetOrCreateConversation(ctx context.Context, bountyID, posterID, hunterID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	query := `
		INSERT INTO conversations (id, bounty_id, poster_id, hunter_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bounty_id) DO UPDATE SET updated_at = NOW()
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &conv, query, uuid.New(), bountyID, posterID, hunterID); err != nil {
		return nil, fmt.Errorf("message repository: get or create conversation %w", err)
	}
	return &conv, nil
}

func (r *MessageRepository) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return common.GetByID[models.Conversation](ctx, r.db, "conversations", id, ErrConversationNotFound)
}

func (r *MessageRepository) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.SelectContext(ctx, &conversations, `
		SELECT * FROM conversations WHERE poster_id = $1 OR hunter_id = $1
		ORDER BY updated_at DESC
	`, userID)
	return conversations, err
}

func (r *MessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		message.ID, message.ConversationID, message.SenderID, message.Content)
	if err := row.Scan(&message.CreatedAt); err != nil {
		return fmt.Errorf("message repository: create message %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, message.ConversationID)
	return err
}

func (r *MessageRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND (sender_id IS NULL OR sender_id <> $2) AND is_read = FALSE
	`, conversationID, readerID)
	return err
}
