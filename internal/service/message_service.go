package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// MessageRepositoryInterface описывает хранилище диалогов и сообщений.
type MessageRepositoryInterface interface {
	GetOrCreateConversation(ctx context.Context, bountyID, posterID, hunterID uuid.UUID) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error
}

// MessageService содержит логику переписки постера и принятого охотника.
type MessageService struct {
	messages MessageRepositoryInterface
	bounties BountyReader
	notifier BountyNotifier
}

func NewMessageService(messages MessageRepositoryInterface, bounties BountyReader, notifier BountyNotifier) *MessageService {
	return &MessageService{messages: messages, bounties: bounties, notifier: notifier}
}

// StartConversation открывает диалог по баунти между постером и принятым
// охотником.
func (s *MessageService) StartConversation(ctx context.Context, userID, bountyID uuid.UUID) (*models.Conversation, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if !bounty.IsOwnedBy(userID) && !bounty.IsAcceptedHunter(userID) {
		return nil, apperror.ErrForbidden
	}
	if bounty.PosterID == nil || bounty.AcceptedHunterID == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "диалог доступен после принятия исполнителя")
	}
	return s.messages.GetOrCreateConversation(ctx, bountyID, *bounty.PosterID, *bounty.AcceptedHunterID)
}

// Send отправляет сообщение в диалог.
func (s *MessageService) Send(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	conv, err := s.getParticipantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       &senderID,
		Content:        content,
	}
	if err := s.messages.CreateMessage(ctx, message); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отправить сообщение")
	}

	if s.notifier != nil {
		recipient := conv.PosterID
		if recipient != nil && *recipient == senderID {
			recipient = conv.HunterID
		}
		if recipient != nil {
			s.notifier.Notify(*recipient, models.NotificationNewMessage,
				"Новое сообщение", content,
				map[string]interface{}{"conversation_id": conversationID, "message_id": message.ID})
		}
	}

	return message, nil
}

// ListConversations возвращает диалоги пользователя.
func (s *MessageService) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.messages.ListConversations(ctx, userID)
}

// ListMessages возвращает сообщения диалога и помечает входящие
// прочитанными.
func (s *MessageService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.getParticipantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.messages.ListMessages(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения")
	}

	if err := s.messages.MarkRead(ctx, conversationID, userID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось пометить сообщения прочитанными")
	}
	return messages, nil
}

func (s *MessageService) getParticipantConversation(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.messages.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "диалог не найден")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить диалог")
	}

	isPoster := conv.PosterID != nil && *conv.PosterID == userID
	isHunter := conv.HunterID != nil && *conv.HunterID == userID
	if !isPoster && !isHunter {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}
