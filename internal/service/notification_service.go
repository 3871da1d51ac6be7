package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/goroutine"
	"github.com/bountyhub/bountyhub-backend/internal/logger"
	"github.com/bountyhub/bountyhub-backend/internal/models"
)

// NotificationRepositoryInterface описывает хранилище уведомлений.
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// NotificationService сохраняет уведомления и рассылает их подключённым
// клиентам. Доставка по WebSocket — best effort, источником истины
// остаётся БД.
type NotificationService struct {
	repo NotificationRepositoryInterface
	hub  WSNotifier
}

func NewNotificationService(repo NotificationRepositoryInterface, hub WSNotifier) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Notify сохраняет уведомление и асинхронно доставляет его по WebSocket.
// Ошибки не возвращаются: уведомления не должны ломать основную операцию.
func (s *NotificationService) Notify(userID uuid.UUID, notificationType, title, body string, payload interface{}) {
	notification := &models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   notificationType,
		Title:  title,
		Body:   body,
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			notification.Payload = data
		}
	}

	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.Create(ctx, notification); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("не удалось сохранить уведомление")
			return
		}

		if s.hub != nil {
			if err := s.hub.BroadcastToUser(userID, "notification", notification); err != nil {
				logger.Log.WithError(err).WithField("user_id", userID).Debug("не удалось доставить уведомление по websocket")
			}
		}
	})
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead помечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
