package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// RequestRepositoryInterface описывает хранилище откликов.
type RequestRepositoryInterface interface {
	Create(ctx context.Context, request *models.BountyRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BountyRequest, error)
	ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.BountyRequest, error)
	ListByHunter(ctx context.Context, hunterID uuid.UUID, limit, offset int) ([]models.BountyRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, status valueobject.RequestStatus) error
	Delete(ctx context.Context, id, hunterID uuid.UUID) error
}

// BountyReader — чтение баунти при проверках отклика.
type BountyReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
}

// UserReader — чтение пользователя для серверной проверки верификации.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequestService содержит бизнес-логику откликов охотников.
type RequestService struct {
	requests RequestRepositoryInterface
	bounties BountyReader
	users    UserReader
	notifier BountyNotifier
}

func NewRequestService(requests RequestRepositoryInterface, bounties BountyReader, users UserReader, notifier BountyNotifier) *RequestService {
	return &RequestService{requests: requests, bounties: bounties, users: users, notifier: notifier}
}

// Apply создаёт отклик охотника на открытое баунти. Проверка
// подтверждённого email выполняется на сервере и не доверяет клиенту.
func (s *RequestService) Apply(ctx context.Context, hunterID, bountyID uuid.UUID, message string) (*models.BountyRequest, error) {
	hunter, err := s.users.GetByID(ctx, hunterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	if !hunter.EmailVerified {
		return nil, apperror.ErrEmailNotVerified
	}

	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if bounty.Status != valueobject.BountyStatusOpen {
		return nil, apperror.ErrBountyNotOpen
	}
	if bounty.IsOwnedBy(hunterID) {
		return nil, apperror.ErrSelfApplication
	}

	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bountyID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		request.Message = &trimmed
	}

	if err := s.requests.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicateRequest) {
			return nil, apperror.ErrDuplicateApplication
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку")
	}

	if s.notifier != nil && bounty.PosterID != nil {
		s.notifier.Notify(*bounty.PosterID, models.NotificationNewRequest,
			"Новый отклик", "На ваше баунти «"+bounty.Title+"» появился новый отклик",
			map[string]interface{}{"bounty_id": bountyID, "request_id": request.ID})
	}

	return request, nil
}

// ListByBounty возвращает отклики баунти. Полный список видит только
// владелец, остальным доступно лишь количество через листинг баунти.
func (s *RequestService) ListByBounty(ctx context.Context, userID, bountyID uuid.UUID) ([]models.BountyRequest, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if !bounty.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	return s.requests.ListByBounty(ctx, bountyID)
}

// ListMine возвращает отклики охотника.
func (s *RequestService) ListMine(ctx context.Context, hunterID uuid.UUID, limit, offset int) ([]models.BountyRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.requests.ListByHunter(ctx, hunterID, limit, offset)
}

// Reject отклоняет необработанный отклик на открытое баунти. Доступно
// только владельцу баунти; принятые отклики так снять нельзя.
func (s *RequestService) Reject(ctx context.Context, posterID, bountyID, requestID uuid.UUID) (*models.BountyRequest, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if !bounty.IsOwnedBy(posterID) {
		return nil, apperror.ErrForbidden
	}
	if bounty.Status != valueobject.BountyStatusOpen {
		return nil, apperror.ErrBountyNotOpen
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	if request.BountyID != bountyID {
		return nil, apperror.ErrRequestNotFound
	}
	if request.Status != valueobject.RequestStatusPending {
		return nil, apperror.ErrRequestNotPending
	}

	if err := s.requests.SetStatus(ctx, requestID, valueobject.RequestStatusRejected); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить заявку")
	}
	request.Status = valueobject.RequestStatusRejected

	if s.notifier != nil && request.HunterID != nil {
		s.notifier.Notify(*request.HunterID, models.NotificationRequestRejected,
			"Отклик отклонён", "Ваш отклик на баунти «"+bounty.Title+"» отклонён заказчиком",
			map[string]interface{}{"bounty_id": bountyID, "request_id": requestID})
	}

	return request, nil
}

// Withdraw отзывает собственный необработанный отклик.
func (s *RequestService) Withdraw(ctx context.Context, hunterID, requestID uuid.UUID) error {
	if err := s.requests.Delete(ctx, requestID, hunterID); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return apperror.ErrRequestNotPending
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отозвать заявку")
	}
	return nil
}
