package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/validation"
)

// ProfileRepositoryInterface описывает хранилище профилей и способов оплаты.
type ProfileRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	AddPaymentMethod(ctx context.Context, pm *models.PaymentMethod) error
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error
}

// RatingSummaryReader — агрегат оценок для публичного профиля.
type RatingSummaryReader interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (*models.RatingSummary, error)
}

// ProfileService содержит логику профилей и привязанных способов оплаты.
type ProfileService struct {
	repo    ProfileRepositoryInterface
	ratings RatingSummaryReader
}

func NewProfileService(repo ProfileRepositoryInterface, ratings RatingSummaryReader) *ProfileService {
	return &ProfileService{repo: repo, ratings: ratings}
}

// PublicProfile — публичное представление пользователя.
type PublicProfile struct {
	Profile *models.Profile       `json:"profile"`
	Rating  *models.RatingSummary `json:"rating"`
}

// Get возвращает публичный профиль с агрегатом оценок.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить профиль")
	}

	summary, err := s.ratings.GetSummary(ctx, userID)
	if err != nil {
		summary = &models.RatingSummary{UserID: userID}
	}

	return &PublicProfile{Profile: profile, Rating: summary}, nil
}

// UpdateProfileInput — редактируемые поля профиля.
type UpdateProfileInput struct {
	DisplayName string
	Bio         *string
	Skills      []string
	Location    *string
	Phone       *string
	Telegram    *string
}

// Update обновляет собственный профиль.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.Profile, error) {
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLocation(in.Location); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	profile := &models.Profile{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		Skills:      in.Skills,
		Location:    in.Location,
		Phone:       in.Phone,
		Telegram:    in.Telegram,
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить профиль")
	}
	return profile, nil
}

// AddPaymentMethod привязывает способ вывода средств.
func (s *ProfileService) AddPaymentMethod(ctx context.Context, userID uuid.UUID, cardLast4, bankName string, isDefault bool) (*models.PaymentMethod, error) {
	if len(cardLast4) != 4 {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите последние 4 цифры карты")
	}
	if err := validation.ValidateNonEmpty("название банка", bankName); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	pm := &models.PaymentMethod{
		ID:        uuid.New(),
		UserID:    userID,
		CardLast4: cardLast4,
		BankName:  bankName,
		IsDefault: isDefault,
	}
	if err := s.repo.AddPaymentMethod(ctx, pm); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить способ оплаты")
	}
	return pm, nil
}

// ListPaymentMethods возвращает способы оплаты пользователя.
func (s *ProfileService) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, userID)
}

// DeletePaymentMethod удаляет способ оплаты пользователя.
func (s *ProfileService) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeletePaymentMethod(ctx, userID, id)
}
