package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/logger"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

const (
	verificationCodeTTL    = 15 * time.Minute
	verificationCodeLength = 6
)

// VerificationRepositoryInterface описывает хранилище кодов подтверждения.
type VerificationRepositoryInterface interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	GetActive(ctx context.Context, userID uuid.UUID, channel string) (*models.VerificationCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

// VerifiedFlagWriter помечает пользователя верифицированным.
type VerifiedFlagWriter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	SetPhoneVerified(ctx context.Context, userID uuid.UUID) error
}

// CodeSender доставляет код пользователю (email или sms).
type CodeSender interface {
	Send(ctx context.Context, user *models.User, channel, code string) error
}

// VerificationService выдаёт и проверяет коды подтверждения email и
// телефона. Флаг верификации хранится только на сервере.
type VerificationService struct {
	codes  VerificationRepositoryInterface
	users  VerifiedFlagWriter
	sender CodeSender
}

func NewVerificationService(codes VerificationRepositoryInterface, users VerifiedFlagWriter, sender CodeSender) *VerificationService {
	return &VerificationService{codes: codes, users: users, sender: sender}
}

// SendCode генерирует и отправляет код подтверждения.
func (s *VerificationService) SendCode(ctx context.Context, userID uuid.UUID, channel string) error {
	if channel != models.VerificationChannelEmail && channel != models.VerificationChannelPhone {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый канал верификации")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	if channel == models.VerificationChannelEmail && user.EmailVerified {
		return apperror.New(apperror.ErrCodeConflict, "email уже подтверждён")
	}
	if channel == models.VerificationChannelPhone && user.PhoneVerified {
		return apperror.New(apperror.ErrCodeConflict, "телефон уже подтверждён")
	}

	code := &models.VerificationCode{
		ID:        uuid.New(),
		UserID:    userID,
		Channel:   channel,
		Code:      generateNumericCode(verificationCodeLength),
		ExpiresAt: time.Now().Add(verificationCodeTTL),
	}

	if err := s.codes.Create(ctx, code); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить код")
	}

	if err := s.sender.Send(ctx, user, channel, code.Code); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отправить код")
	}
	return nil
}

// ConfirmCode проверяет код и помечает канал подтверждённым.
func (s *VerificationService) ConfirmCode(ctx context.Context, userID uuid.UUID, channel, code string) error {
	active, err := s.codes.GetActive(ctx, userID, channel)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationCodeNotFound) {
			return apperror.New(apperror.ErrCodeBadRequest, "код не найден, запросите новый")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить код")
	}
	if active.IsExpired(time.Now()) {
		return apperror.New(apperror.ErrCodeBadRequest, "срок действия кода истёк, запросите новый")
	}
	if active.Code != code {
		return apperror.New(apperror.ErrCodeBadRequest, "неверный код подтверждения")
	}

	if err := s.codes.MarkUsed(ctx, active.ID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось использовать код")
	}

	switch channel {
	case models.VerificationChannelEmail:
		err = s.users.SetEmailVerified(ctx, userID)
	case models.VerificationChannelPhone:
		err = s.users.SetPhoneVerified(ctx, userID)
	default:
		return apperror.New(apperror.ErrCodeValidation, "недопустимый канал верификации")
	}
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус верификации")
	}
	return nil
}

func generateNumericCode(length int) string {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand недоступен только при деградации системы
			n = big.NewInt(int64(time.Now().Nanosecond() % 10))
		}
		code += n.String()
	}
	return code
}

// LogSender пишет код в лог вместо реальной доставки. Используется в
// development окружении.
type LogSender struct{}

func (LogSender) Send(_ context.Context, user *models.User, channel, code string) error {
	logger.Log.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"channel": channel,
	}).Info(fmt.Sprintf("код подтверждения: %s", code))
	return nil
}
