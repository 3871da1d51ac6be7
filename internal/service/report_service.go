package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// ReportRepositoryInterface описывает хранилище жалоб.
type ReportRepositoryInterface interface {
	Create(ctx context.Context, report *models.Report) error
	ListPending(ctx context.Context, limit, offset int) ([]models.Report, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ReportService содержит логику жалоб на пользователей и баунти.
type ReportService struct {
	reports  ReportRepositoryInterface
	bounties BountyReader
	users    UserReader
}

func NewReportService(reports ReportRepositoryInterface, bounties BountyReader, users UserReader) *ReportService {
	return &ReportService{reports: reports, bounties: bounties, users: users}
}

// Create регистрирует жалобу, проверив существование цели.
func (s *ReportService) Create(ctx context.Context, reporterID uuid.UUID, targetType string, targetID uuid.UUID, reason, details string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите причину жалобы")
	}

	switch targetType {
	case models.ReportTargetUser:
		if _, err := s.users.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperror.ErrUserNotFound
			}
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить пользователя")
		}
		if targetID == reporterID {
			return nil, apperror.New(apperror.ErrCodeValidation, "нельзя пожаловаться на себя")
		}
	case models.ReportTargetBounty:
		if _, err := s.bounties.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, repository.ErrBountyNotFound) {
				return nil, apperror.ErrBountyNotFound
			}
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить баунти")
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип цели жалобы")
	}

	report := &models.Report{
		ID:         uuid.New(),
		ReporterID: &reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
	}
	if trimmed := strings.TrimSpace(details); trimmed != "" {
		report.Details = &trimmed
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить жалобу")
	}
	return report, nil
}

// ListPending возвращает необработанные жалобы для модерации.
func (s *ReportService) ListPending(ctx context.Context, limit, offset int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reports.ListPending(ctx, limit, offset)
}

// Review закрывает жалобу решением модератора.
func (s *ReportService) Review(ctx context.Context, id uuid.UUID, dismiss bool) error {
	status := models.ReportStatusReviewed
	if dismiss {
		status = models.ReportStatusDismissed
	}
	if err := s.reports.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "жалоба не найдена")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обработать жалобу")
	}
	return nil
}
