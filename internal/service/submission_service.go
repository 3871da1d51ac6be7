package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// SubmissionRepositoryInterface описывает хранилище сдач работы.
type SubmissionRepositoryInterface interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, submission *models.CompletionSubmission, proofURLs []string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CompletionSubmission, error)
	HasPendingTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (bool, error)
	ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.CompletionSubmission, error)
}

// BountyLockRepository — блокировка баунти при сдаче работы.
type BountyLockRepository interface {
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Bounty, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
}

// SubmissionService содержит бизнес-логику сдачи и просмотра работ.
type SubmissionService struct {
	runTx       txRunner
	submissions SubmissionRepositoryInterface
	bounties    BountyLockRepository
	notifier    BountyNotifier
}

func NewSubmissionService(db *sqlx.DB, submissions SubmissionRepositoryInterface, bounties BountyLockRepository, notifier BountyNotifier) *SubmissionService {
	return &SubmissionService{runTx: dbTxRunner(db), submissions: submissions, bounties: bounties, notifier: notifier}
}

// SubmitInput — параметры сдачи работы.
type SubmitInput struct {
	Comment   string
	ProofURLs []string
}

// Submit фиксирует сдачу работы принятым охотником. На баунти может быть
// только одна сдача на рассмотрении.
func (s *SubmissionService) Submit(ctx context.Context, hunterID, bountyID uuid.UUID, input SubmitInput) (*models.CompletionSubmission, error) {
	var (
		submission *models.CompletionSubmission
		posterID   *uuid.UUID
		title      string
	)

	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		bounty, err := s.bounties.GetForUpdateTx(ctx, tx, bountyID)
		if err != nil {
			if errors.Is(err, repository.ErrBountyNotFound) {
				return apperror.ErrBountyNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
		}
		if bounty.Status != valueobject.BountyStatusInProgress {
			return apperror.ErrBountyNotInProgress
		}
		if !bounty.IsAcceptedHunter(hunterID) {
			return apperror.ErrNotAcceptedHunter
		}
		posterID = bounty.PosterID
		title = bounty.Title

		pending, err := s.submissions.HasPendingTx(ctx, tx, bountyID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить сдачи работы")
		}
		if pending {
			return apperror.ErrSubmissionAlreadyPending
		}

		submission = &models.CompletionSubmission{
			ID:       uuid.New(),
			BountyID: bountyID,
			HunterID: &hunterID,
			Status:   valueobject.SubmissionStatusPending,
		}
		if trimmed := strings.TrimSpace(input.Comment); trimmed != "" {
			submission.Comment = &trimmed
		}

		if err := s.submissions.CreateTx(ctx, tx, submission, input.ProofURLs); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить сдачу работы")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && posterID != nil {
		s.notifier.Notify(*posterID, models.NotificationSubmissionCreated,
			"Работа сдана на проверку", "Охотник сдал работу по баунти «"+title+"»",
			map[string]interface{}{"bounty_id": bountyID, "submission_id": submission.ID})
	}

	return submission, nil
}

// GetByID возвращает сдачу работы участникам баунти.
func (s *SubmissionService) GetByID(ctx context.Context, userID, submissionID uuid.UUID) (*models.CompletionSubmission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сдачу работы")
	}

	if err := s.checkParticipant(ctx, userID, submission.BountyID); err != nil {
		return nil, err
	}
	return submission, nil
}

// ListByBounty возвращает все сдачи работы участникам баунти.
func (s *SubmissionService) ListByBounty(ctx context.Context, userID, bountyID uuid.UUID) ([]models.CompletionSubmission, error) {
	if err := s.checkParticipant(ctx, userID, bountyID); err != nil {
		return nil, err
	}
	return s.submissions.ListByBounty(ctx, bountyID)
}

func (s *SubmissionService) checkParticipant(ctx context.Context, userID, bountyID uuid.UUID) error {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return apperror.ErrBountyNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if !bounty.IsOwnedBy(userID) && !bounty.IsAcceptedHunter(userID) {
		return apperror.ErrForbidden
	}
	return nil
}
