package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/payment"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// DisputeRepositoryInterface описывает хранилище споров.
type DisputeRepositoryInterface interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, dispute *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetOpenByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.Dispute, error)
	ResolveTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, resolution string, resolvedBy uuid.UUID) error
	ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error)
}

// DisputeService содержит логику открытия и разрешения споров по баунти.
// Разрешение спора — единственный путь движения средств после исчерпания
// доработок.
type DisputeService struct {
	runTx       txRunner
	disputes    DisputeRepositoryInterface
	bounties    BountyRepository
	submissions SubmissionRepositoryForBounty
	wallet      EscrowLedger
	processor   payment.Processor
	notifier    BountyNotifier
}

func NewDisputeService(db *sqlx.DB, disputes DisputeRepositoryInterface, bounties BountyRepository, submissions SubmissionRepositoryForBounty, wallet EscrowLedger, processor payment.Processor, notifier BountyNotifier) *DisputeService {
	return &DisputeService{
		runTx:       dbTxRunner(db),
		disputes:    disputes,
		bounties:    bounties,
		submissions: submissions,
		wallet:      wallet,
		processor:   processor,
		notifier:    notifier,
	}
}

// Open открывает спор вручную одной из сторон баунти в работе.
func (s *DisputeService) Open(ctx context.Context, userID, bountyID uuid.UUID, reason string) (*models.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите причину спора")
	}

	dispute := &models.Dispute{
		ID:          uuid.New(),
		BountyID:    bountyID,
		InitiatorID: &userID,
		Reason:      reason,
		Status:      models.DisputeStatusOpen,
	}

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
		if !bounty.IsOwnedBy(userID) && !bounty.IsAcceptedHunter(userID) {
			return apperror.ErrForbidden
		}
		if err := s.disputes.CreateTx(ctx, tx, dispute); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeConflict, "по этому баунти уже открыт спор")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

// Resolve закрывает спор решением арбитра: выплата охотнику либо возврат
// постеру, в одной транзакции со сменой статуса баунти.
func (s *DisputeService) Resolve(ctx context.Context, arbiterID, disputeID uuid.UUID, resolution string) (*models.Dispute, error) {
	if resolution != models.DisputeResolutionReleaseToHunter && resolution != models.DisputeResolutionRefundToPoster {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимое решение по спору")
	}

	dispute, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "спор не найден")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить спор")
	}
	if dispute.Status != models.DisputeStatusOpen {
		return nil, apperror.New(apperror.ErrCodeConflict, "спор уже разрешён")
	}

	var notifyUsers []uuid.UUID

	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		bounty, err := s.bounties.GetForUpdateTx(ctx, tx, dispute.BountyID)
		if err != nil {
			if errors.Is(err, repository.ErrBountyNotFound) {
				return apperror.ErrBountyNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
		}

		// Блокируем спор и убеждаемся, что он всё ещё открыт.
		locked, err := s.disputes.GetOpenByBountyTx(ctx, tx, dispute.BountyID)
		if err != nil || locked.ID != disputeID {
			return apperror.New(apperror.ErrCodeConflict, "спор уже разрешён")
		}

		target := valueobject.BountyStatusCancelled
		if resolution == models.DisputeResolutionReleaseToHunter {
			target = valueobject.BountyStatusCompleted
			if bounty.AcceptedHunterID == nil {
				return apperror.New(apperror.ErrCodeConflict, "у баунти нет исполнителя, выплата невозможна")
			}
			if bounty.HasReward() {
				if _, err := s.wallet.ReleaseTx(ctx, tx, bounty.ID, *bounty.AcceptedHunterID); err != nil {
					return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "не удалось провести выплату")
				}
				if err := s.processor.Release(ctx, payment.IdempotencyKey(bounty.ID, payment.OpRelease), *bounty.AcceptedHunterID, bounty.Amount); err != nil {
					return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "платёжный сервис отклонил выплату")
				}
			}
			submission, err := s.submissions.GetPendingByBountyTx(ctx, tx, bounty.ID)
			switch {
			case err == nil:
				if err := s.submissions.SetStatusTx(ctx, tx, submission.ID, valueobject.SubmissionStatusApproved, nil); err != nil {
					return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть сдачу работы")
				}
			case !errors.Is(err, repository.ErrSubmissionNotFound):
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сдачу работы")
			}
		} else {
			if bounty.HasReward() {
				if _, err := s.wallet.RefundTx(ctx, tx, bounty.ID); err != nil {
					return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "не удалось вернуть средства")
				}
				if bounty.PosterID != nil {
					if err := s.processor.Refund(ctx, payment.IdempotencyKey(bounty.ID, payment.OpRefund), *bounty.PosterID, bounty.Amount); err != nil {
						return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "платёжный сервис отклонил возврат")
					}
				}
			}
			submission, err := s.submissions.GetPendingByBountyTx(ctx, tx, bounty.ID)
			switch {
			case err == nil:
				feedback := "Спор разрешён в пользу заказчика"
				if err := s.submissions.SetStatusTx(ctx, tx, submission.ID, valueobject.SubmissionStatusRevisionRequested, &feedback); err != nil {
					return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть сдачу работы")
				}
			case !errors.Is(err, repository.ErrSubmissionNotFound):
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сдачу работы")
			}
		}

		if err := s.disputes.ResolveTx(ctx, tx, disputeID, resolution, arbiterID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось разрешить спор")
		}

		if err := s.bounties.SetStatusTx(ctx, tx, bounty.ID, target, bounty.AcceptedHunterID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус баунти")
		}

		if err := s.bounties.AddHistoryTx(ctx, tx, bounty.ID, &arbiterID, models.HistoryActionDisputeResolved,
			map[string]string{"status": string(bounty.Status)},
			map[string]string{"status": string(target), "resolution": resolution}); err != nil {
			return err
		}

		if bounty.PosterID != nil {
			notifyUsers = append(notifyUsers, *bounty.PosterID)
		}
		if bounty.AcceptedHunterID != nil {
			notifyUsers = append(notifyUsers, *bounty.AcceptedHunterID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dispute.Status = models.DisputeStatusResolved
	dispute.Resolution = &resolution
	dispute.ResolvedBy = &arbiterID

	if s.notifier != nil {
		for _, uid := range notifyUsers {
			s.notifier.Notify(uid, models.NotificationDisputeResolved,
				"Спор разрешён", "Арбитраж принял решение по спору",
				map[string]interface{}{"dispute_id": disputeID, "resolution": resolution})
		}
	}

	return dispute, nil
}

// ListOpen возвращает открытые споры для арбитража.
func (s *DisputeService) ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.disputes.ListOpen(ctx, limit, offset)
}
