package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/logger"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/payment"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// UserDeleteRepository — операции над пользователем при удалении аккаунта.
type UserDeleteRepository interface {
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.User, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
}

// BountyCascadeRepository — операции над баунти при удалении аккаунта.
type BountyCascadeRepository interface {
	ListByPosterForUpdateTx(ctx context.Context, tx *sqlx.Tx, posterID uuid.UUID) ([]models.Bounty, error)
	ListByHunterForUpdateTx(ctx context.Context, tx *sqlx.Tx, hunterID uuid.UUID) ([]models.Bounty, error)
	SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.BountyStatus, acceptedHunterID *uuid.UUID) error
	AddHistoryTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error
}

// RequestCascadeRepository — операции над откликами при удалении аккаунта.
type RequestCascadeRepository interface {
	RejectPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int64, error)
	RejectAcceptedByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) error
	RejectPendingByHunterTx(ctx context.Context, tx *sqlx.Tx, hunterID uuid.UUID) (int64, error)
}

// EscrowRefunder — возврат удержанных средств при удалении постера.
type EscrowRefunder interface {
	RefundTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.WalletTransaction, error)
}

// CascadeResult описывает последствия удаления аккаунта.
type CascadeResult struct {
	BountiesArchived int `json:"bounties_archived"`
	BountiesReopened int `json:"bounties_reopened"`
	EscrowsRefunded  int `json:"escrows_refunded"`
	RequestsRejected int `json:"requests_rejected"`
}

// CascadeService реализует политику удаления аккаунта: деньги никогда не
// зависают, чужие баунти не пропадают, финансовый след сохраняется.
type CascadeService struct {
	runTx     txRunner
	users     UserDeleteRepository
	bounties  BountyCascadeRepository
	requests  RequestCascadeRepository
	wallet    EscrowRefunder
	processor payment.Processor
}

func NewCascadeService(db *sqlx.DB, users UserDeleteRepository, bounties BountyCascadeRepository, requests RequestCascadeRepository, wallet EscrowRefunder, processor payment.Processor) *CascadeService {
	return &CascadeService{runTx: dbTxRunner(db), users: users, bounties: bounties, requests: requests, wallet: wallet, processor: processor}
}

// DeleteUser удаляет аккаунт в одной транзакции. Повторный вызов для уже
// удалённого пользователя возвращает NotFound, частичного удаления не
// бывает.
func (s *CascadeService) DeleteUser(ctx context.Context, userID uuid.UUID) (*CascadeResult, error) {
	result := &CascadeResult{}

	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.users.GetForUpdateTx(ctx, tx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperror.ErrUserNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
		}

		// Баунти, где пользователь — постер: активные закрываются в архив,
		// удержанные средства возвращаются на его баланс до удаления строки
		// баланса (след остаётся в ledger).
		posted, err := s.bounties.ListByPosterForUpdateTx(ctx, tx, userID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти постера")
		}
		for i := range posted {
			bounty := &posted[i]
			if bounty.Status.IsTerminal() {
				continue
			}

			if bounty.Status == valueobject.BountyStatusInProgress && bounty.HasReward() {
				if _, err := s.wallet.RefundTx(ctx, tx, bounty.ID); err != nil && !errors.Is(err, repository.ErrEscrowAlreadySettled) {
					return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось вернуть средства по баунти")
				}
				if err := s.processor.Refund(ctx, payment.IdempotencyKey(bounty.ID, payment.OpRefund), userID, bounty.Amount); err != nil {
					return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "платёжный сервис отклонил возврат")
				}
				result.EscrowsRefunded++
			}

			if n, err := s.requests.RejectPendingByBountyTx(ctx, tx, bounty.ID); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить отклики баунти")
			} else {
				result.RequestsRejected += int(n)
			}

			if err := s.bounties.SetStatusTx(ctx, tx, bounty.ID, valueobject.BountyStatusArchived, bounty.AcceptedHunterID); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось архивировать баунти")
			}
			if err := s.bounties.AddHistoryTx(ctx, tx, bounty.ID, nil, models.HistoryActionArchived,
				map[string]string{"status": string(bounty.Status)},
				map[string]string{"status": string(valueobject.BountyStatusArchived), "reason": "poster_deleted"}); err != nil {
				return err
			}
			result.BountiesArchived++
		}

		// Баунти, где пользователь — принятый охотник: возвращаются в
		// открытый статус. Escrow не трогаем, средства ждут нового
		// исполнителя.
		hunted, err := s.bounties.ListByHunterForUpdateTx(ctx, tx, userID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти охотника")
		}
		for i := range hunted {
			bounty := &hunted[i]
			if bounty.Status != valueobject.BountyStatusInProgress {
				continue
			}
			if err := s.requests.RejectAcceptedByBountyTx(ctx, tx, bounty.ID); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить принятый отклик")
			}
			if err := s.bounties.SetStatusTx(ctx, tx, bounty.ID, valueobject.BountyStatusOpen, nil); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось переоткрыть баунти")
			}
			if err := s.bounties.AddHistoryTx(ctx, tx, bounty.ID, nil, models.HistoryActionReopened,
				map[string]string{"status": string(valueobject.BountyStatusInProgress)},
				map[string]string{"status": string(valueobject.BountyStatusOpen), "reason": "hunter_deleted"}); err != nil {
				return err
			}
			result.BountiesReopened++
		}

		// Ожидающие отклики охотника по чужим баунти.
		if n, err := s.requests.RejectPendingByHunterTx(ctx, tx, userID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить отклики пользователя")
		} else {
			result.RequestsRejected += int(n)
		}

		// Персональные данные уходят каскадом, финансовые и парные записи
		// обезличиваются через SET NULL на уровне схемы.
		return s.users.DeleteTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id":           userID,
		"bounties_archived": result.BountiesArchived,
		"bounties_reopened": result.BountiesReopened,
		"escrows_refunded":  result.EscrowsRefunded,
		"requests_rejected": result.RequestsRejected,
	}).Info("аккаунт удалён")

	return result, nil
}
