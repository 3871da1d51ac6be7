package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/logger"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/payment"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
	"github.com/bountyhub/bountyhub-backend/internal/repository/common"
)

// BountyRepository описывает взаимодействие сервиса с хранилищем баунти.
type BountyRepository interface {
	Create(ctx context.Context, bounty *models.Bounty) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Bounty, error)
	List(ctx context.Context, filter repository.BountyFilter) ([]models.Bounty, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, bounty *models.Bounty) error
	SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.BountyStatus, acceptedHunterID *uuid.UUID) error
	AddHistoryTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error
	ListHistory(ctx context.Context, bountyID uuid.UUID) ([]models.BountyHistory, error)
}

// RequestRepositoryForBounty — методы хранилища откликов, нужные
// жизненному циклу баунти.
type RequestRepositoryForBounty interface {
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.BountyRequest, error)
	AcceptTx(ctx context.Context, tx *sqlx.Tx, bountyID, requestID uuid.UUID) error
	RejectPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int64, error)
}

// EscrowLedger — операции кошелькового ledger, выполняемые внутри
// транзакции жизненного цикла баунти.
type EscrowLedger interface {
	HoldTx(ctx context.Context, tx *sqlx.Tx, posterID, bountyID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error)
	ReleaseTx(ctx context.Context, tx *sqlx.Tx, bountyID, hunterID uuid.UUID) (*models.WalletTransaction, error)
	RefundTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.WalletTransaction, error)
}

// SubmissionRepositoryForBounty — методы хранилища сдач, нужные приёмке.
type SubmissionRepositoryForBounty interface {
	GetPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.CompletionSubmission, error)
	SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.SubmissionStatus, feedback *string) error
	CountRevisionsTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int, error)
}

// DisputeRepositoryForBounty — открытие спора при исчерпании доработок.
type DisputeRepositoryForBounty interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, dispute *models.Dispute) error
}

// BountyNotifier рассылает уведомления об изменениях жизненного цикла.
type BountyNotifier interface {
	Notify(userID uuid.UUID, notificationType, title, body string, payload interface{})
}

// txRunner выполняет функцию внутри транзакции базы. Вынесен в поле
// сервиса, чтобы бизнес-логику можно было тестировать без Postgres.
type txRunner func(ctx context.Context, fn func(*sqlx.Tx) error) error

func dbTxRunner(db *sqlx.DB) txRunner {
	return func(ctx context.Context, fn func(*sqlx.Tx) error) error {
		return common.WithTransaction(ctx, db, fn)
	}
}

// BountyService содержит бизнес-логику жизненного цикла баунти:
// создание, принятие отклика с заморозкой средств, приёмку работы
// с выплатой, доработки и отмену с возвратом.
type BountyService struct {
	runTx        txRunner
	bounties     BountyRepository
	requests     RequestRepositoryForBounty
	wallet       EscrowLedger
	submissions  SubmissionRepositoryForBounty
	disputes     DisputeRepositoryForBounty
	users        UserReader
	processor    payment.Processor
	notifier     BountyNotifier
	maxRevisions int
}

func NewBountyService(
	db *sqlx.DB,
	bounties BountyRepository,
	requests RequestRepositoryForBounty,
	wallet EscrowLedger,
	submissions SubmissionRepositoryForBounty,
	disputes DisputeRepositoryForBounty,
	users UserReader,
	processor payment.Processor,
	notifier BountyNotifier,
	maxRevisions int,
) *BountyService {
	if maxRevisions <= 0 {
		maxRevisions = 3
	}
	return &BountyService{
		runTx:        dbTxRunner(db),
		bounties:     bounties,
		requests:     requests,
		wallet:       wallet,
		submissions:  submissions,
		disputes:     disputes,
		users:        users,
		processor:    processor,
		notifier:     notifier,
		maxRevisions: maxRevisions,
	}
}

// CreateBountyInput — параметры создания баунти.
type CreateBountyInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	IsForHonor  bool
	WorkType    string
}

// Create публикует новое баунти. Баунти "за честь" обязано иметь нулевую
// сумму; для остальных допустима любая неотрицательная, при нулевой
// escrow просто не создаётся.
func (s *BountyService) Create(ctx context.Context, posterID uuid.UUID, input CreateBountyInput) (*models.Bounty, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > 200 {
		return nil, apperror.New(apperror.ErrCodeValidation, "заголовок обязателен и не должен превышать 200 символов")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание обязательно")
	}

	workType, err := valueobject.NewWorkType(input.WorkType)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if input.IsForHonor && !amount.IsZero() {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "баунти за честь не может иметь вознаграждения")
	}

	bounty := &models.Bounty{
		ID:          uuid.New(),
		PosterID:    &posterID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Amount:      amount.Decimal(),
		IsForHonor:  input.IsForHonor,
		WorkType:    workType,
		Status:      valueobject.BountyStatusOpen,
	}

	if err := s.bounties.Create(ctx, bounty); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать баунти")
	}

	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		return s.bounties.AddHistoryTx(ctx, tx, bounty.ID, &posterID, models.HistoryActionCreated, nil,
			map[string]string{"status": string(bounty.Status)})
	})
	if err != nil {
		logger.Log.WithError(err).WithField("bounty_id", bounty.ID).Warn("не удалось записать историю создания баунти")
	}

	return bounty, nil
}

func (s *BountyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	bounty, err := s.bounties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	return bounty, nil
}

func (s *BountyService) List(ctx context.Context, filter repository.BountyFilter) ([]models.Bounty, error) {
	return s.bounties.List(ctx, filter)
}

// UpdateBountyInput — параметры редактирования открытого баунти.
type UpdateBountyInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	IsForHonor  bool
	WorkType    string
}

// Update редактирует баунти. Разрешено только владельцу и только пока
// баунти открыто: после принятия охотника условия зафиксированы.
func (s *BountyService) Update(ctx context.Context, posterID, bountyID uuid.UUID, input UpdateBountyInput) (*models.Bounty, error) {
	var updated *models.Bounty
	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		bounty, err := s.getOwnedForUpdate(ctx, tx, bountyID, posterID)
		if err != nil {
			return err
		}
		if bounty.Status != valueobject.BountyStatusOpen {
			return apperror.ErrBountyNotOpen
		}

		amount, err := valueobject.NewAmount(input.Amount)
		if err != nil {
			return err
		}
		if input.IsForHonor && !amount.IsZero() {
			return apperror.New(apperror.ErrCodeInvalidAmount, "баунти за честь не может иметь вознаграждения")
		}
		workType, err := valueobject.NewWorkType(input.WorkType)
		if err != nil {
			return err
		}

		bounty.Title = strings.TrimSpace(input.Title)
		bounty.Description = strings.TrimSpace(input.Description)
		bounty.Amount = amount.Decimal()
		bounty.IsForHonor = input.IsForHonor
		bounty.WorkType = workType
		if bounty.Title == "" || bounty.Description == "" {
			return apperror.New(apperror.ErrCodeValidation, "заголовок и описание обязательны")
		}

		if err := s.bounties.UpdateTx(ctx, tx, bounty); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить баунти")
		}
		updated = bounty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AcceptRequest принимает отклик охотника. Для денежного баунти в той же
// транзакции замораживается вознаграждение: либо охотник принят и средства
// удержаны, либо ни того ни другого.
func (s *BountyService) AcceptRequest(ctx context.Context, posterID, bountyID, requestID uuid.UUID) (*models.Bounty, error) {
	var (
		bounty   *models.Bounty
		hunterID uuid.UUID
	)

	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		bounty, err = s.getOwnedForUpdate(ctx, tx, bountyID, posterID)
		if err != nil {
			return err
		}
		if bounty.Status != valueobject.BountyStatusOpen {
			return apperror.ErrBountyNotOpen
		}

		request, err := s.requests.GetForUpdateTx(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, repository.ErrRequestNotFound) {
				return apperror.ErrRequestNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
		}
		if request.BountyID != bountyID {
			return apperror.ErrRequestNotFound
		}
		if request.Status != valueobject.RequestStatusPending || request.HunterID == nil {
			return apperror.ErrRequestNotPending
		}
		hunterID = *request.HunterID

		if bounty.HasReward() {
			if _, err := s.wallet.HoldTx(ctx, tx, posterID, bountyID, bounty.Amount); err != nil {
				if errors.Is(err, repository.ErrInsufficientFunds) {
					return apperror.ErrInsufficientBalance
				}
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заморозить средства")
			}
			if err := s.callProcessor(ctx, payment.OpHold, bountyID, posterID, bounty.Amount); err != nil {
				return err
			}
		}

		if err := s.requests.AcceptTx(ctx, tx, bountyID, requestID); err != nil {
			if errors.Is(err, repository.ErrRequestNotFound) {
				return apperror.ErrRequestNotPending
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять заявку")
		}

		if err := s.bounties.SetStatusTx(ctx, tx, bountyID, valueobject.BountyStatusInProgress, request.HunterID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус баунти")
		}
		bounty.Status = valueobject.BountyStatusInProgress
		bounty.AcceptedHunterID = request.HunterID

		return s.bounties.AddHistoryTx(ctx, tx, bountyID, &posterID, models.HistoryActionRequestAccepted,
			map[string]string{"status": string(valueobject.BountyStatusOpen)},
			map[string]interface{}{"status": string(valueobject.BountyStatusInProgress), "hunter_id": hunterID})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(hunterID, models.NotificationRequestAccepted,
			"Ваш отклик принят", "Вы назначены исполнителем баунти «"+bounty.Title+"»",
			map[string]interface{}{"bounty_id": bountyID})
	}

	return bounty, nil
}

// ApproveCompletion принимает работу охотника. Выплата вознаграждения и
// смена статуса атомарны: при отказе платёжного контура баунти остаётся
// в работе, сдача — на рассмотрении. Подтверждённый email заказчика
// проверяется на сервере, токену не доверяем.
func (s *BountyService) ApproveCompletion(ctx context.Context, posterID, bountyID uuid.UUID) (*models.Bounty, error) {
	poster, err := s.users.GetByID(ctx, posterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	if !poster.EmailVerified {
		return nil, apperror.ErrEmailNotVerified
	}

	var (
		bounty   *models.Bounty
		hunterID *uuid.UUID
	)

	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		bounty, err = s.getOwnedForUpdate(ctx, tx, bountyID, posterID)
		if err != nil {
			return err
		}
		if bounty.Status != valueobject.BountyStatusInProgress {
			return apperror.ErrBountyNotInProgress
		}

		submission, err := s.submissions.GetPendingByBountyTx(ctx, tx, bountyID)
		if err != nil {
			if errors.Is(err, repository.ErrSubmissionNotFound) {
				return apperror.ErrSubmissionNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сдачу работы")
		}

		if err := s.submissions.SetStatusTx(ctx, tx, submission.ID, valueobject.SubmissionStatusApproved, nil); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить сдачу работы")
		}

		hunterID = bounty.AcceptedHunterID
		if bounty.HasReward() && hunterID != nil {
			if _, err := s.wallet.ReleaseTx(ctx, tx, bountyID, *hunterID); err != nil {
				if errors.Is(err, repository.ErrEscrowAlreadySettled) {
					return apperror.New(apperror.ErrCodeConflict, "средства по этому баунти уже переведены")
				}
				return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "не удалось провести выплату")
			}
			if err := s.callProcessor(ctx, payment.OpRelease, bountyID, *hunterID, bounty.Amount); err != nil {
				return err
			}
		}

		if err := s.bounties.SetStatusTx(ctx, tx, bountyID, valueobject.BountyStatusCompleted, hunterID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить баунти")
		}
		bounty.Status = valueobject.BountyStatusCompleted

		return s.bounties.AddHistoryTx(ctx, tx, bountyID, &posterID, models.HistoryActionCompleted,
			map[string]string{"status": string(valueobject.BountyStatusInProgress)},
			map[string]string{"status": string(valueobject.BountyStatusCompleted)})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && hunterID != nil {
		s.notifier.Notify(*hunterID, models.NotificationBountyCompleted,
			"Работа принята", "Заказчик принял работу по баунти «"+bounty.Title+"»",
			map[string]interface{}{"bounty_id": bountyID})
		if bounty.HasReward() {
			s.notifier.Notify(*hunterID, models.NotificationFundsReleased,
				"Вознаграждение выплачено", "На ваш баланс зачислено "+bounty.Amount.StringFixed(2),
				map[string]interface{}{"bounty_id": bountyID, "amount": bounty.Amount.String()})
		}
	}

	return bounty, nil
}

// RevisionResult — итог запроса доработки. При исчерпании лимита вместо
// очередной доработки открывается спор.
type RevisionResult struct {
	Submission *models.CompletionSubmission `json:"submission,omitempty"`
	Dispute    *models.Dispute              `json:"dispute,omitempty"`
}

// RequestRevision возвращает работу на доработку. Статус баунти не
// меняется, охотник может сдать работу повторно. После исчерпания лимита
// доработок автоматически открывается спор.
func (s *BountyService) RequestRevision(ctx context.Context, posterID, bountyID uuid.UUID, feedback string) (*RevisionResult, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите, что нужно доработать")
	}

	result := &RevisionResult{}
	var hunterID *uuid.UUID

	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		bounty, err := s.getOwnedForUpdate(ctx, tx, bountyID, posterID)
		if err != nil {
			return err
		}
		if bounty.Status != valueobject.BountyStatusInProgress {
			return apperror.ErrBountyNotInProgress
		}
		hunterID = bounty.AcceptedHunterID

		submission, err := s.submissions.GetPendingByBountyTx(ctx, tx, bountyID)
		if err != nil {
			if errors.Is(err, repository.ErrSubmissionNotFound) {
				return apperror.ErrSubmissionNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сдачу работы")
		}

		revisions, err := s.submissions.CountRevisionsTx(ctx, tx, bountyID)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать доработки")
		}

		if revisions >= s.maxRevisions {
			// Лимит исчерпан: сдача остаётся на рассмотрении, судьбу
			// вознаграждения решает спор.
			dispute := &models.Dispute{
				ID:          uuid.New(),
				BountyID:    bountyID,
				InitiatorID: &posterID,
				Reason:      "Исчерпан лимит доработок: " + feedback,
				Status:      models.DisputeStatusOpen,
			}
			if err := s.disputes.CreateTx(ctx, tx, dispute); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось открыть спор")
			}
			result.Dispute = dispute
			return s.bounties.AddHistoryTx(ctx, tx, bountyID, &posterID, models.HistoryActionRevisionRequested,
				map[string]int{"revisions": revisions},
				map[string]string{"escalated": "dispute"})
		}

		if err := s.submissions.SetStatusTx(ctx, tx, submission.ID, valueobject.SubmissionStatusRevisionRequested, &feedback); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось вернуть работу на доработку")
		}
		submission.Status = valueobject.SubmissionStatusRevisionRequested
		submission.Feedback = &feedback
		result.Submission = submission

		return s.bounties.AddHistoryTx(ctx, tx, bountyID, &posterID, models.HistoryActionRevisionRequested,
			map[string]int{"revisions": revisions},
			map[string]int{"revisions": revisions + 1})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && hunterID != nil {
		if result.Dispute != nil {
			s.notifier.Notify(*hunterID, models.NotificationDisputeOpened,
				"Открыт спор", "По баунти открыт спор после исчерпания лимита доработок",
				map[string]interface{}{"bounty_id": bountyID, "dispute_id": result.Dispute.ID})
		} else {
			s.notifier.Notify(*hunterID, models.NotificationRevisionRequested,
				"Работа возвращена на доработку", feedback,
				map[string]interface{}{"bounty_id": bountyID})
		}
	}

	return result, nil
}

// Cancel отменяет баунти. Удержанные средства возвращаются постеру в той
// же транзакции, ожидающие отклики отклоняются. Завершённое баунти
// отменить нельзя.
func (s *BountyService) Cancel(ctx context.Context, posterID, bountyID uuid.UUID) (*models.Bounty, error) {
	return s.closeBounty(ctx, posterID, bountyID, valueobject.BountyStatusCancelled, models.HistoryActionCancelled)
}

// Archive архивирует баунти. Семантика возврата средств совпадает с
// отменой, меняется только итоговый статус.
func (s *BountyService) Archive(ctx context.Context, posterID, bountyID uuid.UUID) (*models.Bounty, error) {
	return s.closeBounty(ctx, posterID, bountyID, valueobject.BountyStatusArchived, models.HistoryActionArchived)
}

func (s *BountyService) closeBounty(ctx context.Context, posterID, bountyID uuid.UUID, target valueobject.BountyStatus, action string) (*models.Bounty, error) {
	var (
		bounty   *models.Bounty
		hunterID *uuid.UUID
	)

	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		bounty, err = s.getOwnedForUpdate(ctx, tx, bountyID, posterID)
		if err != nil {
			return err
		}
		if bounty.Status == valueobject.BountyStatusCompleted {
			return apperror.ErrCannotCancelCompleted
		}
		if !bounty.Status.CanTransitionTo(target) {
			return apperror.New(apperror.ErrCodeConflict, "баунти уже закрыто")
		}
		hunterID = bounty.AcceptedHunterID

		if bounty.Status == valueobject.BountyStatusInProgress && bounty.HasReward() {
			if _, err := s.wallet.RefundTx(ctx, tx, bountyID); err != nil {
				if errors.Is(err, repository.ErrEscrowAlreadySettled) {
					return apperror.New(apperror.ErrCodeConflict, "средства по этому баунти уже переведены")
				}
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось вернуть средства")
			}
			if err := s.callProcessor(ctx, payment.OpRefund, bountyID, posterID, bounty.Amount); err != nil {
				return err
			}
		}

		if _, err := s.requests.RejectPendingByBountyTx(ctx, tx, bountyID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить ожидающие заявки")
		}

		oldStatus := bounty.Status
		if err := s.bounties.SetStatusTx(ctx, tx, bountyID, target, hunterID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть баунти")
		}
		bounty.Status = target

		return s.bounties.AddHistoryTx(ctx, tx, bountyID, &posterID, action,
			map[string]string{"status": string(oldStatus)},
			map[string]string{"status": string(target)})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && hunterID != nil {
		s.notifier.Notify(*hunterID, models.NotificationBountyCancelled,
			"Баунти закрыто", "Заказчик закрыл баунти «"+bounty.Title+"»",
			map[string]interface{}{"bounty_id": bountyID, "status": bounty.Status})
	}

	return bounty, nil
}

func (s *BountyService) ListHistory(ctx context.Context, bountyID uuid.UUID) ([]models.BountyHistory, error) {
	if _, err := s.GetByID(ctx, bountyID); err != nil {
		return nil, err
	}
	return s.bounties.ListHistory(ctx, bountyID)
}

// getOwnedForUpdate блокирует баунти и проверяет владение.
func (s *BountyService) getOwnedForUpdate(ctx context.Context, tx *sqlx.Tx, bountyID, posterID uuid.UUID) (*models.Bounty, error) {
	bounty, err := s.bounties.GetForUpdateTx(ctx, tx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrBountyNotFound) {
			return nil, apperror.ErrBountyNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить баунти")
	}
	if !bounty.IsOwnedBy(posterID) {
		return nil, apperror.ErrForbidden
	}
	return bounty, nil
}

// callProcessor зовёт платёжный кастодиан с таймаутом из контекста вызова.
// Любая ошибка откатывает объемлющую транзакцию.
func (s *BountyService) callProcessor(ctx context.Context, op string, bountyID, userID uuid.UUID, amount decimal.Decimal) error {
	key := payment.IdempotencyKey(bountyID, op)

	var err error
	switch op {
	case payment.OpHold:
		err = s.processor.Hold(ctx, key, userID, amount)
	case payment.OpRelease:
		err = s.processor.Release(ctx, key, userID, amount)
	case payment.OpRefund:
		err = s.processor.Refund(ctx, key, userID, amount)
	}
	if err == nil {
		return nil
	}

	logger.Log.WithError(err).WithFields(map[string]interface{}{
		"bounty_id": bountyID,
		"op":        op,
	}).Error("платёжный кастодиан вернул ошибку, транзакция откатывается")

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrExternalPaymentTimeout
	}
	return apperror.Wrap(err, apperror.ErrCodePayoutFailed, "платёжный сервис отклонил операцию")
}
