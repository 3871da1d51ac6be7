package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/payment"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

type mockBountyRepo struct {
	mock.Mock
}

func (m *mockBountyRepo) Create(ctx context.Context, bounty *models.Bounty) error {
	args := m.Called(ctx, bounty)
	return args.Error(0)
}

func (m *mockBountyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) List(ctx context.Context, filter repository.BountyFilter) ([]models.Bounty, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) UpdateTx(ctx context.Context, tx *sqlx.Tx, bounty *models.Bounty) error {
	args := m.Called(ctx, tx, bounty)
	return args.Error(0)
}

func (m *mockBountyRepo) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.BountyStatus, acceptedHunterID *uuid.UUID) error {
	args := m.Called(ctx, tx, id, status, acceptedHunterID)
	return args.Error(0)
}

func (m *mockBountyRepo) AddHistoryTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error {
	args := m.Called(ctx, tx, bountyID, userID, action, oldValue, newValue)
	return args.Error(0)
}

func (m *mockBountyRepo) ListHistory(ctx context.Context, bountyID uuid.UUID) ([]models.BountyHistory, error) {
	args := m.Called(ctx, bountyID)
	return args.Get(0).([]models.BountyHistory), args.Error(1)
}

type mockRequestLifecycleRepo struct {
	mock.Mock
}

func (m *mockRequestLifecycleRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.BountyRequest, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BountyRequest), args.Error(1)
}

func (m *mockRequestLifecycleRepo) AcceptTx(ctx context.Context, tx *sqlx.Tx, bountyID, requestID uuid.UUID) error {
	args := m.Called(ctx, tx, bountyID, requestID)
	return args.Error(0)
}

func (m *mockRequestLifecycleRepo) RejectPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, bountyID)
	return args.Get(0).(int64), args.Error(1)
}

type mockEscrowLedger struct {
	mock.Mock
}

func (m *mockEscrowLedger) HoldTx(ctx context.Context, tx *sqlx.Tx, posterID, bountyID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error) {
	args := m.Called(ctx, tx, posterID, bountyID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletTransaction), args.Error(1)
}

func (m *mockEscrowLedger) ReleaseTx(ctx context.Context, tx *sqlx.Tx, bountyID, hunterID uuid.UUID) (*models.WalletTransaction, error) {
	args := m.Called(ctx, tx, bountyID, hunterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletTransaction), args.Error(1)
}

func (m *mockEscrowLedger) RefundTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.WalletTransaction, error) {
	args := m.Called(ctx, tx, bountyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletTransaction), args.Error(1)
}

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) GetPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.CompletionSubmission, error) {
	args := m.Called(ctx, tx, bountyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompletionSubmission), args.Error(1)
}

func (m *mockSubmissionRepo) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.SubmissionStatus, feedback *string) error {
	args := m.Called(ctx, tx, id, status, feedback)
	return args.Error(0)
}

func (m *mockSubmissionRepo) CountRevisionsTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, bountyID)
	return args.Int(0), args.Error(1)
}

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, dispute *models.Dispute) error {
	args := m.Called(ctx, tx, dispute)
	return args.Error(0)
}

// stubProcessor имитирует платёжный кастодиан, всегда отвечающий одной
// и той же ошибкой.
type stubProcessor struct {
	err error
}

func (p *stubProcessor) Hold(ctx context.Context, key string, posterID uuid.UUID, amount decimal.Decimal) error {
	return p.err
}

func (p *stubProcessor) Release(ctx context.Context, key string, hunterID uuid.UUID, amount decimal.Decimal) error {
	return p.err
}

func (p *stubProcessor) Refund(ctx context.Context, key string, posterID uuid.UUID, amount decimal.Decimal) error {
	return p.err
}

// bountyFixture собирает сервис на моках. Транзакция подменяется прямым
// вызовом: репозитории в тестах работают без базы.
type bountyFixture struct {
	bounties    *mockBountyRepo
	requests    *mockRequestLifecycleRepo
	wallet      *mockEscrowLedger
	submissions *mockSubmissionRepo
	disputes    *mockDisputeRepo
	users       *mockUserReader
	notifier    *mockNotifier
	svc         *BountyService
}

func newBountyFixture(processor payment.Processor) *bountyFixture {
	f := &bountyFixture{
		bounties:    new(mockBountyRepo),
		requests:    new(mockRequestLifecycleRepo),
		wallet:      new(mockEscrowLedger),
		submissions: new(mockSubmissionRepo),
		disputes:    new(mockDisputeRepo),
		users:       new(mockUserReader),
		notifier:    new(mockNotifier),
	}
	if processor == nil {
		processor = payment.NewInternalProcessor()
	}
	f.svc = &BountyService{
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return fn(nil)
		},
		bounties:     f.bounties,
		requests:     f.requests,
		wallet:       f.wallet,
		submissions:  f.submissions,
		disputes:     f.disputes,
		users:        f.users,
		processor:    processor,
		notifier:     f.notifier,
		maxRevisions: 3,
	}
	return f
}

func rewardBounty(posterID uuid.UUID, status valueobject.BountyStatus) *models.Bounty {
	return &models.Bounty{
		ID:          uuid.New(),
		PosterID:    &posterID,
		Title:       "Обжаловать штраф",
		Description: "Составить жалобу и подать в срок",
		Amount:      decimal.NewFromInt(100),
		WorkType:    valueobject.WorkTypeOnline,
		Status:      status,
	}
}

func verifiedUser(id uuid.UUID) *models.User {
	return &models.User{ID: id, EmailVerified: true}
}

func TestBountyService_Create_ZeroAmountWithoutEscrow(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()

	f.bounties.On("Create", ctx, mock.AnythingOfType("*models.Bounty")).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, mock.Anything, &posterID, models.HistoryActionCreated, mock.Anything, mock.Anything).Return(nil)

	bounty, err := f.svc.Create(ctx, posterID, CreateBountyInput{
		Title:       "Вычитать статью",
		Description: "Стилистика и опечатки",
		Amount:      decimal.Zero,
		IsForHonor:  false,
		WorkType:    "online",
	})
	require.NoError(t, err)
	assert.False(t, bounty.HasReward())
	f.bounties.AssertExpectations(t)
}

func TestBountyService_Create_HonorWithRewardRejected(t *testing.T) {
	f := newBountyFixture(nil)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateBountyInput{
		Title:       "Помочь с переездом",
		Description: "Перенести коробки",
		Amount:      decimal.NewFromInt(50),
		IsForHonor:  true,
		WorkType:    "in_person",
	})
	assert.Equal(t, apperror.ErrCodeInvalidAmount, apperror.CodeOf(err))
	f.bounties.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBountyService_Create_NegativeAmountRejected(t *testing.T) {
	f := newBountyFixture(nil)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateBountyInput{
		Title:       "Настроить бэкапы",
		Description: "pg_dump по расписанию",
		Amount:      decimal.NewFromInt(-1),
		WorkType:    "online",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidAmount)
}

func TestBountyService_AcceptRequest_HoldsEscrowOnce(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusOpen)
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bounty.ID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.requests.On("GetForUpdateTx", ctx, mock.Anything, request.ID).Return(request, nil)
	f.wallet.On("HoldTx", ctx, mock.Anything, posterID, bounty.ID, bounty.Amount).Return(&models.WalletTransaction{ID: uuid.New()}, nil).Once()
	f.requests.On("AcceptTx", ctx, mock.Anything, bounty.ID, request.ID).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusInProgress, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &posterID, models.HistoryActionRequestAccepted, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", hunterID, models.NotificationRequestAccepted, mock.Anything, mock.Anything, mock.Anything).Return()

	updated, err := f.svc.AcceptRequest(ctx, posterID, bounty.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BountyStatusInProgress, updated.Status)
	f.wallet.AssertNumberOfCalls(t, "HoldTx", 1)
	f.requests.AssertExpectations(t)
}

func TestBountyService_AcceptRequest_BountyNotOpen(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)

	_, err := f.svc.AcceptRequest(ctx, posterID, bounty.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrBountyNotOpen)
	f.wallet.AssertNotCalled(t, "HoldTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.requests.AssertNotCalled(t, "AcceptTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_AcceptRequest_HonorSkipsEscrow(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusOpen)
	bounty.Amount = decimal.Zero
	bounty.IsForHonor = true
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bounty.ID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.requests.On("GetForUpdateTx", ctx, mock.Anything, request.ID).Return(request, nil)
	f.requests.On("AcceptTx", ctx, mock.Anything, bounty.ID, request.ID).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusInProgress, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &posterID, models.HistoryActionRequestAccepted, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", hunterID, models.NotificationRequestAccepted, mock.Anything, mock.Anything, mock.Anything).Return()

	_, err := f.svc.AcceptRequest(ctx, posterID, bounty.ID, request.ID)
	require.NoError(t, err)
	f.wallet.AssertNotCalled(t, "HoldTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_AcceptRequest_InsufficientFunds(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusOpen)
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bounty.ID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.requests.On("GetForUpdateTx", ctx, mock.Anything, request.ID).Return(request, nil)
	f.wallet.On("HoldTx", ctx, mock.Anything, posterID, bounty.ID, bounty.Amount).Return(nil, repository.ErrInsufficientFunds)

	_, err := f.svc.AcceptRequest(ctx, posterID, bounty.ID, request.ID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)
	f.requests.AssertNotCalled(t, "AcceptTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.bounties.AssertNotCalled(t, "SetStatusTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_AcceptRequest_ProcessorTimeout(t *testing.T) {
	f := newBountyFixture(&stubProcessor{err: context.DeadlineExceeded})
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusOpen)
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bounty.ID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.requests.On("GetForUpdateTx", ctx, mock.Anything, request.ID).Return(request, nil)
	f.wallet.On("HoldTx", ctx, mock.Anything, posterID, bounty.ID, bounty.Amount).Return(&models.WalletTransaction{ID: uuid.New()}, nil)

	_, err := f.svc.AcceptRequest(ctx, posterID, bounty.ID, request.ID)
	assert.ErrorIs(t, err, apperror.ErrExternalPaymentTimeout)
	f.requests.AssertNotCalled(t, "AcceptTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_ApproveCompletion_ReleasesOnce(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID
	submission := &models.CompletionSubmission{ID: uuid.New(), BountyID: bounty.ID, HunterID: &hunterID}

	f.users.On("GetByID", ctx, posterID).Return(verifiedUser(posterID), nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(submission, nil)
	f.submissions.On("SetStatusTx", ctx, mock.Anything, submission.ID, valueobject.SubmissionStatusApproved, (*string)(nil)).Return(nil)
	f.wallet.On("ReleaseTx", ctx, mock.Anything, bounty.ID, hunterID).Return(&models.WalletTransaction{ID: uuid.New()}, nil).Once()
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusCompleted, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &posterID, models.HistoryActionCompleted, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", hunterID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	updated, err := f.svc.ApproveCompletion(ctx, posterID, bounty.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BountyStatusCompleted, updated.Status)
	f.wallet.AssertNumberOfCalls(t, "ReleaseTx", 1)
}

func TestBountyService_ApproveCompletion_EmailNotVerified(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()

	f.users.On("GetByID", ctx, posterID).Return(&models.User{ID: posterID, EmailVerified: false}, nil)

	_, err := f.svc.ApproveCompletion(ctx, posterID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrEmailNotVerified)
	f.bounties.AssertNotCalled(t, "GetForUpdateTx", mock.Anything, mock.Anything, mock.Anything)
	f.wallet.AssertNotCalled(t, "ReleaseTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_ApproveCompletion_AlreadyCompleted(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusCompleted)
	bounty.AcceptedHunterID = &hunterID

	f.users.On("GetByID", ctx, posterID).Return(verifiedUser(posterID), nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)

	_, err := f.svc.ApproveCompletion(ctx, posterID, bounty.ID)
	assert.ErrorIs(t, err, apperror.ErrBountyNotInProgress)
	f.wallet.AssertNotCalled(t, "ReleaseTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_ApproveCompletion_EscrowAlreadySettled(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID
	submission := &models.CompletionSubmission{ID: uuid.New(), BountyID: bounty.ID, HunterID: &hunterID}

	f.users.On("GetByID", ctx, posterID).Return(verifiedUser(posterID), nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(submission, nil)
	f.submissions.On("SetStatusTx", ctx, mock.Anything, submission.ID, valueobject.SubmissionStatusApproved, (*string)(nil)).Return(nil)
	f.wallet.On("ReleaseTx", ctx, mock.Anything, bounty.ID, hunterID).Return(nil, repository.ErrEscrowAlreadySettled)

	_, err := f.svc.ApproveCompletion(ctx, posterID, bounty.ID)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))
	f.bounties.AssertNotCalled(t, "SetStatusTx", mock.Anything, mock.Anything, mock.Anything, valueobject.BountyStatusCompleted, mock.Anything)
}

func TestBountyService_ApproveCompletion_HonorSkipsPayout(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.Amount = decimal.Zero
	bounty.IsForHonor = true
	bounty.AcceptedHunterID = &hunterID
	submission := &models.CompletionSubmission{ID: uuid.New(), BountyID: bounty.ID, HunterID: &hunterID}

	f.users.On("GetByID", ctx, posterID).Return(verifiedUser(posterID), nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(submission, nil)
	f.submissions.On("SetStatusTx", ctx, mock.Anything, submission.ID, valueobject.SubmissionStatusApproved, (*string)(nil)).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusCompleted, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &posterID, models.HistoryActionCompleted, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", hunterID, models.NotificationBountyCompleted, mock.Anything, mock.Anything, mock.Anything).Return()

	_, err := f.svc.ApproveCompletion(ctx, posterID, bounty.ID)
	require.NoError(t, err)
	f.wallet.AssertNotCalled(t, "ReleaseTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_RequestRevision_EscalatesToDispute(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID
	submission := &models.CompletionSubmission{ID: uuid.New(), BountyID: bounty.ID, HunterID: &hunterID}

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(submission, nil)
	f.submissions.On("CountRevisionsTx", ctx, mock.Anything, bounty.ID).Return(3, nil)
	f.disputes.On("CreateTx", ctx, mock.Anything, mock.AnythingOfType("*models.Dispute")).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &posterID, models.HistoryActionRevisionRequested, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", hunterID, models.NotificationDisputeOpened, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := f.svc.RequestRevision(ctx, posterID, bounty.ID, "не работает на проде")
	require.NoError(t, err)
	require.NotNil(t, result.Dispute)
	assert.Nil(t, result.Submission)
	f.submissions.AssertNotCalled(t, "SetStatusTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_Cancel_RefundsEscrow(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.wallet.On("RefundTx", ctx, mock.Anything, bounty.ID).Return(&models.WalletTransaction{ID: uuid.New()}, nil).Once()
	f.requests.On("RejectPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(int64(0), nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusCancelled, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &posterID, models.HistoryActionCancelled, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", hunterID, models.NotificationBountyCancelled, mock.Anything, mock.Anything, mock.Anything).Return()

	updated, err := f.svc.Cancel(ctx, posterID, bounty.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BountyStatusCancelled, updated.Status)
	f.wallet.AssertNumberOfCalls(t, "RefundTx", 1)
}

func TestBountyService_Cancel_CompletedForbidden(t *testing.T) {
	f := newBountyFixture(nil)
	ctx := context.Background()
	posterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusCompleted)

	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)

	_, err := f.svc.Cancel(ctx, posterID, bounty.ID)
	assert.ErrorIs(t, err, apperror.ErrCannotCancelCompleted)
	f.wallet.AssertNotCalled(t, "RefundTx", mock.Anything, mock.Anything, mock.Anything)
}
