package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/payment"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

type mockUserDeleteRepo struct {
	mock.Mock
}

func (m *mockUserDeleteRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserDeleteRepo) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

type mockBountyCascadeRepo struct {
	mock.Mock
}

func (m *mockBountyCascadeRepo) ListByPosterForUpdateTx(ctx context.Context, tx *sqlx.Tx, posterID uuid.UUID) ([]models.Bounty, error) {
	args := m.Called(ctx, tx, posterID)
	return args.Get(0).([]models.Bounty), args.Error(1)
}

func (m *mockBountyCascadeRepo) ListByHunterForUpdateTx(ctx context.Context, tx *sqlx.Tx, hunterID uuid.UUID) ([]models.Bounty, error) {
	args := m.Called(ctx, tx, hunterID)
	return args.Get(0).([]models.Bounty), args.Error(1)
}

func (m *mockBountyCascadeRepo) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status valueobject.BountyStatus, acceptedHunterID *uuid.UUID) error {
	args := m.Called(ctx, tx, id, status, acceptedHunterID)
	return args.Error(0)
}

func (m *mockBountyCascadeRepo) AddHistoryTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID, userID *uuid.UUID, action string, oldValue, newValue interface{}) error {
	args := m.Called(ctx, tx, bountyID, userID, action, oldValue, newValue)
	return args.Error(0)
}

type mockRequestCascadeRepo struct {
	mock.Mock
}

func (m *mockRequestCascadeRepo) RejectPendingByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, bountyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRequestCascadeRepo) RejectAcceptedByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) error {
	args := m.Called(ctx, tx, bountyID)
	return args.Error(0)
}

func (m *mockRequestCascadeRepo) RejectPendingByHunterTx(ctx context.Context, tx *sqlx.Tx, hunterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, hunterID)
	return args.Get(0).(int64), args.Error(1)
}

type cascadeFixture struct {
	users    *mockUserDeleteRepo
	bounties *mockBountyCascadeRepo
	requests *mockRequestCascadeRepo
	wallet   *mockEscrowLedger
	svc      *CascadeService
}

func newCascadeFixture() *cascadeFixture {
	f := &cascadeFixture{
		users:    new(mockUserDeleteRepo),
		bounties: new(mockBountyCascadeRepo),
		requests: new(mockRequestCascadeRepo),
		wallet:   new(mockEscrowLedger),
	}
	f.svc = &CascadeService{
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return fn(nil)
		},
		users:     f.users,
		bounties:  f.bounties,
		requests:  f.requests,
		wallet:    f.wallet,
		processor: payment.NewInternalProcessor(),
	}
	return f
}

func TestCascadeService_DeleteUser_RefundsAndArchives(t *testing.T) {
	f := newCascadeFixture()
	ctx := context.Background()
	userID := uuid.New()
	hunterID := uuid.New()

	active := rewardBounty(userID, valueobject.BountyStatusInProgress)
	active.AcceptedHunterID = &hunterID
	open := rewardBounty(userID, valueobject.BountyStatusOpen)
	done := rewardBounty(userID, valueobject.BountyStatusCompleted)

	f.users.On("GetForUpdateTx", ctx, mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	f.bounties.On("ListByPosterForUpdateTx", ctx, mock.Anything, userID).Return([]models.Bounty{*active, *open, *done}, nil)
	f.wallet.On("RefundTx", ctx, mock.Anything, active.ID).Return(&models.WalletTransaction{ID: uuid.New()}, nil).Once()
	f.requests.On("RejectPendingByBountyTx", ctx, mock.Anything, active.ID).Return(int64(0), nil)
	f.requests.On("RejectPendingByBountyTx", ctx, mock.Anything, open.ID).Return(int64(2), nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, active.ID, valueobject.BountyStatusArchived, &hunterID).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, open.ID, valueobject.BountyStatusArchived, (*uuid.UUID)(nil)).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, mock.Anything, (*uuid.UUID)(nil), models.HistoryActionArchived, mock.Anything, mock.Anything).Return(nil)
	f.bounties.On("ListByHunterForUpdateTx", ctx, mock.Anything, userID).Return([]models.Bounty{}, nil)
	f.requests.On("RejectPendingByHunterTx", ctx, mock.Anything, userID).Return(int64(1), nil)
	f.users.On("DeleteTx", ctx, mock.Anything, userID).Return(nil)

	result, err := f.svc.DeleteUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.BountiesArchived)
	assert.Equal(t, 1, result.EscrowsRefunded)
	assert.Equal(t, 3, result.RequestsRejected)
	f.wallet.AssertNumberOfCalls(t, "RefundTx", 1)
	// Завершённое баунти не трогаем.
	f.bounties.AssertNotCalled(t, "SetStatusTx", mock.Anything, mock.Anything, done.ID, mock.Anything, mock.Anything)
}

func TestCascadeService_DeleteUser_ReopensHuntedBounties(t *testing.T) {
	f := newCascadeFixture()
	ctx := context.Background()
	userID := uuid.New()
	posterID := uuid.New()

	hunted := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	hunted.AcceptedHunterID = &userID

	f.users.On("GetForUpdateTx", ctx, mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	f.bounties.On("ListByPosterForUpdateTx", ctx, mock.Anything, userID).Return([]models.Bounty{}, nil)
	f.bounties.On("ListByHunterForUpdateTx", ctx, mock.Anything, userID).Return([]models.Bounty{*hunted}, nil)
	f.requests.On("RejectAcceptedByBountyTx", ctx, mock.Anything, hunted.ID).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, hunted.ID, valueobject.BountyStatusOpen, (*uuid.UUID)(nil)).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, hunted.ID, (*uuid.UUID)(nil), models.HistoryActionReopened, mock.Anything, mock.Anything).Return(nil)
	f.requests.On("RejectPendingByHunterTx", ctx, mock.Anything, userID).Return(int64(0), nil)
	f.users.On("DeleteTx", ctx, mock.Anything, userID).Return(nil)

	result, err := f.svc.DeleteUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BountiesReopened)
	// Эскроу остаётся ждать нового исполнителя.
	f.wallet.AssertNotCalled(t, "RefundTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCascadeService_DeleteUser_SecondCallNotFound(t *testing.T) {
	f := newCascadeFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.users.On("GetForUpdateTx", ctx, mock.Anything, userID).Return(nil, repository.ErrUserNotFound)

	_, err := f.svc.DeleteUser(ctx, userID)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
	f.users.AssertNotCalled(t, "DeleteTx", mock.Anything, mock.Anything, mock.Anything)
	f.bounties.AssertNotCalled(t, "ListByPosterForUpdateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestCascadeService_DeleteUser_ToleratesSettledEscrow(t *testing.T) {
	f := newCascadeFixture()
	ctx := context.Background()
	userID := uuid.New()
	hunterID := uuid.New()

	active := rewardBounty(userID, valueobject.BountyStatusInProgress)
	active.AcceptedHunterID = &hunterID

	f.users.On("GetForUpdateTx", ctx, mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	f.bounties.On("ListByPosterForUpdateTx", ctx, mock.Anything, userID).Return([]models.Bounty{*active}, nil)
	f.wallet.On("RefundTx", ctx, mock.Anything, active.ID).Return(nil, repository.ErrEscrowAlreadySettled)
	f.requests.On("RejectPendingByBountyTx", ctx, mock.Anything, active.ID).Return(int64(0), nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, active.ID, valueobject.BountyStatusArchived, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, active.ID, (*uuid.UUID)(nil), models.HistoryActionArchived, mock.Anything, mock.Anything).Return(nil)
	f.bounties.On("ListByHunterForUpdateTx", ctx, mock.Anything, userID).Return([]models.Bounty{}, nil)
	f.requests.On("RejectPendingByHunterTx", ctx, mock.Anything, userID).Return(int64(0), nil)
	f.users.On("DeleteTx", ctx, mock.Anything, userID).Return(nil)

	result, err := f.svc.DeleteUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BountiesArchived)
}
