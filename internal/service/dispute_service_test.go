package service

import (
	"context"
	"errors"
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

type mockDisputeStore struct {
	mock.Mock
}

func (m *mockDisputeStore) CreateTx(ctx context.Context, tx *sqlx.Tx, dispute *models.Dispute) error {
	args := m.Called(ctx, tx, dispute)
	return args.Error(0)
}

func (m *mockDisputeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) GetOpenByBountyTx(ctx context.Context, tx *sqlx.Tx, bountyID uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, tx, bountyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeStore) ResolveTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, resolution string, resolvedBy uuid.UUID) error {
	args := m.Called(ctx, tx, id, resolution, resolvedBy)
	return args.Error(0)
}

func (m *mockDisputeStore) ListOpen(ctx context.Context, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

type disputeFixture struct {
	disputes    *mockDisputeStore
	bounties    *mockBountyRepo
	submissions *mockSubmissionRepo
	wallet      *mockEscrowLedger
	notifier    *mockNotifier
	svc         *DisputeService
}

func newDisputeFixture() *disputeFixture {
	f := &disputeFixture{
		disputes:    new(mockDisputeStore),
		bounties:    new(mockBountyRepo),
		submissions: new(mockSubmissionRepo),
		wallet:      new(mockEscrowLedger),
		notifier:    new(mockNotifier),
	}
	f.svc = &DisputeService{
		runTx: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			return fn(nil)
		},
		disputes:    f.disputes,
		bounties:    f.bounties,
		submissions: f.submissions,
		wallet:      f.wallet,
		processor:   payment.NewInternalProcessor(),
		notifier:    f.notifier,
	}
	return f
}

func openDispute(bountyID uuid.UUID) *models.Dispute {
	return &models.Dispute{
		ID:       uuid.New(),
		BountyID: bountyID,
		Reason:   "Работа не соответствует описанию",
		Status:   models.DisputeStatusOpen,
	}
}

func TestDisputeService_Resolve_ReleaseToHunter(t *testing.T) {
	f := newDisputeFixture()
	ctx := context.Background()
	arbiterID := uuid.New()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID
	dispute := openDispute(bounty.ID)
	submission := &models.CompletionSubmission{ID: uuid.New(), BountyID: bounty.ID, HunterID: &hunterID}

	f.disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.disputes.On("GetOpenByBountyTx", ctx, mock.Anything, bounty.ID).Return(dispute, nil)
	f.wallet.On("ReleaseTx", ctx, mock.Anything, bounty.ID, hunterID).Return(&models.WalletTransaction{ID: uuid.New()}, nil).Once()
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(submission, nil)
	f.submissions.On("SetStatusTx", ctx, mock.Anything, submission.ID, valueobject.SubmissionStatusApproved, (*string)(nil)).Return(nil)
	f.disputes.On("ResolveTx", ctx, mock.Anything, dispute.ID, models.DisputeResolutionReleaseToHunter, arbiterID).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusCompleted, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &arbiterID, models.HistoryActionDisputeResolved, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, models.NotificationDisputeResolved, mock.Anything, mock.Anything, mock.Anything).Return()

	resolved, err := f.svc.Resolve(ctx, arbiterID, dispute.ID, models.DisputeResolutionReleaseToHunter)
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, resolved.Status)
	f.wallet.AssertNumberOfCalls(t, "ReleaseTx", 1)
}

func TestDisputeService_Resolve_SubmissionLookupFailureAborts(t *testing.T) {
	f := newDisputeFixture()
	ctx := context.Background()
	arbiterID := uuid.New()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID
	dispute := openDispute(bounty.ID)

	f.disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.disputes.On("GetOpenByBountyTx", ctx, mock.Anything, bounty.ID).Return(dispute, nil)
	f.wallet.On("ReleaseTx", ctx, mock.Anything, bounty.ID, hunterID).Return(&models.WalletTransaction{ID: uuid.New()}, nil)
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(nil, errors.New("connection reset"))

	_, err := f.svc.Resolve(ctx, arbiterID, dispute.ID, models.DisputeResolutionReleaseToHunter)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
	f.disputes.AssertNotCalled(t, "ResolveTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.bounties.AssertNotCalled(t, "SetStatusTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_Resolve_NoSubmissionStillResolves(t *testing.T) {
	f := newDisputeFixture()
	ctx := context.Background()
	arbiterID := uuid.New()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := rewardBounty(posterID, valueobject.BountyStatusInProgress)
	bounty.AcceptedHunterID = &hunterID
	dispute := openDispute(bounty.ID)

	f.disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	f.bounties.On("GetForUpdateTx", ctx, mock.Anything, bounty.ID).Return(bounty, nil)
	f.disputes.On("GetOpenByBountyTx", ctx, mock.Anything, bounty.ID).Return(dispute, nil)
	f.wallet.On("RefundTx", ctx, mock.Anything, bounty.ID).Return(&models.WalletTransaction{ID: uuid.New()}, nil)
	f.submissions.On("GetPendingByBountyTx", ctx, mock.Anything, bounty.ID).Return(nil, repository.ErrSubmissionNotFound)
	f.disputes.On("ResolveTx", ctx, mock.Anything, dispute.ID, models.DisputeResolutionRefundToPoster, arbiterID).Return(nil)
	f.bounties.On("SetStatusTx", ctx, mock.Anything, bounty.ID, valueobject.BountyStatusCancelled, &hunterID).Return(nil)
	f.bounties.On("AddHistoryTx", ctx, mock.Anything, bounty.ID, &arbiterID, models.HistoryActionDisputeResolved, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, models.NotificationDisputeResolved, mock.Anything, mock.Anything, mock.Anything).Return()

	resolved, err := f.svc.Resolve(ctx, arbiterID, dispute.ID, models.DisputeResolutionRefundToPoster)
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, resolved.Status)
	f.submissions.AssertNotCalled(t, "SetStatusTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_Resolve_AlreadyResolved(t *testing.T) {
	f := newDisputeFixture()
	ctx := context.Background()
	dispute := openDispute(uuid.New())
	dispute.Status = models.DisputeStatusResolved

	f.disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)

	_, err := f.svc.Resolve(ctx, uuid.New(), dispute.ID, models.DisputeResolutionRefundToPoster)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))
	f.wallet.AssertNotCalled(t, "RefundTx", mock.Anything, mock.Anything, mock.Anything)
}
