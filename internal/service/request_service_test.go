package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bountyhub/bountyhub-backend/internal/domain/valueobject"
	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) Create(ctx context.Context, request *models.BountyRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BountyRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BountyRequest), args.Error(1)
}

func (m *mockRequestRepo) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.BountyRequest, error) {
	args := m.Called(ctx, bountyID)
	return args.Get(0).([]models.BountyRequest), args.Error(1)
}

func (m *mockRequestRepo) ListByHunter(ctx context.Context, hunterID uuid.UUID, limit, offset int) ([]models.BountyRequest, error) {
	args := m.Called(ctx, hunterID, limit, offset)
	return args.Get(0).([]models.BountyRequest), args.Error(1)
}

func (m *mockRequestRepo) SetStatus(ctx context.Context, id uuid.UUID, status valueobject.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockRequestRepo) Delete(ctx context.Context, id, hunterID uuid.UUID) error {
	args := m.Called(ctx, id, hunterID)
	return args.Error(0)
}

type mockBountyReader struct {
	mock.Mock
}

func (m *mockBountyReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(userID uuid.UUID, notificationType, title, body string, payload interface{}) {
	m.Called(userID, notificationType, title, body, payload)
}

func openBounty(posterID uuid.UUID) *models.Bounty {
	return &models.Bounty{
		ID:       uuid.New(),
		PosterID: &posterID,
		Title:    "Починить прод",
		Status:   valueobject.BountyStatusOpen,
	}
}

func TestRequestService_Apply_Success(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	users := new(mockUserReader)
	notifier := new(mockNotifier)
	svc := NewRequestService(requests, bounties, users, notifier)

	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := openBounty(posterID)

	users.On("GetByID", ctx, hunterID).Return(&models.User{ID: hunterID, EmailVerified: true}, nil)
	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	requests.On("Create", ctx, mock.AnythingOfType("*models.BountyRequest")).Return(nil)
	notifier.On("Notify", posterID, models.NotificationNewRequest, mock.Anything, mock.Anything, mock.Anything).Return()

	request, err := svc.Apply(ctx, hunterID, bounty.ID, "  возьмусь за вечер  ")
	require.NoError(t, err)
	assert.Equal(t, valueobject.RequestStatusPending, request.Status)
	require.NotNil(t, request.HunterID)
	assert.Equal(t, hunterID, *request.HunterID)
	require.NotNil(t, request.Message)
	assert.Equal(t, "возьмусь за вечер", *request.Message)
	requests.AssertExpectations(t)
}

func TestRequestService_Apply_EmailNotVerified(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	users := new(mockUserReader)
	svc := NewRequestService(requests, bounties, users, nil)

	ctx := context.Background()
	hunterID := uuid.New()

	users.On("GetByID", ctx, hunterID).Return(&models.User{ID: hunterID, EmailVerified: false}, nil)

	_, err := svc.Apply(ctx, hunterID, uuid.New(), "")
	assert.ErrorIs(t, err, apperror.ErrEmailNotVerified)
	requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestService_Apply_SelfApplication(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	users := new(mockUserReader)
	svc := NewRequestService(requests, bounties, users, nil)

	ctx := context.Background()
	posterID := uuid.New()
	bounty := openBounty(posterID)

	users.On("GetByID", ctx, posterID).Return(&models.User{ID: posterID, EmailVerified: true}, nil)
	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)

	_, err := svc.Apply(ctx, posterID, bounty.ID, "")
	assert.ErrorIs(t, err, apperror.ErrSelfApplication)
}

func TestRequestService_Apply_BountyNotOpen(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	users := new(mockUserReader)
	svc := NewRequestService(requests, bounties, users, nil)

	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := openBounty(posterID)
	bounty.Status = valueobject.BountyStatusInProgress

	users.On("GetByID", ctx, hunterID).Return(&models.User{ID: hunterID, EmailVerified: true}, nil)
	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)

	_, err := svc.Apply(ctx, hunterID, bounty.ID, "")
	assert.ErrorIs(t, err, apperror.ErrBountyNotOpen)
}

func TestRequestService_Apply_Duplicate(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	users := new(mockUserReader)
	svc := NewRequestService(requests, bounties, users, nil)

	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := openBounty(posterID)

	users.On("GetByID", ctx, hunterID).Return(&models.User{ID: hunterID, EmailVerified: true}, nil)
	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	requests.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateRequest)

	_, err := svc.Apply(ctx, hunterID, bounty.ID, "")
	assert.ErrorIs(t, err, apperror.ErrDuplicateApplication)
}

func TestRequestService_ListByBounty_OwnerOnly(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	users := new(mockUserReader)
	svc := NewRequestService(requests, bounties, users, nil)

	ctx := context.Background()
	posterID := uuid.New()
	stranger := uuid.New()
	bounty := openBounty(posterID)

	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)

	_, err := svc.ListByBounty(ctx, stranger, bounty.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	requests.On("ListByBounty", ctx, bounty.ID).Return([]models.BountyRequest{}, nil)
	_, err = svc.ListByBounty(ctx, posterID, bounty.ID)
	assert.NoError(t, err)
}

func TestRequestService_Reject_Success(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	notifier := new(mockNotifier)
	svc := NewRequestService(requests, bounties, new(mockUserReader), notifier)

	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := openBounty(posterID)
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bounty.ID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}

	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	requests.On("GetByID", ctx, request.ID).Return(request, nil)
	requests.On("SetStatus", ctx, request.ID, valueobject.RequestStatusRejected).Return(nil)
	notifier.On("Notify", hunterID, models.NotificationRequestRejected, mock.Anything, mock.Anything, mock.Anything).Return()

	rejected, err := svc.Reject(ctx, posterID, bounty.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.RequestStatusRejected, rejected.Status)
	requests.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRequestService_Reject_OwnerOnly(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	svc := NewRequestService(requests, bounties, new(mockUserReader), nil)

	ctx := context.Background()
	bounty := openBounty(uuid.New())

	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)

	_, err := svc.Reject(ctx, uuid.New(), bounty.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	requests.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestService_Reject_AlreadyAccepted(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	svc := NewRequestService(requests, bounties, new(mockUserReader), nil)

	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := openBounty(posterID)
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: bounty.ID,
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusAccepted,
	}

	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	requests.On("GetByID", ctx, request.ID).Return(request, nil)

	_, err := svc.Reject(ctx, posterID, bounty.ID, request.ID)
	assert.ErrorIs(t, err, apperror.ErrRequestNotPending)
	requests.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestService_Reject_ForeignRequest(t *testing.T) {
	requests := new(mockRequestRepo)
	bounties := new(mockBountyReader)
	svc := NewRequestService(requests, bounties, new(mockUserReader), nil)

	ctx := context.Background()
	posterID := uuid.New()
	hunterID := uuid.New()
	bounty := openBounty(posterID)
	request := &models.BountyRequest{
		ID:       uuid.New(),
		BountyID: uuid.New(),
		HunterID: &hunterID,
		Status:   valueobject.RequestStatusPending,
	}

	bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	requests.On("GetByID", ctx, request.ID).Return(request, nil)

	_, err := svc.Reject(ctx, posterID, bounty.ID, request.ID)
	assert.ErrorIs(t, err, apperror.ErrRequestNotFound)
}

func TestRequestService_Withdraw_NotPending(t *testing.T) {
	requests := new(mockRequestRepo)
	svc := NewRequestService(requests, new(mockBountyReader), new(mockUserReader), nil)

	ctx := context.Background()
	hunterID := uuid.New()
	requestID := uuid.New()

	requests.On("Delete", ctx, requestID, hunterID).Return(repository.ErrRequestNotFound)

	err := svc.Withdraw(ctx, hunterID, requestID)
	assert.ErrorIs(t, err, apperror.ErrRequestNotPending)
}
