package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBountyStatus_IsValid(t *testing.T) {
	assert.True(t, BountyStatusOpen.IsValid())
	assert.True(t, BountyStatusInProgress.IsValid())
	assert.True(t, BountyStatusCompleted.IsValid())
	assert.True(t, BountyStatusArchived.IsValid())
	assert.True(t, BountyStatusCancelled.IsValid())
	assert.False(t, BountyStatus("draft").IsValid())
	assert.False(t, BountyStatus("").IsValid())
}

func TestBountyStatus_CanTransitionTo(t *testing.T) {
	// Из open.
	assert.True(t, BountyStatusOpen.CanTransitionTo(BountyStatusInProgress))
	assert.True(t, BountyStatusOpen.CanTransitionTo(BountyStatusCancelled))
	assert.True(t, BountyStatusOpen.CanTransitionTo(BountyStatusArchived))
	assert.False(t, BountyStatusOpen.CanTransitionTo(BountyStatusCompleted))

	// Из in_progress, включая переоткрытие после удаления охотника.
	assert.True(t, BountyStatusInProgress.CanTransitionTo(BountyStatusCompleted))
	assert.True(t, BountyStatusInProgress.CanTransitionTo(BountyStatusCancelled))
	assert.True(t, BountyStatusInProgress.CanTransitionTo(BountyStatusArchived))
	assert.True(t, BountyStatusInProgress.CanTransitionTo(BountyStatusOpen))

	// Терминальные статусы без исходящих переходов.
	for _, terminal := range []BountyStatus{BountyStatusCompleted, BountyStatusArchived, BountyStatusCancelled} {
		assert.False(t, terminal.CanTransitionTo(BountyStatusOpen), "из %s нельзя вернуться в open", terminal)
		assert.False(t, terminal.CanTransitionTo(BountyStatusInProgress))
		assert.True(t, terminal.IsTerminal())
	}
}

func TestNewBountyStatus(t *testing.T) {
	status, err := NewBountyStatus("in_progress")
	assert.NoError(t, err)
	assert.Equal(t, BountyStatusInProgress, status)

	_, err = NewBountyStatus("unknown")
	assert.Error(t, err)
}

func TestWorkType(t *testing.T) {
	assert.True(t, WorkTypeOnline.IsValid())
	assert.True(t, WorkTypeInPerson.IsValid())

	_, err := NewWorkType("hybrid")
	assert.Error(t, err)
}

func TestRequestStatus_IsValid(t *testing.T) {
	assert.True(t, RequestStatusPending.IsValid())
	assert.True(t, RequestStatusAccepted.IsValid())
	assert.True(t, RequestStatusRejected.IsValid())
	assert.False(t, RequestStatus("withdrawn").IsValid())
}

func TestSubmissionStatus_IsValid(t *testing.T) {
	assert.True(t, SubmissionStatusPending.IsValid())
	assert.True(t, SubmissionStatusApproved.IsValid())
	assert.True(t, SubmissionStatusRevisionRequested.IsValid())
	assert.False(t, SubmissionStatus("rejected").IsValid())
}
