package valueobject

import "github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"

// BountyStatus — закрытый тип статуса баунти. Любое изменение статуса
// проходит через CanTransitionTo, прямого присваивания строк нет.
type BountyStatus string

const (
	BountyStatusOpen       BountyStatus = "open"
	BountyStatusInProgress BountyStatus = "in_progress"
	BountyStatusCompleted  BountyStatus = "completed"
	BountyStatusArchived   BountyStatus = "archived"
	BountyStatusCancelled  BountyStatus = "cancelled"
)

func (s BountyStatus) IsValid() bool {
	switch s {
	case BountyStatusOpen, BountyStatusInProgress, BountyStatusCompleted, BountyStatusArchived, BountyStatusCancelled:
		return true
	}
	return false
}

// IsTerminal сообщает, что из статуса нет исходящих переходов.
func (s BountyStatus) IsTerminal() bool {
	return s == BountyStatusCompleted || s == BountyStatusArchived || s == BountyStatusCancelled
}

// CanTransitionTo проверяет допустимость перехода. Цикл доработки не меняет
// статус (in_progress остаётся in_progress), поэтому здесь не представлен.
func (s BountyStatus) CanTransitionTo(newStatus BountyStatus) bool {
	transitions := map[BountyStatus][]BountyStatus{
		BountyStatusOpen:       {BountyStatusInProgress, BountyStatusCancelled, BountyStatusArchived},
		BountyStatusInProgress: {BountyStatusCompleted, BountyStatusCancelled, BountyStatusArchived, BountyStatusOpen},
		BountyStatusCompleted:  {},
		BountyStatusArchived:   {},
		BountyStatusCancelled:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewBountyStatus(status string) (BountyStatus, error) {
	s := BountyStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус баунти")
	}
	return s, nil
}

// WorkType — формат выполнения баунти.
type WorkType string

const (
	WorkTypeOnline   WorkType = "online"
	WorkTypeInPerson WorkType = "in_person"
)

func (w WorkType) IsValid() bool {
	return w == WorkTypeOnline || w == WorkTypeInPerson
}

func NewWorkType(workType string) (WorkType, error) {
	w := WorkType(workType)
	if !w.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный формат работы")
	}
	return w, nil
}

// RequestStatus — статус отклика охотника.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected:
		return true
	}
	return false
}

// SubmissionStatus — статус сдачи работы.
type SubmissionStatus string

const (
	SubmissionStatusPending           SubmissionStatus = "pending"
	SubmissionStatusApproved          SubmissionStatus = "approved"
	SubmissionStatusRevisionRequested SubmissionStatus = "revision_requested"
)

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRevisionRequested:
		return true
	}
	return false
}
