package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Is(t *testing.T) {
	wrapped := Wrap(errors.New("row not found"), ErrCodeNotFound, "баунти не найдено")
	assert.True(t, errors.Is(wrapped, ErrBountyNotFound))
	assert.False(t, errors.Is(wrapped, ErrForbidden))

	// Двойная обёртка через fmt.Errorf тоже распознаётся.
	double := fmt.Errorf("обработка запроса: %w", wrapped)
	assert.True(t, errors.Is(double, ErrBountyNotFound))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("sql: no rows in result set")
	wrapped := Wrap(cause, ErrCodeDatabaseError, "ошибка запроса")
	assert.ErrorIs(t, wrapped, cause)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{ErrBountyNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotAcceptedHunter, http.StatusForbidden},
		{ErrEmailNotVerified, http.StatusForbidden},
		{ErrInvalidAmount, http.StatusBadRequest},
		{ErrSelfApplication, http.StatusBadRequest},
		{ErrBountyNotOpen, http.StatusConflict},
		{ErrDuplicateApplication, http.StatusConflict},
		{ErrSubmissionAlreadyPending, http.StatusConflict},
		{ErrCannotCancelCompleted, http.StatusConflict},
		{ErrRevisionLimitReached, http.StatusConflict},
		{ErrInsufficientBalance, http.StatusPaymentRequired},
		{ErrPayoutFailed, http.StatusBadGateway},
		{ErrExternalPaymentTimeout, http.StatusGatewayTimeout},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, "код %s", tc.err.Code)
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeInsufficientBalance, CodeOf(ErrInsufficientBalance))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("что-то пошло не так")))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.False(t, IsNotFound(ErrForbidden))
	assert.True(t, IsForbidden(ErrForbidden))
	assert.True(t, IsValidation(New(ErrCodeValidation, "пустой заголовок")))
}
