package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Коды жизненного цикла баунти и escrow.
	ErrCodeInvalidAmount            ErrorCode = "INVALID_AMOUNT"
	ErrCodeBountyNotOpen            ErrorCode = "BOUNTY_NOT_OPEN"
	ErrCodeRequestNotPending        ErrorCode = "REQUEST_NOT_PENDING"
	ErrCodeSelfApplication          ErrorCode = "SELF_APPLICATION"
	ErrCodeDuplicateApplication     ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeNotAcceptedHunter        ErrorCode = "NOT_ACCEPTED_HUNTER"
	ErrCodeBountyNotInProgress      ErrorCode = "BOUNTY_NOT_IN_PROGRESS"
	ErrCodeSubmissionAlreadyPending ErrorCode = "SUBMISSION_ALREADY_PENDING"
	ErrCodeInsufficientBalance      ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodePayoutFailed             ErrorCode = "PAYOUT_FAILED"
	ErrCodeCannotCancelCompleted    ErrorCode = "CANNOT_CANCEL_COMPLETED"
	ErrCodeExternalPaymentTimeout   ErrorCode = "EXTERNAL_PAYMENT_TIMEOUT"
	ErrCodeRevisionLimitReached     ErrorCode = "REVISION_LIMIT_REACHED"
	ErrCodeEmailNotVerified         ErrorCode = "EMAIL_NOT_VERIFIED"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду, чтобы работал errors.Is с обёрнутыми ошибками.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeNotAcceptedHunter, ErrCodeEmailNotVerified:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidAmount, ErrCodeSelfApplication:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeBountyNotOpen, ErrCodeRequestNotPending,
		ErrCodeDuplicateApplication, ErrCodeBountyNotInProgress,
		ErrCodeSubmissionAlreadyPending, ErrCodeCannotCancelCompleted,
		ErrCodeRevisionLimitReached:
		return http.StatusConflict
	case ErrCodeInsufficientBalance:
		return http.StatusPaymentRequired
	case ErrCodePayoutFailed:
		return http.StatusBadGateway
	case ErrCodeExternalPaymentTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// CodeOf возвращает код ошибки или ErrCodeInternal для неизвестных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

var (
	ErrBountyNotFound     = New(ErrCodeNotFound, "баунти не найдено")
	ErrRequestNotFound    = New(ErrCodeNotFound, "заявка не найдена")
	ErrSubmissionNotFound = New(ErrCodeNotFound, "сдача работы не найдена")
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")

	ErrInvalidAmount            = New(ErrCodeInvalidAmount, "сумма вознаграждения некорректна")
	ErrBountyNotOpen            = New(ErrCodeBountyNotOpen, "баунти уже принято другим охотником или закрыто")
	ErrRequestNotPending        = New(ErrCodeRequestNotPending, "заявка уже обработана")
	ErrSelfApplication          = New(ErrCodeSelfApplication, "нельзя откликнуться на собственное баунти")
	ErrDuplicateApplication     = New(ErrCodeDuplicateApplication, "вы уже откликнулись на это баунти")
	ErrNotAcceptedHunter        = New(ErrCodeNotAcceptedHunter, "вы не являетесь исполнителем этого баунти")
	ErrBountyNotInProgress      = New(ErrCodeBountyNotInProgress, "баунти не находится в работе")
	ErrSubmissionAlreadyPending = New(ErrCodeSubmissionAlreadyPending, "по этому баунти уже есть сдача работы на рассмотрении")
	ErrInsufficientBalance      = New(ErrCodeInsufficientBalance, "недостаточно средств на балансе")
	ErrPayoutFailed             = New(ErrCodePayoutFailed, "не удалось провести выплату, попробуйте ещё раз")
	ErrCannotCancelCompleted    = New(ErrCodeCannotCancelCompleted, "завершённое баунти нельзя отменить")
	ErrExternalPaymentTimeout   = New(ErrCodeExternalPaymentTimeout, "платёжный сервис не ответил вовремя, операция отменена")
	ErrRevisionLimitReached     = New(ErrCodeRevisionLimitReached, "превышен лимит доработок, откройте спор")
	ErrEmailNotVerified         = New(ErrCodeEmailNotVerified, "подтвердите email, чтобы продолжить")
)
