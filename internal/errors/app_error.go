package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// AppError is the only error type that crosses the service boundary. The
// HTTP layer renders Code, Message and Details; Err stays server side.
type AppError struct {
	Code       string
	Message    string
	Details    []string
	StatusCode int
	Err        error
}

const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeThirdPartyError = "THIRD_PARTY_ERROR"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
)

var statusByCode = map[string]int{
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeDatabaseError:   http.StatusInternalServerError,
	ErrCodeThirdPartyError: http.StatusInternalServerError,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// NewAppError derives the status from the code. Unknown codes map to 500.
func NewAppError(code, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Details = append(e.Details, detail)

	return e
}

func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = append(e.Details, details...)

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

// LogValue keeps the cause in logs, which the rendered response omits.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.Int("status", e.StatusCode),
		slog.String("message", e.Message),
	}

	if len(e.Details) > 0 {
		attrs = append(attrs, slog.Any("details", e.Details))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// StatusOf returns the HTTP status for err; anything that is not an AppError
// is a 500.
func StatusOf(err error) int {
	if appErr, ok := IsAppError(err); ok {
		return appErr.StatusCode
	}

	return http.StatusInternalServerError
}

// AddValidationError reports a single invalid field, e.g. an unknown
// category_id or a blank username.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
