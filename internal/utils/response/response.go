package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/go-playground/validator/v10"
)

// APIResponse is the envelope for every JSON body the API writes.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

var unexpected = errors.InternalError("An unexpected error occurred")

var ruleMessages = map[string]string{
	"required": "Field %s is required",
	"min":      "Field %s must be at least %s characters",
	"max":      "Field %s must be at most %s characters",
	"gte":      "Field %s must be greater than or equal to %s",
	"gt":       "Field %s must be greater than %s",
	"uuid":     "Field %s must be a valid UUID",
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

func write(w http.ResponseWriter, statusCode int, body APIResponse) {
	if err := WriteJson(w, statusCode, body); err != nil {
		slog.Warn("failed to write response body", slog.Int("status", statusCode), slog.Any("error", err))
	}
}

func Success(w http.ResponseWriter, statusCode int, data any) {
	write(w, statusCode, APIResponse{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error renders err as the envelope. Errors that are not AppErrors never
// leak their text to the client.
func Error(w http.ResponseWriter, err error) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		appErr = unexpected
	}

	write(w, appErr.StatusCode, APIResponse{
		Success: false,
		Error: &ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

// ValidationError turns validator failures into one detail line per field.
func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		details = append(details, describe(fe))
	}

	Error(w, errors.ValidationError("Validation failed").WithDetails(details...))
}

func describe(fe validator.FieldError) string {
	format, ok := ruleMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("Field %s is invalid: %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}

	if fe.Tag() == "required" || fe.Tag() == "uuid" {
		return fmt.Sprintf(format, fe.Field())
	}

	return fmt.Sprintf(format, fe.Field(), fe.Param())
}
