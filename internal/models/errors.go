package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is an error with a stable machine-readable code and a message
// that is safe to show to API consumers.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError returns an AppError for invalid input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewNotFoundError returns an AppError for a missing resource. The id is kept
// on the wrapped error for logs; the client message only names the resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: resource + " not found",
		Err:     fmt.Errorf("%s %v not found", strings.ToLower(resource), id),
	}
}

// NewUnauthorizedError returns an AppError for a missing or bad credential.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError returns an AppError for an authenticated caller lacking rights.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// NewConflictError returns an AppError for a uniqueness violation.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewInternalError wraps an unexpected failure. The wrapped error is never
// written to clients.
func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// StatusFor maps err to an HTTP status. Errors that are not AppErrors map
// to fallback.
func StatusFor(err error, fallback int) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fallback
	}
	switch appErr.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError writes err as a JSON body of the form {"error": ..., "code": ...}.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(appErr)
	}
	if status >= fiber.StatusInternalServerError {
		return c.Status(status).JSON(NewInternalError(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// RespondWithServiceError picks the status from err itself, falling back to 500.
func RespondWithServiceError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err, fiber.StatusInternalServerError), err)
}
