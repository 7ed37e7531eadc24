package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	Status         int                    `json:"status"`
	Detail         string                 `json:"detail,omitempty"`
	Instance       string                 `json:"instance,omitempty"`
	Errors         []ValidationError      `json:"errors,omitempty"`
	Clarifications []domain.Clarification `json:"clarifications,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation     = "https://ledger.app/errors/validation"
	ErrorTypeClarification  = "https://ledger.app/errors/needs-clarification"
	ErrorTypeNotFound       = "https://ledger.app/errors/not-found"
	ErrorTypeConflict       = "https://ledger.app/errors/conflict"
	ErrorTypeAlreadyVoided  = "https://ledger.app/errors/already-voided"
	ErrorTypeUpstream       = "https://ledger.app/errors/upstream"
	ErrorTypeInternal       = "https://ledger.app/errors/internal"
	ErrorTypeServiceUnready = "https://ledger.app/errors/unavailable"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewClarificationError asks the caller for the missing fields of a transaction
func NewClarificationError(c echo.Context, detail string, clarifications []domain.Clarification) error {
	return c.JSON(http.StatusUnprocessableEntity, ProblemDetails{
		Type:           ErrorTypeClarification,
		Title:          "Needs Clarification",
		Status:         http.StatusUnprocessableEntity,
		Detail:         detail,
		Instance:       c.Request().URL.Path,
		Clarifications: clarifications,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewAlreadyVoidedError reports an attempt to void or correct a voided transaction
func NewAlreadyVoidedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeAlreadyVoided,
		Title:    "Already Voided",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUpstreamError creates a bad gateway response for a failed external call
func NewUpstreamError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeUpstream,
		Title:    "Upstream Error",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// handleServiceError maps a service error onto its problem response.
// Anything unrecognised is logged and reported as failure.
func handleServiceError(c echo.Context, err error, failure string) error {
	var (
		clarification *domain.ClarificationError
		validation    *domain.ValidationError
		upstream      *domain.UpstreamError
	)
	switch {
	case errors.As(err, &clarification):
		return NewClarificationError(c, clarification.Message, clarification.Details)
	case errors.As(err, &validation):
		return NewValidationError(c, validation.Message, toValidationErrors(validation.Issues))
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyVoided):
		return NewAlreadyVoidedError(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return NewConflictError(c, err.Error())
	case errors.As(err, &upstream):
		log.Warn().Err(err).Str("op", upstream.Op).Msg("Upstream call failed")
		return NewUpstreamError(c, "Exchange rate service unavailable")
	}

	log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Request().URL.Path).Msg(failure)
	return NewInternalError(c, failure)
}

func toValidationErrors(issues []domain.FieldIssue) []ValidationError {
	if len(issues) == 0 {
		return nil
	}
	out := make([]ValidationError, len(issues))
	for i, issue := range issues {
		out[i] = ValidationError{Field: issue.Field, Message: issue.Issue}
	}
	return out
}
