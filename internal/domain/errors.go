package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrNotFound                 = errors.New("resource not found")
	ErrAlreadyExists            = errors.New("resource already exists")
	ErrInvalidInput             = errors.New("invalid input")
	ErrNeedsClarification       = errors.New("needs clarification")
	ErrAlreadyVoided            = errors.New("transaction is already voided")
	ErrUpstream                 = errors.New("upstream service error")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrCategoryHierarchyTooDeep = errors.New("category hierarchy deeper than two levels")
	ErrInvalidMonth             = errors.New("month must be in YYYY-MM format")
	ErrInvalidAmount            = errors.New("amount must be a positive integer")
	ErrInvalidLimit             = errors.New("budget limit must be a positive integer")
	ErrNotParentCategory        = errors.New("budgets must target a parent category")
)

// Validation constants
const (
	MaxIDLength          = 50
	MaxDisplayNameLength = 255
)

// NotFoundError reports a missing entity. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the given entity kind and id
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// FieldIssue describes a single invalid field
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError reports structurally invalid input. It matches ErrInvalidInput
// and, when set, the more specific Cause.
type ValidationError struct {
	Message string
	Issues  []FieldIssue
	Cause   error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Issue
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput || (e.Cause != nil && target == e.Cause)
}

// NewValidationError creates a ValidationError with a single field issue
func NewValidationError(field, issue string) error {
	return &ValidationError{
		Message: "Validation failed",
		Issues:  []FieldIssue{{Field: field, Issue: issue}},
	}
}

// Clarification asks the caller for one missing field
type Clarification struct {
	Field    string `json:"field"`
	Question string `json:"question"`
}

// ClarificationError is returned when type-specific required fields are missing.
// It is meant to prompt for more input rather than reject the request.
type ClarificationError struct {
	Message string
	Details []Clarification
}

func (e *ClarificationError) Error() string {
	fields := make([]string, len(e.Details))
	for i, d := range e.Details {
		fields[i] = d.Field
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(fields, ", "))
}

func (e *ClarificationError) Is(target error) bool {
	return target == ErrNeedsClarification
}

// UpstreamError wraps failures of an external collaborator such as the rate service
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
