package service

import (
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// validateIdentity checks a caller-chosen id and display name
func validateIdentity(id, displayName string) error {
	var issues []domain.FieldIssue
	switch {
	case id == "":
		issues = append(issues, domain.FieldIssue{Field: "id", Issue: "id is required"})
	case len(id) > domain.MaxIDLength:
		issues = append(issues, domain.FieldIssue{Field: "id", Issue: "id must be at most 50 characters"})
	case strings.ContainsAny(id, " \t\n/"):
		issues = append(issues, domain.FieldIssue{Field: "id", Issue: "id must not contain whitespace or slashes"})
	}
	switch {
	case displayName == "":
		issues = append(issues, domain.FieldIssue{Field: "displayName", Issue: "display name is required"})
	case len(displayName) > domain.MaxDisplayNameLength:
		issues = append(issues, domain.FieldIssue{Field: "displayName", Issue: "display name must be at most 255 characters"})
	}
	if len(issues) > 0 {
		return &domain.ValidationError{Message: "Validation failed", Issues: issues}
	}
	return nil
}
