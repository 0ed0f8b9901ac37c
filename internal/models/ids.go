package models

import (
	"strings"

	"fjacquet/bankstmt/internal/apperror"

	"github.com/google/uuid"
)

// NewID returns a random identifier for statements, suspense entries and
// comments.
func NewID() string {
	return uuid.NewString()
}

// ValidateUUID rejects ids that are not well-formed UUIDs.
func ValidateUUID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &apperror.ValidationError{Field: field, Reason: "is required"}
	}
	if _, err := uuid.Parse(id); err != nil {
		return &apperror.ValidationError{Field: field, Reason: "malformed id '" + id + "'"}
	}
	return nil
}

// ValidateTransactionID rejects transaction ids not produced by TransactionID.
func ValidateTransactionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &apperror.ValidationError{Field: "transaction_id", Reason: "is required"}
	}
	if !IsValidTransactionID(id) {
		return &apperror.ValidationError{Field: "transaction_id", Reason: "malformed id '" + id + "'"}
	}
	return nil
}
