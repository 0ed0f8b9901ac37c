// Package apperror defines the error taxonomy shared by the extraction
// pipeline and the suspense ledger. Callers match categories with errors.Is
// against ErrNotFound, ErrConflict, ErrInvalidInput and ErrInvalidFormat.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidFormat = errors.New("invalid format")
)

// NotFoundError reports a statement, transaction or suspense entry id that
// does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a second suspense entry for a (statement, transaction)
// pair that already has one.
type ConflictError struct {
	StatementID   string
	TransactionID string
	ExistingID    string
}

func (e *ConflictError) Error() string {
	if e.ExistingID != "" {
		return fmt.Sprintf("suspense entry already exists for statement '%s' transaction '%s' (entry '%s')",
			e.StatementID, e.TransactionID, e.ExistingID)
	}
	return fmt.Sprintf("suspense entry already exists for statement '%s' transaction '%s'",
		e.StatementID, e.TransactionID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ValidationError represents input rejected before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// InvalidFormatError represents an input file that cannot be read as a
// statement grid.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
	Err            error
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.FilePath, e.Msg, e.ExpectedFormat)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error { return e.Err }

func (e *InvalidFormatError) Is(target error) bool { return target == ErrInvalidFormat }

// Reason returns the human-readable message of err without wrapping prefixes
// added by intermediate layers, falling back to err.Error().
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
