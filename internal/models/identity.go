package models

import (
	"strings"

	"fjacquet/bankstmt/internal/apperror"
)

// Identity is the authenticated operator attached to every mutating call.
type Identity struct {
	UserID      string `json:"user_id" yaml:"user_id"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Validate rejects an identity without a user id.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.UserID) == "" {
		return &apperror.ValidationError{Field: "identity", Reason: "user id is required"}
	}
	return nil
}

// Name returns the display name, or the user id when none is set.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.UserID
}
