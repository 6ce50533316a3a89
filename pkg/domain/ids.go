// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "folio/pkg/domain-errors"
)

// UserID identifies the authenticated account holder.
type UserID uuid.UUID

// NomineeID is the opaque server-assigned identifier of a committed
// beneficiary. Drafts composing a new beneficiary carry no NomineeID
// until the upstream confirms the batch.
type NomineeID string

// MFASessionID identifies a server-tracked OTP challenge. The value is
// opaque to the client; only the most recently issued id is retained.
type MFASessionID string

// Parse functions - use at trust boundaries (handlers, JWT claims).

func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user ID format")
	}
	return UserID(parsed), nil
}

func ParseNomineeID(s string) (NomineeID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "nominee ID cannot be empty")
	}
	return NomineeID(s), nil
}

// String methods - for logging and debugging.

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id NomineeID) String() string    { return string(id) }
func (id MFASessionID) String() string { return string(id) }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id NomineeID) IsNil() bool    { return id == "" }
func (id MFASessionID) IsNil() bool { return id == "" }
