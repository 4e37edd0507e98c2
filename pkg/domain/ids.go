// Package domain holds typed identifiers and small value types shared across
// modules. Typed IDs prevent cross-type assignment at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "udonmap/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated user (opaque to this service).
	UserID string

	// ShopID identifies a published catalog record.
	ShopID uuid.UUID

	// SubmissionID identifies a candidate record in the moderation pipeline.
	SubmissionID uuid.UUID
)

// NewShopID generates a fresh shop identifier.
func NewShopID() ShopID { return ShopID(uuid.New()) }

// NewSubmissionID generates a fresh submission identifier.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

func (id ShopID) String() string       { return uuid.UUID(id).String() }
func (id SubmissionID) String() string { return uuid.UUID(id).String() }

// MarshalText renders the identifier in canonical UUID string form. Defined
// types do not inherit uuid.UUID's text marshaling, so without these any
// JSON-encoded record would carry its IDs as raw byte arrays.
func (id ShopID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id SubmissionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ShopID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SubmissionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// IsNil reports whether the identifier is the zero UUID.
func (id ShopID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseShopID validates and parses a shop identifier from its string form.
func ParseShopID(s string) (ShopID, error) {
	u, err := parseUUID(s, "shop id")
	return ShopID(u), err
}

// ParseSubmissionID validates and parses a submission identifier.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID(s, "submission id")
	return SubmissionID(u), err
}

// parseUUID enforces the invariant that IDs are valid, non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must not be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must not be the nil UUID", what)
	}
	return u, nil
}
