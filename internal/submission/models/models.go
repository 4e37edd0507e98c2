// Package models defines the candidate record and its lifecycle. Field names
// (status, pref, submittedByUid, createdAt) are a contract with the backing
// store's query filters and must stay stable.
package models

import (
	"time"

	"udonmap/internal/catalog/normkey"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
)

// Status is the submission lifecycle state. Transitions are monotonic:
// pending moves to approved or rejected exactly once and never back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// DefaultRejectReason labels rejections where the moderator gave no reason.
const DefaultRejectReason = "not accepted"

// Field length limits enforced on submit and edit.
const (
	MaxNameLen    = 64
	MaxAddressLen = 128
	MaxNoteLen    = 128
)

// SubmissionRecord is a candidate directory entry awaiting moderation.
// Owned by the submitting user while pending; decisions are moderator-only.
type SubmissionRecord struct {
	ID      id.SubmissionID `json:"id"`
	Pref    id.Region       `json:"pref"`
	Name    string          `json:"name"`
	Address string          `json:"address"`
	Note    string          `json:"note,omitempty"`

	NameKey string `json:"nameKey"`
	AddrKey string `json:"addrKey"`

	Status           Status    `json:"status"`
	SubmittedByUID   id.UserID `json:"submittedByUid"`
	SubmittedByEmail string    `json:"submittedByEmail,omitempty"`
	UserAgent        string    `json:"userAgent,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Decision metadata, set exactly once when pending ends.
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	DecidedBy       id.UserID  `json:"decidedBy,omitempty"`
	DecisionReason  string     `json:"decisionReason,omitempty"`
	ResultingShopID id.ShopID  `json:"resultingShopId,omitzero"`
}

// SubmitRequest is a candidate as entered by the user.
type SubmitRequest struct {
	Pref    id.Region `json:"pref"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Note    string    `json:"note"`
}

// Validate enforces required fields, known prefecture, and length limits.
// Values are compared after trimming, matching what will be stored.
func (r SubmitRequest) Validate() error {
	if !r.Pref.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown prefecture %q", r.Pref)
	}
	if normkey.Trim(r.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if normkey.Trim(r.Address) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "address is required")
	}
	if len([]rune(r.Name)) > MaxNameLen {
		return dErrors.Newf(dErrors.CodeBadRequest, "name must be at most %d characters", MaxNameLen)
	}
	if len([]rune(r.Address)) > MaxAddressLen {
		return dErrors.Newf(dErrors.CodeBadRequest, "address must be at most %d characters", MaxAddressLen)
	}
	if len([]rune(r.Note)) > MaxNoteLen {
		return dErrors.Newf(dErrors.CodeBadRequest, "note must be at most %d characters", MaxNoteLen)
	}
	return nil
}

// EditRequest patches a pending submission. Nil fields keep existing values.
type EditRequest struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Note    *string `json:"note,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (r EditRequest) Empty() bool {
	return r.Name == nil && r.Address == nil && r.Note == nil
}
