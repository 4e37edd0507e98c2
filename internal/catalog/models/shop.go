// Package models defines the published catalog record. Field names are a
// contract with the backing store's query filters (pref, status, createdAt)
// and must stay stable.
package models

import (
	"time"

	id "udonmap/pkg/domain"
)

// StatusPublished is the only status this core writes to the catalog.
// Moderator-triggered unpublishing is out of scope.
const StatusPublished = "published"

// ShopRecord is a published directory entry. Immutable once published except
// by moderator-triggered updates, which this core does not perform.
type ShopRecord struct {
	ID      id.ShopID `json:"id"`
	Pref    id.Region `json:"pref"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Note    string    `json:"note,omitempty"`
	Status  string    `json:"status"`

	// NameKey and AddrKey are the normalized comparison keys used by
	// duplicate detection.
	NameKey string `json:"nameKey"`
	AddrKey string `json:"addrKey"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// SourceSubmissionID links a promoted record back to the submission
	// that produced it. Empty for operator-seeded records.
	SourceSubmissionID id.SubmissionID `json:"sourceSubmissionId,omitzero"`
	// ApprovedBy records the moderator who promoted the submission.
	ApprovedBy id.UserID `json:"approvedBy,omitempty"`
}
