// Package audit captures an append-only trail of moderation-relevant actions.
// Events are transport-agnostic so sinks (in-process store, kafka) can fan out.
package audit

import (
	"time"

	id "udonmap/pkg/domain"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// ActorID is the user who performed the action (submitter or moderator).
	ActorID id.UserID `json:"actorId,omitempty"`
	// Subject identifies the record acted on (submission or shop ID).
	Subject   string `json:"subject,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Actions recorded by the moderation pipeline.
const (
	ActionSubmissionReceived  = "submission_received"
	ActionSubmissionEdited    = "submission_edited"
	ActionSubmissionWithdrawn = "submission_withdrawn"
	ActionSubmissionApproved  = "submission_approved"
	ActionSubmissionRejected  = "submission_rejected"
)
