package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: document does not exist in the store
// - ErrConflict: write raced with a conflicting write
// - ErrInvalidState: document in wrong lifecycle state for the operation
// - ErrIndexRequired: backing store needs a composite index that is missing
// - ErrPermission: store-side access rules refused the operation
// - ErrUnavailable: store temporarily unreachable
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrIndexRequired = errors.New("index required")
	ErrPermission    = errors.New("permission denied")
	ErrUnavailable   = errors.New("unavailable")
)
