package handler

import (
	"strings"

	"udonmap/internal/submission/models"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /submissions.
type SubmitRequest struct {
	Pref    string `json:"pref"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

// Validate parses the region; field-level checks run in the domain layer so
// submit and edit share them.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Pref = strings.TrimSpace(r.Pref)
	if r.Pref == "" {
		return dErrors.New(dErrors.CodeBadRequest, "pref is required")
	}
	if !id.Region(r.Pref).IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown prefecture %q", r.Pref)
	}
	return nil
}

func (r *SubmitRequest) toDomain() models.SubmitRequest {
	return models.SubmitRequest{
		Pref:    id.Region(r.Pref),
		Name:    r.Name,
		Address: r.Address,
		Note:    r.Note,
	}
}

// EditRequest is the HTTP request body for PATCH /submissions/{id}. Absent
// fields keep their stored values.
type EditRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Note    *string `json:"note"`
}

func (r *EditRequest) Validate() error {
	if r == nil || (r.Name == nil && r.Address == nil && r.Note == nil) {
		return dErrors.New(dErrors.CodeBadRequest, "at least one of name, address, note is required")
	}
	return nil
}

func (r *EditRequest) toDomain() models.EditRequest {
	return models.EditRequest{Name: r.Name, Address: r.Address, Note: r.Note}
}

// RejectRequest is the HTTP request body for POST /submissions/{id}/reject.
// The body is optional; an empty reason falls back to the service default.
type RejectRequest struct {
	Reason string `json:"reason"`
}
