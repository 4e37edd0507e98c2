// Package httputil centralizes JSON response and domain-error translation so
// handlers stay thin and error payloads stay uniform.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	dErrors "udonmap/pkg/domain-errors"
)

// ErrorResponse is the wire shape for failed requests.
type ErrorResponse struct {
	Error            string         `json:"error"`
	ErrorDescription string         `json:"error_description,omitempty"`
	Details          map[string]any `json:"details,omitempty"`
}

// statusByCode maps domain error codes to HTTP status.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:    http.StatusBadRequest,
	dErrors.CodeRateLimited:   http.StatusTooManyRequests,
	dErrors.CodeUnauthorized:  http.StatusUnauthorized,
	dErrors.CodeQuotaExceeded: http.StatusTooManyRequests,
	dErrors.CodeDuplicate:     http.StatusConflict,
	dErrors.CodeNotFound:      http.StatusNotFound,
	dErrors.CodeForbidden:     http.StatusForbidden,
	dErrors.CodeInvalidState:  http.StatusConflict,
	dErrors.CodeRemoteWrite:   http.StatusBadGateway,
	dErrors.CodeUnavailable:   http.StatusServiceUnavailable,
	dErrors.CodePermission:    http.StatusForbidden,
	dErrors.CodeTimeout:       http.StatusGatewayTimeout,
	dErrors.CodeInternal:      http.StatusInternalServerError,
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError renders a domain error. Internal errors omit the description so
// infrastructure detail never reaches clients; rate-limited responses carry a
// Retry-After header when the error has a retry_after_seconds detail.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{Error: string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		resp.ErrorDescription = de.Message
		resp.Details = de.Details
	}

	if retry, ok := dErrors.Detail(err, "retry_after_seconds"); ok {
		if secs, ok := retry.(int); ok {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}

	WriteJSON(w, status, resp)
}

// Validatable lets request DTOs validate and parse themselves after decode.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a JSON request body into T and, when T implements
// Validatable, validates it. On failure it writes the error response and
// returns false; handlers just return.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body must be valid JSON"))
		return nil, false
	}
	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}
