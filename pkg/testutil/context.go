// Package testutil provides request helpers for handler and middleware tests.
package testutil

import (
	"net/http"

	id "udonmap/pkg/domain"
	"udonmap/pkg/requestcontext"
)

// WithUser attaches an authenticated user to the request context, simulating
// what the auth middleware does for a valid bearer token.
func WithUser(req *http.Request, userID string) *http.Request {
	ctx := requestcontext.WithUser(req.Context(), requestcontext.User{
		ID: id.UserID(userID),
	})
	return req.WithContext(ctx)
}

// WithModerator attaches a moderator to the request context.
func WithModerator(req *http.Request, userID string) *http.Request {
	ctx := requestcontext.WithUser(req.Context(), requestcontext.User{
		ID:        id.UserID(userID),
		Moderator: true,
	})
	return req.WithContext(ctx)
}

// WithDevice sets the device identifier used for rate-limit keying.
func WithDevice(req *http.Request, deviceID string) *http.Request {
	return req.WithContext(requestcontext.WithDeviceID(req.Context(), deviceID))
}
