// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services consume them. Keeping the package
// free of net/http lets services import only what they need. Session state
// that the original client kept as globals (current user, device identity,
// request time) travels through the context instead, so unit tests inject
// values directly:
//
//	ctx = requestcontext.WithUser(ctx, user)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "udonmap/pkg/domain"
)

// User describes the authenticated caller as reported by the identity
// provider. Moderator mirrors the provider's `admin` role claim.
type User struct {
	ID        id.UserID
	Email     string
	Name      string
	Moderator bool
}

type (
	userKey        struct{}
	deviceIDKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// UserFrom retrieves the authenticated user, if any.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

// UserID retrieves the authenticated user ID, or "" when anonymous.
func UserID(ctx context.Context) id.UserID {
	u, _ := UserFrom(ctx)
	return u.ID
}

// IsModerator reports whether the caller carries the admin role claim.
func IsModerator(ctx context.Context) bool {
	u, _ := UserFrom(ctx)
	return u.Moderator
}

// WithUser injects the authenticated user into the context.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// DeviceID retrieves the client device identifier used for rate-limit keying.
func DeviceID(ctx context.Context) string {
	v, _ := ctx.Value(deviceIDKey{}).(string)
	return v
}

// WithDeviceID injects a device identifier.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey{}, deviceID)
}

// UserAgent retrieves the client User-Agent header value.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithUserAgent injects the client User-Agent.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// RequestID retrieves the request correlation ID.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithRequestID injects a request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now for
// non-HTTP contexts (workers, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the context clock. Tests use this to make cooldown and
// timestamp behavior deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
