package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/platform/httputil"
	"udonmap/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the caller it names.
type TokenValidator interface {
	ValidateToken(tokenString string) (requestcontext.User, error)
}

// Authenticate resolves an optional bearer token into the request context.
// Anonymous requests pass through; routes that need a caller enforce it with
// RequireAuth or RequireModerator.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejecting invalid token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err.Error(),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requestcontext.UserFrom(r.Context()); !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign in required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModerator rejects callers without the admin role claim.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := requestcontext.UserFrom(r.Context())
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign in required"))
			return
		}
		if !user.Moderator {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "moderator role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
