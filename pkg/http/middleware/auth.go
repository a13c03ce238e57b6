package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/httputil"
)

type contextKey string

// UserIDKey carries the authenticated user's ID through the request context
const UserIDKey contextKey = "user_id"

// SessionValidator resolves a bearer token to a user ID
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (string, error)
}

// RequireAuth rejects requests that do not carry a valid bearer token and
// stores the resolved user ID in the request context.
func RequireAuth(sessions SessionValidator, errHandler *apperrors.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				errHandler.Handle(w,
					apperrors.AuthenticationErrorf("MISSING_TOKEN", "authentication required"),
					httputil.GetTraceID(r))
				return
			}

			userID, err := sessions.ValidateSession(r.Context(), token)
			if err != nil {
				if _, ok := err.(*apperrors.AppError); !ok {
					err = apperrors.AuthenticationErrorf("INVALID_TOKEN", "invalid or expired token").Wrap(err)
				}
				errHandler.Handle(w, err, httputil.GetTraceID(r))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken pulls the bearer token from the Authorization header, the
// X-Auth-Token header or the auth_token cookie, in that order.
func ExtractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token := r.Header.Get("X-Auth-Token"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// UserIDFromContext returns the authenticated user ID set by RequireAuth
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
