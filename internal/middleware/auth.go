package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/httpjson"
	"github.com/ayush/swapspace/internal/logging"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth is middleware that validates the bearer token and injects the
// user id into the request context. A missing credential is answered with
// 401, any invalid one with 403; the reason is only logged.
func RequireAuth(tokens TokenVerifier, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httpjson.Fail(w, common.ErrTokenMissing, "")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				log.Warn(r.Context(), "rejected bearer token", "reason", err.Error(), "path", r.URL.Path)
				httpjson.Fail(w, common.ErrTokenMalformed, "")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerToken extracts the credential from "Authorization: Bearer <token>".
// ok is false when no credential was supplied at all.
func BearerToken(r *http.Request) (token string, ok bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(rest)
	return token, token != ""
}

// WithUserID returns ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
