package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/logging"
)

type stubVerifier map[string]error

func (s stubVerifier) Verify(token string) (string, error) {
	if err, ok := s[token]; ok {
		return "", err
	}
	return "user-" + token, nil
}

func protected(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	called := false
	h := RequireAuth(stubVerifier{
		"expired": common.ErrTokenExpired,
		"forged":  common.ErrTokenBadSignature,
		"junk":    common.ErrTokenMalformed,
	}, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, ok := UserIDFromContext(r.Context())
		assert.True(t, ok)
		w.Write([]byte(id))
	}))
	return h, &called
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusUnauthorized, `{"error":"Access denied"}`},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, `{"error":"Access denied"}`},
		{"other scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Access denied"}`},
		{"expired", "Bearer expired", http.StatusForbidden, `{"error":"Invalid token"}`},
		{"bad signature", "Bearer forged", http.StatusForbidden, `{"error":"Invalid token"}`},
		{"malformed", "Bearer junk", http.StatusForbidden, `{"error":"Invalid token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := protected(t)
			req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.False(t, *called, "handler must not run")
		})
	}
}

func TestRequireAuth_AttachesUserID(t *testing.T) {
	h, called := protected(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
	assert.Equal(t, "user-abc", rec.Body.String())
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := UserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
