package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/middleware"
	"github.com/ayush/swapspace/internal/models"
	"github.com/ayush/swapspace/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *TokenService) {
	t.Helper()
	tokens := NewTokenService("test-secret")
	h := NewHandler(NewCredentials(store.NewMemoryStore()), tokens, logging.Discard())

	r := chi.NewRouter()
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.With(middleware.RequireAuth(tokens, logging.Discard())).Get("/api/users/profile", h.Profile)
	return r, tokens
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginProfile(t *testing.T) {
	h, tokens := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/auth/register", "", `{"username":"alice","email":"alice@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "alice@x.com", reg.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	subject, err := tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, subject)

	rec = do(t, h, http.MethodPost, "/api/auth/login", "", `{"email":"alice@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, reg.User, login.User)

	rec = do(t, h, http.MethodGet, "/api/users/profile", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, reg.User.ID, profile["_id"])
	assert.Equal(t, "alice", profile["username"])
	assert.Contains(t, profile, "createdAt")
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "PasswordHash")
}

func TestRegister_Duplicate(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/auth/register", "", `{"username":"alice","email":"alice@x.com","password":"pw1"}`)

	rec := do(t, h, http.MethodPost, "/api/auth/register", "", `{"username":"bob","email":"alice@x.com","password":"pw2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email or username already in use"}`, rec.Body.String())
}

func TestRegister_BadInput(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/auth/register", "", `{"username":"alice"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/auth/register", "", `{"username":"alice","email":"","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"username, email, and password are required"}`, rec.Body.String())
}

func TestLogin_SameErrorForUnknownAndWrong(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/auth/register", "", `{"username":"alice","email":"alice@x.com","password":"pw1"}`)

	wrong := do(t, h, http.MethodPost, "/api/auth/login", "", `{"email":"alice@x.com","password":"bad"}`)
	unknown := do(t, h, http.MethodPost, "/api/auth/login", "", `{"email":"nobody@x.com","password":"pw1"}`)

	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, wrong.Body.String())
}

func TestProfile_Errors(t *testing.T) {
	h, tokens := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/users/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/profile", "garbage", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ghost, err := tokens.Issue("no-such-user")
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/api/users/profile", ghost, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}
