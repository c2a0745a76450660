package auth

import (
	"errors"
	"net/http"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/httpjson"
	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/middleware"
	"github.com/ayush/swapspace/internal/models"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	creds  *Credentials
	tokens *TokenService
	log    logging.Logger
}

func NewHandler(creds *Credentials, tokens *TokenService, log logging.Logger) *Handler {
	return &Handler{creds: creds, tokens: tokens, log: log}
}

// Register creates a user and signs them in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, err, "")
		return
	}

	user, err := h.creds.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}
	h.log.Info(r.Context(), "user registered", "user_id", user.ID)
	h.respondWithToken(w, r, http.StatusCreated, "User registered successfully", user)
}

// Login checks credentials and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, err, "")
		return
	}

	user, err := h.creds.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, "Login successful", user)
}

// Profile returns the currently authenticated user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.Fail(w, common.ErrTokenMissing, "")
		return
	}

	user, err := h.creds.Profile(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "profile", err)
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, msg string, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(w, r, "issue token", err)
		return
	}
	httpjson.Write(w, status, models.AuthResponse{
		Message: msg,
		Token:   token,
		User:    user.Public(),
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, _ := httpjson.Status(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), op+" failed", "err", err)
	}
	if errors.Is(err, common.ErrNotFound) {
		httpjson.Fail(w, err, "User not found")
		return
	}
	httpjson.Fail(w, err, "")
}
