package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/models"
)

var (
	// ErrDemoMode blocks authenticated calls while the session holds a
	// placeholder identity.
	ErrDemoMode = errors.New("demo mode: backend unreachable, changes are disabled")
	// ErrNotAuthenticated means there is no logged-in user.
	ErrNotAuthenticated = errors.New("not logged in")
)

// State is where the session is in its lifecycle.
type State int

const (
	Unresolved State = iota
	Loading
	Authenticated
	Anonymous
	Demo
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	case Demo:
		return "demo"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the session's observable state.
type Snapshot struct {
	State   State
	User    *models.PublicUser
	Token   string
	Loading bool
	Err     error
	Demo    bool
}

// Backend is the subset of the API the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error)
	Profile(ctx context.Context, token string) (*Profile, error)
}

// Session resolves and tracks who is logged in. When the backend cannot be
// reached it falls back to a placeholder identity that is never persisted
// and never allowed to write.
type Session struct {
	mu     sync.Mutex
	api    Backend
	tokens TokenStore
	log    logging.Logger

	state State
	user  *models.PublicUser
	token string
	err   error
}

func NewSession(api Backend, tokens TokenStore, log logging.Logger) *Session {
	return &Session{api: api, tokens: tokens, log: log, state: Unresolved}
}

// Start resolves the stored token, if any, into a user. Only a storage
// failure is returned; fetch failures are recorded in the snapshot.
func (s *Session) Start(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.reset(Anonymous, err)
		return err
	}
	if token == "" {
		s.reset(Anonymous, nil)
		return nil
	}

	s.mu.Lock()
	s.state, s.token, s.user, s.err = Loading, token, nil, nil
	s.mu.Unlock()

	p, err := s.api.Profile(ctx, token)
	switch {
	case err == nil:
		u := p.User()
		s.mu.Lock()
		s.state, s.user = Authenticated, &u
		s.mu.Unlock()
		return nil
	case errors.Is(err, ErrUnreachable):
		s.enterDemo(ctx, "", "", err)
		return nil
	default:
		s.log.Info(ctx, "stored token rejected, logging out", "err", err)
		if cerr := s.tokens.Clear(ctx); cerr != nil {
			s.reset(Anonymous, cerr)
			return cerr
		}
		s.reset(Anonymous, err)
		return nil
	}
}

// Login exchanges credentials for a token. A rejection is returned with the
// server's message; an authenticated session stays as it was and a demo
// session drops to Anonymous.
func (s *Session) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	return s.finishAuth(ctx, res, err, "", email)
}

// Register creates an account and logs into it.
func (s *Session) Register(ctx context.Context, username, email, password string) error {
	res, err := s.api.Register(ctx, username, email, password)
	return s.finishAuth(ctx, res, err, username, email)
}

func (s *Session) finishAuth(ctx context.Context, res *models.AuthResponse, err error, username, email string) error {
	if errors.Is(err, ErrUnreachable) {
		s.enterDemo(ctx, username, email, err)
		return nil
	}
	if err != nil {
		s.mu.Lock()
		if s.state == Demo {
			// the server answered, so the placeholder identity no longer applies
			s.state, s.user, s.token = Anonymous, nil, ""
		}
		s.err = err
		s.mu.Unlock()
		return err
	}

	if err := s.tokens.Save(ctx, res.Token); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}
	u := res.User
	s.mu.Lock()
	s.state, s.user, s.token, s.err = Authenticated, &u, res.Token, nil
	s.mu.Unlock()
	return nil
}

// Logout forgets the token and user from any state.
func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.Clear(ctx)
	s.reset(Anonymous, nil)
	return err
}

// Token returns the bearer token for authenticated calls. In demo mode it
// fails with ErrDemoMode so no write reaches the server.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Authenticated:
		return s.token, nil
	case Demo:
		return "", ErrDemoMode
	default:
		return "", ErrNotAuthenticated
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:   s.state,
		Token:   s.token,
		Loading: s.state == Loading || s.state == Unresolved,
		Err:     s.err,
		Demo:    s.state == Demo,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// enterDemo switches to a placeholder identity. The token store is not
// touched.
func (s *Session) enterDemo(ctx context.Context, username, email string, cause error) {
	s.log.Warn(ctx, "backend unreachable, entering demo mode", "err", cause)
	u := placeholderUser(username, email)
	s.mu.Lock()
	s.state, s.user, s.token, s.err = Demo, &u, "", nil
	s.mu.Unlock()
}

func (s *Session) reset(state State, err error) {
	s.mu.Lock()
	s.state, s.user, s.token, s.err = state, nil, "", err
	s.mu.Unlock()
}

func placeholderUser(username, email string) models.PublicUser {
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	if username == "" {
		username = "demo"
	}
	if email == "" {
		email = "demo@localhost"
	}
	return models.PublicUser{
		ID:       "demo-" + uuid.NewString(),
		Username: username,
		Email:    email,
	}
}
