package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
)

// UserStore defines the interface for user persistence.
//
// GetUserByEmail and GetUserByID return common.ErrNotFound for unknown users.
// CreateUser returns common.ErrDuplicateIdentity when the username or email
// is already taken.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ExistsByIdentity(ctx context.Context, username, email string) (bool, error)
}

// Credentials registers users and checks their passwords.
type Credentials struct {
	users UserStore
}

func NewCredentials(users UserStore) *Credentials {
	return &Credentials{users: users}
}

// Register creates a user. Username and email are compared exactly as given.
func (c *Credentials) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, common.Validation("username, email, and password are required")
	}

	exists, err := c.users.ExistsByIdentity(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateIdentity
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	// A concurrent registration can still win the race; the store reports
	// the unique violation as ErrDuplicateIdentity.
	user, err := c.users.CreateUser(ctx, username, email, hashed)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials returns the user owning email if password matches.
// Unknown emails and wrong passwords both yield common.ErrInvalidCredentials.
func (c *Credentials) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := c.users.GetUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		_, _ = CheckPassword(string(dummyHash), password)
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the user with id.
func (c *Credentials) Profile(ctx context.Context, id string) (*models.User, error) {
	return c.users.GetUserByID(ctx, id)
}
