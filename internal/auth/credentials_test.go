package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
	"github.com/ayush/swapspace/internal/store"
)

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	ctx := context.Background()
	users := store.NewMemoryStore()
	c := NewCredentials(users)

	u, err := c.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	stored, err := users.GetUserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)

	ok, err := CheckPassword(stored.PasswordHash, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_Duplicates(t *testing.T) {
	ctx := context.Background()
	c := NewCredentials(store.NewMemoryStore())

	_, err := c.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	_, err = c.Register(ctx, "alice2", "alice@x.com", "pw2")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity, "same email, different username")

	_, err = c.Register(ctx, "alice", "other@x.com", "pw2")
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity, "same username, different email")

	_, err = c.Register(ctx, "Alice", "Alice@x.com", "pw2")
	assert.NoError(t, err, "identity comparison is case-sensitive")
}

func TestRegister_MissingFields(t *testing.T) {
	c := NewCredentials(store.NewMemoryStore())

	for _, tc := range [][3]string{
		{"", "a@x.com", "pw"},
		{"a", "", "pw"},
		{"a", "a@x.com", ""},
		{"  ", "a@x.com", "pw"},
	} {
		_, err := c.Register(context.Background(), tc[0], tc[1], tc[2])
		assert.ErrorIs(t, err, common.ErrValidation, "%q", tc)
	}
}

func TestVerifyCredentials_EnumerationResistant(t *testing.T) {
	ctx := context.Background()
	c := NewCredentials(store.NewMemoryStore())
	_, err := c.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	u, err := c.VerifyCredentials(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, wrongPw := c.VerifyCredentials(ctx, "alice@x.com", "nope")
	_, unknown := c.VerifyCredentials(ctx, "bob@x.com", "pw1")

	assert.ErrorIs(t, wrongPw, common.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, common.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

type failingUsers struct {
	store.MemoryStore
	err error
}

func (f *failingUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f *failingUsers) ExistsByIdentity(context.Context, string, string) (bool, error) {
	return false, f.err
}

func TestCredentials_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("db down")
	c := NewCredentials(&failingUsers{err: boom})

	_, err := c.VerifyCredentials(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = c.Register(context.Background(), "a", "a@x.com", "pw")
	assert.ErrorIs(t, err, boom)
}

func TestCheckPassword_CorruptHash(t *testing.T) {
	ok, err := CheckPassword("not-a-bcrypt-hash", "pw")
	assert.False(t, ok)
	assert.Error(t, err)
}
