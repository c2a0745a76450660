package items

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
)

func TestCanMutate(t *testing.T) {
	item := &models.Item{ID: "i1", OwnerID: "alice-id", Owner: &models.OwnerRef{ID: "alice-id", Username: "alice"}}

	assert.True(t, CanMutate("alice-id", item))
	assert.False(t, CanMutate("bob-id", item))
	assert.False(t, CanMutate("alice", item), "display names never grant access")
	assert.False(t, CanMutate("", &models.Item{}))
	assert.False(t, CanMutate("alice-id", nil))
}

func TestAuthorize(t *testing.T) {
	item := &models.Item{OwnerID: "a"}

	assert.NoError(t, Authorize("a", item))
	assert.ErrorIs(t, Authorize("b", item), common.ErrForbidden)
}
