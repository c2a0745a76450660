package items

import (
	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
)

// CanMutate reports whether requesterID may update or delete item. Only the
// owner may; there is no delegation or admin override.
func CanMutate(requesterID string, item *models.Item) bool {
	return requesterID != "" && item != nil && requesterID == item.OwnerID
}

// Authorize returns common.ErrForbidden unless CanMutate holds.
func Authorize(requesterID string, item *models.Item) error {
	if !CanMutate(requesterID, item) {
		return common.ErrForbidden
	}
	return nil
}
