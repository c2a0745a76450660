// Package items implements the item listing: persistence-agnostic service,
// ownership policy and HTTP handlers.
package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
)

// Categories is the suggested category set offered by clients. The server
// does not enforce it.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Books",
	"Home & Garden",
	"Sports & Outdoors",
	"Toys & Games",
	"Collectibles",
	"Other",
}

// ItemStore defines the interface for item persistence. Lookups of unknown
// ids return common.ErrNotFound. List and ListByOwner return items in
// insertion order.
type ItemStore interface {
	Insert(ctx context.Context, item *models.Item) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	Update(ctx context.Context, id string, fields models.ItemFields) (*models.Item, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}

// OwnerResolver looks up item owners. Missing ids are absent from the map.
type OwnerResolver interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// Service is the item repository: CRUD with owner resolution and the
// ownership policy applied to mutations.
type Service struct {
	store  ItemStore
	owners OwnerResolver
}

func NewService(store ItemStore, owners OwnerResolver) *Service {
	return &Service{store: store, owners: owners}
}

// Create stores a new item owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, fields models.ItemFields) (*models.Item, error) {
	if ownerID == "" {
		return nil, common.ErrTokenMissing
	}
	fields = normalize(fields)
	if err := Validate(fields); err != nil {
		return nil, err
	}

	item := &models.Item{OwnerID: ownerID}
	fields.Apply(item)

	created, err := s.store.Insert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return s.resolveOne(ctx, created)
}

// ListAll returns every item matching filter with owners resolved.
func (s *Service) ListAll(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return s.resolve(ctx, list)
}

// ListByOwner returns the items owned by ownerID.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]models.Item, error) {
	list, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items by owner: %w", err)
	}
	return s.resolve(ctx, list)
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, item)
}

// Update overwrites the mutable fields of an item owned by requesterID.
// Concurrent updates of one item are last-write-wins.
func (s *Service) Update(ctx context.Context, id, requesterID string, fields models.ItemFields) (*models.Item, error) {
	if _, err := s.authorized(ctx, id, requesterID); err != nil {
		return nil, err
	}
	fields = normalize(fields)
	if err := Validate(fields); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, updated)
}

// Delete removes an item owned by requesterID.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.authorized(ctx, id, requesterID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// ListCategories returns the distinct categories in use, sorted.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

func (s *Service) authorized(ctx context.Context, id, requesterID string) (*models.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(requesterID, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) resolveOne(ctx context.Context, item *models.Item) (*models.Item, error) {
	list, err := s.resolve(ctx, []models.Item{*item})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// resolve fills Owner for every item whose owner still exists.
func (s *Service) resolve(ctx context.Context, list []models.Item) ([]models.Item, error) {
	if len(list) == 0 {
		return []models.Item{}, nil
	}
	seen := make(map[string]struct{}, len(list))
	ids := make([]string, 0, len(list))
	for _, it := range list {
		if _, ok := seen[it.OwnerID]; ok {
			continue
		}
		seen[it.OwnerID] = struct{}{}
		ids = append(ids, it.OwnerID)
	}

	owners, err := s.owners.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}
	for i := range list {
		if u, ok := owners[list[i].OwnerID]; ok {
			ref := u.Owner()
			list[i].Owner = &ref
		}
	}
	return list, nil
}

func normalize(f models.ItemFields) models.ItemFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	return f
}

// Validate checks that every field is present and the condition is known.
func Validate(f models.ItemFields) error {
	var missing []string
	if f.Title == "" {
		missing = append(missing, "title")
	}
	if f.Description == "" {
		missing = append(missing, "description")
	}
	if f.Condition == "" {
		missing = append(missing, "condition")
	}
	if f.Category == "" {
		missing = append(missing, "category")
	}
	if f.ImageURL == "" {
		missing = append(missing, "imageUrl")
	}
	if len(missing) > 0 {
		return common.Validation(strings.Join(missing, ", ") + " required")
	}
	if !f.Condition.Valid() {
		return common.Validation(fmt.Sprintf("condition must be one of New, Like New, Good, Fair, Poor; got %q", f.Condition))
	}
	return nil
}
