package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/models"
)

// MemoryStore keeps users and items in process memory. It backs
// STORAGE=memory and the handler tests; data is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users []models.User
	items []models.Item
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// ── Users ────────────────────────────────────────────────

func (s *MemoryStore) CreateUser(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identityTaken(username, email) {
		return nil, common.ErrDuplicateIdentity
	}
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.users = append(s.users, u)
	return &u, nil
}

func (s *MemoryStore) ExistsByIdentity(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identityTaken(username, email), nil
}

func (s *MemoryStore) identityTaken(username, email string) bool {
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.userByID(id); u != nil {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u := s.userByID(id); u != nil {
			out[id] = u
		}
	}
	return out, nil
}

// userByID returns a copy with the password hash cleared, matching the
// column set of the Postgres lookup.
func (s *MemoryStore) userByID(id string) *models.User {
	for _, u := range s.users {
		if u.ID == id {
			u.PasswordHash = ""
			return &u
		}
	}
	return nil
}

// ── Items ────────────────────────────────────────────────

func (s *MemoryStore) Insert(_ context.Context, item *models.Item) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *item
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC()
	stored.Owner = nil
	s.items = append(s.items, stored)
	return &stored, nil
}

func (s *MemoryStore) List(_ context.Context, filter models.ItemFilter) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Item{}
	for _, it := range s.items {
		if MatchesFilter(&it, filter) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Item{}
	for _, it := range s.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		it := s.items[i]
		return &it, nil
	}
	return nil, common.ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, id string, fields models.ItemFields) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, common.ErrNotFound
	}
	fields.Apply(&s.items[i])
	it := s.items[i]
	return &it, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return common.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *MemoryStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, it := range s.items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// MatchesFilter applies the listing filter: Query is a case-insensitive
// substring of title or description, Category an exact match.
func MatchesFilter(item *models.Item, filter models.ItemFilter) bool {
	if filter.Category != "" && item.Category != filter.Category {
		return false
	}
	if filter.Query == "" {
		return true
	}
	q := strings.ToLower(filter.Query)
	return strings.Contains(strings.ToLower(item.Title), q) ||
		strings.Contains(strings.ToLower(item.Description), q)
}
