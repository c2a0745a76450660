package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/models"
)

const ownerKeyPrefix = "owner:"

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// OwnerLookup is the user lookup the cache sits in front of.
type OwnerLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// OwnerCache is a read-through Redis cache of owner summaries used when
// listing items. Users are never updated, so entries only expire by TTL.
// Redis failures degrade to the underlying lookup.
type OwnerCache struct {
	rdb  *redis.Client
	next OwnerLookup
	ttl  time.Duration
	log  logging.Logger
}

func NewOwnerCache(rdb *redis.Client, next OwnerLookup, ttl time.Duration, log logging.Logger) *OwnerCache {
	return &OwnerCache{rdb: rdb, next: next, ttl: ttl, log: log}
}

func (c *OwnerCache) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	misses := c.fromCache(ctx, ids, out)
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := c.next.GetUsersByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, u := range loaded {
		out[id] = u
	}
	c.store(ctx, loaded)
	return out, nil
}

// fromCache fills out with cached entries and returns the ids it could not.
func (c *OwnerCache) fromCache(ctx context.Context, ids []string, out map[string]*models.User) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ownerKeyPrefix + id
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn(ctx, "owner cache read failed", "err", err)
		return ids
	}

	var misses []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID != ids[i] {
			misses = append(misses, ids[i])
			continue
		}
		out[ids[i]] = &u
	}
	return misses
}

func (c *OwnerCache) store(ctx context.Context, users map[string]*models.User) {
	if len(users) == 0 {
		return
	}
	pipe := c.rdb.Pipeline()
	for id, u := range users {
		b, err := json.Marshal(u)
		if err != nil {
			continue
		}
		pipe.Set(ctx, ownerKeyPrefix+id, b, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn(ctx, "owner cache write failed", "err", err)
	}
}
