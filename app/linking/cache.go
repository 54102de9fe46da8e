package linking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResolutionCache is a read-through cache of resolved children keyed by
// user id. It sits in front of the stores, never replaces them: a miss or
// a redis error just means the resolver runs. Redemption and repair
// invalidate the entry for the affected user.
type ResolutionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResolutionCache(rdb *redis.Client, ttl time.Duration) *ResolutionCache {
	return &ResolutionCache{rdb: rdb, ttl: ttl}
}

func cacheKey(userID string) string {
	return "resolved:" + userID
}

// Get returns the cached resolution and whether one was present.
func (c *ResolutionCache) Get(ctx context.Context, userID string) (*Resolution, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var res Resolution
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &res, true, nil
}

func (c *ResolutionCache) Set(ctx context.Context, userID string, res *Resolution) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ResolutionCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// ResolveChildrenCached answers from the cache when it can, and fills it
// after a resolver run otherwise. Cache trouble is logged by the caller
// through the resolution's error trail, never surfaced as a failure.
func (s *Service) ResolveChildrenCached(ctx context.Context, userID, email string) *Resolution {
	if s.Cache == nil {
		return s.ResolveChildren(userID, email)
	}

	if cached, ok, err := s.Cache.Get(ctx, userID); err == nil && ok {
		return cached
	}

	res := s.ResolveChildren(userID, email)
	if err := s.Cache.Set(ctx, userID, res); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("cache: %v", err))
	}
	return res
}
