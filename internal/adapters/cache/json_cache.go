package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

// JSONCache stores JSON-encoded values on top of a CacheProvider. A nil
// provider turns every call into a no-op miss.
type JSONCache struct {
	provider providers.CacheProvider
}

// NewJSONCache creates a new JSON cache wrapper
func NewJSONCache(provider providers.CacheProvider) *JSONCache {
	return &JSONCache{provider: provider}
}

// Get decodes the value under key into dest. ok is false on a miss.
func (c *JSONCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || c.provider == nil {
		return false, nil
	}
	data, err := c.provider.Get(ctx, key)
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set marshals the value to JSON and stores it in cache
func (c *JSONCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.provider == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	return c.provider.Set(ctx, key, data, int(ttl.Seconds()))
}

// Delete removes a value from cache
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	if c == nil || c.provider == nil {
		return nil
	}
	return c.provider.Delete(ctx, key)
}
