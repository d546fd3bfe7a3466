package cache

import "time"

// CacheService is the read-side caching behavior the usecases depend on.
type CacheService interface {
	// Get retrieves a value; the second return reports a hit.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL.
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value.
	Delete(key string)

	// Flush removes all items.
	Flush()
}
