package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching. The memory implementation backs
// the session-scoped metadata cache; the disk implementation holds only the
// hijacked-journal registry snapshot. Evaluation results are never cached.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a request URL or resource name.
func Key(resource string) string {
	hash := sha256.Sum256([]byte(resource))
	return "scholarlytrust:v1:" + hex.EncodeToString(hash[:])
}
