package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for report and extraction caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReportKey derives the cache key for a finished analysis of a URL.
// The version segment invalidates old entries when the report schema
// changes shape.
func ReportKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "veracity:report:v1:" + hex.EncodeToString(hash[:])
}
