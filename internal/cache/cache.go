// Package cache provides the in-memory TTL cache used to avoid re-querying
// search capabilities for identical queries within a short window. Nothing
// here persists across process restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// GetJSON looks up key and decodes the stored JSON into a value of type T.
// A corrupt entry reads as a miss.
func GetJSON[T any](c Cache, key string) (T, bool) {
	var v T
	raw, found := c.Get(key)
	if !found {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON[T any](c Cache, key string, v T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, raw, ttl)
}

// Key generates a namespaced cache key from the given parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "sift:v1:" + hex.EncodeToString(h.Sum(nil))
}
