// Package cache defines the process-external key-value store used for
// repeated-identity upstream requests.
//
// Implementations own expiry: an entry is never returned past
// CreatedAt+Lifespan. Store failures are collapsed to a miss at the call
// site (fail-open) so the gateway can proceed to origin.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Entry is a serialized payload plus its cache metadata.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Lifespan  time.Duration   `json:"lifespan"`
}

// Decode unmarshals the entry payload into v.
func (e Entry) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Store is the cache contract. Keys are case-normalized before lookup
// and storage; a false return means absent, expired, or store failure.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, payload any, lifespan time.Duration)
	Has(ctx context.Context, key string) bool
}

// Key builds a normalized, namespaced cache key from its parts.
func Key(parts ...string) string {
	return strings.ToUpper(strings.Join(parts, "_"))
}
