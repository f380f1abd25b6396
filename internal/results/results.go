// Package results keeps finished pipeline output for a short time so that a later
// request (an edit, a download) can refer to it by id.
package results

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired ids.
var ErrNotFound = errors.New("result not found")

// Result is a packaged pipeline output.
type Result struct {
	ID        string    `json:"id"`
	Latex     string    `json:"latex"`
	PDF       []byte    `json:"pdf"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists results by id with a TTL.
type Store interface {
	Save(ctx context.Context, r Result) error
	Get(ctx context.Context, id string) (Result, error)
}

// Cache maps a request fingerprint to a previous result.
type Cache interface {
	Lookup(ctx context.Context, key string) (Result, bool, error)
	Remember(ctx context.Context, key string, r Result) error
}

// CacheKey fingerprints a generation request.
func CacheKey(mode, latex, payload string) string {
	h := sha256.New()
	for _, part := range []string{mode, latex, payload} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
