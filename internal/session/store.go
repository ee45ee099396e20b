package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// CookieName is the opaque session cookie set at login and cleared at logout.
const CookieName = "touristhub_sid"

var ErrNotFound = errors.New("session not found")

// Store maps opaque session identifiers to user IDs. Resolution happens on
// every authenticated request, so the store is the single consistency point
// for "who is logged in".
type Store interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Resolve(ctx context.Context, id string) (string, error)
	Destroy(ctx context.Context, id string) error
}

// newID returns a 128-bit random identifier, hex encoded.
func newID() (string, error) {
	buf := make([]byte, 16)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
