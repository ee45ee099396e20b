package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "u1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	userID, err := s.Resolve(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)

	require.NoError(t, s.Destroy(ctx, id))

	_, err = s.Resolve(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	// destroying a missing session is not an error
	require.NoError(t, s.Destroy(ctx, id))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "u1", 10*time.Millisecond)
	require.NoError(t, err)

	_, err = s.Resolve(ctx, id)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = s.Resolve(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id, err := s.Create(ctx, "u1", time.Hour)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate session id %q", id)
		seen[id] = true
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Resolve(context.Background(), "no-such-session")
	require.ErrorIs(t, err, ErrNotFound)
}
