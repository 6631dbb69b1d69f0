package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemCacheAdapter(t *testing.T) {
	a := NewMemCacheAdapter(10)

	_, found := a.Get("vote-1")
	require.False(t, found)

	entry := &Entry{VoteID: "vote-1", Weight: 42.0, ComputedAt: time.Now()}
	a.Set("vote-1", entry)

	got, found := a.Get("vote-1")
	require.True(t, found)
	require.Equal(t, entry.Weight, got.Weight)

	a.Remove("vote-1")
	_, found = a.Get("vote-1")
	require.False(t, found)
}

func TestMemCacheAdapterEvicts(t *testing.T) {
	a := NewMemCacheAdapter(2)

	a.Set("a", &Entry{VoteID: "a"})
	a.Set("b", &Entry{VoteID: "b"})
	a.Set("c", &Entry{VoteID: "c"})

	_, found := a.Get("a")
	require.False(t, found)
	_, found = a.Get("c")
	require.True(t, found)
}
