package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, Entry{
		ID:         "first",
		ClientName: "agent-1",
		Message:    "Review this diff",
		Options:    []string{"Approve", "Reject"},
		Status:     StatusAnswered,
		Response:   "Selected options: Approve",
		CreatedAt:  base,
		Duration:   1500 * time.Millisecond,
	}))
	require.NoError(t, store.Record(ctx, Entry{
		ID:        "second",
		Message:   "Continue?",
		Status:    StatusFailed,
		Error:     "popup creation failed: no host",
		CreatedAt: base.Add(time.Minute),
	}))

	entries, err := store.Recent(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "second", entries[0].ID, "newest entry should come first")
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "popup creation failed: no host", entries[0].Error)
	assert.Nil(t, entries[0].Options)

	first := entries[1]
	assert.Equal(t, "agent-1", first.ClientName)
	assert.Equal(t, []string{"Approve", "Reject"}, first.Options)
	assert.Equal(t, 1500*time.Millisecond, first.Duration)
	assert.True(t, first.CreatedAt.Equal(base))
}

func TestRecent_FilterAndLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Now()

	for i, client := range []string{"a", "b", "a", "a"} {
		require.NoError(t, store.Record(ctx, Entry{
			ID:         string(rune('w' + i)),
			ClientName: client,
			Message:    "m",
			Status:     StatusAnswered,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.Recent(ctx, Query{Client: "a", Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "z", entries[0].ID)
	assert.Equal(t, "y", entries[1].ID)

	entries, err = store.Recent(ctx, Query{Client: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecord_ReplacesSameID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Entry{ID: "x", Message: "m", Status: StatusFailed}))
	require.NoError(t, store.Record(ctx, Entry{ID: "x", Message: "m", Status: StatusAnswered}))

	entries, err := store.Recent(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusAnswered, entries[0].Status)
	assert.False(t, entries[0].CreatedAt.IsZero(), "missing timestamps should be filled in")
}

func TestRecord_RequiresID(t *testing.T) {
	store := openStore(t)
	assert.Error(t, store.Record(context.Background(), Entry{Message: "m"}))
}
