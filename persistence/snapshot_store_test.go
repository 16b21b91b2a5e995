package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "dashbot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotStoreSaveAndRecent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Save(ctx, &Snapshot{
			TakenAt:    base.AddDate(0, 0, i),
			TaskCount:  i + 1,
			EmailCount: i,
			Payload:    json.RawMessage(fmt.Sprintf(`{"day":%d}`, i)),
		})
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].TaskCount)
	assert.Equal(t, 2, recent[1].TaskCount)
	assert.True(t, recent[0].TakenAt.After(recent[1].TakenAt))
	assert.JSONEq(t, `{"day":2}`, string(recent[0].Payload))
}

func TestSnapshotStoreDefaultsEmptyPayload(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, &Snapshot{TaskCount: 1})
	require.NoError(t, err)
	assert.Positive(t, id)

	recent, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.JSONEq(t, `{}`, string(recent[0].Payload))
	assert.False(t, recent[0].TakenAt.IsZero())
}

func TestSnapshotStorePrune(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Save(ctx, &Snapshot{TaskCount: i})
		require.NoError(t, err)
	}

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSnapshotStoreRequiresPath(t *testing.T) {
	_, err := NewSnapshotStore("")
	assert.Error(t, err)
}
