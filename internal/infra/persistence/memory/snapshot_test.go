package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Nil(t, store.Bytes())

	records := []Record{rec("AAA0001"), rec("BBB0002")}
	require.NoError(t, store.Save(ctx, records))
	assert.Equal(t, 1, store.Saves())
	assert.Contains(t, string(store.Bytes()), `"id": "AAA0001"`)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestSnapshotStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewSnapshotStore()

	assert.Error(t, store.Save(ctx, nil))
	_, err := store.Load(ctx)
	assert.Error(t, err)
	assert.Zero(t, store.Saves())
}
