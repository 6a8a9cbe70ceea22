package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{FSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, store.Driver())

	store, err = Open(ctx, Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, store.Driver())

	_, err = Open(ctx, Config{Driver: DriverS3})
	assert.ErrorContains(t, err, "bucket")

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.ErrorContains(t, err, "unknown blob driver ftp")
}

// Every driver honours the same contract.
func TestDriversShareContract(t *testing.T) {
	fsStore, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	stores := map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
		"s3":     NewMockS3ForTests(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			payload := []byte(`[{"id":"ABC1234"}]`)

			info, err := store.Put(ctx, "backups/b.json", bytes.NewReader(payload), PutOptions{ContentType: "application/json"})
			require.NoError(t, err)
			assert.Equal(t, "backups/b.json", info.Key)
			_, err = store.Put(ctx, "backups/a.json", bytes.NewReader(payload), PutOptions{})
			require.NoError(t, err)
			_, err = store.Put(ctx, "other/c.json", bytes.NewReader(payload), PutOptions{})
			require.NoError(t, err)

			_, err = store.Put(ctx, "backups/a.json", bytes.NewReader(payload), PutOptions{})
			assert.True(t, errors.Is(err, ErrExists))

			infos, err := store.List(ctx, "backups/")
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "backups/a.json", infos[0].Key)
			assert.Equal(t, "backups/b.json", infos[1].Key)
			assert.Equal(t, int64(len(payload)), infos[0].Size)

			_, rc, err := store.Get(ctx, "backups/b.json")
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, rc.Close())
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			_, _, err = store.Get(ctx, "backups/missing.json")
			assert.True(t, errors.Is(err, ErrNotFound))

			deleted, err := store.Delete(ctx, "backups/a.json")
			require.NoError(t, err)
			assert.True(t, deleted)
			infos, err = store.List(ctx, "backups/")
			require.NoError(t, err)
			assert.Len(t, infos, 1)
		})
	}
}
