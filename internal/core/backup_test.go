package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentrecords/internal/blob"
	"studentrecords/internal/infra/persistence/memory"
	"studentrecords/pkg/domain"
)

func backupStores(t *testing.T) map[string]blob.Store {
	t.Helper()
	fsStore, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	return map[string]blob.Store{
		"memory": blob.NewMemory(),
		"fs":     fsStore,
		"s3":     blob.NewMockS3ForTests(),
	}
}

func TestBackupAndRestore(t *testing.T) {
	for name, store := range backupStores(t) {
		t.Run(name, func(t *testing.T) {
			snapshots := memory.NewSnapshotStore()
			svc := NewService(memory.NewStore(), snapshots,
				WithBackupStore(store),
				WithClock(steppingClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))),
			)
			ctx := context.Background()
			pg := mustPostgraduate("PGR0001", "Robotics")
			require.NoError(t, svc.Add(ctx, student("AAA0001", "Math", "Physics")))
			require.NoError(t, svc.Add(ctx, pg))
			want := svc.List()

			info, err := svc.Backup(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(info.Key, "snapshots/students-20260102T"), info.Key)
			assert.True(t, strings.HasSuffix(info.Key, ".json"), info.Key)

			listed, err := svc.Backups(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, info.Key, listed[0].Key)

			require.NoError(t, svc.Delete(ctx, "AAA0001"))
			require.NoError(t, svc.Add(ctx, student("ZZZ0009")))
			saves := snapshots.Saves()

			require.NoError(t, svc.Restore(ctx, info.Key))
			assert.Equal(t, ids(want), ids(svc.List()))
			got, ok := svc.Find("PGR0001")
			require.True(t, ok)
			assert.Equal(t, domain.KindPostgraduate, got.Kind)
			assert.Equal(t, "Robotics", got.ResearchDomain)
			assert.Equal(t, saves+1, snapshots.Saves())

			persisted, err := snapshots.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, ids(want), ids(persisted))
		})
	}
}

func TestRestoreUnknownKey(t *testing.T) {
	svc := NewInMemoryService(WithBackupStore(blob.NewMemory()))
	require.NoError(t, svc.Add(context.Background(), student("AAA0001")))

	err := svc.Restore(context.Background(), "snapshots/missing.json")
	assert.ErrorIs(t, err, blob.ErrNotFound)
	assert.Equal(t, []string{"AAA0001"}, ids(svc.List()))
}

func TestRestoreRejectsDuplicateIDs(t *testing.T) {
	store := blob.NewMemory()
	svc := NewInMemoryService(WithBackupStore(store))
	ctx := context.Background()
	payload := `[{"id":"AAA0001","name":"A","age":20,"courses":["Math"],"year":1,"type":"student"},` +
		`{"id":"AAA0001","name":"B","age":21,"courses":["Art"],"year":2,"type":"student"}]`
	_, err := store.Put(ctx, "snapshots/students-dup.json", strings.NewReader(payload), blob.PutOptions{})
	require.NoError(t, err)

	var dup *domain.DuplicateIDError
	require.ErrorAs(t, svc.Restore(ctx, "snapshots/students-dup.json"), &dup)
	assert.Empty(t, svc.List())
}

func TestBackupsIgnoreForeignKeys(t *testing.T) {
	store := blob.NewMemory()
	svc := NewInMemoryService(WithBackupStore(store), WithBackupPrefix("nightly/"))
	ctx := context.Background()
	_, err := store.Put(ctx, "nightly/readme.txt", strings.NewReader("x"), blob.PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "other/students-1.json", strings.NewReader("[]"), blob.PutOptions{})
	require.NoError(t, err)

	info, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Key, "nightly/students-"))

	listed, err := svc.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, info.Key, listed[0].Key)
	assert.Equal(t, "0", listed[0].Metadata["records"])
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	svc := NewInMemoryService(
		WithBackupStore(blob.NewMemory()),
		WithClock(steppingClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))),
	)
	ctx := context.Background()
	var keys []string
	for i := 0; i < 3; i++ {
		info, err := svc.Backup(ctx)
		require.NoError(t, err)
		keys = append(keys, info.Key)
	}

	deleted, err := svc.PruneBackups(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	listed, err := svc.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, keys[2], listed[0].Key)

	deleted, err = svc.PruneBackups(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	_, err = svc.PruneBackups(ctx, -1)
	assert.Error(t, err)
}

func TestBackupsDisabled(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()
	_, err := svc.Backup(ctx)
	assert.ErrorIs(t, err, ErrBackupsDisabled)
	_, err = svc.Backups(ctx)
	assert.ErrorIs(t, err, ErrBackupsDisabled)
	assert.ErrorIs(t, svc.Restore(ctx, "k"), ErrBackupsDisabled)
	_, err = svc.PruneBackups(ctx, 1)
	assert.ErrorIs(t, err, ErrBackupsDisabled)
}
