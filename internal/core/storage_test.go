package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentrecords/internal/blob"
	"studentrecords/internal/config"
	"studentrecords/internal/infra/persistence/file"
	"studentrecords/internal/infra/persistence/memory"
	"studentrecords/internal/infra/persistence/sqlite"
)

func TestOpenSnapshotStoreDrivers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fileStore, err := OpenSnapshotStore(ctx, config.StorageConfig{Path: filepath.Join(dir, "students.json")})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, fileStore)
	assert.NoError(t, CloseSnapshotStore(fileStore))

	memStore, err := OpenSnapshotStore(ctx, config.StorageConfig{Driver: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.SnapshotStore{}, memStore)

	sqliteStore, err := OpenSnapshotStore(ctx, config.StorageConfig{Driver: config.StorageSQLite, SQLitePath: filepath.Join(dir, "students.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, sqliteStore)

	svc := NewService(memory.NewStore(), sqliteStore)
	require.NoError(t, svc.Add(ctx, student("AAA0001")))
	reloaded := NewService(memory.NewStore(), sqliteStore)
	require.NoError(t, reloaded.Initialize(ctx))
	assert.Equal(t, []string{"AAA0001"}, ids(reloaded.List()))
	assert.NoError(t, CloseSnapshotStore(sqliteStore))

	_, err = OpenSnapshotStore(ctx, config.StorageConfig{Driver: "mongo"})
	assert.EqualError(t, err, "unknown storage driver mongo")
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	ctx := context.Background()
	store, err := OpenSnapshotStore(ctx, config.StorageConfig{Driver: config.StorageFile, Path: path})
	require.NoError(t, err)

	svc := NewService(memory.NewStore(), store)
	require.NoError(t, svc.Initialize(ctx))
	require.NoError(t, svc.Add(ctx, student("AAA0001", "Math", "Art")))

	again := NewService(memory.NewStore(), file.New(path))
	require.NoError(t, again.Initialize(ctx))
	assert.Equal(t, svc.List(), again.List())
}

func TestOpenBackupStore(t *testing.T) {
	ctx := context.Background()
	fsStore, err := OpenBackupStore(ctx, config.BackupConfig{Driver: "fs", Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, fsStore.Driver())

	memStore, err := OpenBackupStore(ctx, config.BackupConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverMemory, memStore.Driver())

	_, err = OpenBackupStore(ctx, config.BackupConfig{Driver: "ftp"})
	assert.Error(t, err)
}
