package core

import (
	"context"
	"fmt"
	"io"

	"studentrecords/internal/blob"
	"studentrecords/internal/config"
	"studentrecords/internal/infra/persistence/file"
	"studentrecords/internal/infra/persistence/memory"
	"studentrecords/internal/infra/persistence/postgres"
	redisstore "studentrecords/internal/infra/persistence/redis"
	"studentrecords/internal/infra/persistence/sqlite"
)

// OpenSnapshotStore constructs the snapshot driver named by cfg.Driver. An
// empty driver selects the JSON file driver. Drivers holding connections
// implement io.Closer; release them with CloseSnapshotStore.
func OpenSnapshotStore(ctx context.Context, cfg config.StorageConfig) (SnapshotStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.StorageFile
	}
	switch driver {
	case config.StorageFile:
		return file.New(cfg.Path), nil
	case config.StorageMemory:
		return memory.NewSnapshotStore(), nil
	case config.StorageSQLite:
		ss, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return ss, nil
	case config.StoragePostgres:
		ps, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return ps, nil
	case config.StorageRedis:
		rc := redisstore.DefaultConfig()
		if cfg.Redis.Addr != "" {
			rc.Addr = cfg.Redis.Addr
		}
		if cfg.Redis.Key != "" {
			rc.Key = cfg.Redis.Key
		}
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		rs, err := redisstore.Open(ctx, rc)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// CloseSnapshotStore releases store when it holds resources.
func CloseSnapshotStore(store SnapshotStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenBackupStore constructs the blob store receiving backups.
func OpenBackupStore(ctx context.Context, cfg config.BackupConfig) (blob.Store, error) {
	return blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Driver),
		FSRoot: cfg.Root,
		S3: blob.S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		},
	})
}
