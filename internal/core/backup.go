package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"studentrecords/internal/blob"
	"studentrecords/internal/infra/persistence/codec"
)

// ErrBackupsDisabled is returned by backup operations when no blob store is configured.
var ErrBackupsDisabled = errors.New("backups are not configured")

const (
	backupStem       = "students-"
	backupExt        = ".json"
	backupTimeLayout = "20060102T150405Z"
)

// backupKey builds the object key for a backup taken at the current clock time.
func (s *Service) backupKey() string {
	ts := s.opts.clock.Now().UTC().Format(backupTimeLayout)
	return fmt.Sprintf("%s%s%s-%s%s", s.opts.backupPrefix, backupStem, ts, uuid.NewString(), backupExt)
}

// Backup writes the current records to the backup store.
func (s *Service) Backup(ctx context.Context) (blob.Info, error) {
	var info blob.Info
	err := s.run(ctx, OpBackup, "", func(ctx context.Context) (int, error) {
		if s.opts.backups == nil {
			return 0, ErrBackupsDisabled
		}
		records := s.repo.All()
		payload, err := codec.Encode(records)
		if err != nil {
			return 0, fmt.Errorf("encode backup: %w", err)
		}
		info, err = s.opts.backups.Put(ctx, s.backupKey(), bytes.NewReader(payload), blob.PutOptions{
			ContentType: codec.ContentType,
			Metadata:    map[string]string{"records": strconv.Itoa(len(records))},
		})
		if err != nil {
			return 0, fmt.Errorf("store backup: %w", err)
		}
		s.opts.logger.Info("backup written", "key", info.Key, "records", len(records), "driver", s.opts.backups.Driver())
		return 0, nil
	})
	return info, err
}

// Backups lists stored backups, oldest first.
func (s *Service) Backups(ctx context.Context) ([]blob.Info, error) {
	if s.opts.backups == nil {
		return nil, ErrBackupsDisabled
	}
	infos, err := s.opts.backups.List(ctx, s.opts.backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	out := infos[:0]
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, s.opts.backupPrefix)
		if strings.HasPrefix(name, backupStem) && strings.HasSuffix(name, backupExt) {
			out = append(out, info)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Restore replaces the repository contents with the backup stored under key and
// persists the result.
func (s *Service) Restore(ctx context.Context, key string) error {
	return s.run(ctx, OpRestore, "", func(ctx context.Context) (int, error) {
		if s.opts.backups == nil {
			return 0, ErrBackupsDisabled
		}
		records, err := s.readBackup(ctx, key)
		if err != nil {
			return 0, err
		}
		changes, err := s.commit(ctx, func(tx Transaction) error {
			return tx.ReplaceAll(records)
		})
		if err == nil {
			s.opts.logger.Info("backup restored", "key", key, "records", len(records))
		}
		return len(changes), err
	})
}

func (s *Service) readBackup(ctx context.Context, key string) ([]Record, error) {
	_, rc, err := s.opts.backups.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open backup %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", key, err)
	}
	records, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", key, err)
	}
	return records, nil
}

// PruneBackups deletes the oldest backups so that at most keep remain. It
// returns the number of deleted backups.
func (s *Service) PruneBackups(ctx context.Context, keep int) (int, error) {
	var deleted int
	err := s.run(ctx, OpPrune, "", func(ctx context.Context) (int, error) {
		if keep < 0 {
			return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
		}
		infos, err := s.Backups(ctx)
		if err != nil {
			return 0, err
		}
		if len(infos) <= keep {
			return 0, nil
		}
		for _, info := range infos[:len(infos)-keep] {
			ok, err := s.opts.backups.Delete(ctx, info.Key)
			if err != nil {
				return deleted, fmt.Errorf("delete backup %s: %w", info.Key, err)
			}
			if ok {
				deleted++
			}
		}
		return deleted, nil
	})
	return deleted, err
}
