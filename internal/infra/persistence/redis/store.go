// Package redis stores the record snapshot under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"studentrecords/internal/infra/persistence/codec"
	"studentrecords/pkg/domain"
)

// DefaultKey holds the snapshot when no key is configured.
const DefaultKey = "studentrecords:records"

var _ domain.SnapshotStore = (*Store)(nil)

// Config holds Redis connection configuration.
type Config struct {
	Addr        string
	Password    string
	DB          int
	Key         string
	DialTimeout time.Duration
}

// DefaultConfig returns a local, unauthenticated configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		Key:         DefaultKey,
		DialTimeout: 5 * time.Second,
	}
}

// Client is the subset of redis.Cmdable used by Store.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Store reads and overwrites the snapshot key.
type Store struct {
	client Client
	key    string
	closer func() error
	mu     sync.Mutex
}

// NewStore wraps an existing client.
func NewStore(client Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Open dials Redis using cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultConfig().DialTimeout
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := NewStore(client, cfg.Key)
	s.closer = client.Close
	return s, nil
}

// Key returns the Redis key holding the snapshot.
func (s *Store) Key() string { return s.key }

// Load returns the stored records, or an empty collection when the key is unset.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, domain.NewLoadError(fmt.Errorf("get %s: %w", s.key, err))
	}
	records, err := codec.Decode(data)
	if err != nil {
		return nil, domain.NewLoadError(err)
	}
	return records, nil
}

// Save overwrites the key with the encoded snapshot. The key never expires.
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := codec.Encode(records)
	if err != nil {
		return domain.NewSaveError(err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return domain.NewSaveError(fmt.Errorf("set %s: %w", s.key, err))
	}
	return nil
}

// Close releases the connection opened by Open. Stores built with NewStore
// leave the client to their owner.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
