package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned when nothing was copied under a key.
var ErrEmpty = errors.New("clipboard is empty")

// Store keeps copied snapshots between a copy and a later paste.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// MemoryStore is an in-process clipboard.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-process clipboard.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), data...)

	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entries[key]
	if !ok {
		return nil, ErrEmpty
	}

	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// RedisStore keeps clipboards in Redis so they survive across API instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db).
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "operion-canvas:clipboard:", ttl: ttl}
}

func (r *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store clipboard: %w", err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}

		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}

	return data, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
