package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/config"
)

const (
	defaultKeyPrefix = "invoice:doc:"
	// maxMergeAttempts bounds optimistic retries when another writer
	// touches the same key between WATCH and EXEC
	maxMergeAttempts = 5
)

// ErrMergeConflict is returned when every optimistic merge attempt lost a race
var ErrMergeConflict = errors.New("redis snapshot merge conflict")

// RedisSnapshotStore implements invoice.SnapshotStore with one JSON value per owner.
// Saves are read-merge-write under WATCH so concurrent writers never lose fields.
type RedisSnapshotStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisClient connects and pings a client built from configuration
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisSnapshotStore creates a store on an existing client
func NewRedisSnapshotStore(client redis.UniversalClient, keyPrefix string) *RedisSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisSnapshotStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisSnapshotStore) key(ownerID string) string {
	return s.keyPrefix + ownerID
}

// Load implements invoice.SnapshotStore
func (s *RedisSnapshotStore) Load(ctx context.Context, ownerID string) (*invoice.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, invoice.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice document: %w", err)
	}

	var snap invoice.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode invoice document: %w", err)
	}
	return &snap, nil
}

// Save implements invoice.SnapshotStore
func (s *RedisSnapshotStore) Save(ctx context.Context, ownerID string, patch invoice.Snapshot) error {
	key := s.key(ownerID)

	merge := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			current = nil
		case err != nil:
			return err
		}

		data, err := invoice.MergeJSON(current, patch)
		if err != nil {
			return fmt.Errorf("failed to merge invoice document: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		err := s.client.Watch(ctx, merge, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to save invoice document: %w", err)
	}
	return ErrMergeConflict
}

// Delete implements invoice.SnapshotStore
func (s *RedisSnapshotStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.client.Del(ctx, s.key(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete invoice document: %w", err)
	}
	return nil
}
