package store

import (
	"context"
	"fmt"

	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/pkg/redis"
)

// RedisStore keeps every snapshot under its id and a copy under the latest
// key. Older snapshots expire after redis.TTLSnapshot.
type RedisStore struct {
	client *redis.Client
	cache  *redis.Cache
}

// NewRedisStore stores snapshots through client
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if !client.Enabled() {
		return nil, fmt.Errorf("redis store requires an enabled redis client")
	}
	return &RedisStore{
		client: client,
		cache:  redis.NewCache(client, redis.KeyPrefix),
	}, nil
}

// Save writes snap under its id, then moves the latest key to it
func (s *RedisStore) Save(ctx context.Context, snap registry.Snapshot) error {
	if err := s.cache.Set(ctx, redis.SnapshotKey(snap.ID), snap, redis.TTLSnapshot); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	if err := s.cache.Set(ctx, redis.LatestSnapshotKey(), snap, redis.TTLForever); err != nil {
		return fmt.Errorf("save latest snapshot: %w", err)
	}
	return nil
}

// Latest returns the snapshot under the latest key
func (s *RedisStore) Latest(ctx context.Context) (registry.Snapshot, error) {
	var snap registry.Snapshot
	found, err := s.cache.Get(ctx, redis.LatestSnapshotKey(), &snap)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("load latest snapshot: %w", err)
	}
	if !found {
		return registry.Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

// Get returns a snapshot by id
func (s *RedisStore) Get(ctx context.Context, id string) (registry.Snapshot, error) {
	var snap registry.Snapshot
	found, err := s.cache.Get(ctx, redis.SnapshotKey(id), &snap)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	if !found {
		return registry.Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

// Close closes the underlying connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
