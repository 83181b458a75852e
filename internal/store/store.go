// Package store persists registry snapshots so a market can resume.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/stockmarket/internal/registry"
)

// ErrNoSnapshot is returned by Latest when nothing has been saved yet
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store saves snapshots and returns the newest one
type Store interface {
	Save(ctx context.Context, snap registry.Snapshot) error
	Latest(ctx context.Context) (registry.Snapshot, error)
	Close() error
}

// Kinds of store selectable through SNAPSHOT_STORE
const (
	KindFile     = "file"
	KindPostgres = "postgres"
	KindRedis    = "redis"
)

// Resume restores reg from the newest snapshot in s. ok is false when the
// store is empty and reg was left as is.
func Resume(ctx context.Context, s Store, reg *registry.Registry) (snap registry.Snapshot, ok bool, err error) {
	snap, err = s.Latest(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return registry.Snapshot{}, false, nil
	}
	if err != nil {
		return registry.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	if err := reg.Restore(snap); err != nil {
		return registry.Snapshot{}, false, fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
	}
	return snap, true, nil
}
