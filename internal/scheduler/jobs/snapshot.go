package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/internal/store"
	"github.com/wonny/stockmarket/pkg/logger"
)

// SnapshotJob persists the registry on a schedule
type SnapshotJob struct {
	registry *registry.Registry
	store    store.Store
	schedule string
	logger   *logger.Logger

	mu        sync.Mutex
	saved     bool
	lastSaved uint64 // registry revision of the last save
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(reg *registry.Registry, s store.Store, schedule string, log *logger.Logger) *SnapshotJob {
	return &SnapshotJob{
		registry: reg,
		store:    s,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "market_snapshot"
}

// Schedule returns the cron schedule
func (j *SnapshotJob) Schedule() string {
	return j.schedule
}

// Run saves a snapshot unless the market is unchanged since the last one
func (j *SnapshotJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Read before the snapshot: a change in between is saved again next run.
	revision := j.registry.Revision()
	if j.saved && revision == j.lastSaved {
		j.logger.Debug("Market unchanged, snapshot skipped")
		return nil
	}

	snap := j.registry.Snapshot()
	if err := j.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("snapshot job: %w", err)
	}
	j.saved = true
	j.lastSaved = revision

	j.logger.WithFields(map[string]interface{}{
		"snapshot":  snap.ID,
		"stocks":    len(snap.Stocks),
		"last_tick": snap.LastTick,
	}).Info("Market snapshot saved")

	return nil
}
