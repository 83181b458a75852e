package commands

import (
	"context"
	"fmt"

	"github.com/wonny/stockmarket/internal/preset"
	"github.com/wonny/stockmarket/internal/pricing"
	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/internal/store"
	"github.com/wonny/stockmarket/pkg/config"
	"github.com/wonny/stockmarket/pkg/database"
	"github.com/wonny/stockmarket/pkg/logger"
	"github.com/wonny/stockmarket/pkg/redis"
)

// loadConfig loads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if presetPath != "" {
		cfg.Market.PresetPath = presetPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newRegistry builds an empty market driven by the configured random walk
func newRegistry(cfg *config.Config, log *logger.Logger) *registry.Registry {
	strategy := pricing.NewRandomWalk(cfg.Market.Seed, cfg.Market.Drift)
	engine := pricing.NewEngine(strategy, pricing.WithRetention(cfg.Market.RetentionDays))
	return registry.New(engine, cfg.Market.Start, log)
}

// loadPreset returns the configured preset, or the built-in line-up
func loadPreset(cfg *config.Config) (*preset.Preset, error) {
	if cfg.Market.PresetPath == "" {
		return preset.Default(), nil
	}

	p, err := preset.Load(cfg.Market.PresetPath)
	if err != nil {
		return nil, fmt.Errorf("load preset %s: %w", cfg.Market.PresetPath, err)
	}
	return p, nil
}

// openMarket returns a registry resumed from s, or freshly opened from the
// preset when s holds no snapshot
func openMarket(ctx context.Context, cfg *config.Config, s store.Store, log *logger.Logger) (*registry.Registry, error) {
	reg := newRegistry(cfg, log)

	snap, ok, err := store.Resume(ctx, s, reg)
	if err != nil {
		return nil, err
	}
	if ok {
		log.WithFields(map[string]interface{}{
			"snapshot":  snap.ID,
			"stocks":    len(snap.Stocks),
			"last_tick": snap.LastTick,
		}).Info("Market resumed from snapshot")
		return reg, nil
	}

	p, err := loadPreset(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range preset.Warn(p) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	if err := p.Apply(reg); err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"preset": p.Name,
		"stocks": reg.Len(),
	}).Info("Market opened from preset")
	return reg, nil
}

// openStore connects the snapshot store selected by SNAPSHOT_STORE.
// The returned cleanup releases the connections the store depends on.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, func(), error) {
	switch cfg.Snapshot.Store {
	case store.KindPostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		pg := store.NewPostgresStore(db.Pool, cfg.Snapshot.Keep)
		if err := pg.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate snapshot schema: %w", err)
		}

		log.Info("Snapshot store: postgres")
		return pg, db.Close, nil

	case store.KindRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}

		rs, err := store.NewRedisStore(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}

		log.Info("Snapshot store: redis")
		return rs, func() { _ = rs.Close() }, nil

	default:
		log.WithField("path", cfg.Snapshot.Path).Info("Snapshot store: file")
		fs := store.NewFileStore(cfg.Snapshot.Path)
		return fs, func() { _ = fs.Close() }, nil
	}
}
