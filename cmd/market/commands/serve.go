package commands

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockmarket/internal/api"
	"github.com/wonny/stockmarket/internal/api/handlers"
	"github.com/wonny/stockmarket/internal/clock"
	"github.com/wonny/stockmarket/internal/scheduler"
	"github.com/wonny/stockmarket/internal/scheduler/jobs"
	"github.com/wonny/stockmarket/internal/session"
	"github.com/wonny/stockmarket/pkg/config"
	"github.com/wonny/stockmarket/pkg/logger"
	"github.com/wonny/stockmarket/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the market server",
	Long: `Runs the simulated market and serves it over HTTP.

This command:
- resumes the newest snapshot, or opens the market from the preset
- advances the simulated clock on CLOCK_SCHEDULE by CLOCK_STEP
- saves snapshots on SNAPSHOT_SCHEDULE and once more on shutdown
- serves quotes and paged viewing sessions

Endpoints:
  GET  /health
  GET  /api/stocks                      - every quote
  POST /api/stocks                      - list a new stock
  GET  /api/stocks/{symbol}             - one quote
  GET  /api/stocks/{symbol}/history     - committed opening prices
  POST /api/sessions                    - open a viewing session
  GET  /api/sessions/{id}/page          - current page
  POST /api/sessions/{id}/next          - next page (wraps)
  POST /api/sessions/{id}/previous      - previous page (wraps)
  GET  /api/sessions/{id}/stream        - websocket, a page per tick
  GET  /api/jobs                        - scheduler statistics

Example:
  go run ./cmd/market serve
  go run ./cmd/market serve --port 9000`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the snapshot store
	snapshots, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Resume or open the market
	reg, err := openMarket(ctx, cfg, snapshots, log)
	if err != nil {
		return err
	}

	// 5. Drive it from a simulated clock
	simClock := clock.NewSim(reg.Now())
	sub := reg.Attach(simClock)
	defer sub.Unsubscribe()

	// 6. Viewing sessions
	sessions := session.NewManager(reg, cfg.Market.PageSize, cfg.API.SessionTTL)

	// 7. Scheduler
	sched := scheduler.New(log)
	snapshotJob := jobs.NewSnapshotJob(reg, snapshots, cfg.Snapshot.Schedule, log)
	for _, job := range []scheduler.Job{
		jobs.NewClockJob(simClock, cfg.Clock.Step, cfg.Clock.Schedule, log),
		snapshotJob,
		jobs.NewSessionCleanupJob(sessions, log),
	} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name(), err)
		}
	}

	// 8. Rate limiting, shared through Redis when it is enabled
	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// 9. Router and server
	router := api.NewRouter(api.Handlers{
		Market:  handlers.NewMarketHandler(reg, log),
		Session: handlers.NewSessionHandler(sessions, reg, simClock, log),
		System:  handlers.NewSystemHandler(reg, sched, log),
	}, limiter, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	sched.Start()

	log.WithFields(map[string]interface{}{
		"stocks":     reg.Len(),
		"now":        reg.Now(),
		"clock_step": cfg.Clock.Step.String(),
	}).Info("Market open")

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Market running on http://localhost:%s", cfg.Port))
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			sched.Stop()
			return err
		}
	}

	log.Info("Shutting down market...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	// Final snapshot so a restart resumes from the last tick
	if err := snapshotJob.Run(shutdownCtx); err != nil {
		return fmt.Errorf("final snapshot: %w", err)
	}

	log.Info("Market stopped")
	return nil
}

// newLimiter returns a Redis-backed limiter when Redis is enabled, and a
// per-process token bucket otherwise
func newLimiter(ctx context.Context, cfg *config.Config, log *logger.Logger) (api.Limiter, func(), error) {
	if !cfg.Redis.Enabled {
		return api.NewLocalLimiter(cfg.API.RateLimit, cfg.API.RateBurst), func() {}, nil
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return api.NewRedisLimiter(client, perSecond(cfg.API.RateLimit), log), func() { _ = client.Close() }, nil
}

// perSecond turns API_RATE_LIMIT into the request count of a one-second
// window, allowing at least one request
func perSecond(rate float64) int {
	return int(math.Max(1, math.Round(rate)))
}
