package jobs

import (
	"context"
	"time"

	"github.com/wonny/stockmarket/internal/clock"
	"github.com/wonny/stockmarket/pkg/logger"
)

// ClockJob moves the simulated clock forward by a fixed step on every fire.
// Whatever subscribed to the clock (the registry, live streams) runs inside Run.
type ClockJob struct {
	clock    *clock.Sim
	step     time.Duration
	schedule string
	logger   *logger.Logger
}

// NewClockJob creates a clock job advancing c by step on schedule
func NewClockJob(c *clock.Sim, step time.Duration, schedule string, log *logger.Logger) *ClockJob {
	return &ClockJob{
		clock:    c,
		step:     step,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ClockJob) Name() string {
	return "market_clock"
}

// Schedule returns the cron schedule
func (j *ClockJob) Schedule() string {
	return j.schedule
}

// MaxRetries is 0: a retried step would skip simulated time twice
func (j *ClockJob) MaxRetries() int {
	return 0
}

// Run advances the clock one step
func (j *ClockJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ev := j.clock.Advance(j.step)
	j.logger.WithField("now", ev.Current).Debug("Clock advanced")

	return nil
}
