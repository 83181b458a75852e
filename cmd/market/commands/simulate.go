package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockmarket/internal/clock"
	"github.com/wonny/stockmarket/internal/pagination"
	"github.com/wonny/stockmarket/pkg/logger"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the market offline and print the result",
	Long: `Opens a fresh market from the preset, advances the simulated clock
and prints every page of quotes. Nothing is read from or written to the
snapshot store.

Example:
  go run ./cmd/market simulate --days 30
  go run ./cmd/market simulate --days 2 --step 1h --seed 42`,
	RunE: runSimulate,
}

var (
	simDays int
	simStep time.Duration
	simSeed int64
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	// Flags
	simulateCmd.Flags().IntVar(&simDays, "days", 30, "simulated days to run")
	simulateCmd.Flags().DurationVar(&simStep, "step", 24*time.Hour, "simulated time per tick")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "random walk seed (overrides MARKET_SEED)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	if simStep <= 0 {
		return fmt.Errorf("--step must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if simSeed != 0 {
		cfg.Market.Seed = simSeed
	}

	log := logger.New(cfg)

	reg := newRegistry(cfg, log)
	p, err := loadPreset(cfg)
	if err != nil {
		return err
	}
	if err := p.Apply(reg); err != nil {
		return err
	}

	simClock := clock.NewSim(cfg.Market.Start)
	sub := reg.Attach(simClock)
	defer sub.Unsubscribe()

	end := cfg.Market.Start.AddDate(0, 0, simDays)
	ticks := 0
	for simClock.Now().Before(end) {
		simClock.Advance(simStep)
		ticks++
	}

	log.WithFields(map[string]interface{}{
		"ticks": ticks,
		"now":   reg.Now(),
	}).Debug("Simulation finished")

	out := cmd.OutOrStdout()
	PrintHeader(out, fmt.Sprintf("%s after %d days (%d ticks)", p.Name, simDays, ticks), reg.Now())

	pager := pagination.New(reg, cfg.Market.PageSize)
	page := pager.Current()
	for i := 0; i < page.Count; i++ {
		if i > 0 {
			fmt.Fprintln(out)
			page = pager.Next()
		}
		PrintPage(out, page.Index, page.Count, reg.QuoteSlots(page.Slots))
	}

	return nil
}
