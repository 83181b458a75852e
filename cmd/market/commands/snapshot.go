package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/stockmarket/internal/market"
	"github.com/wonny/stockmarket/internal/store"
	"github.com/wonny/stockmarket/pkg/logger"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or seed the snapshot store",
	Long: `Works on the store selected by SNAPSHOT_STORE.

Subcommands:
  show  - print the newest snapshot
  save  - resume (or open from the preset) and save a snapshot

Example:
  go run ./cmd/market snapshot show
  SNAPSHOT_STORE=postgres go run ./cmd/market snapshot save`,
}

var (
	snapshotShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the newest snapshot",
		RunE:  runSnapshotShow,
	}

	snapshotSaveCmd = &cobra.Command{
		Use:   "save",
		Short: "Save the current market state",
		RunE:  runSnapshotSave,
	}
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)
	ctx := context.Background()

	snapshots, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()

	snap, err := snapshots.Latest(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		PrintWarning(out, fmt.Sprintf("No snapshot in the %s store", cfg.Snapshot.Store))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	PrintHeader(out, "Snapshot "+snap.ID, snap.LastTick)
	fmt.Fprintf(out, "  Taken at    : %s\n", snap.TakenAt.Format(timeLayout))
	fmt.Fprintf(out, "  Started     : %s\n", snap.Start.Format(timeLayout))
	fmt.Fprintf(out, "  Stocks      : %d\n", len(snap.Stocks))
	PrintSeparator(out)

	fmt.Fprintf(out, "  %-8s %10s %10s %12s %8s\n", "SYMBOL", "PRICE", "OPEN", "DAY", "HISTORY")
	for _, st := range snap.Stocks {
		fmt.Fprintf(out, "  %-8s %10s %10s %12s %8d\n",
			st.Symbol,
			st.Price.StringFixed(market.PriceDigits),
			st.OpeningPrice.StringFixed(market.PriceDigits),
			st.TradingDay.Format(market.DateFormat),
			len(st.History),
		)
	}
	PrintSeparator(out)

	return nil
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)
	ctx := context.Background()

	snapshots, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg, err := openMarket(ctx, cfg, snapshots, log)
	if err != nil {
		return err
	}

	snap := reg.Snapshot()
	if err := snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Saved snapshot %s (%d stocks) to the %s store",
		snap.ID, len(snap.Stocks), cfg.Snapshot.Store))
	return nil
}
