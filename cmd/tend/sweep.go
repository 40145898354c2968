package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendnotes/tend/internal/cli"
	"github.com/tendnotes/tend/internal/staleness"
)

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the staleness decay sweep",
		Long: `Reclassify un-completed items by age into freshness tiers.
Items under the stale threshold are never touched; completed items never
enter the sweep. With --watch the sweep repeats on the configured interval.`,
		RunE: runSweep,
	}

	cmd.Flags().Bool("watch", false, "Keep sweeping on the configured interval")

	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	watch, _ := cmd.Flags().GetBool("watch")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sweeper := staleness.NewSweeper(store, stalenessThresholds(), slog.Default())
	sweeper.ShowProgress = true

	if watch {
		sweeper.Start(ctx, currentUser(), viper.GetDuration("staleness.sweep_interval"))
		return nil
	}

	stats, err := sweeper.Run(ctx, currentUser())
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Swept %d items: %d stale, %d need a decision, %d expiring",
		stats.Examined, stats.Stale, stats.Decisions, stats.Expiring)))
	return nil
}
