package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendnotes/tend/internal/cli"
	"github.com/tendnotes/tend/internal/display"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
	"github.com/tendnotes/tend/internal/sorting"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the prioritized item list",
		Long: `Render every incomplete item in display order: focus first,
MUST before the rest, due and overdue items surfaced, tiny tasks demoted
within their tier.`,
		RunE: runList,
	}

	cmd.Flags().Int("limit", 0, "Maximum number of items to show")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	incomplete := false
	items, err := store.ListItems(ctx, currentUser(), service.ItemFilter{Completed: &incomplete})
	if err != nil {
		return err
	}

	now := time.Now()
	sorted := sorting.SortItems(items, now)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	opts := display.Options{
		ConfidenceThreshold: viper.GetFloat64("display.confidence_threshold"),
		LongEntryThreshold:  viper.GetInt("display.long_entry_threshold"),
	}

	fmt.Fprintln(os.Stdout, cli.FormatTitle("Your list"))
	for _, item := range sorted {
		res := display.Resolve(&item, opts)
		line := res.DisplayText
		if res.ShowExpandIndicator {
			line += " " + cli.SubtleStyle.Render("[+]")
		}
		fmt.Fprintf(os.Stdout, "%s %s\n", marker(&item, now), line)
	}
	if len(sorted) == 0 {
		fmt.Fprintln(os.Stdout, cli.SubtleStyle.Render("Nothing here. Capture something."))
	}
	return nil
}

// marker prefixes a line with the item's most urgent signal.
func marker(item *model.Item, now time.Time) string {
	switch {
	case item.IsFocus:
		return cli.FormatInfo("◎")
	case sorting.Overdue(item, now):
		return cli.FormatWarning("!")
	case item.EffectiveTier() == model.TierMust:
		return cli.PromptStyle.Render("▲")
	case item.StalenessStatus != model.StalenessActive:
		return cli.SubtleStyle.Render("~")
	default:
		return " "
	}
}
