package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendnotes/tend/internal/cli"
	"github.com/tendnotes/tend/internal/service"
	"github.com/tendnotes/tend/internal/tinytask"
)

func tinyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiny",
		Short: "List tiny tasks and suggest a fiesta",
		Long: `Classify captures as tiny tasks and show them highest confidence
first. Unclassified items are scored on the spot (with the model when one
is configured, heuristics otherwise) and the learned title-length threshold
is refreshed from your completed tiny tasks. When enough have piled up,
suggests knocking them out in one batch.`,
		RunE: runTiny,
	}

	cmd.Flags().Int("min", 0, "Minimum tiny tasks before suggesting a fiesta (0 = configured default)")

	return cmd
}

func runTiny(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	minCount, _ := cmd.Flags().GetInt("min")
	if minCount <= 0 {
		minCount = viper.GetInt("tinytask.fiesta_min")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	adapters := initLLM()
	if adapters != nil {
		defer adapters.Close()
	}

	var remote service.TinyClassifier
	if adapters != nil {
		remote = adapters
	}
	classifier := tinytask.New(remote, slog.Default()).
		WithPersonalCeiling(viper.GetInt("tinytask.personal_ceiling"))

	profile, err := store.GetUserProfile(ctx, currentUser())
	if err != nil {
		return err
	}

	// Refresh the learned threshold from what the user actually finishes.
	completed := true
	done, err := store.ListItems(ctx, currentUser(), service.ItemFilter{Completed: &completed})
	if err != nil {
		return err
	}
	profile.RecomputeTinyThreshold(done)
	if profile.TinyTaskThreshold > 0 {
		if err := store.SaveUserProfile(ctx, profile); err != nil {
			return err
		}
	}

	incomplete := false
	items, err := store.ListItems(ctx, currentUser(), service.ItemFilter{Completed: &incomplete})
	if err != nil {
		return err
	}

	// Classify anything not yet scored and persist the verdict.
	for i := range items {
		if items[i].IsTinyTask != nil {
			continue
		}
		result := classifier.Classify(ctx, &items[i], profile)
		isTiny := result.IsTiny
		confidence := result.Confidence
		if _, err := store.UpdateItem(ctx, items[i].ID, service.ItemPatch{
			IsTinyTask:     &isTiny,
			TinyConfidence: &confidence,
		}); err != nil {
			return err
		}
		items[i].IsTinyTask = &isTiny
		items[i].TinyConfidence = confidence
	}

	tiny := tinytask.FindTinyTasks(items, profile)

	fmt.Fprintln(os.Stdout, cli.FormatTitle("Tiny tasks"))
	for _, item := range tiny {
		fmt.Fprintf(os.Stdout, "%s %s\n", cli.InfoStyle.Render(cli.SparkIcon), item.Title)
	}

	if tinytask.ShouldSuggestFiesta(items, profile, minCount) {
		fmt.Fprintln(os.Stdout, cli.RenderBox("Tiny task fiesta?",
			fmt.Sprintf("%d quick wins are waiting. Knock them out in one go.", len(tiny))))
	} else if len(tiny) == 0 {
		fmt.Fprintln(os.Stdout, cli.SubtleStyle.Render("No tiny tasks right now."))
	}
	return nil
}
