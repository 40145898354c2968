package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendnotes/tend/internal/cleanup"
	"github.com/tendnotes/tend/internal/cli"
	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Review an AI-proposed inbox cleanup",
		Long: `Ask the model to group your stale items, then confirm each
group: complete it, snooze it to someday, archive it, or skip it. Nothing
is applied without your confirmation, every applied group is atomic, and
an audit record is written at the end.`,
		RunE: runCleanup,
	}
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	adapters := initLLM()
	if adapters != nil {
		defer adapters.Close()
	}

	var executor *cleanup.Executor
	if adapters != nil {
		executor = cleanup.NewExecutor(store, adapters, slog.Default())
	} else {
		executor = cleanup.NewExecutor(store, nil, slog.Default())
	}

	incomplete := false
	items, err := store.ListItems(ctx, currentUser(), service.ItemFilter{Completed: &incomplete})
	if err != nil {
		return err
	}

	stale := make([]model.Item, 0, len(items))
	for _, item := range items {
		if item.StalenessStatus != model.StalenessActive {
			stale = append(stale, item)
		}
	}
	if len(stale) == 0 {
		fmt.Println(cli.FormatInfo("Nothing stale to clean up."))
		return nil
	}

	analysis, err := executor.Analyze(ctx, stale)
	if errors.Is(err, cleanup.ErrNoAnalysis) {
		fmt.Println(cli.FormatWarning("No analysis available right now. Try again later."))
		return nil
	}
	if err != nil {
		return err
	}

	for _, question := range analysis.Questions {
		fmt.Println(cli.FormatInfo("Needs your input: " + question))
	}

	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	var stats cleanup.GroupStats

	for _, group := range analysis.GroupedTasks {
		decision, promptErr := prompter.ConfirmGroup(ctx, group)
		if promptErr != nil {
			return promptErr
		}

		var count int
		var opErr error
		switch decision {
		case cli.DecisionComplete:
			count, opErr = executor.CompleteGroup(ctx, group.ItemIDs)
			stats.Completed += count
		case cli.DecisionSnooze:
			count, opErr = executor.SnoozeGroup(ctx, group.ItemIDs)
			stats.Snoozed += count
		case cli.DecisionArchive:
			count, opErr = executor.ArchiveGroup(ctx, group.ItemIDs)
			stats.Archived += count
		case cli.DecisionSkip:
			continue
		}

		switch {
		case opErr == nil:
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s: %d items", group.Title, count)))
		case errors.Is(opErr, common.ErrEmptyGroup):
			fmt.Println(cli.FormatInfo(group.Title + ": nothing left to do"))
		default:
			// Failed groups stay as they were; re-run cleanup to retry them.
			var partial *common.PartialBulkFailure
			if errors.As(opErr, &partial) {
				common.LogError(opErr, "cleanup group partially failed", common.Fields{"group": group.Title})
				fmt.Println(cli.FormatWarning(group.Title + ": " + partial.Error()))
			} else {
				return opErr
			}
		}
	}

	if stats.Completed+stats.Snoozed+stats.Archived > 0 {
		if err := executor.LogCleanup(ctx, currentUser(), len(items), stats); err != nil {
			return err
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Cleanup done: %d completed, %d snoozed, %d archived",
		stats.Completed, stats.Snoozed, stats.Archived)))
	return nil
}
