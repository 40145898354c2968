package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tendnotes/tend/internal/cli"
	"github.com/tendnotes/tend/internal/enrichment"
)

func retryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <item-id>",
		Short: "Retry a failed enrichment",
		Long:  `Reset a failed capture back to pending so the pipeline reprocesses it.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runRetry,
	}
}

func runRetry(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	machine := enrichment.NewMachine(store, slog.Default())
	item, err := machine.Retry(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Queued %s for reprocessing", item.ID)))
	return nil
}
