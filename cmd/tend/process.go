package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tendnotes/tend/internal/enrichment"
)

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Advance pending enrichment one step",
		Long: `Drive every transcribed item through summarization and every
summarized item to indexed. Items still waiting on transcription are left
for the transcription worker.`,
		RunE: runProcess,
	}
}

func runProcess(cmd *cobra.Command, _ []string) error {
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

	machine := enrichment.NewMachine(store, slog.Default())
	var pipeline *enrichment.Pipeline
	if adapters != nil {
		pipeline = enrichment.NewPipeline(machine, store, adapters, slog.Default())
	} else {
		pipeline = enrichment.NewPipeline(machine, store, nil, slog.Default())
	}

	return pipeline.ProcessPending(ctx, currentUser())
}
