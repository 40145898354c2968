package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendnotes/tend/internal/cli"
	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
)

func captureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture [text...]",
		Short: "Capture a quick note or task",
		Long: `Capture a thought before it escapes. Text captures are ready
immediately; voice captures (--audio) enter the enrichment pipeline and
stay readable while transcription and summarization run.`,
		Args: cobra.ArbitraryArgs,
		RunE: runCapture,
	}

	cmd.Flags().String("audio", "", "Path to a recorded audio capture awaiting transcription")
	cmd.Flags().String("context", "", "Free-text context for the capture")
	cmd.Flags().String("tier", "", "Priority tier (MUST, SHOULD, COULD)")

	return cmd
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	title := strings.TrimSpace(strings.Join(args, " "))
	audioPath, _ := cmd.Flags().GetString("audio")
	taskContext, _ := cmd.Flags().GetString("context")
	tier, _ := cmd.Flags().GetString("tier")

	if title == "" && audioPath == "" {
		return common.NewUserError("Nothing to capture: provide text or --audio", nil)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	item := model.NewItem(currentUser(), title)
	item.Context = taskContext
	item.RawContent = title
	if tier != "" {
		item.PriorityTier = model.PriorityTier(strings.ToUpper(tier))
	}
	if audioPath != "" {
		item.PendingAudioPath = audioPath
		item.ProcessingStatus = model.StatusPending
	}

	if err := store.SaveItem(ctx, item); err != nil {
		return err
	}

	common.LogInfo("capture saved", common.Fields{
		"item_id": item.ID,
		"status":  string(item.ProcessingStatus),
	})
	fmt.Println(cli.FormatSuccess("Captured"))
	return nil
}
