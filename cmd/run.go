package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tickerchat/batch"
	"tickerchat/storage"
)

var runNoStore bool

func GetRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [topic...]",
		Short: "Run topics through the workflow in one-shot batch mode",
		Long: `Submits each topic as a single non-streaming invocation under its own
session and stores the results. With no arguments, all active stored topics
are run.

Example:
  tickerchat run                          # run every active topic
  tickerchat run "tech movers today"      # run one ad-hoc topic`,
		RunE: runBatch,
	}
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "Print results without persisting them")
	return runCmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.workflowClient()
	if err != nil {
		return err
	}
	store, err := storage.NewResultStore(a.cfg.DataDir())
	if err != nil {
		return err
	}
	defer store.Close()

	topics := args
	if len(topics) == 0 {
		stored, err := store.ListTopics(true)
		if err != nil {
			return fmt.Errorf("failed to list topics: %w", err)
		}
		for _, t := range stored {
			topics = append(topics, t.Text)
		}
	}
	if len(topics) == 0 {
		fmt.Println("No topics to run. Add one with 'tickerchat topics add'.")
		return nil
	}

	var recorder batch.Recorder
	if !runNoStore {
		recorder = store
	}
	runner := batch.NewRunner(client, recorder)

	fmt.Printf("Running %d topic(s)...\n\n", len(topics))
	summary, results, err := runner.Run(cmd.Context(), topics)
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.OK() {
			color.Green("✓ %s (%s)", res.Topic, formatDuration(res.Duration))
		} else {
			color.Red("✗ %s (%s): %s", res.Topic, formatDuration(res.Duration), res.Err)
		}
	}

	fmt.Printf("\n%d succeeded, %d failed in %s\n",
		summary.Succeeded, summary.Failed, formatDuration(summary.Elapsed))
	if summary.Failed > 0 {
		return fmt.Errorf("%d topic(s) failed", summary.Failed)
	}
	return nil
}
