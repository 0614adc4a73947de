package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/listing-etl/internal/model"
	"github.com/sells-group/listing-etl/internal/pipeline"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scrape runs and their extraction state",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List run IDs under the configured prefix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore()
		if err != nil {
			return err
		}

		runs, err := pipeline.ListRunIDs(ctx, store, cfg.Store.Prefix)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN ID\tSTARTED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\n", r, model.RunIDTimestamp(r).Format("2006-01-02 15:04:05 MST"))
		}
		return w.Flush()
	},
}

var runsStateCmd = &cobra.Command{
	Use:   "state <run-id>",
	Short: "Show the processed-key state for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runID := args[0]

		store, err := initStore()
		if err != nil {
			return err
		}
		tracker, err := initTracker(ctx, store)
		if err != nil {
			return err
		}
		defer tracker.Close() //nolint:errcheck

		keys, err := tracker.Load(ctx, runID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d processed keys for run %s\n", len(keys), runID)
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsStateCmd)
	rootCmd.AddCommand(runsCmd)
}
