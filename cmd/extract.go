package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/listing-etl/internal/pipeline"
)

var (
	extractRunID     string
	extractMaxFiles  int
	extractOverwrite bool
	extractVariant   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run one extraction batch",
	Long:  "Lists the raw text items of a run, converts each to a validated JSON record, and prints the run summary.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, extractVariant)
		if err != nil {
			return err
		}
		defer env.Close()

		maxFiles := extractMaxFiles
		if maxFiles == 0 {
			maxFiles = cfg.Extract.MaxFiles
		}

		summary, err := env.Pipeline.Run(ctx, pipeline.Options{
			RunID:     extractRunID,
			MaxItems:  maxFiles,
			Overwrite: extractOverwrite,
		})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractRunID, "run", "", "run ID to process (default: newest)")
	extractCmd.Flags().IntVar(&extractMaxFiles, "max-files", 0, "cap on items this invocation (0 = unlimited)")
	extractCmd.Flags().BoolVar(&extractOverwrite, "overwrite", false, "reprocess items already marked done")
	extractCmd.Flags().StringVar(&extractVariant, "variant", "", "extraction profile (default from config)")
	rootCmd.AddCommand(extractCmd)
}
