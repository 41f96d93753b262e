package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/gomr/internal/batch"
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Grade answer sheets in bulk",
	Long: `Grade many answer sheet images at once. Arguments may be image files
or directories; directories are scanned for supported images.

Examples:
  gomr batch ./scans
  gomr batch ./scans --recursive --workers 8
  gomr batch a.png b.png --format csv --output results.csv
  gomr batch ./scans --include "exam_*.png" --exclude "*draft*"`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input paths provided")
		}

		cfg := GetConfig()

		bCfg := batch.DefaultConfig()
		bCfg.Pipeline = sheetPipelineConfig(cmd, cfg)
		bCfg.Workers = cfg.Batch.Workers
		bCfg.Recursive = cfg.Batch.Recursive
		bCfg.ContinueOnError = cfg.Batch.ContinueOnError

		if cmd.Flags().Changed("workers") {
			bCfg.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("recursive") {
			bCfg.Recursive, _ = cmd.Flags().GetBool("recursive")
		}
		if cmd.Flags().Changed("continue-on-error") {
			bCfg.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
		}
		bCfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
		bCfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

		res, err := batch.ProcessBatch(args, bCfg)
		if err != nil {
			return err
		}

		format, outputFile := outputOptions(cmd, cfg)
		quiet, _ := cmd.Flags().GetBool("quiet")
		if err := res.SaveResults(format, outputFile, quiet); err != nil {
			return err
		}

		res.PrintStats(quiet)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addSheetFlags(batchCmd)
	addOutputFlags(batchCmd)
	batchCmd.Flags().IntP("workers", "w", 4, "number of concurrent grading workers")
	batchCmd.Flags().BoolP("recursive", "r", false, "scan directories recursively")
	batchCmd.Flags().Bool("continue-on-error", true, "keep grading after individual failures")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns of file names to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns of file names to exclude")
	batchCmd.Flags().Bool("quiet", false, "suppress progress and summary output")
}
