package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// gradeCmd represents the grade command.
var gradeCmd = &cobra.Command{
	Use:   "grade [image]",
	Short: "Grade a single answer sheet image",
	Long: `Grade one photographed or scanned answer sheet.

Supported formats: JPEG, PNG, BMP

Examples:
  gomr grade sheet.jpg
  gomr grade sheet.png --num-questions 50 --num-options 5
  gomr grade sheet.jpg --format csv --output results.csv`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		img, meta, err := utils.LoadImage(args[0])
		if err != nil {
			var decodeErr *utils.DecodeError
			if errors.As(err, &decodeErr) {
				return fmt.Errorf("cannot read %s: %w", args[0], err)
			}
			return err
		}

		pl, err := pipeline.NewBuilder().WithConfig(sheetPipelineConfig(cmd, cfg)).Build()
		if err != nil {
			return err
		}

		res, err := pl.ProcessImageContext(cmd.Context(), img)
		if err != nil {
			return fmt.Errorf("grading %s failed: %w", meta.Path, err)
		}

		format, outputFile := outputOptions(cmd, cfg)
		out, err := pipeline.Format(res, format)
		if err != nil {
			return err
		}
		return writeOutput(cmd, out, outputFile)
	},
}

func init() {
	rootCmd.AddCommand(gradeCmd)
	addSheetFlags(gradeCmd)
	addOutputFlags(gradeCmd)
}
