package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/gomr/internal/config"
	"github.com/MeKo-Tech/gomr/internal/pipeline"
)

// addSheetFlags registers the sheet geometry flags shared by the grading
// commands.
func addSheetFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("num-questions", "q", 20, "number of questions on the sheet")
	cmd.Flags().IntP("num-options", "n", 4, "number of options per question")
	cmd.Flags().Int("min-pixel-threshold", 500, "minimum ink pixel count for a marked bubble")
	cmd.Flags().Int("bubble-min-size", 20, "minimum bubble bounding-box size in pixels")
}

// addOutputFlags registers the output format flags shared by the grading
// commands.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "json", "output format (json, yaml, csv, text)")
	cmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
}

// sheetPipelineConfig builds the pipeline config from the layered
// configuration, then applies explicit CLI flag overrides on top.
func sheetPipelineConfig(cmd *cobra.Command, cfg *config.Config) pipeline.Config {
	pCfg := cfg.PipelineConfig()

	if cmd.Flags().Changed("num-questions") {
		pCfg.NumQuestions, _ = cmd.Flags().GetInt("num-questions")
	}
	if cmd.Flags().Changed("num-options") {
		pCfg.NumOptions, _ = cmd.Flags().GetInt("num-options")
	}
	if cmd.Flags().Changed("min-pixel-threshold") {
		pCfg.MinPixelThreshold, _ = cmd.Flags().GetInt("min-pixel-threshold")
	}
	if cmd.Flags().Changed("bubble-min-size") {
		pCfg.Bubbles.MinSize, _ = cmd.Flags().GetInt("bubble-min-size")
	}
	return pCfg
}

// outputOptions reads the format/output flags with config fallbacks.
func outputOptions(cmd *cobra.Command, cfg *config.Config) (format, outputFile string) {
	format = cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	outputFile = cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}
	return format, outputFile
}

// writeOutput sends formatted results to the output file or stdout.
func writeOutput(cmd *cobra.Command, content, outputFile string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
