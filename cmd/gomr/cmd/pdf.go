package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/gomr/internal/pdf"
	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/score"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf [file]",
	Short: "Grade answer sheets embedded in a PDF",
	Long: `Extract the scanned page images from a PDF and grade each page as an
answer sheet.

Examples:
  gomr pdf exams.pdf
  gomr pdf exams.pdf --pages 1-10
  gomr pdf exams.pdf --pages 1,3,5 --format yaml`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		pl, err := pipeline.NewBuilder().WithConfig(sheetPipelineConfig(cmd, cfg)).Build()
		if err != nil {
			return err
		}

		pageRange, _ := cmd.Flags().GetString("pages")
		pages, err := pdf.GradePDF(cmd.Context(), pl, args[0], pageRange)
		if err != nil {
			return err
		}

		format, outputFile := outputOptions(cmd, cfg)
		out, err := formatPDFResults(pages, format)
		if err != nil {
			return err
		}
		return writeOutput(cmd, out, outputFile)
	},
}

// pdfPageOutput is the serialized form of one graded page.
type pdfPageOutput struct {
	Page        int                   `json:"page" yaml:"page"`
	Error       string                `json:"error,omitempty" yaml:"error,omitempty"`
	Responses   pipeline.Responses    `json:"responses,omitempty" yaml:"-"`
	YAMLAnswers []score.AnswerResult  `json:"-" yaml:"responses,omitempty"`
	Diagnostics *pipeline.Diagnostics `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func toPDFPageOutputs(pages []pdf.PageResult) []pdfPageOutput {
	out := make([]pdfPageOutput, 0, len(pages))
	for _, p := range pages {
		po := pdfPageOutput{Page: p.Page}
		if p.Err != nil {
			po.Error = p.Err.Error()
		} else if p.Result != nil {
			po.Responses = p.Result.Responses
			po.YAMLAnswers = p.Result.Responses
			d := p.Result.Diagnostics
			po.Diagnostics = &d
		}
		out = append(out, po)
	}
	return out
}

func formatPDFResults(pages []pdf.PageResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		b, err := json.MarshalIndent(toPDFPageOutputs(pages), "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(toPDFPageOutputs(pages))
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "text", "txt":
		var sb strings.Builder
		for i, p := range pages {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(fmt.Sprintf("Page %d\n", p.Page))
			if p.Err != nil {
				sb.WriteString("  error: " + p.Err.Error() + "\n")
				continue
			}
			for _, r := range p.Result.Responses {
				sb.WriteString("  " + score.QuestionKey(r.Question) + ": " + r.Answer + "\n")
			}
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	addSheetFlags(pdfCmd)
	addOutputFlags(pdfCmd)
	pdfCmd.Flags().StringP("pages", "p", "", "page range to grade (e.g. 1-5 or 1,3,5; default all)")
}
