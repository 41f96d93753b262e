package batch

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/score"
)

// fileResult is the serialized form of one batch item.
type fileResult struct {
	File        string                `json:"file" yaml:"file"`
	Error       string                `json:"error,omitempty" yaml:"error,omitempty"`
	Responses   pipeline.Responses    `json:"responses,omitempty" yaml:"-"`
	YAMLAnswers []score.AnswerResult  `json:"-" yaml:"responses,omitempty"`
	Diagnostics *pipeline.Diagnostics `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func toFileResults(items []ItemResult) []fileResult {
	out := make([]fileResult, 0, len(items))
	for _, it := range items {
		fr := fileResult{File: it.Path}
		if it.Err != nil {
			fr.Error = it.Err.Error()
		} else if it.Result != nil {
			fr.Responses = it.Result.Responses
			fr.YAMLAnswers = it.Result.Responses
			d := it.Result.Diagnostics
			fr.Diagnostics = &d
		}
		out = append(out, fr)
	}
	return out
}

// formatBatchResults renders all batch items in the named format.
func formatBatchResults(items []ItemResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		b, err := json.MarshalIndent(toFileResults(items), "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(toFileResults(items))
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "csv":
		return formatCSV(items)
	case "text", "txt":
		return formatText(items), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatCSV emits one row per scored question, keyed by file.
func formatCSV(items []ItemResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"file", "question", "answer", "pixel_count", "confidence"})
	for _, it := range items {
		if it.Err != nil {
			_ = w.Write([]string{it.Path, "", "ERROR: " + it.Err.Error(), "", ""})
			continue
		}
		for _, r := range it.Result.Responses {
			_ = w.Write([]string{
				it.Path,
				score.QuestionKey(r.Question),
				r.Answer,
				strconv.Itoa(r.PixelCount),
				fmt.Sprintf("%.3f", r.Confidence),
			})
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func formatText(items []ItemResult) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(it.Path)
		sb.WriteByte('\n')
		if it.Err != nil {
			sb.WriteString("  error: " + it.Err.Error() + "\n")
			continue
		}
		for _, r := range it.Result.Responses {
			sb.WriteString("  " + score.QuestionKey(r.Question) + ": " + r.Answer + "\n")
		}
	}
	return sb.String()
}
