// Package batch grades many sheet images in one run, fanning the work out
// across a bounded worker pool.
package batch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
)

// Config holds all configuration for batch grading.
type Config struct {
	// Grading pipeline settings shared by all workers.
	Pipeline pipeline.Config

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// ContinueOnError keeps grading remaining sheets when one fails;
	// otherwise the batch stops at the first failure.
	ContinueOnError bool
}

// DefaultConfig returns batch defaults.
func DefaultConfig() *Config {
	return &Config{
		Pipeline:        pipeline.DefaultConfig(),
		Workers:         4,
		ContinueOnError: true,
	}
}

// ItemResult is the grading outcome for one discovered file.
type ItemResult struct {
	Path   string
	Result *pipeline.Result
	Err    error
}

// Result holds the outcome of one batch run. Items follow discovery order
// regardless of which worker finished first.
type Result struct {
	Items       []ItemResult
	Duration    time.Duration
	WorkerCount int
}

// Processed returns the number of successfully graded sheets.
func (r *Result) Processed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of sheets that could not be graded.
func (r *Result) Failed() int {
	return len(r.Items) - r.Processed()
}

// ProcessBatch discovers sheet images under the given paths and grades them.
func ProcessBatch(paths []string, cfg *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	pl, err := pipeline.NewBuilder().WithConfig(cfg.Pipeline).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build grading pipeline: %w", err)
	}

	start := time.Now()
	items, err := processFilesParallel(pl, files, cfg.Workers, cfg.ContinueOnError)
	if err != nil {
		return nil, err
	}

	return &Result{
		Items:       items,
		Duration:    time.Since(start),
		WorkerCount: workerCount(cfg.Workers, len(files)),
	}, nil
}

// FormatResults renders the batch outcome in the named format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Items, format)
}

// SaveResults writes the formatted results to a file, or stdout when no
// output file is given.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(os.Stdout, output)
	}
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}
	avg := time.Duration(0)
	if len(r.Items) > 0 {
		avg = r.Duration / time.Duration(len(r.Items))
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(os.Stdout, "  Total sheets: %d\n", len(r.Items))
	_, _ = fmt.Fprintf(os.Stdout, "  Graded: %d\n", r.Processed())
	_, _ = fmt.Fprintf(os.Stdout, "  Failed: %d\n", r.Failed())
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Avg per sheet: %v\n", avg.Round(time.Millisecond))
}
