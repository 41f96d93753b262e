package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// processSingleFile loads one sheet image and grades it.
func processSingleFile(ctx context.Context, pl *pipeline.Pipeline, path string) (*pipeline.Result, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	res, err := pl.ProcessImageContext(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("grading failed for %s: %w", path, err)
	}
	return res, nil
}

// processFilesParallel grades files across a bounded worker pool. Results
// are recorded at the file's input index so output order is stable. When
// continueOnError is false, the first failure cancels the remaining work and
// the batch returns that failure.
func processFilesParallel(pl *pipeline.Pipeline, files []string, workers int, continueOnError bool) ([]ItemResult, error) {
	items := make([]ItemResult, len(files))
	jobs := make(chan int)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for n := workerCount(workers, len(files)); n > 0; n-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := processSingleFile(ctx, pl, files[i])
				items[i] = ItemResult{Path: files[i], Result: res, Err: err}
				if err != nil {
					slog.Warn("sheet grading failed", "file", files[i], "error", err)
					if !continueOnError {
						cancel()
					}
				}
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if !continueOnError {
		for _, it := range items {
			if it.Err != nil {
				return nil, fmt.Errorf("batch processing failed: %w", it.Err)
			}
		}
	}
	return items, nil
}

func workerCount(workers, files int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > files {
		workers = files
	}
	return workers
}
