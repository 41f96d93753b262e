package pdf

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
)

// PageResult holds the grading outcome for one PDF page. A page can carry
// several embedded images; the first one that grades successfully wins.
type PageResult struct {
	Page   int              `json:"page" yaml:"page"`
	Result *pipeline.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Err    error            `json:"-" yaml:"-"`
}

// GradePDF extracts the raster pages of a PDF and grades each one.
// Results come back in ascending page order. Pages whose images cannot be
// graded carry a non-nil Err instead of a Result.
func GradePDF(ctx context.Context, pl *pipeline.Pipeline, filename, pageRange string) ([]PageResult, error) {
	pages, err := ExtractImages(filename, pageRange)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page images found in %s", filename)
	}
	return GradePages(ctx, pl, pages), nil
}

// GradePages grades extracted page images, keyed by 1-based page number.
func GradePages(ctx context.Context, pl *pipeline.Pipeline, pages map[int][]image.Image) []PageResult {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	results := make([]PageResult, 0, len(nums))
	for _, n := range nums {
		results = append(results, gradePage(ctx, pl, n, pages[n]))
	}
	return results
}

func gradePage(ctx context.Context, pl *pipeline.Pipeline, page int, imgs []image.Image) PageResult {
	var lastErr error
	for _, img := range imgs {
		res, err := pl.ProcessImageContext(ctx, img)
		if err == nil {
			return PageResult{Page: page, Result: res}
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("page %d has no images", page)
	}
	return PageResult{Page: page, Err: fmt.Errorf("grading page %d failed: %w", page, lastErr)}
}
