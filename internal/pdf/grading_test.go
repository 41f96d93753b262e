package pdf

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/testutil"
)

func gradingPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	pl, err := pipeline.NewBuilder().
		WithQuestions(2).
		WithOptions(2).
		WithMinPixelThreshold(100).
		WithBubbleMinSize(10).
		Build()
	require.NoError(t, err)
	return pl
}

func sheetImage(t *testing.T, filled map[int]int) image.Image {
	t.Helper()
	spec := testutil.DefaultSheetSpec(2, 2)
	spec.Filled = filled
	return testutil.RenderSheet(spec)
}

func TestGradePagesOrdersByPageNumber(t *testing.T) {
	pl := gradingPipeline(t)
	pages := map[int][]image.Image{
		3: {sheetImage(t, map[int]int{1: 1})},
		1: {sheetImage(t, map[int]int{1: 0})},
	}

	results := GradePages(context.Background(), pl, pages)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results[0].Page)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "A", results[0].Result.Responses[0].Answer)

	assert.Equal(t, 3, results[1].Page)
	require.NoError(t, results[1].Err)
	assert.Equal(t, "B", results[1].Result.Responses[0].Answer)
}

func TestGradePagesFallsBackToNextImage(t *testing.T) {
	pl := gradingPipeline(t)

	// A uniform image has no locatable sheet, so grading should move on to
	// the second image embedded in the same page.
	blank := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.RGBA{40, 40, 40, 255}), image.Point{}, draw.Src)

	pages := map[int][]image.Image{
		1: {blank, sheetImage(t, map[int]int{2: 0})},
	}

	results := GradePages(context.Background(), pl, pages)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "A", results[0].Result.Responses[1].Answer)
}

func TestGradePagesReportsPageFailure(t *testing.T) {
	pl := gradingPipeline(t)

	blank := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.RGBA{40, 40, 40, 255}), image.Point{}, draw.Src)

	pages := map[int][]image.Image{
		2: {blank},
	}

	results := GradePages(context.Background(), pl, pages)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Page)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "grading page 2 failed")
	assert.Nil(t, results[0].Result)
}
