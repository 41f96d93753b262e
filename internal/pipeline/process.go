package pipeline

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/gomr/internal/binarize"
	"github.com/MeKo-Tech/gomr/internal/contour"
	"github.com/MeKo-Tech/gomr/internal/edges"
	"github.com/MeKo-Tech/gomr/internal/grid"
	"github.com/MeKo-Tech/gomr/internal/rectify"
	"github.com/MeKo-Tech/gomr/internal/score"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// ProcessBytes decodes raw image bytes and grades the sheet.
func (p *Pipeline) ProcessBytes(data []byte) (*Result, error) {
	return p.ProcessBytesContext(context.Background(), data)
}

// ProcessBytesContext decodes raw image bytes and grades the sheet,
// honoring ctx at stage boundaries.
func (p *Pipeline) ProcessBytesContext(ctx context.Context, data []byte) (*Result, error) {
	img, _, err := utils.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return p.ProcessImageContext(ctx, img)
}

// ProcessImage grades a decoded sheet image.
func (p *Pipeline) ProcessImage(img image.Image) (*Result, error) {
	return p.ProcessImageContext(context.Background(), img)
}

// ProcessImageContext runs the full grading pipeline over one image.
// Each stage is a pure in-memory transformation; cancellation is checked
// only between stages, so an abandoned invocation leaves no residual state.
func (p *Pipeline) ProcessImageContext(ctx context.Context, img image.Image) (*Result, error) {
	start := time.Now()
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	edgeMap := edges.DetectEdges(img, p.cfg.Edges)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outlines := contour.Trace(edgeMap)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	corners, err := p.locator.Locate(outlines)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rectified, err := rectify.Rectify(img, corners)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mask, globalThresh := binarize.Binarize(rectified)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates := grid.FilterBubbles(contour.Trace(mask), p.cfg.Bubbles)

	expected := p.cfg.NumQuestions * p.cfg.NumOptions
	if len(candidates) < expected {
		// Non-fatal: processing continues with whatever was found and the
		// shortfall is surfaced through the diagnostics record.
		slog.Warn("fewer bubble candidates than expected",
			"found", len(candidates), "expected", expected)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := grid.Sequence(candidates, p.cfg.NumQuestions, p.cfg.NumOptions)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answers := score.ScoreGrid(mask, rows, p.cfg.MinPixelThreshold)

	return &Result{
		Responses: answers,
		Diagnostics: Diagnostics{
			BubblesFound:        len(candidates),
			BubblesExpected:     expected,
			QuestionsScored:     len(answers),
			QuestionsRequested:  p.cfg.NumQuestions,
			InsufficientBubbles: len(candidates) < expected,
		},
		Meta: Meta{
			ImageWidth:        srcW,
			ImageHeight:       srcH,
			GlobalThreshold:   globalThresh,
			MinPixelThreshold: p.cfg.MinPixelThreshold,
			ProcessingTime:    time.Since(start),
		},
	}, nil
}
