// Package pipeline wires the grading stages into a single image-to-answers
// transformation: decode, edge mapping, contour tracing, sheet location,
// perspective rectification, binarization, bubble segmentation, grid
// sequencing and answer scoring.
package pipeline

import (
	"fmt"

	"github.com/MeKo-Tech/gomr/internal/edges"
	"github.com/MeKo-Tech/gomr/internal/grid"
	"github.com/MeKo-Tech/gomr/internal/sheet"
)

// Config holds configuration for the grading pipeline and its stages.
// It is treated as immutable once a Pipeline is built; stages receive it
// explicitly rather than through ambient state.
type Config struct {
	// NumQuestions is the total question count on the sheet.
	NumQuestions int
	// NumOptions is the number of options per question (letters A..).
	NumOptions int
	// MinPixelThreshold is the minimum foreground pixel count for a bubble
	// to be accepted as marked.
	MinPixelThreshold int

	Edges edges.Config
	// SheetSimplifyRatio is the polygon simplification tolerance for sheet
	// location, as a fraction of contour perimeter.
	SheetSimplifyRatio float64
	Bubbles            grid.FilterConfig
}

// DefaultConfig returns a default pipeline config with stage defaults.
func DefaultConfig() Config {
	return Config{
		NumQuestions:       20,
		NumOptions:         4,
		MinPixelThreshold:  500,
		Edges:              edges.DefaultConfig(),
		SheetSimplifyRatio: 0.02,
		Bubbles:            grid.DefaultFilterConfig(),
	}
}

// Validate checks config bounds.
func (c Config) Validate() error {
	if c.NumQuestions <= 0 {
		return fmt.Errorf("num_questions must be positive, got %d", c.NumQuestions)
	}
	if c.NumOptions < 2 {
		return fmt.Errorf("num_options must be at least 2, got %d", c.NumOptions)
	}
	if c.NumOptions > 26 {
		return fmt.Errorf("num_options must not exceed 26, got %d", c.NumOptions)
	}
	if c.MinPixelThreshold < 0 {
		return fmt.Errorf("min_pixel_threshold must be non-negative, got %d", c.MinPixelThreshold)
	}
	if c.SheetSimplifyRatio <= 0 {
		return fmt.Errorf("sheet simplify ratio must be positive, got %g", c.SheetSimplifyRatio)
	}
	if c.Bubbles.MinAspectRatio > c.Bubbles.MaxAspectRatio {
		return fmt.Errorf("bubble aspect ratio band [%g, %g] is empty",
			c.Bubbles.MinAspectRatio, c.Bubbles.MaxAspectRatio)
	}
	return nil
}

// Pipeline is the assembled grading pipeline. It holds no mutable state, so
// one Pipeline may process images from concurrent goroutines.
type Pipeline struct {
	cfg     Config
	locator *sheet.Locator
}

// Config returns a copy of the pipeline's configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithQuestions sets the expected question count.
func (b *Builder) WithQuestions(n int) *Builder {
	b.cfg.NumQuestions = n
	return b
}

// WithOptions sets the options-per-question count.
func (b *Builder) WithOptions(n int) *Builder {
	b.cfg.NumOptions = n
	return b
}

// WithMinPixelThreshold sets the marked-bubble pixel threshold.
func (b *Builder) WithMinPixelThreshold(n int) *Builder {
	b.cfg.MinPixelThreshold = n
	return b
}

// WithEdgeThresholds sets the gradient hysteresis thresholds.
func (b *Builder) WithEdgeThresholds(low, high float64) *Builder {
	if low > 0 {
		b.cfg.Edges.LowThreshold = low
	}
	if high > 0 {
		b.cfg.Edges.HighThreshold = high
	}
	return b
}

// WithBlurSigma sets the pre-gradient Gaussian smoothing sigma.
func (b *Builder) WithBlurSigma(sigma float64) *Builder {
	if sigma > 0 {
		b.cfg.Edges.BlurSigma = sigma
	}
	return b
}

// WithBubbleMinSize sets the minimum bubble size in pixels.
func (b *Builder) WithBubbleMinSize(n int) *Builder {
	if n > 0 {
		b.cfg.Bubbles.MinSize = n
	}
	return b
}

// WithAspectRatioBand sets the bubble aspect ratio tolerance band.
func (b *Builder) WithAspectRatioBand(minAR, maxAR float64) *Builder {
	if minAR > 0 {
		b.cfg.Bubbles.MinAspectRatio = minAR
	}
	if maxAR > 0 {
		b.cfg.Bubbles.MaxAspectRatio = maxAR
	}
	return b
}

// WithConfig replaces the whole config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	loc := sheet.NewLocator()
	loc.SimplifyRatio = b.cfg.SheetSimplifyRatio
	return &Pipeline{cfg: b.cfg, locator: loc}, nil
}
