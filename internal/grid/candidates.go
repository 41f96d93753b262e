// Package grid filters traced contours down to bubble-shaped candidates and
// sequences them into the row-major question/option grid.
package grid

import (
	"github.com/MeKo-Tech/gomr/internal/contour"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// Candidate is a contour that passed the bubble shape filter, with its
// derived bounding box and aspect ratio.
type Candidate struct {
	Contour     contour.Contour
	Box         utils.Box
	AspectRatio float64
}

// Center returns the candidate's bounding-box center.
func (c Candidate) Center() utils.Point { return c.Box.Center() }

// FilterConfig holds bubble shape filter parameters.
type FilterConfig struct {
	MinSize        int     // minimum bubble width and height in pixels
	MinAspectRatio float64 // lower bound of the width/height tolerance band
	MaxAspectRatio float64 // upper bound of the width/height tolerance band
}

// DefaultFilterConfig returns the default bubble filter: at least 20px wide
// and tall with an aspect ratio within [0.9, 1.1]. This rejects text, noise
// specks and non-circular marks.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinSize:        20,
		MinAspectRatio: 0.9,
		MaxAspectRatio: 1.1,
	}
}

// FilterBubbles retains only contours whose bounding boxes qualify as
// bubbles under cfg. Input order is preserved for qualifying contours.
func FilterBubbles(contours []contour.Contour, cfg FilterConfig) []Candidate {
	out := make([]Candidate, 0, len(contours))
	for _, c := range contours {
		box := c.BoundingBox()
		// Boundary points are pixel centers; extent is inclusive.
		w := box.Width() + 1
		h := box.Height() + 1
		if w < float64(cfg.MinSize) || h < float64(cfg.MinSize) {
			continue
		}
		ar := w / h
		if ar < cfg.MinAspectRatio || ar > cfg.MaxAspectRatio {
			continue
		}
		out = append(out, Candidate{Contour: c, Box: box, AspectRatio: ar})
	}
	return out
}
