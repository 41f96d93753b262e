package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// rectOutline builds the boundary of a w x h rectangle with one point per
// boundary pixel, mimicking a traced contour before simplification.
func rectOutline(w, h int) []Point {
	var pts []Point
	for x := 0; x < w; x++ {
		pts = append(pts, Point{X: float64(x), Y: 0})
	}
	for y := 1; y < h; y++ {
		pts = append(pts, Point{X: float64(w - 1), Y: float64(y)})
	}
	for x := w - 2; x >= 0; x-- {
		pts = append(pts, Point{X: float64(x), Y: float64(h - 1)})
	}
	for y := h - 2; y >= 1; y-- {
		pts = append(pts, Point{X: 0, Y: float64(y)})
	}
	return pts
}

func TestSimplifyPolygonRectangle(t *testing.T) {
	pts := rectOutline(40, 30)
	out := SimplifyPolygon(pts, 2.0)

	// A dense rectangular outline collapses to exactly its corners; the
	// closure-seam vertex next to the start point is merged away.
	assert.Len(t, out, 4)
	assert.Contains(t, out, Point{X: 0, Y: 0})
	assert.Contains(t, out, Point{X: 39, Y: 0})
	assert.Contains(t, out, Point{X: 39, Y: 29})
	assert.Contains(t, out, Point{X: 0, Y: 29})
}

func TestSimplifyPolygonKeepsSmallInputs(t *testing.T) {
	tri := []Point{{0, 0}, {10, 0}, {5, 8}}
	out := SimplifyPolygon(tri, 5)
	assert.Equal(t, tri, out)
}

func TestSimplifyPolygonZeroEpsilon(t *testing.T) {
	pts := rectOutline(10, 10)
	out := SimplifyPolygon(pts, 0)
	assert.Equal(t, pts, out)
}

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want float64
	}{
		{"unit square", []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 1},
		{"triangle", []Point{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"clockwise square", []Point{{0, 0}, {0, 2}, {2, 2}, {2, 0}}, 4},
		{"degenerate", []Point{{0, 0}, {1, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PolygonArea(tt.pts), 1e-9)
		})
	}
}

func TestPolygonPerimeter(t *testing.T) {
	square := []Point{{0, 0}, {3, 0}, {3, 3}, {0, 3}}
	assert.InDelta(t, 12, PolygonPerimeter(square), 1e-9)
	assert.Equal(t, 0.0, PolygonPerimeter([]Point{{1, 1}}))
}

func TestIsConvex(t *testing.T) {
	square := []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	assert.True(t, IsConvex(square))

	// Reflex vertex at (2, 1) makes the quad concave.
	dart := []Point{{0, 0}, {4, 0}, {2, 1}, {2, 4}}
	assert.False(t, IsConvex(dart))

	withCollinear := []Point{{0, 0}, {2, 0}, {4, 0}, {4, 4}, {0, 4}}
	assert.True(t, IsConvex(withCollinear))

	assert.False(t, IsConvex([]Point{{0, 0}, {1, 1}}))
}
