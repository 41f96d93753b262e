// Package rectify flattens a photographed, skewed sheet quadrilateral into
// a top-down rectangle via a projective transform.
package rectify

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/gomr/internal/utils"
)

// DegenerateGeometryError indicates the detected quadrilateral encloses
// zero (or effectively zero) area and cannot be rectified.
type DegenerateGeometryError struct {
	Area float64
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate sheet quadrilateral (area %.2f)", e.Area)
}

// Rectify maps the quadrilateral region corners of src onto a flat top-down
// rectangle and resamples the original raster through the inverse mapping.
// Corners may be given in any order; they are re-ordered canonically first.
// The destination size derives from the pairwise corner distances: width is
// the longer of the top and bottom edges, height the longer of the left and
// right edges.
func Rectify(src image.Image, corners []utils.Point) (image.Image, error) {
	if len(corners) != 4 {
		return nil, &DegenerateGeometryError{Area: 0}
	}
	quad := OrderCorners(corners)

	area := utils.PolygonArea(quad[:])
	if area < 1 {
		return nil, &DegenerateGeometryError{Area: area}
	}

	tl, tr, br, bl := quad[0], quad[1], quad[2], quad[3]
	width := int(maxFloat(tl.Distance(tr), bl.Distance(br)))
	height := int(maxFloat(tl.Distance(bl), tr.Distance(br)))
	if width < 1 || height < 1 {
		return nil, &DegenerateGeometryError{Area: area}
	}

	dst := warpPerspective(src, quad, width, height)
	if dst == nil {
		return nil, &DegenerateGeometryError{Area: area}
	}
	return dst, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
