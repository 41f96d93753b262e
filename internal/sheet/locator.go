// Package sheet locates the answer-sheet boundary among traced contours.
package sheet

import (
	"fmt"
	"sort"

	"github.com/MeKo-Tech/gomr/internal/contour"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// NotFoundError indicates that no contour simplified to a 4-corner
// quadrilateral, i.e. the sheet outline could not be identified.
type NotFoundError struct {
	Examined int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sheet outline not found (%d contours examined)", e.Examined)
}

// QuadCriterion decides whether a simplified contour is acceptable as the
// sheet boundary. It is separated from the area-rank walk so the acceptance
// rule can be tested and swapped independently.
type QuadCriterion func(approx []utils.Point) bool

// FourCorners is the default criterion: exactly 4 vertices.
func FourCorners(approx []utils.Point) bool {
	return len(approx) == 4
}

// ConvexFourCorners additionally requires the quadrilateral to be convex.
// Not enabled by default; kept available for decorated sheets where the
// largest-area heuristic picks up concave artwork.
func ConvexFourCorners(approx []utils.Point) bool {
	return len(approx) == 4 && utils.IsConvex(approx)
}

// Locator finds the best-guess sheet quadrilateral.
type Locator struct {
	// SimplifyRatio is the polygon simplification tolerance as a fraction
	// of each contour's perimeter.
	SimplifyRatio float64
	// Criterion accepts or rejects a simplified contour.
	Criterion QuadCriterion
}

// NewLocator returns a Locator with default settings.
func NewLocator() *Locator {
	return &Locator{
		SimplifyRatio: 0.02,
		Criterion:     FourCorners,
	}
}

// Locate walks contours from largest enclosed area to smallest, simplifies
// each, and returns the corners of the first one the criterion accepts.
// The full sheet outline should dominate by area versus printed marks; this
// is a heuristic, not a guarantee.
func (l *Locator) Locate(contours []contour.Contour) ([]utils.Point, error) {
	sorted := SortByAreaDesc(contours)
	for _, c := range sorted {
		eps := l.SimplifyRatio * c.Perimeter()
		approx := utils.SimplifyPolygon(c.Points, eps)
		if l.Criterion(approx) {
			return approx, nil
		}
	}
	return nil, &NotFoundError{Examined: len(contours)}
}

// SortByAreaDesc returns a copy of contours ordered by enclosed area,
// largest first. The comparator is named so its tie-break semantics (stable
// order for equal areas) stay auditable.
func SortByAreaDesc(contours []contour.Contour) []contour.Contour {
	out := append([]contour.Contour(nil), contours...)
	sort.SliceStable(out, func(i, j int) bool { return lessByAreaDesc(out[i], out[j]) })
	return out
}

// lessByAreaDesc orders contours by descending enclosed area.
func lessByAreaDesc(a, b contour.Contour) bool {
	return a.Area() > b.Area()
}
