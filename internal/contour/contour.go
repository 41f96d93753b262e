// Package contour extracts closed outer boundaries of connected regions
// from a binary mask. Regions are found with 8-connected labeling and their
// boundaries traced with Moore-Neighbor following; inner (hole) boundaries
// are not produced, so hierarchical shapes are counted once.
package contour

import "github.com/MeKo-Tech/gomr/internal/utils"

// Contour is an ordered, closed sequence of boundary points for one
// connected region. Points are pixel-center coordinates.
type Contour struct {
	Points []utils.Point
}

// Area returns the enclosed area of the contour.
func (c Contour) Area() float64 { return utils.PolygonArea(c.Points) }

// Perimeter returns the closed boundary length of the contour.
func (c Contour) Perimeter() float64 { return utils.PolygonPerimeter(c.Points) }

// BoundingBox returns the axis-aligned bounding box of the contour.
func (c Contour) BoundingBox() utils.Box { return utils.BoundingBox(c.Points) }

// Trace labels all 8-connected foreground regions of the mask and returns
// one outer boundary contour per region. Output order follows raster scan
// order of each region's first pixel; callers must not rely on it.
func Trace(mask *utils.BitMask) []Contour {
	comps, labels := connectedComponents(mask)
	out := make([]Contour, 0, len(comps))
	for i, st := range comps {
		pts := traceMoore(labels, mask.Width, mask.Height, i+1, st)
		if len(pts) == 0 {
			continue
		}
		out = append(out, Contour{Points: pts})
	}
	return out
}
