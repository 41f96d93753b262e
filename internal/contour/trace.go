package contour

import "github.com/MeKo-Tech/gomr/internal/utils"

// traceMoore extracts the outer boundary polygon for the given labeled
// component using Moore-Neighbor tracing. The search is restricted to the
// component's bounding box. Returned points are pixel-center coordinates
// with collinear runs collapsed.
func traceMoore(labels []int, w, h, label int, st compStats) []utils.Point {
	if label <= 0 || len(labels) != w*h {
		return nil
	}

	sx, sy := findStartPixel(labels, w, h, label, st)
	if sx == -1 {
		return nil
	}

	pts := make([]utils.Point, 0, 64)
	addPoint := func(x, y int) {
		p := utils.Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n >= 2 {
			a := pts[n-2]
			b := pts[n-1]
			// Drop b when a->b->p continues the same straight run.
			// Reversal points (out-and-back spurs such as one-pixel-wide
			// diagonals) are genuine vertices and stay.
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			dot := (b.X-a.X)*(p.X-b.X) + (b.Y-a.Y)*(p.Y-b.Y)
			if cross == 0 && dot > 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack to the left of start
	addPoint(cx, cy)

	startCx, startCy := cx, cy
	startBx, startBy := bx, by

	// First step. An isolated pixel has no boundary neighbor at all.
	nx, ny, nbx, nby, found := nextBoundaryPixel(labels, w, h, label, cx, cy, bx, by)
	if !found {
		return pts
	}
	firstCx, firstCy, firstBx, firstBy := nx, ny, nbx, nby
	cx, cy, bx, by = nx, ny, nbx, nby
	addPoint(cx, cy)

	maxSteps := w*h*4 + 8
	for steps := 0; steps < maxSteps; steps++ {
		nx, ny, nbx, nby, found = nextBoundaryPixel(labels, w, h, label, cx, cy, bx, by)
		if !found {
			break
		}
		cx, cy, bx, by = nx, ny, nbx, nby

		// Jacob stopping criterion: the start pixel re-entered from the
		// seed backtrack.
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
		// Boundaries that never re-enter the start from its seed
		// backtrack (discs, diagonals) close when the first traced
		// state recurs; the walk is deterministic, so recurrence marks
		// exactly one full lap.
		if cx == firstCx && cy == firstCy && bx == firstBx && by == firstBy {
			break
		}
		addPoint(cx, cy)
	}

	// Remove a duplicated closing point, then collapse the straight run
	// across the seam back to the first vertex.
	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	for len(pts) >= 3 {
		a := pts[len(pts)-2]
		b := pts[len(pts)-1]
		p := pts[0]
		cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
		dot := (b.X-a.X)*(p.X-b.X) + (b.Y-a.Y)*(p.Y-b.Y)
		if cross != 0 || dot <= 0 {
			break
		}
		pts = pts[:len(pts)-1]
	}
	return pts
}

// findStartPixel finds the first boundary pixel within the component's
// bounding box in raster order.
func findStartPixel(labels []int, w, h, label int, st compStats) (int, int) {
	for y := st.minY; y <= st.maxY; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			if isBoundaryPixel(labels, w, h, label, x, y) {
				return x, y
			}
		}
	}
	return -1, -1
}

func isLabelPixel(labels []int, w, h, label, x, y int) bool {
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	return labels[y*w+x] == label
}

func isBoundaryPixel(labels []int, w, h, label, x, y int) bool {
	if !isLabelPixel(labels, w, h, label, x, y) {
		return false
	}
	return !isLabelPixel(labels, w, h, label, x+1, y) ||
		!isLabelPixel(labels, w, h, label, x-1, y) ||
		!isLabelPixel(labels, w, h, label, x, y+1) ||
		!isLabelPixel(labels, w, h, label, x, y-1)
}

// 8-neighborhood in clockwise order: E, SE, S, SW, W, NW, N, NE.
var mooreDx = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
var mooreDy = [8]int{0, 1, 1, 1, 0, -1, -1, -1}

// nextBoundaryPixel finds the next component pixel in the Moore neighborhood
// of (cx,cy), scanning clockwise from the backtrack position (bx,by). The
// returned backtrack is the last background cell examined before the hit;
// neighboring ring positions are 8-adjacent, so it always borders the new
// pixel.
func nextBoundaryPixel(labels []int, w, h, label, cx, cy, bx, by int) (int, int, int, int, bool) {
	start := (neighborIndex(bx-cx, by-cy) + 1) % 8

	px, py := bx, by
	for k := 0; k < 8; k++ {
		i := (start + k) % 8
		tx, ty := cx+mooreDx[i], cy+mooreDy[i]
		if isLabelPixel(labels, w, h, label, tx, ty) {
			return tx, ty, px, py, true
		}
		px, py = tx, ty
	}
	return 0, 0, bx, by, false
}

func neighborIndex(dx, dy int) int {
	for i := 0; i < 8; i++ {
		if mooreDx[i] == dx && mooreDy[i] == dy {
			return i
		}
	}
	return 0
}
