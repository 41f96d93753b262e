package rectify

import "github.com/MeKo-Tech/gomr/internal/utils"

// OrderCorners re-orders 4 detected corners into the canonical
// top-left, top-right, bottom-right, bottom-left sequence using the
// point-sum/point-difference heuristics: the smallest coordinate sum is the
// top-left corner and the largest the bottom-right; the smallest y-x
// difference is the top-right corner and the largest the bottom-left.
// The result is independent of the input order.
func OrderCorners(pts []utils.Point) [4]utils.Point {
	var ordered [4]utils.Point
	if len(pts) != 4 {
		return ordered
	}

	minSum, maxSum := pts[0], pts[0]
	minDiff, maxDiff := pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X+p.Y < minSum.X+minSum.Y {
			minSum = p
		}
		if p.X+p.Y > maxSum.X+maxSum.Y {
			maxSum = p
		}
		if p.Y-p.X < minDiff.Y-minDiff.X {
			minDiff = p
		}
		if p.Y-p.X > maxDiff.Y-maxDiff.X {
			maxDiff = p
		}
	}

	ordered[0] = minSum  // top-left
	ordered[1] = minDiff // top-right
	ordered[2] = maxSum  // bottom-right
	ordered[3] = maxDiff // bottom-left
	return ordered
}
