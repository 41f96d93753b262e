package contour

import "github.com/MeKo-Tech/gomr/internal/utils"

// compStats represents the pixel extent of a connected component.
type compStats struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

var neighbors8 = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// connectedComponents finds 8-connected components in the mask and returns
// per-component stats plus a label raster (labels start at 1).
func connectedComponents(mask *utils.BitMask) ([]compStats, []int) {
	w, h := mask.Width, mask.Height
	labels := make([]int, w*h)
	var comps []compStats
	label := 1

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask.Data[idx] && labels[idx] == 0 {
				comps = append(comps, floodFill(mask, labels, x, y, label))
				label++
			}
		}
	}
	return comps, labels
}

// floodFill labels one component starting from a seed pixel using an
// explicit stack (avoids recursion depth issues on large regions).
func floodFill(mask *utils.BitMask, labels []int, startX, startY, label int) compStats {
	w, h := mask.Width, mask.Height
	st := compStats{minX: startX, minY: startY, maxX: startX, maxY: startY}

	stack := []int{startY*w + startX}
	labels[startY*w+startX] = label

	for len(stack) > 0 {
		ci := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := ci%w, ci/w

		st.count++
		if cx < st.minX {
			st.minX = cx
		}
		if cy < st.minY {
			st.minY = cy
		}
		if cx > st.maxX {
			st.maxX = cx
		}
		if cy > st.maxY {
			st.maxY = cy
		}

		for _, d := range neighbors8 {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := ny*w + nx
			if mask.Data[ni] && labels[ni] == 0 {
				labels[ni] = label
				stack = append(stack, ni)
			}
		}
	}
	return st
}
