package utils

// BitMask is a binary raster. Data is row-major, true = foreground.
type BitMask struct {
	Width  int
	Height int
	Data   []bool
}

// NewBitMask allocates a zeroed mask of the given size.
func NewBitMask(width, height int) *BitMask {
	return &BitMask{Width: width, Height: height, Data: make([]bool, width*height)}
}

// At reports the value at (x, y). Out-of-bounds coordinates are background.
func (m *BitMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Data[y*m.Width+x]
}

// Set sets the value at (x, y). Out-of-bounds coordinates are ignored.
func (m *BitMask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Data[y*m.Width+x] = v
}

// CountForeground returns the number of foreground pixels.
func (m *BitMask) CountForeground() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}
