// Package edges turns a raster into a binary gradient-edge map. It is the
// first analysis stage of the grading pipeline: grayscale conversion,
// Gaussian smoothing to suppress sensor and paper noise, Sobel gradients,
// and double-threshold hysteresis linking.
package edges

import (
	"image"
	"math"

	"github.com/MeKo-Tech/gomr/internal/utils"
)

// Config holds edge detection parameters.
type Config struct {
	BlurSigma     float64 // Gaussian smoothing sigma applied before gradients
	LowThreshold  float64 // gradient magnitude for weak edge candidates
	HighThreshold float64 // gradient magnitude for strong edges
}

// DefaultConfig returns edge detection defaults tuned for photographed
// answer sheets.
func DefaultConfig() Config {
	return Config{
		BlurSigma:     1.4,
		LowThreshold:  75,
		HighThreshold: 200,
	}
}

// DetectEdges computes a binary edge map for img. A pixel is an edge if its
// gradient magnitude exceeds the high threshold, or exceeds the low
// threshold while 8-connected to a pixel above the high threshold.
func DetectEdges(img image.Image, cfg Config) *utils.BitMask {
	gray := utils.SmoothGray(img, cfg.BlurSigma)
	mag, w, h := sobelMagnitude(gray)
	return hysteresis(mag, w, h, cfg.LowThreshold, cfg.HighThreshold)
}

// sobelMagnitude computes per-pixel gradient magnitude with 3x3 Sobel kernels.
// Border pixels are clamped.
func sobelMagnitude(gray *image.Gray) ([]float64, int, int) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return float64(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	mag := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag[y*w+x] = math.Hypot(gx, gy)
		}
	}
	return mag, w, h
}

// hysteresis links weak edge candidates to strong edges over the
// 8-neighborhood. Strong pixels seed a flood fill through weak pixels.
func hysteresis(mag []float64, w, h int, low, high float64) *utils.BitMask {
	out := utils.NewBitMask(w, h)
	stack := make([]int, 0, w+h)

	for i, m := range mag {
		if m > high && !out.Data[i] {
			out.Data[i] = true
			stack = append(stack, i)
			for len(stack) > 0 {
				ci := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := ci%w, ci/w
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := cx+dx, cy+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						ni := ny*w + nx
						if !out.Data[ni] && mag[ni] > low {
							out.Data[ni] = true
							stack = append(stack, ni)
						}
					}
				}
			}
		}
	}
	return out
}
