// Package binarize reduces a grayscale raster to an ink/background mask
// using a single global threshold chosen by minimizing within-class
// intensity variance (Otsu's criterion). The mask is inverted: dark pixels,
// i.e. filled bubble marks, become the foreground.
package binarize

import (
	"image"
	"math"

	"github.com/MeKo-Tech/gomr/internal/utils"
)

// Binarize converts img to grayscale, computes the optimal global
// threshold, and returns the inverted binary mask along with the chosen
// threshold. Fully deterministic given the input histogram.
func Binarize(img image.Image) (*utils.BitMask, uint8) {
	gray := utils.ToGray(img)
	hist, total := utils.GrayHistogram(gray)
	t := OtsuThreshold(hist, total)

	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := utils.NewBitMask(w, h)
	for y := 0; y < h; y++ {
		off := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			// Inverted mask: intensities at or below the threshold are ink.
			mask.Data[y*w+x] = gray.Pix[off+x] <= t
		}
	}
	return mask, t
}

// OtsuThreshold returns the threshold t minimizing the class-weighted sum
// of intra-class variances of pixels below/above t. Ties resolve to the
// smallest such t so the result is deterministic for any histogram.
func OtsuThreshold(hist [256]int, total int) uint8 {
	if total == 0 {
		return 0
	}

	// Prefix sums over count, intensity and squared intensity let each
	// candidate threshold be evaluated in constant time.
	var cumCount [257]int
	var cumSum, cumSumSq [257]float64
	for i := 0; i < 256; i++ {
		v := float64(i)
		cumCount[i+1] = cumCount[i] + hist[i]
		cumSum[i+1] = cumSum[i] + v*float64(hist[i])
		cumSumSq[i+1] = cumSumSq[i] + v*v*float64(hist[i])
	}

	best := 0
	bestVar := math.Inf(1)
	for t := 0; t < 256; t++ {
		nB := cumCount[t+1]
		nF := total - nB
		if nB == 0 || nF == 0 {
			continue
		}

		sumB := cumSum[t+1]
		sumF := cumSum[256] - sumB
		sqB := cumSumSq[t+1]
		sqF := cumSumSq[256] - sqB

		meanB := sumB / float64(nB)
		meanF := sumF / float64(nF)
		varB := sqB/float64(nB) - meanB*meanB
		varF := sqF/float64(nF) - meanF*meanF

		wB := float64(nB) / float64(total)
		wF := float64(nF) / float64(total)
		within := wB*varB + wF*varF

		if within < bestVar {
			bestVar = within
			best = t
		}
	}
	return uint8(best)
}
