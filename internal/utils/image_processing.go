package utils

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToGray converts an image to a single-channel grayscale raster.
// Uses the imaging luminance weights for consistency with the rest of
// the processing chain.
func ToGray(img image.Image) *image.Gray {
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * out.Stride
		for x := 0; x < w; x++ {
			// Grayscale output has R==G==B; take the red channel.
			out.Pix[di+x] = nrgba.Pix[si+x*4]
		}
	}
	return out
}

// SmoothGray applies Gaussian smoothing with the given sigma and returns
// a grayscale raster. A non-positive sigma returns a plain grayscale copy.
func SmoothGray(img image.Image, sigma float64) *image.Gray {
	if sigma <= 0 {
		return ToGray(img)
	}
	return ToGray(imaging.Blur(img, sigma))
}

// GrayHistogram computes the 256-bin intensity histogram of a grayscale raster.
func GrayHistogram(img *image.Gray) (hist [256]int, total int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for _, v := range img.Pix[off : off+b.Dx()] {
			hist[v]++
		}
	}
	total = b.Dx() * b.Dy()
	return hist, total
}
