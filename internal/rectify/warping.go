package rectify

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/gomr/internal/utils"
)

// warpPerspective flattens the sheet quad from src into an upright dstW x
// dstH raster. Each destination pixel is mapped back through the
// homography into the photo and sampled bilinearly, so the output carries
// no resampling holes.
func warpPerspective(src image.Image, quad [4]utils.Point, dstW, dstH int) image.Image {
	if dstW <= 0 || dstH <= 0 {
		return nil
	}

	rect := [4]utils.Point{
		{X: 0, Y: 0},
		{X: float64(dstW - 1), Y: 0},
		{X: float64(dstW - 1), Y: float64(dstH - 1)},
		{X: 0, Y: float64(dstH - 1)},
	}
	hom, ok := computeHomography(rect, quad)
	if !ok {
		return nil
	}

	sb := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := applyHomography(hom, float64(x), float64(y))
			out.Set(x, y, sampleBilinear(src, sx+float64(sb.Min.X), sy+float64(sb.Min.Y)))
		}
	}
	return out
}

// sampleBilinear interpolates the four pixels around (x, y). Coordinates
// outside the photo resolve to black, which reads as ink-free margin after
// the inverted binarization.
func sampleBilinear(src image.Image, x, y float64) color.Color {
	b := src.Bounds()
	if x < float64(b.Min.X) || y < float64(b.Min.Y) || x > float64(b.Max.X-1) || y > float64(b.Max.Y-1) {
		return color.RGBA{0, 0, 0, 255}
	}

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	top := mix(channels(src.At(x0, y0)), channels(src.At(x1, y0)), fx)
	bottom := mix(channels(src.At(x0, y1)), channels(src.At(x1, y1)), fx)
	return mix(top, bottom, fy).color()
}

type rgba struct{ r, g, b, a float64 }

func channels(c color.Color) rgba {
	r, g, b, a := c.RGBA()
	return rgba{r: float64(r >> 8), g: float64(g >> 8), b: float64(b >> 8), a: float64(a >> 8)}
}

func (c rgba) color() color.Color {
	return color.RGBA{uint8(c.r + 0.5), uint8(c.g + 0.5), uint8(c.b + 0.5), uint8(c.a + 0.5)}
}

func mix(p, q rgba, t float64) rgba {
	return rgba{
		r: p.r + (q.r-p.r)*t,
		g: p.g + (q.g-p.g)*t,
		b: p.b + (q.b-p.b)*t,
		a: p.a + (q.a-p.a)*t,
	}
}
