// Package testutil generates synthetic answer-sheet images for tests:
// a bright sheet on a dark background with a printed bubble grid, optional
// filled responses and question numbers.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SheetSpec describes a synthetic answer sheet.
type SheetSpec struct {
	Questions int
	Options   int
	// Filled maps 1-based question numbers to 0-based option indexes that
	// are rendered as fully filled bubbles. Unlisted bubbles stay empty
	// rings.
	Filled map[int]int

	Width        int // full image width, including dark background
	Height       int // full image height
	Margin       int // dark border width around the sheet
	GridInset    int // padding between sheet edge and bubble grid
	BubbleRadius float64
	RingWidth    float64 // stroke width of empty bubble outlines
	FillBleed    float64 // how far a filled mark overshoots the outline
	DrawNumbers  bool
}

// DefaultSheetSpec returns a sheet spec for the given grid size with
// geometry that keeps empty rings small and filled discs large, so pixel
// thresholds separate the two decisively even after warp resampling.
func DefaultSheetSpec(questions, options int) SheetSpec {
	return SheetSpec{
		Questions:    questions,
		Options:      options,
		Filled:       map[int]int{},
		Width:        400,
		Height:       520,
		Margin:       50,
		GridInset:    45,
		BubbleRadius: 5,
		RingWidth:    2,
		FillBleed:    3,
		DrawNumbers:  true,
	}
}

var (
	sheetBackground = color.RGBA{28, 28, 32, 255}
	sheetPaper      = color.RGBA{250, 250, 248, 255}
	sheetInk        = color.RGBA{10, 10, 10, 255}
)

// RenderSheet draws the synthetic sheet described by spec.
func RenderSheet(spec SheetSpec) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{sheetBackground}, image.Point{}, draw.Src)

	paper := image.Rect(spec.Margin, spec.Margin, spec.Width-spec.Margin, spec.Height-spec.Margin)
	draw.Draw(img, paper, &image.Uniform{sheetPaper}, image.Point{}, draw.Src)

	if spec.Questions <= 0 || spec.Options <= 0 {
		return img
	}

	gridX := paper.Min.X + spec.GridInset
	gridY := paper.Min.Y + spec.GridInset
	gridW := paper.Dx() - 2*spec.GridInset
	gridH := paper.Dy() - 2*spec.GridInset
	colW := float64(gridW) / float64(spec.Options)
	rowH := float64(gridH) / float64(spec.Questions)

	for q := 0; q < spec.Questions; q++ {
		cy := float64(gridY) + (float64(q)+0.5)*rowH
		if spec.DrawNumbers {
			drawLabel(img, gridX-28, int(cy)+4, score1Based(q))
		}
		for o := 0; o < spec.Options; o++ {
			cx := float64(gridX) + (float64(o)+0.5)*colW
			if idx, ok := spec.Filled[q+1]; ok && idx == o {
				// Filled marks overshoot the printed outline the way a
				// pencilled-in bubble does.
				drawDisc(img, cx, cy, spec.BubbleRadius+spec.FillBleed)
			} else {
				drawRing(img, cx, cy, spec.BubbleRadius, spec.RingWidth)
			}
		}
	}
	return img
}

// BubbleCenter returns the rendered center of the bubble for the given
// 1-based question and 0-based option, in full-image coordinates.
func (s SheetSpec) BubbleCenter(question, option int) (float64, float64) {
	gridX := s.Margin + s.GridInset
	gridY := s.Margin + s.GridInset
	gridW := s.Width - 2*s.Margin - 2*s.GridInset
	gridH := s.Height - 2*s.Margin - 2*s.GridInset
	colW := float64(gridW) / float64(s.Options)
	rowH := float64(gridH) / float64(s.Questions)
	cx := float64(gridX) + (float64(option)+0.5)*colW
	cy := float64(gridY) + (float64(question-1)+0.5)*rowH
	return cx, cy
}

func drawDisc(img *image.RGBA, cx, cy, r float64) {
	x0, x1 := int(cx-r)-1, int(cx+r)+1
	y0, y1 := int(cy-r)-1, int(cy+r)+1
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				img.Set(x, y, sheetInk)
			}
		}
	}
}

func drawRing(img *image.RGBA, cx, cy, r, width float64) {
	half := width / 2
	x0, x1 := int(cx-r)-1, int(cx+r)+1
	y0, y1 := int(cy-r)-1, int(cy+r)+1
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d >= r-half && d <= r+half {
				img.Set(x, y, sheetInk)
			}
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{sheetInk},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func score1Based(q int) string {
	// Small positive integers only; avoids strconv import for two digits.
	if q+1 < 10 {
		return string(rune('0' + q + 1))
	}
	return string(rune('0'+(q+1)/10)) + string(rune('0'+(q+1)%10))
}
