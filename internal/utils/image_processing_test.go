package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGrayUniform(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, color.RGBA{200, 200, 200, 255})
		}
	}

	gray := ToGray(img)
	require.Equal(t, 5, gray.Bounds().Dx())
	for _, v := range gray.Pix {
		assert.Equal(t, uint8(200), v)
	}
}

func TestToGrayNormalizesOrigin(t *testing.T) {
	// Sub-images carry a non-zero Min; the grayscale copy is re-anchored.
	img := image.NewRGBA(image.Rect(10, 20, 14, 23))
	gray := ToGray(img)
	assert.Equal(t, image.Pt(0, 0), gray.Bounds().Min)
	assert.Equal(t, 4, gray.Bounds().Dx())
	assert.Equal(t, 3, gray.Bounds().Dy())
}

func TestSmoothGrayBlendsNeighbors(t *testing.T) {
	// A single bright pixel on black spreads into its neighborhood.
	img := image.NewGray(image.Rect(0, 0, 9, 9))
	img.SetGray(4, 4, color.Gray{255})

	out := SmoothGray(img, 1.5)
	center := out.GrayAt(4, 4).Y
	neighbor := out.GrayAt(3, 4).Y
	assert.Less(t, center, uint8(255))
	assert.Greater(t, neighbor, uint8(0))
	assert.GreaterOrEqual(t, center, neighbor)
}

func TestSmoothGrayNonPositiveSigma(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(1, 1, color.Gray{90})

	out := SmoothGray(img, 0)
	assert.Equal(t, uint8(90), out.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
}

func TestGrayHistogram(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{10})
	img.SetGray(1, 0, color.Gray{10})
	img.SetGray(2, 1, color.Gray{250})

	hist, total := GrayHistogram(img)
	assert.Equal(t, 8, total)
	assert.Equal(t, 2, hist[10])
	assert.Equal(t, 1, hist[250])
	assert.Equal(t, 5, hist[0])
}
