package rectify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gomr/internal/utils"
)

func TestComputeHomographyIdentity(t *testing.T) {
	quad := [4]utils.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 0, Y: 50}}
	H, ok := computeHomography(quad, quad)
	require.True(t, ok)

	for _, p := range []utils.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 50, Y: 25}, {X: 13, Y: 42}} {
		x, y := applyHomography(H, p.X, p.Y)
		assert.InDelta(t, p.X, x, 1e-6)
		assert.InDelta(t, p.Y, y, 1e-6)
	}
}

func TestComputeHomographyTranslationAndScale(t *testing.T) {
	src := [4]utils.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	dst := [4]utils.Point{{X: 5, Y: 7}, {X: 25, Y: 7}, {X: 25, Y: 27}, {X: 5, Y: 27}}

	H, ok := computeHomography(src, dst)
	require.True(t, ok)

	x, y := applyHomography(H, 5, 5)
	assert.InDelta(t, 15.0, x, 1e-6)
	assert.InDelta(t, 17.0, y, 1e-6)
}

func TestComputeHomographyMapsAllCorners(t *testing.T) {
	src := [4]utils.Point{{X: 0, Y: 0}, {X: 199, Y: 0}, {X: 199, Y: 149}, {X: 0, Y: 149}}
	dst := [4]utils.Point{{X: 12, Y: 18}, {X: 104, Y: 6}, {X: 118, Y: 92}, {X: 4, Y: 80}}

	H, ok := computeHomography(src, dst)
	require.True(t, ok)

	for i := range src {
		x, y := applyHomography(H, src[i].X, src[i].Y)
		assert.InDelta(t, dst[i].X, x, 1e-6, "corner %d x", i)
		assert.InDelta(t, dst[i].Y, y, 1e-6, "corner %d y", i)
	}
}

func TestComputeHomographyDegenerate(t *testing.T) {
	// All corners coincide: the system has duplicate rows and is singular.
	p := utils.Point{X: 2, Y: 3}
	src := [4]utils.Point{p, p, p, p}

	_, ok := computeHomography(src, src)
	assert.False(t, ok)
}
