package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gomr/internal/contour"
	"github.com/MeKo-Tech/gomr/internal/grid"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// sheetMask builds an ink mask with 24x24 bubble regions at the given
// origins. Filled entries are solid squares, the rest hollow outlines, which
// mirrors how filled and empty bubbles binarize.
func sheetMask(t *testing.T, w, h int, origins [][2]int, filled map[int]bool) (*utils.BitMask, []grid.Candidate) {
	t.Helper()
	const side = 24
	m := utils.NewBitMask(w, h)
	for i, o := range origins {
		x0, y0 := o[0], o[1]
		x1, y1 := x0+side-1, y0+side-1
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if filled[i] || x == x0 || x == x1 || y == y0 || y == y1 {
					m.Set(x, y, true)
				}
			}
		}
	}

	cands := grid.FilterBubbles(contour.Trace(m), grid.DefaultFilterConfig())
	require.Len(t, cands, len(origins))
	return m, cands
}

// Ink counts of a solid 24x24 square and of its hollow outline.
const (
	fullInk = 24 * 24
	ringInk = 24*4 - 4
)

func TestCountInkFilledVersusHollow(t *testing.T) {
	mask, cands := sheetMask(t, 120, 60,
		[][2]int{{10, 10}, {60, 10}}, map[int]bool{0: true})

	assert.Equal(t, fullInk, CountInk(mask, cands[0]))
	assert.Equal(t, ringInk, CountInk(mask, cands[1]))
}

func TestCountInkIgnoresOutsideContour(t *testing.T) {
	mask, cands := sheetMask(t, 120, 60, [][2]int{{10, 10}}, map[int]bool{0: true})

	// Stray ink elsewhere in the mask must not leak into the count.
	for y := 40; y < 50; y++ {
		for x := 80; x < 110; x++ {
			mask.Set(x, y, true)
		}
	}
	assert.Equal(t, fullInk, CountInk(mask, cands[0]))
}

func TestCountInkDegenerateContour(t *testing.T) {
	mask := utils.NewBitMask(10, 10)
	cand := grid.Candidate{Contour: contour.Contour{Points: []utils.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}}
	assert.Equal(t, 0, CountInk(mask, cand))
}

func TestScoreGridPicksHighestCount(t *testing.T) {
	mask, cands := sheetMask(t, 200, 60,
		[][2]int{{10, 10}, {60, 10}, {110, 10}}, map[int]bool{1: true})
	rows := grid.Sequence(cands, 1, 3)

	results := ScoreGrid(mask, rows, 100)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 1, r.Question)
	assert.Equal(t, "B", r.Answer)
	assert.Equal(t, fullInk, r.PixelCount)
	assert.InDelta(t, float64(fullInk-ringInk)/float64(fullInk), r.Confidence, 1e-9)
}

func TestScoreGridThresholdIsStrict(t *testing.T) {
	mask, cands := sheetMask(t, 120, 60,
		[][2]int{{10, 10}, {60, 10}}, map[int]bool{0: true})
	rows := grid.Sequence(cands, 1, 2)

	// Winning count equal to the threshold is not enough.
	atThreshold := ScoreGrid(mask, rows, fullInk)
	require.Len(t, atThreshold, 1)
	assert.Equal(t, NoResponse, atThreshold[0].Answer)
	assert.Equal(t, 0.0, atThreshold[0].Confidence)

	justBelow := ScoreGrid(mask, rows, fullInk-1)
	assert.Equal(t, "A", justBelow[0].Answer)
}

func TestScoreGridThresholdMonotonic(t *testing.T) {
	mask, cands := sheetMask(t, 120, 60,
		[][2]int{{10, 10}, {60, 10}}, map[int]bool{0: true})
	rows := grid.Sequence(cands, 1, 2)

	answered := true
	for _, th := range []int{0, 100, fullInk - 1, fullInk, fullInk * 2} {
		got := ScoreGrid(mask, rows, th)[0].Answer != NoResponse
		// Once a threshold stops producing an answer, no larger one may
		// produce an answer again.
		if !answered {
			assert.False(t, got, "threshold %d", th)
		}
		answered = got
	}
	assert.False(t, answered)
}

func TestScoreGridTieKeepsEarliestOption(t *testing.T) {
	mask, cands := sheetMask(t, 200, 60,
		[][2]int{{10, 10}, {60, 10}, {110, 10}},
		map[int]bool{0: true, 1: true, 2: true})
	rows := grid.Sequence(cands, 1, 3)

	results := ScoreGrid(mask, rows, 100)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Answer)
	assert.Equal(t, 0.0, results[0].Confidence)
}

func TestScoreGridAllBlank(t *testing.T) {
	mask, cands := sheetMask(t, 120, 60,
		[][2]int{{10, 10}, {60, 10}}, nil)
	rows := grid.Sequence(cands, 1, 2)

	results := ScoreGrid(mask, rows, 100)
	require.Len(t, results, 1)
	assert.Equal(t, NoResponse, results[0].Answer)
	assert.Equal(t, ringInk, results[0].PixelCount)
}

func TestScoreGridQuestionNumbering(t *testing.T) {
	mask, cands := sheetMask(t, 120, 140,
		[][2]int{{10, 10}, {60, 10}, {10, 70}, {60, 70}},
		map[int]bool{0: true, 3: true})
	rows := grid.Sequence(cands, 2, 2)

	results := ScoreGrid(mask, rows, 100)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Question)
	assert.Equal(t, "A", results[0].Answer)
	assert.Equal(t, 2, results[1].Question)
	assert.Equal(t, "B", results[1].Answer)
}

func TestOptionLetter(t *testing.T) {
	assert.Equal(t, "A", OptionLetter(0))
	assert.Equal(t, "D", OptionLetter(3))
	assert.Equal(t, "Z", OptionLetter(25))
}

func TestQuestionKey(t *testing.T) {
	assert.Equal(t, "1", QuestionKey(1))
	assert.Equal(t, "42", QuestionKey(42))
}

func TestSeparation(t *testing.T) {
	assert.Equal(t, 1.0, separation(100, 0))
	assert.InDelta(t, 0.5, separation(100, 50), 1e-9)
	assert.Equal(t, 0.0, separation(100, 100))
	assert.Equal(t, 0.0, separation(0, 0))
	assert.Equal(t, 0.0, separation(50, 100))
}
