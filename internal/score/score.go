// Package score turns sequenced bubble rows plus the ink mask into
// per-question answers.
package score

import (
	"strconv"

	"github.com/MeKo-Tech/gomr/internal/grid"
	"github.com/MeKo-Tech/gomr/internal/utils"
)

// NoResponse is the sentinel answer for a question where no bubble's ink
// count cleared the minimum pixel threshold.
const NoResponse = "No Response"

// AnswerResult holds the scoring outcome for one question.
type AnswerResult struct {
	Question   int     `json:"question" yaml:"question"`
	Answer     string  `json:"answer" yaml:"answer"`
	PixelCount int     `json:"pixel_count" yaml:"pixel_count"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// OptionLetter maps a 0-based option index to its answer letter.
func OptionLetter(idx int) string {
	return string(rune('A' + idx))
}

// QuestionKey formats a 1-based question number as its output map key.
func QuestionKey(question int) string {
	return strconv.Itoa(question)
}

// ScoreGrid scores every question row against the ink mask. It never fails:
// each row yields exactly one AnswerResult. Questions truncated away during
// sequencing simply do not appear here; callers must distinguish
// "never scored" from "scored as No Response".
func ScoreGrid(mask *utils.BitMask, rows [][]grid.Candidate, minPixelThreshold int) []AnswerResult {
	results := make([]AnswerResult, 0, len(rows))
	for i, row := range rows {
		results = append(results, scoreQuestion(mask, row, i+1, minPixelThreshold))
	}
	return results
}

// scoreQuestion picks the winning option for one row. The maximum tracker
// updates only on a strictly greater ink count, so ties keep the
// earliest-seen option (the lower letter, since rows are in left-to-right
// scan order). This is the documented tie-break policy, not an artifact.
func scoreQuestion(mask *utils.BitMask, row []grid.Candidate, question, minPixelThreshold int) AnswerResult {
	best := -1
	bestIdx := -1
	second := 0
	for i, cand := range row {
		n := CountInk(mask, cand)
		if n > best {
			second = bestOr0(best)
			best = n
			bestIdx = i
		} else if n > second {
			second = n
		}
	}

	res := AnswerResult{Question: question, Answer: NoResponse, PixelCount: best}
	if best > minPixelThreshold {
		res.Answer = OptionLetter(bestIdx)
		res.Confidence = separation(best, second)
	}
	return res
}

func bestOr0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// separation is the confidence of a scored answer: how decisively the
// winning count exceeds the runner-up, normalized by the winning count.
// A single-option row (second == 0) scores 1.
func separation(best, second int) float64 {
	if best <= 0 {
		return 0
	}
	c := float64(best-second) / float64(best)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// CountInk counts foreground pixels of the mask inside the candidate's
// contour interior. Boundary pixels count as interior.
func CountInk(mask *utils.BitMask, cand grid.Candidate) int {
	pts := cand.Contour.Points
	if len(pts) < 3 {
		return 0
	}

	x0 := int(cand.Box.MinX)
	y0 := int(cand.Box.MinY)
	x1 := int(cand.Box.MaxX)
	y1 := int(cand.Box.MaxY)

	count := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !mask.At(x, y) {
				continue
			}
			if pointInPolygon(float64(x), float64(y), pts) || onContour(float64(x), float64(y), pts) {
				count++
			}
		}
	}
	return count
}

// pointInPolygon is an even-odd ray-casting test with a half-open edge rule
// so shared vertices are counted once.
func pointInPolygon(x, y float64, pts []utils.Point) bool {
	inside := false
	j := len(pts) - 1
	for i := range pts {
		yi, yj := pts[i].Y, pts[j].Y
		if (yi > y) != (yj > y) {
			xint := pts[i].X + (y-yi)/(yj-yi)*(pts[j].X-pts[i].X)
			if x < xint {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// onContour reports whether (x, y) lies on the contour boundary itself.
// Tracing collapses collinear runs, so segment containment is tested, not
// just vertex equality; this recovers the boundary ring that the strict
// interior test misses.
func onContour(x, y float64, pts []utils.Point) bool {
	j := len(pts) - 1
	for i := range pts {
		a, b := pts[j], pts[i]
		j = i
		if x < minFloat(a.X, b.X) || x > maxFloat(a.X, b.X) ||
			y < minFloat(a.Y, b.Y) || y > maxFloat(a.Y, b.Y) {
			continue
		}
		cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
		if cross == 0 {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
