package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/gomr/internal/score"
)

// Responses is the ordered sequence of scored answers. It serializes as a
// JSON object keyed by 1-based question number, preserving question order.
type Responses []score.AnswerResult

// MarshalJSON emits {"1": "A", "2": "No Response", ...} in question order.
func (rs Responses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(score.QuestionKey(r.Question))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Answer)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is the inverse of MarshalJSON: it decodes the keyed object
// back into question order. Pixel counts and confidences are not on the
// wire and come back zero.
func (rs *Responses) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Responses, 0, len(m))
	for k, v := range m {
		q, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("invalid question key %q", k)
		}
		out = append(out, score.AnswerResult{Question: q, Answer: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	*rs = out
	return nil
}

// AnswerMap returns question-key to answer pairs as a plain map.
func (rs Responses) AnswerMap() map[string]string {
	out := make(map[string]string, len(rs))
	for _, r := range rs {
		out[score.QuestionKey(r.Question)] = r.Answer
	}
	return out
}

// ConfidenceMap returns question-key to confidence pairs.
func (rs Responses) ConfidenceMap() map[string]float64 {
	out := make(map[string]float64, len(rs))
	for _, r := range rs {
		out[score.QuestionKey(r.Question)] = r.Confidence
	}
	return out
}

// Diagnostics surfaces segmentation shortfalls and truncation so callers
// can distinguish "no response" from "never scored".
type Diagnostics struct {
	BubblesFound        int  `json:"bubbles_found" yaml:"bubbles_found"`
	BubblesExpected     int  `json:"bubbles_expected" yaml:"bubbles_expected"`
	QuestionsScored     int  `json:"questions_scored" yaml:"questions_scored"`
	QuestionsRequested  int  `json:"questions_requested" yaml:"questions_requested"`
	InsufficientBubbles bool `json:"insufficient_bubbles" yaml:"insufficient_bubbles"`
}

// Meta holds per-run processing metadata.
type Meta struct {
	ImageWidth        int           `json:"image_width" yaml:"image_width"`
	ImageHeight       int           `json:"image_height" yaml:"image_height"`
	GlobalThreshold   uint8         `json:"global_threshold" yaml:"global_threshold"`
	MinPixelThreshold int           `json:"min_pixel_threshold" yaml:"min_pixel_threshold"`
	ProcessingTime    time.Duration `json:"-" yaml:"-"`
}

// Result is the outcome of grading one sheet image.
type Result struct {
	Responses   Responses   `json:"responses"`
	Diagnostics Diagnostics `json:"diagnostics"`
	Meta        Meta        `json:"metadata"`
}

// ToJSON serializes a Result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAML serializes a Result to YAML. Responses stay in question order.
func ToYAML(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	doc := struct {
		Responses   []score.AnswerResult `yaml:"responses"`
		Diagnostics Diagnostics          `yaml:"diagnostics"`
	}{Responses: res.Responses, Diagnostics: res.Diagnostics}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToCSV exports per-question rows as CSV with header.
func ToCSV(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"question", "answer", "pixel_count", "confidence"})
	for _, r := range res.Responses {
		_ = w.Write([]string{
			score.QuestionKey(r.Question),
			r.Answer,
			strconv.Itoa(r.PixelCount),
			fmt.Sprintf("%.3f", r.Confidence),
		})
	}
	w.Flush()
	return buf.String(), nil
}

// ToPlainText renders "question: answer" lines in question order.
func ToPlainText(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	lines := make([]string, 0, len(res.Responses))
	for _, r := range res.Responses {
		lines = append(lines, score.QuestionKey(r.Question)+": "+r.Answer)
	}
	return strings.Join(lines, "\n"), nil
}

// Format renders a Result in the named output format: json, yaml, csv or
// text.
func Format(res *Result, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return ToJSON(res)
	case "yaml", "yml":
		return ToYAML(res)
	case "csv":
		return ToCSV(res)
	case "text", "txt":
		return ToPlainText(res)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}
