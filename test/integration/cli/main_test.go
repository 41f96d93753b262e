package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/gomr/cmd/gomr/cmd"
	"github.com/MeKo-Tech/gomr/internal/score"
	"github.com/MeKo-Tech/gomr/internal/testutil"
)

// gradeContext holds per-scenario state. Commands run in-process against
// the root command so scenarios stay fast and hermetic.
type gradeContext struct {
	tempDir    string
	sheetPath  string
	outputFile string
	output     string
	err        error
}

func (c *gradeContext) aScannedSheetWithMark(question int, letter string) error {
	option := strings.Index("ABCDEFGHIJKLMNOPQRSTUVWXYZ", letter)
	if option < 0 {
		return fmt.Errorf("unknown option letter %q", letter)
	}

	spec := testutil.DefaultSheetSpec(2, 2)
	spec.Filled = map[int]int{question: option}

	c.sheetPath = filepath.Join(c.tempDir, "sheet.png")
	f, err := os.Create(c.sheetPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return png.Encode(f, testutil.RenderSheet(spec))
}

func (c *gradeContext) aTextFilePosingAsSheet() error {
	c.sheetPath = filepath.Join(c.tempDir, "sheet.png")
	return os.WriteFile(c.sheetPath, []byte("this is not image data"), 0o600)
}

func (c *gradeContext) runGrade(extra ...string) error {
	args := []string{
		"grade", c.sheetPath,
		"--num-questions", "2",
		"--num-options", "2",
		"--min-pixel-threshold", "100",
		"--bubble-min-size", "10",
	}
	args = append(args, extra...)

	root := cmd.GetRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c.err = root.Execute()
	c.output = buf.String()
	return nil
}

func (c *gradeContext) iGradeWithFormat(format string) error {
	return c.runGrade("--format", format, "--output", "")
}

func (c *gradeContext) iGradeIntoOutputFile() error {
	c.outputFile = filepath.Join(c.tempDir, "result.json")
	return c.runGrade("--format", "json", "--output", c.outputFile)
}

func (c *gradeContext) commandSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got error: %v (output: %s)", c.err, c.output)
	}
	return nil
}

func (c *gradeContext) commandFails() error {
	if c.err == nil {
		return fmt.Errorf("expected failure, command succeeded with output: %s", c.output)
	}
	return nil
}

func (c *gradeContext) outputReportsQuestionAs(question int, answer string) error {
	return reportsQuestionAs([]byte(c.output), question, answer)
}

func (c *gradeContext) outputFileReportsQuestionAs(question int, answer string) error {
	data, err := os.ReadFile(c.outputFile)
	if err != nil {
		return err
	}
	return reportsQuestionAs(data, question, answer)
}

func (c *gradeContext) outputContains(substr string) error {
	if !strings.Contains(c.output, substr) {
		return fmt.Errorf("output %q does not contain %q", c.output, substr)
	}
	return nil
}

func reportsQuestionAs(data []byte, question int, answer string) error {
	var doc struct {
		Responses map[string]string `json:"responses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("cannot parse grading output: %w", err)
	}
	key := score.QuestionKey(question)
	if got := doc.Responses[key]; got != answer {
		return fmt.Errorf("question %s graded as %q, want %q", key, got, answer)
	}
	return nil
}

// InitializeScenario wires the step definitions for each scenario.
func InitializeScenario(sc *godog.ScenarioContext) {
	c := &gradeContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "gomr-cli-*")
		if err != nil {
			return ctx, err
		}
		*c = gradeContext{tempDir: dir}
		return ctx, nil
	})
	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		_ = os.RemoveAll(c.tempDir)
		return ctx, nil
	})

	sc.Step(`^a scanned answer sheet with question (\d+) marked "([A-Z])"$`, c.aScannedSheetWithMark)
	sc.Step(`^a text file posing as an answer sheet$`, c.aTextFilePosingAsSheet)
	sc.Step(`^I grade the sheet with format "([^"]+)"$`, c.iGradeWithFormat)
	sc.Step(`^I grade the sheet into an output file$`, c.iGradeIntoOutputFile)
	sc.Step(`^the command succeeds$`, c.commandSucceeds)
	sc.Step(`^the command fails$`, c.commandFails)
	sc.Step(`^the output reports question (\d+) as "([^"]+)"$`, c.outputReportsQuestionAs)
	sc.Step(`^the output file reports question (\d+) as "([^"]+)"$`, c.outputFileReportsQuestionAs)
	sc.Step(`^the output contains "([^"]+)"$`, c.outputContains)
}

// TestFeatures runs the Godog suite over the local feature files.
func TestFeatures(t *testing.T) {
	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "pretty"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   format,
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned from feature suite")
	}
}
