package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gomr/internal/testutil"
)

// renderSheetFile writes a synthetic 2x2 sheet image for CLI tests.
func renderSheetFile(t *testing.T, filled map[int]int) string {
	t.Helper()
	spec := testutil.DefaultSheetSpec(2, 2)
	spec.Filled = filled
	return testutil.WriteSheetPNG(t, t.TempDir(), "sheet.png", spec)
}

// gradeArgs appends the sheet geometry flags matching the synthetic sheets.
func gradeArgs(path string, extra ...string) []string {
	args := []string{
		"grade", path,
		"--num-questions", "2",
		"--num-options", "2",
		"--min-pixel-threshold", "100",
		"--bubble-min-size", "10",
	}
	return append(args, extra...)
}

func TestGradeCommandJSON(t *testing.T) {
	path := renderSheetFile(t, map[int]int{1: 0, 2: 1})

	output, err := executeCommand(t, gradeArgs(path, "--format", "json")...)
	require.NoError(t, err)

	var doc struct {
		Responses map[string]string `json:"responses"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &doc))
	assert.Equal(t, map[string]string{"1": "A", "2": "B"}, doc.Responses)
}

func TestGradeCommandTextFormat(t *testing.T) {
	path := renderSheetFile(t, map[int]int{1: 1})

	output, err := executeCommand(t, gradeArgs(path, "--format", "text")...)
	require.NoError(t, err)
	assert.Contains(t, output, "1: B")
	assert.Contains(t, output, "2: No Response")
}

func TestGradeCommandOutputFile(t *testing.T) {
	path := renderSheetFile(t, map[int]int{2: 0})
	outFile := filepath.Join(t.TempDir(), "result.csv")

	_, err := executeCommand(t, gradeArgs(path, "--format", "csv", "--output", outFile)...)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "question,answer,pixel_count,confidence", lines[0])
}

func TestGradeCommandMissingFile(t *testing.T) {
	_, err := executeCommand(t, gradeArgs(filepath.Join(t.TempDir(), "absent.png"))...)
	require.Error(t, err)
}

func TestGradeCommandRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a"), 0o644))

	_, err := executeCommand(t, gradeArgs(path)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}

func TestGradeCommandRequiresArgument(t *testing.T) {
	_, err := executeCommand(t, "grade")
	require.Error(t, err)
}

func TestBatchCommandGradesDirectory(t *testing.T) {
	dir := t.TempDir()
	spec := testutil.DefaultSheetSpec(2, 2)
	spec.Filled = map[int]int{1: 0}
	testutil.WriteSheetPNG(t, dir, "a.png", spec)
	testutil.WriteSheetPNG(t, dir, "b.png", spec)

	outFile := filepath.Join(t.TempDir(), "batch.json")
	_, err := executeCommand(t,
		"batch", dir,
		"--num-questions", "2",
		"--num-options", "2",
		"--min-pixel-threshold", "100",
		"--bubble-min-size", "10",
		"--format", "json",
		"--output", outFile,
		"--quiet",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"1": "A"`)
}

func TestBatchCommandRequiresPaths(t *testing.T) {
	_, err := executeCommand(t, "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input paths")
}

func TestPDFCommandMissingFile(t *testing.T) {
	_, err := executeCommand(t, "pdf", filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gomr.yaml")

	output, err := executeCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "num_questions")
}

func TestConfigPathsCommand(t *testing.T) {
	output, err := executeCommand(t, "config", "paths")
	require.NoError(t, err)
	assert.Contains(t, output, "/etc/gomr")
}
