// Package pdf grades answer sheets that arrive as scanned PDF documents.
// Raster pages are pulled out with pdfcpu and fed through the grading
// pipeline one page at a time.
package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractImages pulls the embedded raster images out of a PDF, grouped by
// 1-based page number. pageRange limits extraction ("" means all pages).
func ExtractImages(filename string, pageRange string) (map[int][]image.Image, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	stagingDir, err := os.MkdirTemp("", "gomr-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(stagingDir) }()

	var selection []string
	for _, pageNum := range pageNumbers {
		selection = append(selection, strconv.Itoa(pageNum))
	}

	if err := api.ExtractImagesFile(filename, stagingDir, selection, nil); err != nil {
		return nil, fmt.Errorf("extract page images: %w", err)
	}
	return collectPageImages(stagingDir)
}

// collectPageImages decodes the staged extraction output into per-page
// image lists. pdfcpu names its output page_<num>_image_<idx>.<ext>;
// anything else in the directory is skipped.
func collectPageImages(dir string) (map[int][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read staged images: %w", err)
	}

	pages := make(map[int][]image.Image)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pageNum, err := pageNumberFromFilename(entry.Name())
		if err != nil {
			continue
		}
		img, err := decodeSheetImage(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		pages[pageNum] = append(pages[pageNum], img)
	}
	return pages, nil
}

func decodeSheetImage(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: paths come from our own staging dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// pageNumberFromFilename reads the page number out of a pdfcpu extraction
// filename such as page_3_image_1.png.
func pageNumberFromFilename(filename string) (int, error) {
	rest, ok := strings.CutPrefix(filename, "page_")
	if !ok {
		return 0, errors.New("not a page file")
	}
	if num, _, found := strings.Cut(rest, "_"); found {
		rest = num
	}
	pageNum, err := strconv.Atoi(rest)
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

// parsePageRange parses a page selection like "3", "1-5" or "1,3,7-9".
// An empty string selects all pages.
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	var pages []int
	for _, token := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken expands one selection token, either a single page ("3")
// or an inclusive span ("1-5"). Pages are 1-based.
func parseRangeToken(token string) ([]int, error) {
	first, second, isSpan := strings.Cut(token, "-")
	if !isSpan {
		page, err := parsePageNumber(token)
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", token)
		}
		return []int{page}, nil
	}

	start, err := parsePageNumber(strings.TrimSpace(first))
	if err != nil {
		return nil, fmt.Errorf("invalid start page: %s", first)
	}
	end, err := parsePageNumber(strings.TrimSpace(second))
	if err != nil {
		return nil, fmt.Errorf("invalid end page: %s", second)
	}
	if start > end {
		return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
	}

	span := make([]int, 0, end-start+1)
	for page := start; page <= end; page++ {
		span = append(span, page)
	}
	return span, nil
}

func parsePageNumber(s string) (int, error) {
	page, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if page < 1 {
		return 0, errors.New("pages are 1-based")
	}
	return page, nil
}
