package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadLines extracts the text lines of a report file, page by page.
func ReadLines(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readLines(r)
}

// ReadLinesFrom extracts text lines from an in-memory document.
func ReadLinesFrom(r io.ReaderAt, size int64) ([]string, error) {
	pr, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return readLines(pr)
}

// ReadLinesBytes is ReadLinesFrom over a byte slice.
func ReadLinesBytes(data []byte) ([]string, error) {
	return ReadLinesFrom(bytes.NewReader(data), int64(len(data)))
}

// PageCount returns the number of pages of a file.
func PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return r.NumPage(), nil
}

func readLines(r *pdf.Reader) ([]string, error) {
	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			return nil, fmt.Errorf("page %d missing", i)
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		lines = append(lines, pageLines(text)...)
	}
	return lines, nil
}

// pageLines splits the plain text of a page. Every text object starts with a
// newline, so the text before the first one is dropped.
func pageLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[0] == "" {
		parts = parts[1:]
	}
	return parts
}
