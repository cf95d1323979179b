// Package report writes evidence lines into a standalone paginated PDF file.
// The file is assembled byte by byte; no document library is involved.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrNoEvidence is returned when there is nothing to export.
var ErrNoEvidence = errors.New("no evidence selected")

// Options controls page geometry. Sizes are in points.
type Options struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	FontSize   float64
	LineHeight float64
	WrapWidth  int
	Font       string
}

// DefaultOptions is US Letter, 10pt Courier, 85 columns.
func DefaultOptions() Options {
	return Options{
		PageWidth:  612,
		PageHeight: 792,
		Margin:     50,
		FontSize:   10,
		LineHeight: 14,
		WrapWidth:  85,
		Font:       "Courier",
	}
}

// LinesPerPage returns how many lines fit between the margins.
func (o Options) LinesPerPage() int {
	n := int((o.PageHeight - 2*o.Margin) / o.LineHeight)
	return max(n, 1)
}

// Document is a generated report.
type Document struct {
	Bytes []byte
	// Lines is the wrapped text in page order.
	Lines []string
	Pages int
	// Offsets[i] is the byte offset of object i+1.
	Offsets []int
}

// Object numbers of the fixed objects. Page i (0-based) is object
// firstPage+2i and its content stream is the object after it.
const (
	objCatalog = 1
	objPages   = 2
	objFont    = 3
	firstPage  = 4
)

// Build lays out lines and writes the document.
func Build(lines []string, opts Options) (*Document, error) {
	if len(lines) == 0 {
		return nil, ErrNoEvidence
	}
	laid := Layout(lines, opts.WrapWidth)
	pages := Paginate(laid, opts.LinesPerPage())

	w := &Writer{}
	w.WriteString("%PDF-1.4\n")
	// binary marker
	w.WriteString("%\xE2\xE3\xCF\xD3\n")

	if err := w.Object(objCatalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", objPages)); err != nil {
		return nil, err
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}
	pagesDict := fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	if err := w.Object(objPages, pagesDict); err != nil {
		return nil, err
	}

	fontDict := fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", opts.Font)
	if err := w.Object(objFont, fontDict); err != nil {
		return nil, err
	}

	for i, page := range pages {
		pageNum := firstPage + 2*i
		contentNum := pageNum + 1
		pageDict := fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			objPages, num(opts.PageWidth), num(opts.PageHeight), objFont, contentNum)
		if err := w.Object(pageNum, pageDict); err != nil {
			return nil, err
		}
		if err := w.Stream(contentNum, contentStream(page, opts)); err != nil {
			return nil, err
		}
	}

	if err := w.Finish(objCatalog); err != nil {
		return nil, err
	}

	return &Document{
		Bytes:   w.Bytes(),
		Lines:   laid,
		Pages:   len(pages),
		Offsets: w.Offsets(),
	}, nil
}

// contentStream draws each line as its own text object, top to bottom.
func contentStream(lines []string, opts Options) []byte {
	var b bytes.Buffer
	top := opts.PageHeight - opts.Margin - opts.FontSize
	for i, line := range lines {
		y := top - float64(i)*opts.LineHeight
		fmt.Fprintf(&b, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n",
			num(opts.FontSize), num(opts.Margin), num(y), Escape(line))
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n"))
}

// num formats a coordinate without exponent notation.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
