package report

import (
	"bytes"
	"fmt"
	"strconv"
)

// Writer accumulates a document and records the byte offset of every object
// as it is written, so the cross-reference table always matches the output.
type Writer struct {
	buf     bytes.Buffer
	offsets []int // offsets[i] is the offset of object i+1
	open    int
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int { return w.buf.Len() }

// Write implements io.Writer. Writes to the buffer never fail.
func (w *Writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

// WriteString appends s.
func (w *Writer) WriteString(s string) (int, error) { return w.buf.WriteString(s) }

// Printf appends formatted text.
func (w *Writer) Printf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

// BeginObject records the current offset for object num and writes its
// header. Objects must be written in order starting at 1.
func (w *Writer) BeginObject(num int) error {
	if w.open != 0 {
		return fmt.Errorf("object %d begun while object %d is open", num, w.open)
	}
	if num != len(w.offsets)+1 {
		return fmt.Errorf("object %d written out of order, expected %d", num, len(w.offsets)+1)
	}
	w.offsets = append(w.offsets, w.Offset())
	w.open = num
	w.Printf("%d 0 obj\n", num)
	return nil
}

// EndObject closes the open object.
func (w *Writer) EndObject() {
	w.buf.WriteString("endobj\n")
	w.open = 0
}

// Object writes a complete non-stream object.
func (w *Writer) Object(num int, body string) error {
	if err := w.BeginObject(num); err != nil {
		return err
	}
	w.buf.WriteString(body)
	w.buf.WriteString("\n")
	w.EndObject()
	return nil
}

// Stream writes a stream object whose /Length is the exact size of data.
func (w *Writer) Stream(num int, data []byte) error {
	if err := w.BeginObject(num); err != nil {
		return err
	}
	w.Printf("<< /Length %d >>\nstream\n", len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\n")
	w.EndObject()
	return nil
}

// Finish appends the cross-reference table, the trailer naming root, and the
// startxref pointer.
func (w *Writer) Finish(root int) error {
	if w.open != 0 {
		return fmt.Errorf("object %d left open", w.open)
	}
	xref := w.Offset()
	size := len(w.offsets) + 1
	w.Printf("xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for _, off := range w.offsets {
		w.Printf("%010d 00000 n \n", off)
	}
	w.Printf("trailer\n<< /Size %d /Root %d 0 R >>\n", size, root)
	w.buf.WriteString("startxref\n")
	w.buf.WriteString(strconv.Itoa(xref))
	w.buf.WriteString("\n%%EOF\n")
	return nil
}

// Offsets returns the recorded object offsets; index i holds object i+1.
func (w *Writer) Offsets() []int {
	return append([]int(nil), w.offsets...)
}

// Bytes returns the document written so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
