// Package ui prints human-readable output for --human mode.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/matsen/whitespace/internal/graph"
)

// Palette
var (
	Header = color.New(color.FgHiBlack)
	Title  = color.New(color.Bold)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
	Info   = color.New(color.FgCyan)
)

// Table prints an aligned table. Nothing is printed when rows is empty.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var head, sep strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&head, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	Header.Fprintln(w, strings.TrimRight(head.String(), " "))
	Header.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// Status colors a signal status by strength.
func Status(s graph.SignalStatus) string {
	switch s {
	case graph.StatusStrong:
		return Good.Sprint(string(s))
	case graph.StatusMedium:
		return Info.Sprint(string(s))
	case graph.StatusWeak:
		return Warn.Sprint(string(s))
	default:
		return Header.Sprint(string(s))
	}
}

// Error prints a failure line.
func Error(w io.Writer, msg string) {
	Bad.Fprintln(w, "error: "+msg)
}

// Heading prints a bold line followed by a blank one.
func Heading(w io.Writer, text string) {
	Title.Fprintln(w, text)
	fmt.Fprintln(w)
}
