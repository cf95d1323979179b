package report

import (
	"strings"
)

// tabWidth is how many spaces a tab expands to before sanitizing.
const tabWidth = 4

// Sanitize expands tabs and drops every byte outside printable ASCII.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Wrap breaks line into pieces of at most width characters at spaces. Every
// piece keeps the line's leading indentation; words longer than the room left
// are split. Trailing spaces are removed.
func Wrap(line string, width int) []string {
	line = strings.TrimRight(line, " ")
	if width <= 0 || len(line) <= width {
		return []string{line}
	}

	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]
	if len(indent) > width/2 {
		indent = indent[:width/2]
	}
	room := width - len(indent)

	var out []string
	cur := ""
	flush := func() {
		out = append(out, indent+cur)
		cur = ""
	}
	for _, word := range strings.Fields(body) {
		for len(word) > room {
			if cur != "" {
				flush()
			}
			out = append(out, indent+word[:room])
			word = word[room:]
		}
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= room:
			cur += " " + word
		default:
			flush()
			cur = word
		}
	}
	if cur != "" || len(out) == 0 {
		flush()
	}
	return out
}

// Layout sanitizes and wraps every line; the result is exactly what the
// document will contain.
func Layout(lines []string, width int) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, Wrap(Sanitize(l), width)...)
	}
	return out
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// Escape makes s safe inside a literal string operand.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Paginate splits lines into pages of at most perPage lines.
func Paginate(lines []string, perPage int) [][]string {
	if perPage <= 0 {
		perPage = 1
	}
	var pages [][]string
	for len(lines) > perPage {
		pages = append(pages, lines[:perPage])
		lines = lines[perPage:]
	}
	if len(lines) > 0 {
		pages = append(pages, lines)
	}
	return pages
}
