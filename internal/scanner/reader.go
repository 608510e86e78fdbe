package scanner

import "strings"

// lineReader hands out the lines of one file front to back. It allows a
// single line of lookahead and pushing back the line just read; nothing
// earlier can be revisited.
type lineReader struct {
	lines []string
	pos   int // index of the next line to return
}

func newLineReader(lines []string) *lineReader {
	return &lineReader{lines: lines}
}

// splitLines breaks text into lines, dropping the carriage return of CRLF
// line endings.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (r *lineReader) next() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	line := r.lines[r.pos]
	r.pos++
	return line, true
}

func (r *lineReader) peek() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	return r.lines[r.pos], true
}

// unread pushes back the line most recently returned by next.
func (r *lineReader) unread() {
	if r.pos > 0 {
		r.pos--
	}
}

// line is the 0-based index of the line most recently returned by next.
func (r *lineReader) line() int {
	return r.pos - 1
}
