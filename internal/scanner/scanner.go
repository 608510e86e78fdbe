// Package scanner extracts declarations from SourcePawn source without a
// compiler front end.
//
// A file is consumed once, front to back, as a stream of lines. An explicit
// stack of modes tracks comment, doc comment, methodmap and property regions;
// a brace depth counter tracks which lines sit at file scope or directly in a
// methodmap body. Lines that match no recognized form are skipped, so partial
// or invalid source degrades to fewer symbols rather than an error.
package scanner

import (
	"strings"

	"github.com/jward/pawndex/internal/symbols"
)

type mode int

const (
	modeNone mode = iota
	modeMultilineComment
	modeDocComment
	modeMethodmap
	modeProperty
)

func (m mode) String() string {
	switch m {
	case modeMultilineComment:
		return "MultilineComment"
	case modeDocComment:
		return "DocComment"
	case modeMethodmap:
		return "Methodmap"
	case modeProperty:
		return "Property"
	}
	return "None"
}

// methodmapScope is an open methodmap. depth is the brace depth at its header;
// the scope closes once the depth falls back to it after the body opened.
type methodmapScope struct {
	name   string
	depth  int
	opened bool
}

// Scanner is the per-file line state machine. Use Scan or ScanText.
type Scanner struct {
	r     *lineReader
	fc    *symbols.FileCompletions
	modes []mode
	maps  []methodmapScope
	depth int

	scratch []string

	// pending documentation, attached to a declaration on pendingLine only.
	pending     *docComment
	pendingLine int
}

// Scan feeds lines into fc.
func Scan(lines []string, fc *symbols.FileCompletions) {
	s := &Scanner{
		r:     newLineReader(lines),
		fc:    fc,
		modes: []mode{modeNone},
	}
	s.run()
}

// ScanText splits text into lines and feeds them into fc.
func ScanText(text string, fc *symbols.FileCompletions) {
	Scan(splitLines(text), fc)
}

func (s *Scanner) run() {
	for {
		line, ok := s.r.next()
		if !ok {
			return
		}
		s.scanLine(line)
	}
}

func (s *Scanner) mode() mode {
	return s.modes[len(s.modes)-1]
}

func (s *Scanner) push(m mode) {
	s.modes = append(s.modes, m)
}

// pop never removes the base None mode.
func (s *Scanner) pop() {
	if len(s.modes) > 1 {
		s.modes = s.modes[:len(s.modes)-1]
	}
}

func (s *Scanner) takeDoc() *docComment {
	doc := s.pending
	if doc == nil {
		return nil
	}
	if s.pendingLine != s.r.line() {
		if s.pendingLine < s.r.line() {
			s.pending = nil
		}
		return nil
	}
	s.pending = nil
	return doc
}

func (s *Scanner) scanLine(line string) {
	doc := s.takeDoc()
	trimmed := strings.TrimSpace(line)

	if m := defineRe.FindStringSubmatch(line); m != nil {
		d := symbols.Declaration{
			Kind:      symbols.Define,
			Name:      m[1],
			Signature: collapseWhitespace(stripComment(m[2])),
			Line:      s.r.line(),
		}
		applyDoc(&d, doc)
		s.fc.Add(d.Key(), d)
		return
	}
	if m := includeSystemRe.FindStringSubmatch(line); m != nil {
		s.fc.ResolveImport(m[1], false)
		return
	}
	if m := includeLocalRe.FindStringSubmatch(line); m != nil {
		s.fc.ResolveImport(m[1], true)
		return
	}

	if strings.HasPrefix(trimmed, "/*") {
		s.blockComment(line)
		return
	}
	if strings.HasPrefix(trimmed, "//") {
		if next, ok := s.r.peek(); ok && isLineComment(next) {
			s.lineComment(line)
		}
		return
	}

	keep, code, open := splitCode(line)

	if m := methodmapRe.FindStringSubmatch(keep); m != nil {
		d := symbols.Declaration{
			Kind:      symbols.Class,
			Name:      m[1],
			Parent:    m[2],
			Signature: collapseWhitespace(strings.TrimRight(strings.TrimSpace(keep), "{;")),
			Line:      s.r.line(),
		}
		applyDoc(&d, doc)
		s.fc.Add(d.Key(), d)
		s.maps = append(s.maps, methodmapScope{name: m[1], depth: s.depth})
		s.push(modeMethodmap)
		s.track(code, open)
		if !strings.Contains(code, "{") && strings.HasSuffix(strings.TrimSpace(code), ";") {
			s.closeMethodmap()
		}
		return
	}

	if owner, ok := s.methodmapBody(); ok {
		if m := propertyRe.FindStringSubmatch(keep); m != nil {
			d := symbols.Declaration{
				Kind:  symbols.Property,
				Owner: owner,
				Name:  m[2],
				Type:  collapseWhitespace(m[1]),
				Line:  s.r.line(),
			}
			applyDoc(&d, doc)
			s.fc.Add(d.Key(), d)
			s.property(code, open)
			return
		}
		if d, ok := parseFunction(keep, owner); ok {
			d.Line = s.r.line()
			applyDoc(&d, doc)
			s.fc.Add(d.Key(), d)
		}
		s.track(code, open)
		return
	}

	if s.depth == 0 {
		if d, ok := parseFunction(keep, ""); ok {
			d.Line = s.r.line()
			applyDoc(&d, doc)
			s.fc.Add(d.Key(), d)
		} else if d, ok := parseVariable(keep); ok {
			d.Line = s.r.line()
			applyDoc(&d, doc)
			s.fc.Add(d.Key(), d)
		}
	}
	s.track(code, open)
}

// methodmapBody reports the innermost methodmap when the scanner sits
// directly in its body.
func (s *Scanner) methodmapBody() (string, bool) {
	if len(s.maps) == 0 {
		return "", false
	}
	top := s.maps[len(s.maps)-1]
	if !top.opened || s.depth != top.depth+1 {
		return "", false
	}
	return top.name, true
}

// track applies the braces of one line of code to the depth counter, closing
// methodmap scopes whose body ends. A block comment left open by the line is
// consumed silently.
func (s *Scanner) track(code string, openComment bool) {
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '{':
			s.depth++
			if n := len(s.maps); n > 0 && s.depth > s.maps[n-1].depth {
				s.maps[n-1].opened = true
			}
		case '}':
			if s.depth > 0 {
				s.depth--
			}
			if n := len(s.maps); n > 0 && s.maps[n-1].opened && s.depth <= s.maps[n-1].depth {
				s.closeMethodmap()
			}
		}
	}
	if openComment {
		if tail := s.skipComment(); strings.TrimSpace(tail) != "" {
			s.scanLine(tail)
		}
	}
}

func (s *Scanner) closeMethodmap() {
	if len(s.maps) == 0 {
		return
	}
	s.maps = s.maps[:len(s.maps)-1]
	for i := len(s.modes) - 1; i > 0; i-- {
		if s.modes[i] == modeMethodmap {
			s.modes = append(s.modes[:i], s.modes[i+1:]...)
			return
		}
	}
}

// property skips the body of a property whose header was just read. When the
// header holds no brace, lines are consumed until the first one that does;
// counting then runs until the braces balance. Running out of input ends the
// skip.
func (s *Scanner) property(code string, openComment bool) {
	s.push(modeProperty)
	defer s.pop()

	if !strings.Contains(code, "{") {
		if strings.HasSuffix(strings.TrimSpace(code), ";") {
			return
		}
		code = ""
		for !strings.Contains(code, "{") {
			var line string
			if openComment {
				line = s.skipComment()
			} else {
				var ok bool
				if line, ok = s.r.next(); !ok {
					return
				}
			}
			_, code, openComment = splitCode(line)
		}
	}

	count := 0
	for {
		count += braceDelta(code)
		if openComment {
			tail := s.skipComment()
			if count <= 0 {
				return
			}
			_, code, openComment = splitCode(tail)
			continue
		}
		if count <= 0 {
			return
		}
		line, ok := s.r.next()
		if !ok {
			return
		}
		_, code, openComment = splitCode(line)
	}
}

// skipComment consumes lines up to and including the one closing a block
// comment, buffering nothing. It returns the text after the "*/".
func (s *Scanner) skipComment() string {
	s.push(modeMultilineComment)
	defer s.pop()
	for {
		line, ok := s.r.next()
		if !ok {
			return ""
		}
		if end := strings.Index(line, "*/"); end >= 0 {
			return line[end+2:]
		}
	}
}

func isLineComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "//")
}

// blockComment buffers a /* ... */ region. If it carried a @param or
// @return tag, its documentation is held for the line right after it, or for
// code following the "*/" on the closing line, which is scanned as source.
func (s *Scanner) blockComment(first string) {
	s.push(modeMultilineComment)
	s.scratch = s.scratch[:0]

	line := first
	isFirst := true
	closed := false
	var tail string
	for {
		body := line
		if isFirst {
			if open := strings.Index(line, "/*"); open >= 0 {
				body = line[open+2:]
			}
			isFirst = false
		}
		end := strings.Index(body, "*/")
		if end >= 0 {
			tail = body[end+2:]
			body = body[:end]
			closed = true
		}
		if isDocTag(commentContent(body)) && s.mode() != modeDocComment {
			s.push(modeDocComment)
		}
		s.scratch = append(s.scratch, body)
		if closed {
			break
		}
		var ok bool
		line, ok = s.r.next()
		if !ok {
			break
		}
	}
	if strings.TrimSpace(tail) == "" {
		s.endComment(closed, s.r.line()+1)
		return
	}
	s.endComment(closed, s.r.line())
	s.scanLine(tail)
}

// lineComment buffers a run of two or more // lines. The first line that is
// not a comment ends the run and is scanned again as ordinary source.
func (s *Scanner) lineComment(first string) {
	s.push(modeMultilineComment)
	s.scratch = s.scratch[:0]

	line := first
	for {
		if !isLineComment(line) {
			s.r.unread()
			s.endComment(true, s.r.pos)
			return
		}
		if isDocTag(commentContent(line)) && s.mode() != modeDocComment {
			s.push(modeDocComment)
		}
		s.scratch = append(s.scratch, line)
		var ok bool
		line, ok = s.r.next()
		if !ok {
			s.endComment(false, 0)
			return
		}
	}
}

// endComment leaves the comment modes. Documentation is kept for the
// declaration on line next only if the comment was a closed doc comment.
func (s *Scanner) endComment(closed bool, next int) {
	doc := s.mode() == modeDocComment
	if doc {
		s.pop()
	}
	s.pop()
	if doc && closed {
		parsed := parseDoc(s.scratch)
		s.pending = &parsed
		s.pendingLine = next
	}
	s.scratch = s.scratch[:0]
}

func applyDoc(d *symbols.Declaration, doc *docComment) {
	if doc == nil {
		return
	}
	d.Description = doc.description
	d.Returns = doc.returns
	d.Error = doc.errs
	if len(doc.params) > 0 {
		d.Params = doc.params
	}
}

// stripComment removes a trailing comment, leaving string literals intact.
func stripComment(s string) string {
	keep, _, _ := splitCode(s)
	return keep
}
