package pawndex

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	"go.lsp.dev/uri"
)

// Position is a zero-based cursor location as editors send it. Character
// counts UTF-16 code units.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// QueryContext describes the cursor a query is asked for.
type QueryContext struct {
	// Document is a file:// URI or a file path.
	Document string
	Position Position

	// PrecedingText is the text of the cursor's line up to the cursor. When
	// empty it is taken from Text.
	PrecedingText string

	// Text is the full document content, used to find local declarations of
	// member-access receivers. Optional.
	Text string

	// Name is the callee for SignatureHelp. When empty it is read from the
	// call enclosing the cursor.
	Name string
}

// path returns the absolute file path the context refers to.
func (q QueryContext) path() string {
	doc := strings.TrimSpace(q.Document)
	if doc == "" {
		return ""
	}
	if strings.HasPrefix(doc, uri.FileScheme+":") {
		u, err := uri.Parse(doc)
		if err != nil {
			return ""
		}
		return u.Filename()
	}
	abs, err := filepath.Abs(doc)
	if err != nil {
		return ""
	}
	return abs
}

// line returns the cursor line as an int, or -1 when it does not fit.
func (q QueryContext) line() int {
	n, err := safecast.Conv[int](q.Position.Line)
	if err != nil {
		return -1
	}
	return n
}

// before returns the document text up to the cursor and the cursor line's
// part of it. Without Text only PrecedingText is known.
func (q QueryContext) before() (text, line string) {
	if q.Text == "" {
		return q.PrecedingText, q.PrecedingText
	}
	lines := strings.Split(q.Text, "\n")
	n := q.line()
	if n < 0 || n >= len(lines) {
		n = len(lines) - 1
	}
	cur := strings.TrimSuffix(lines[n], "\r")
	col := utf16Offset(cur, q.Position.Character)
	cur = cur[:col]
	text = strings.Join(append(lines[:n:n], cur), "\n")
	if q.PrecedingText != "" {
		return text, q.PrecedingText
	}
	return text, cur
}

// utf16Offset converts a UTF-16 column into a byte offset in s, clamped to
// the end of s.
func utf16Offset(s string, col uint32) int {
	var units uint32
	for i, r := range s {
		if units >= col {
			return i
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return len(s)
}

var (
	identTailRe  = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*$`)
	memberRe     = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\.\s*([A-Za-z_][A-Za-z0-9_]*)?$`)
	newKeywordRe = regexp.MustCompile(`(?:^|[^A-Za-z0-9_.])new\s*$`)
)

// wordPrefix is the identifier being typed at the end of text.
func wordPrefix(text string) string {
	return identTailRe.FindString(text)
}

// memberAccess reports a receiver followed by "." at the end of text, along
// with the partial member name typed after it.
func memberAccess(text string) (receiver, prefix string, ok bool) {
	m := memberRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	// A number such as "1.5" is not a member access.
	start := len(text) - len(m[0])
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); r == '.' || isIdentByte(r) {
			return "", "", false
		}
	}
	return m[1], m[2], true
}

func isIdentByte(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// callSite is the innermost unclosed call at the cursor.
type callSite struct {
	name     string
	receiver string // set for "recv.name("
	isNew    bool   // set for "new Name("
	active   int    // top-level commas between "(" and the cursor
}

// callKeywords precede "(" without naming a callee.
var callKeywords = map[string]bool{
	"if": true, "while": true, "for": true, "switch": true, "return": true,
	"sizeof": true, "view_as": true, "case": true,
}

// enclosingCall finds the call whose argument list contains the end of text.
// Comments are skipped and a literal left open ends at the end of its line.
func enclosingCall(text string) (callSite, bool) {
	type frame struct {
		open    int
		bracket byte
		commas  int
	}
	var stack []frame
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch c {
			case '\\':
				if i+1 < len(text) && text[i+1] != '\n' {
					i++
				}
			case '\n', quote:
				quote = 0
			}
			continue
		}
		if c == '/' && i+1 < len(text) {
			switch text[i+1] {
			case '/':
				end := strings.IndexByte(text[i:], '\n')
				if end < 0 {
					i = len(text)
				} else {
					i += end
				}
				continue
			case '*':
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					i = len(text)
				} else {
					i += 2 + end + 1
				}
				continue
			}
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			stack = append(stack, frame{open: i, bracket: c})
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ';':
			stack = stack[:0]
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].commas++
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.bracket != '(' {
			continue
		}
		head := strings.TrimRight(text[:f.open], " \t\r\n")
		name := wordPrefix(head)
		if name == "" || callKeywords[name] {
			return callSite{}, false
		}
		site := callSite{name: name, active: f.commas}
		rest := strings.TrimRight(head[:len(head)-len(name)], " \t\r\n")
		switch {
		case strings.HasSuffix(rest, "."):
			site.receiver = wordPrefix(strings.TrimRight(rest[:len(rest)-1], " \t"))
		case newKeywordRe.MatchString(rest):
			site.isNew = true
		}
		return site, true
	}
	return callSite{}, false
}
