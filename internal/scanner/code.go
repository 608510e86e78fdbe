package scanner

import "strings"

// splitCode separates the code of a line from its comments.
//
// keep is the line with comments removed and string literals intact; code
// additionally has the contents of string and character literals removed, so
// braces can be counted on it. open reports a block comment that starts on
// the line and is still unterminated at its end.
func splitCode(line string) (keep, code string, open bool) {
	var kb, cb strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			kb.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(line) {
					i++
					kb.WriteByte(line[i])
				}
			case quote:
				cb.WriteByte(c)
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			kb.WriteByte(c)
			cb.WriteByte(c)
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return kb.String(), cb.String(), false
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			end := strings.Index(line[i+2:], "*/")
			if end < 0 {
				return kb.String(), cb.String(), true
			}
			i += 2 + end + 1
			kb.WriteByte(' ')
			cb.WriteByte(' ')
		default:
			kb.WriteByte(c)
			cb.WriteByte(c)
		}
	}
	return kb.String(), cb.String(), false
}

// braceDelta is the net change in brace depth over code.
func braceDelta(code string) int {
	return strings.Count(code, "{") - strings.Count(code, "}")
}

// matchParen returns the index of the parenthesis closing the one at open,
// skipping string literals, or -1 when the line ends first.
func matchParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on commas that are not nested in brackets, braces,
// parentheses or string literals.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// collapseWhitespace replaces runs of whitespace with a single space and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
