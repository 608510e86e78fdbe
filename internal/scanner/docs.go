package scanner

import (
	"regexp"
	"strings"

	"github.com/jward/pawndex/internal/symbols"
)

var (
	paramTagRe = regexp.MustCompile(`^@param\s+([A-Za-z0-9_.]+)\s*(.*)$`)
	anyTagRe   = regexp.MustCompile(`^@([A-Za-z]+)\b\s*(.*)$`)
)

// docComment is the structured form of a comment that carried @param or
// @return tags.
type docComment struct {
	description string
	params      []symbols.Parameter
	returns     string
	errs        string
}

// isDocTag reports whether comment content opens a doc comment.
func isDocTag(content string) bool {
	return strings.HasPrefix(content, "@param") || strings.HasPrefix(content, "@return")
}

// commentContent strips the comment markers from one raw comment line:
// a leading "/*", "/**", "//" or run of '*', and a trailing "*/".
func commentContent(line string) string {
	s := strings.TrimSpace(line)
	if i := strings.Index(s, "*/"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimLeft(s[2:], "*")
	case strings.HasPrefix(s, "//"):
		s = strings.TrimLeft(s, "/")
	default:
		s = strings.TrimLeft(s, "*")
	}
	return strings.TrimSpace(s)
}

// parseDoc builds the description and parameter records from the buffered
// lines of a comment.
//
// The description is the text of every line ahead of the first tag, joined
// with single spaces. Each @param opens a parameter and following untagged
// lines extend it; any other tag closes it.
func parseDoc(lines []string) docComment {
	contents := make([]string, len(lines))
	for i, l := range lines {
		contents[i] = commentContent(l)
	}

	var doc docComment
	var desc []string
	for _, c := range contents {
		if strings.HasPrefix(c, "@") {
			break
		}
		if c != "" {
			desc = append(desc, c)
		}
	}
	doc.description = strings.Join(desc, " ")

	var cur *symbols.Parameter
	section := ""
	flush := func() {
		if cur != nil {
			cur.Documentation = strings.TrimSpace(cur.Documentation)
			doc.params = append(doc.params, *cur)
			cur = nil
		}
	}
	for _, c := range contents {
		if m := paramTagRe.FindStringSubmatch(c); m != nil {
			flush()
			cur = &symbols.Parameter{Label: m[1], Documentation: m[2]}
			section = "param"
			continue
		}
		if m := anyTagRe.FindStringSubmatch(c); m != nil {
			flush()
			section = strings.ToLower(m[1])
			switch section {
			case "return", "returns":
				section = "return"
				doc.returns = m[2]
			case "error":
				doc.errs = m[2]
			}
			continue
		}
		if c == "" {
			continue
		}
		switch {
		case cur != nil:
			cur.Documentation += " " + c
		case section == "return":
			doc.returns += " " + c
		case section == "error":
			doc.errs += " " + c
		}
	}
	flush()

	doc.returns = strings.TrimSpace(doc.returns)
	doc.errs = strings.TrimSpace(doc.errs)
	return doc
}
