package scanner

import (
	"strings"

	"github.com/jward/pawndex/internal/symbols"
)

// cutModifiers removes leading declaration modifiers from s.
func cutModifiers(s string) ([]string, string) {
	var mods []string
	for {
		s = strings.TrimSpace(s)
		end := strings.IndexAny(s, " \t")
		word := s
		if end >= 0 {
			word = s[:end]
		}
		if !modifiers[word] {
			return mods, s
		}
		mods = append(mods, word)
		if end < 0 {
			return mods, ""
		}
		s = s[end:]
	}
}

// firstWord is the leading identifier of a type expression such as "char[]".
func firstWord(typ string) string {
	end := strings.IndexFunc(typ, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		return typ
	}
	return typ[:end]
}

// parseFunction recognizes a function header in either declaration style.
// A non-empty owner attributes it to that methodmap as a method.
//
// Old style puts a tag and a colon in front of the name (bool:IsValid(...));
// new style separates the type from the name with a space. A header without
// any type is accepted only with a modifier or as a methodmap constructor,
// which keeps plain calls from being taken for declarations.
func parseFunction(keep, owner string) (symbols.Declaration, bool) {
	mods, rest := cutModifiers(keep)
	open := strings.IndexByte(rest, '(')
	if open <= 0 {
		return symbols.Declaration{}, false
	}
	head := strings.TrimSpace(rest[:open])

	var typ, name string
	oldStyle := false
	if m := oldStyleHeadRe.FindStringSubmatch(head); m != nil {
		typ, name, oldStyle = m[1], m[2], true
	} else if m := newStyleHeadRe.FindStringSubmatch(head); m != nil {
		typ, name = collapseWhitespace(m[1]), m[2]
	} else if m := bareHeadRe.FindStringSubmatch(head); m != nil {
		name = m[1]
	} else {
		return symbols.Declaration{}, false
	}
	if keywords[name] || keywords[firstWord(typ)] {
		return symbols.Declaration{}, false
	}
	if typ == "" && len(mods) == 0 && (owner == "" || name != owner) {
		return symbols.Declaration{}, false
	}

	var params string
	if end := matchParen(rest, open); end >= 0 {
		params = rest[open : end+1]
	} else {
		params = strings.TrimRight(strings.TrimSpace(rest[open:]), "{;")
	}

	var sig string
	switch {
	case oldStyle:
		sig = typ + ":" + name + params
	case typ != "":
		sig = typ + " " + name + params
	default:
		sig = name + params
	}

	d := symbols.Declaration{
		Kind:      symbols.Function,
		Name:      name,
		Owner:     owner,
		Type:      typ,
		Signature: collapseWhitespace(sig),
		Params:    signatureParams(params),
	}
	if owner != "" {
		d.Kind = symbols.Method
	}
	return d, true
}

// signatureParams lists the parameters written between the parentheses of
// a signature, each labelled with its own text.
func signatureParams(params string) []symbols.Parameter {
	inner := strings.TrimSpace(params)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	var out []symbols.Parameter
	for _, p := range splitTopLevel(inner) {
		if p = collapseWhitespace(p); p != "" {
			out = append(out, symbols.Parameter{Label: p})
		}
	}
	return out
}

// parseVariable recognizes "<type> <name>" and the old "new Tag:name" forms.
// Only the first declarator of a line is recorded.
func parseVariable(keep string) (symbols.Declaration, bool) {
	s := strings.TrimSpace(keep)
	if s == "" {
		return symbols.Declaration{}, false
	}

	var typ, name string
	if word, rest, _ := strings.Cut(s, " "); word == "new" || word == "decl" {
		_, rest = cutModifiers(rest)
		m := oldStyleVarRe.FindStringSubmatch(rest)
		if m == nil {
			return symbols.Declaration{}, false
		}
		typ, name = m[1], m[2]
	} else {
		_, rest := cutModifiers(s)
		if m := taggedVarRe.FindStringSubmatch(rest); m != nil {
			typ, name = m[1], m[2]
		} else if m := newStyleVarRe.FindStringSubmatch(rest); m != nil {
			typ, name = collapseWhitespace(m[1]), m[2]
		} else {
			return symbols.Declaration{}, false
		}
	}
	if keywords[name] || keywords[firstWord(typ)] {
		return symbols.Declaration{}, false
	}
	return symbols.Declaration{
		Kind: symbols.Variable,
		Name: name,
		Type: typ,
	}, true
}
