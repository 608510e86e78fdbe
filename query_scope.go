package pawndex

import (
	"regexp"

	"github.com/jward/pawndex/internal/symbols"
)

// visible lists the tables a document can see, closest first: the document
// itself, the files it includes in breadth-first order, then the rest of
// the base API. Each table appears once, so include cycles end the walk.
func (qb *QueryBuilder) visible(path string) []*symbols.FileCompletions {
	var out []*symbols.FileCompletions
	seen := map[string]bool{}

	if start := qb.x.table(path); start != nil {
		seen[path] = true
		queue := []*symbols.FileCompletions{start}
		for len(queue) > 0 {
			fc := queue[0]
			queue = queue[1:]
			out = append(out, fc)
			for _, imp := range fc.Imports() {
				target, ok := qb.e.resolve(qb.x, imp)
				if !ok || seen[target] {
					continue
				}
				seen[target] = true
				queue = append(queue, qb.x.table(target))
			}
		}
	}

	for _, p := range sortedKeys(qb.x.base) {
		if !seen[p] {
			seen[p] = true
			out = append(out, qb.x.base[p])
		}
	}
	return out
}

// found pairs a declaration with the table it came from.
type found struct {
	fc   *symbols.FileCompletions
	decl symbols.Declaration
}

// lookup returns the first declaration stored under key in tables.
func lookup(tables []*symbols.FileCompletions, key string, kinds ...symbols.Kind) (found, bool) {
	for _, fc := range tables {
		d, ok := fc.Lookup(key)
		if !ok {
			continue
		}
		if len(kinds) == 0 || hasKind(kinds, d.Kind) {
			return found{fc: fc, decl: d}, true
		}
	}
	return found{}, false
}

func hasKind(kinds []symbols.Kind, k symbols.Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

// chain lists owner followed by its parent methodmaps, nearest first. A
// parent cycle ends the chain.
func chain(tables []*symbols.FileCompletions, owner string) []string {
	var out []string
	seen := map[string]bool{}
	for name := owner; name != "" && !seen[name]; {
		seen[name] = true
		out = append(out, name)
		mm, ok := lookup(tables, name, symbols.Class)
		if !ok {
			break
		}
		name = mm.decl.Parent
	}
	return out
}

// members collects the methods and properties of owner and its parents,
// leaving out constructors. A member redeclared lower in the chain hides the
// inherited one.
func (qb *QueryBuilder) members(tables []*symbols.FileCompletions, owner string) []found {
	var out []found
	seen := map[string]bool{}
	for _, name := range chain(tables, owner) {
		for _, fc := range tables {
			for _, d := range fc.Members(name) {
				if seen[d.Name] || d.Name == d.Owner {
					continue
				}
				seen[d.Name] = true
				out = append(out, found{fc: fc, decl: d})
			}
		}
	}
	return out
}

// member finds the method or property called name on owner or its parents.
func (qb *QueryBuilder) member(tables []*symbols.FileCompletions, owner, name string) (found, bool) {
	for _, o := range chain(tables, owner) {
		if f, ok := lookup(tables, o+"."+name, symbols.Method, symbols.Property); ok {
			return f, true
		}
	}
	return found{}, false
}

// isMethodmap reports whether name is a visible methodmap.
func isMethodmap(tables []*symbols.FileCompletions, name string) bool {
	_, ok := lookup(tables, name, symbols.Class)
	return ok
}

// receiverType finds the methodmap of a member-access receiver. In order it
// tries: "this" as the methodmap enclosing the cursor line, the receiver as
// a methodmap name, a "<Methodmap> <name>" or "<Methodmap>:<name>"
// declaration in the document text before the cursor, and a visible
// variable declaration. It returns "" when none applies.
func (qb *QueryBuilder) receiverType(tables []*symbols.FileCompletions, path, recv string, line int, before string) string {
	if recv == "this" {
		return enclosingMethodmap(qb.x.table(path), line)
	}
	if isMethodmap(tables, recv) {
		return recv
	}
	if t := localDeclType(tables, recv, before); t != "" {
		return t
	}
	if v, ok := lookup(tables, recv, symbols.Variable); ok {
		if t := firstIdent(v.decl.Type); isMethodmap(tables, t) {
			return t
		}
	}
	return ""
}

// enclosingMethodmap is the methodmap declared last at or before line.
func enclosingMethodmap(fc *symbols.FileCompletions, line int) string {
	best, bestLine := "", -1
	for _, d := range fc.Declarations() {
		if d.Kind != symbols.Class || (line >= 0 && d.Line > line) {
			continue
		}
		if d.Line > bestLine {
			best, bestLine = d.Name, d.Line
		}
	}
	return best
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

func firstIdent(s string) string {
	return identRe.FindString(s)
}

// localDeclType searches text for the last declaration of name whose type
// is a visible methodmap. Parameters and locals are found this way.
func localDeclType(tables []*symbols.FileCompletions, name, text string) string {
	if text == "" {
		return ""
	}
	re, err := regexp.Compile(`(?:^|[^A-Za-z0-9_.])([A-Za-z_][A-Za-z0-9_]*)(?:\s*\[\s*\])*(?:\s+|\s*:\s*)` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return ""
	}
	matches := re.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if t := matches[i][1]; isMethodmap(tables, t) {
			return t
		}
	}
	return ""
}
