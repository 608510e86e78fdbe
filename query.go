package pawndex

import (
	"sort"
	"strings"

	"github.com/jward/pawndex/internal/symbols"
)

// QueryBuilder answers queries against one published state of the Engine.
// Every query made through the same QueryBuilder sees the same tables.
type QueryBuilder struct {
	e *Engine
	x *index
}

// Query returns a QueryBuilder over the current tables.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{e: e, x: e.current()}
}

// Completions is shorthand for e.Query().Completions(q).
func (e *Engine) Completions(q QueryContext) []Candidate {
	return e.Query().Completions(q)
}

// SignatureHelp is shorthand for e.Query().SignatureHelp(q).
func (e *Engine) SignatureHelp(q QueryContext) *Signature {
	return e.Query().SignatureHelp(q)
}

// Location is where a declaration was found.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"` // 0-based
}

// Candidate is one completion proposal.
type Candidate struct {
	Name        string       `json:"name"`
	Kind        symbols.Kind `json:"kind"`
	Signature   string       `json:"signature,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        string       `json:"type,omitempty"`
	Owner       string       `json:"owner,omitempty"`
	Location    Location     `json:"location"`
}

func newCandidate(fc *symbols.FileCompletions, d symbols.Declaration) Candidate {
	return Candidate{
		Name:        d.Name,
		Kind:        d.Kind,
		Signature:   d.Signature,
		Description: d.Description,
		Type:        d.Type,
		Owner:       d.Owner,
		Location:    Location{File: fc.Path, Line: d.Line},
	}
}

// Completions returns the candidates for the cursor in q, sorted by name.
//
// After "receiver." where the receiver's methodmap can be found, only the
// methods and properties of that methodmap and its parents are proposed.
// Otherwise the proposals are the free declarations of the document, of
// every file it includes directly or indirectly, and of the base API; a
// name declared in more than one of them comes from the closest. In both
// cases candidates are filtered by the identifier typed before the cursor.
// An unknown document still sees the base API.
func (qb *QueryBuilder) Completions(q QueryContext) []Candidate {
	path := q.path()
	before, line := q.before()
	tables := qb.visible(path)

	var out []Candidate
	prefix := wordPrefix(line)
	if recv, partial, ok := memberAccess(line); ok {
		if owner := qb.receiverType(tables, path, recv, q.line(), before); owner != "" {
			for _, m := range qb.members(tables, owner) {
				out = append(out, newCandidate(m.fc, m.decl))
			}
			return sortCandidates(filterCandidates(out, partial))
		}
	}

	seen := map[string]bool{}
	for _, fc := range tables {
		for _, d := range fc.Declarations() {
			if d.IsMember() || seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			out = append(out, newCandidate(fc, d))
		}
	}
	return sortCandidates(filterCandidates(out, prefix))
}

func filterCandidates(in []Candidate, prefix string) []Candidate {
	if prefix == "" {
		return in
	}
	prefix = strings.ToLower(prefix)
	out := in[:0]
	for _, c := range in {
		if strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			out = append(out, c)
		}
	}
	return out
}

func sortCandidates(c []Candidate) []Candidate {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Name < c[j].Name
	})
	return c
}

// Dependencies returns the include edges recorded for path.
func (qb *QueryBuilder) Dependencies(path string) []symbols.Import {
	abs, err := absPath(path)
	if err != nil {
		return nil
	}
	return qb.x.table(abs).Imports()
}

// Resolve returns the path of the known file imp refers to.
func (qb *QueryBuilder) Resolve(imp symbols.Import) (string, bool) {
	return qb.e.resolve(qb.x, imp)
}

// Dependents lists the known files whose includes resolve to path, sorted.
func (qb *QueryBuilder) Dependents(path string) []string {
	abs, err := absPath(path)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, m := range []map[string]*symbols.FileCompletions{qb.x.files, qb.x.base} {
		for p, fc := range m {
			if seen[p] {
				continue
			}
			for _, imp := range fc.Imports() {
				if target, ok := qb.e.resolve(qb.x, imp); ok && target == abs {
					seen[p] = true
					out = append(out, p)
					break
				}
			}
		}
	}
	sort.Strings(out)
	return out
}
