// Package symbols defines the per-file symbol table produced by the scanner:
// declarations, their documentation, and the include edges of a file.
package symbols

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind tags the variant held by a Declaration.
type Kind string

const (
	Define   Kind = "define"
	Function Kind = "function"
	Method   Kind = "method"
	Class    Kind = "methodmap"
	Property Kind = "property"
	Variable Kind = "variable"
)

// Parameter is one @param entry of a doc comment.
type Parameter struct {
	Label         string
	Documentation string
}

// Declaration is a closed tagged union over the recognized declaration forms.
// Kind selects which of the variant fields are meaningful:
//
//   - Define: Name, Signature (the replacement text, possibly empty).
//   - Function: Name, Type (return type), Signature, Description, Params.
//   - Method: as Function, plus Owner (the methodmap).
//   - Class: Name (the methodmap), Parent (optional inherited methodmap).
//   - Property: Owner, Name, Type.
//   - Variable: Name, Type.
type Declaration struct {
	Kind        Kind
	Name        string
	Owner       string
	Parent      string
	Type        string
	Signature   string
	Description string
	Returns     string
	Error       string
	Params      []Parameter
	Line        int // 0-based
}

// Key is the name a declaration is stored under in its FileCompletions.
// Methodmap members are qualified by their owner.
func (d Declaration) Key() string {
	if d.Owner != "" {
		return d.Owner + "." + d.Name
	}
	return d.Name
}

// IsMember reports whether d belongs to a methodmap.
func (d Declaration) IsMember() bool {
	return d.Kind == Method || d.Kind == Property
}

// Import is an #include edge. Name is the path as written; Path is Name
// resolved against the including file's directory for local includes and left
// relative for system includes.
type Import struct {
	Name  string
	Path  string
	Local bool
}

// DefaultExtensions are tried, in order, for includes written without one.
var DefaultExtensions = []string{".inc", ".sp"}

// Candidates lists the absolute paths the import may refer to, in lookup
// order. Local includes try the including file's directory first; every
// include then tries each search directory.
func (i Import) Candidates(searchDirs ...string) []string {
	var out []string
	if i.Local {
		out = append(out, withExtensions(i.Path)...)
	}
	rel := filepath.FromSlash(i.Name)
	for _, dir := range searchDirs {
		if dir == "" {
			continue
		}
		out = append(out, withExtensions(filepath.Join(dir, rel))...)
	}
	return out
}

func withExtensions(p string) []string {
	if filepath.Ext(p) != "" {
		return []string{p}
	}
	out := make([]string, 0, len(DefaultExtensions)+1)
	for _, ext := range DefaultExtensions {
		out = append(out, p+ext)
	}
	return append(out, p)
}

// FileCompletions is the symbol table of a single file. It is built once per
// parse and must not be modified after it has been handed to an Engine.
type FileCompletions struct {
	Path string
	Hash string

	decls   map[string]Declaration
	imports []Import
}

// NewFileCompletions returns an empty table for path.
func NewFileCompletions(path string) *FileCompletions {
	return &FileCompletions{
		Path:  path,
		decls: make(map[string]Declaration),
	}
}

// Add stores d under name, replacing any earlier declaration with that name.
func (fc *FileCompletions) Add(name string, d Declaration) {
	fc.decls[name] = d
}

// ResolveImport records an include edge. Duplicate includes are recorded once.
func (fc *FileCompletions) ResolveImport(name string, local bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, imp := range fc.imports {
		if imp.Name == name && imp.Local == local {
			return
		}
	}
	path := filepath.Clean(filepath.FromSlash(name))
	if local && !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(fc.Path), path)
	}
	fc.imports = append(fc.imports, Import{Name: name, Path: path, Local: local})
}

// Lookup returns the declaration stored under key.
func (fc *FileCompletions) Lookup(key string) (Declaration, bool) {
	if fc == nil {
		return Declaration{}, false
	}
	d, ok := fc.decls[key]
	return d, ok
}

// Methodmap returns the methodmap declaration called name, if this file has one.
func (fc *FileCompletions) Methodmap(name string) (Declaration, bool) {
	d, ok := fc.Lookup(name)
	if !ok || d.Kind != Class {
		return Declaration{}, false
	}
	return d, true
}

// Declarations returns every declaration sorted by key.
func (fc *FileCompletions) Declarations() []Declaration {
	if fc == nil {
		return nil
	}
	keys := make([]string, 0, len(fc.decls))
	for k := range fc.decls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Declaration, 0, len(keys))
	for _, k := range keys {
		out = append(out, fc.decls[k])
	}
	return out
}

// Members returns the methods and properties declared for methodmap owner.
func (fc *FileCompletions) Members(owner string) []Declaration {
	var out []Declaration
	for _, d := range fc.Declarations() {
		if d.IsMember() && d.Owner == owner {
			out = append(out, d)
		}
	}
	return out
}

// Imports returns the include edges in the order they were recorded.
func (fc *FileCompletions) Imports() []Import {
	if fc == nil {
		return nil
	}
	out := make([]Import, len(fc.imports))
	copy(out, fc.imports)
	return out
}

// Len is the number of declarations in the table.
func (fc *FileCompletions) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.decls)
}

// CountByKind tallies declarations per kind.
func (fc *FileCompletions) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	if fc == nil {
		return counts
	}
	for _, d := range fc.decls {
		counts[d.Kind]++
	}
	return counts
}
