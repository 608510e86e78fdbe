package store

import (
	"time"

	"github.com/jward/pawndex/internal/symbols"
)

// SchemaVersion is written into every snapshot. Bump it whenever the
// Snapshot layout changes.
const SchemaVersion uint16 = 1

// Snapshot is a self-contained copy of an index: every table with its
// declarations and resolved include edges.
type Snapshot struct {
	Schema    uint16    `msgpack:"schema"`
	BaseAPI   string    `msgpack:"base_api"`
	CreatedAt time.Time `msgpack:"created_at"`
	Files     []File    `msgpack:"files"`
}

type File struct {
	Path         string        `msgpack:"path"`
	Hash         string        `msgpack:"hash"`
	Base         bool          `msgpack:"base"`
	Declarations []Declaration `msgpack:"declarations"`
	Imports      []Import      `msgpack:"imports"`
}

type Declaration struct {
	Key         string  `msgpack:"key"`
	Kind        string  `msgpack:"kind"`
	Name        string  `msgpack:"name"`
	Owner       string  `msgpack:"owner,omitempty"`
	Parent      string  `msgpack:"parent,omitempty"`
	Type        string  `msgpack:"type,omitempty"`
	Signature   string  `msgpack:"signature,omitempty"`
	Description string  `msgpack:"description,omitempty"`
	Returns     string  `msgpack:"returns,omitempty"`
	Error       string  `msgpack:"error,omitempty"`
	Line        int     `msgpack:"line"`
	Params      []Param `msgpack:"params,omitempty"`
}

type Param struct {
	Label         string `msgpack:"label"`
	Documentation string `msgpack:"documentation,omitempty"`
}

// Import is an include edge. Resolved is the indexed file it points to, or
// "" when none was found.
type Import struct {
	Name     string `msgpack:"name"`
	Path     string `msgpack:"path"`
	Local    bool   `msgpack:"local"`
	Resolved string `msgpack:"resolved,omitempty"`
}

// FromTable copies fc into a File. resolve maps each include edge to the
// indexed path it refers to; it may be nil.
func FromTable(fc *symbols.FileCompletions, base bool, resolve func(symbols.Import) string) File {
	f := File{Path: fc.Path, Hash: fc.Hash, Base: base}
	for _, d := range fc.Declarations() {
		decl := Declaration{
			Key:         d.Key(),
			Kind:        string(d.Kind),
			Name:        d.Name,
			Owner:       d.Owner,
			Parent:      d.Parent,
			Type:        d.Type,
			Signature:   d.Signature,
			Description: d.Description,
			Returns:     d.Returns,
			Error:       d.Error,
			Line:        d.Line,
		}
		for _, p := range d.Params {
			decl.Params = append(decl.Params, Param{Label: p.Label, Documentation: p.Documentation})
		}
		f.Declarations = append(f.Declarations, decl)
	}
	for _, imp := range fc.Imports() {
		i := Import{Name: imp.Name, Path: imp.Path, Local: imp.Local}
		if resolve != nil {
			i.Resolved = resolve(imp)
		}
		f.Imports = append(f.Imports, i)
	}
	return f
}
