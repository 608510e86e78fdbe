package pawndex

import (
	"github.com/jward/pawndex/internal/symbols"
)

// Signature is the signature help for one callee.
type Signature struct {
	Label       string              `json:"label"`
	Description string              `json:"description,omitempty"`
	Returns     string              `json:"returns,omitempty"`
	Error       string              `json:"error,omitempty"`
	Parameters  []symbols.Parameter `json:"parameters"`
	Kind        symbols.Kind        `json:"kind"`
	Owner       string              `json:"owner,omitempty"`
	Location    Location            `json:"location"`

	// ActiveParameter is the index of the argument the cursor is in. It may
	// exceed the parameter list for variadic calls.
	ActiveParameter int `json:"activeParameter"`
}

// SignatureHelp returns the signature of the callee at the cursor, or nil.
//
// The callee is q.Name, or else the call enclosing the cursor. For
// "receiver.Name(" the method of the receiver's methodmap is preferred, and
// for "new Name(" or a call of a methodmap name its constructor. Otherwise
// the closest free function named Name is used.
func (qb *QueryBuilder) SignatureHelp(q QueryContext) *Signature {
	path := q.path()
	before, _ := q.before()
	tables := qb.visible(path)

	site, ok := enclosingCall(before)
	if q.Name != "" && (!ok || site.name != q.Name) {
		site = callSite{name: q.Name, active: site.active}
	}
	if site.name == "" {
		return nil
	}

	if site.receiver != "" {
		if owner := qb.receiverType(tables, path, site.receiver, q.line(), before); owner != "" {
			if f, ok := qb.member(tables, owner, site.name); ok && f.decl.Kind == symbols.Method {
				return newSignature(f, site.active)
			}
		}
	}
	if site.isNew || isMethodmap(tables, site.name) {
		if f, ok := lookup(tables, site.name+"."+site.name, symbols.Method); ok {
			return newSignature(f, site.active)
		}
	}
	if f, ok := lookup(tables, site.name, symbols.Function); ok {
		return newSignature(f, site.active)
	}
	return nil
}

func newSignature(f found, active int) *Signature {
	d := f.decl
	label := d.Signature
	if label == "" {
		label = d.Name + "()"
	}
	return &Signature{
		Label:           label,
		Description:     d.Description,
		Returns:         d.Returns,
		Error:           d.Error,
		Parameters:      d.Params,
		Kind:            d.Kind,
		Owner:           d.Owner,
		Location:        Location{File: f.fc.Path, Line: d.Line},
		ActiveParameter: active,
	}
}
