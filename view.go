// FILE: lixenwraith/layer/view.go
package layer

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Accessor is the single step that derives a child view from its parent:
// either a mapping key or a sequence index.
type Accessor struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a mapping-key accessor.
func Key(k string) Accessor { return Accessor{key: k} }

// Index returns a sequence-index accessor.
func Index(i int) Accessor { return Accessor{index: i, isIndex: true} }

// IsIndex reports whether a is a sequence index.
func (a Accessor) IsIndex() bool { return a.isIndex }

// Key returns the mapping key; empty for index accessors.
func (a Accessor) Key() string { return a.key }

// Index returns the sequence index; zero for key accessors.
func (a Accessor) Index() int { return a.index }

// String renders the accessor as a path segment: [3] or ['name']. Keys
// containing a single quote are double-quoted instead: ["it's"].
func (a Accessor) String() string {
	if a.isIndex {
		return "[" + strconv.Itoa(a.index) + "]"
	}
	if strings.ContainsRune(a.key, '\'') {
		return `["` + a.key + `"]`
	}
	return "['" + a.key + "']"
}

// Source is one loaded configuration tree with a diagnostic name.
type Source struct {
	Name string
	Tree Value
}

// RootOptions configures a root view.
type RootOptions struct {
	// Logger receives trace events for resolutions. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// candidate is the value one source holds at a view's path.
type candidate struct {
	source int
	value  Value
}

// shared is the per-tree state every view of one root points at.
type shared struct {
	names []string
	log   zerolog.Logger
}

// View is an immutable handle on one path through a layered configuration.
// Indexing a view never fails; resolution happens in the terminal
// operations (Get, GetAs, ToString, ToBool, Keys, Len, All).
type View struct {
	parent *View
	acc    Accessor
	cands  []candidate
	shared *shared
}

// NewRoot builds a root view over trees in priority order, the first tree
// shadowing the rest. Trees are named source[0], source[1], ...
func NewRoot(trees ...Value) *View {
	sources := make([]Source, len(trees))
	for i, tree := range trees {
		sources[i] = Source{Name: "source[" + strconv.Itoa(i) + "]", Tree: tree}
	}
	return NewRootWithOptions(sources, RootOptions{})
}

// NewRootFromSources builds a root view over named sources in priority order.
func NewRootFromSources(sources ...Source) *View {
	return NewRootWithOptions(sources, RootOptions{})
}

// NewRootWithOptions builds a root view over named sources with custom options.
// The trees are referenced, not copied, and must not be mutated afterwards.
func NewRootWithOptions(sources []Source, opts RootOptions) *View {
	sh := &shared{
		names: make([]string, len(sources)),
		log:   zerolog.Nop(),
	}
	if opts.Logger != nil {
		sh.log = *opts.Logger
	}

	root := &View{
		cands:  make([]candidate, len(sources)),
		shared: sh,
	}
	for i, src := range sources {
		sh.names[i] = src.Name
		root.cands[i] = candidate{source: i, value: src.Tree}
	}
	return root
}

// Child derives the view at acc. Candidates lacking acc, or of the wrong
// container kind, are dropped; priority order is preserved.
func (v *View) Child(acc Accessor) *View {
	child := &View{parent: v, acc: acc, shared: v.shared}
	for _, c := range v.cands {
		var val Value
		var ok bool
		if acc.isIndex {
			val, ok = c.value.At(acc.index)
		} else {
			val, ok = c.value.Lookup(acc.key)
		}
		if ok {
			child.cands = append(child.cands, candidate{source: c.source, value: val})
		}
	}
	return child
}

// Key derives the child view for a mapping key.
func (v *View) Key(k string) *View { return v.Child(Key(k)) }

// Index derives the child view for a sequence index.
func (v *View) Index(i int) *View { return v.Child(Index(i)) }

// Walk applies accessors in order.
func (v *View) Walk(accs ...Accessor) *View {
	cur := v
	for _, acc := range accs {
		cur = cur.Child(acc)
	}
	return cur
}

// Parent returns the view this one was derived from, nil for the root.
func (v *View) Parent() *View { return v.parent }

// Accessor returns the step that derived v; the zero Accessor for the root.
func (v *View) Accessor() Accessor { return v.acc }

// IsRoot reports whether v is a root view.
func (v *View) IsRoot() bool { return v.parent == nil }

// Name returns the diagnostic path of the view, e.g. root['servers'][0].
// It depends only on the access path, never on data.
func (v *View) Name() string {
	var b strings.Builder
	v.writeName(&b)
	return b.String()
}

func (v *View) writeName(b *strings.Builder) {
	if v.parent == nil {
		b.WriteString("root")
		return
	}
	v.parent.writeName(b)
	b.WriteString(v.acc.String())
}

// String returns the view's name, so views print usefully in diagnostics.
func (v *View) String() string { return v.Name() }
