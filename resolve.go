// FILE: lixenwraith/layer/resolve.go
package layer

// Origin identifies the source that supplied a resolved value.
type Origin struct {
	Index int    // position in the root's source list
	Name  string // source name given at construction
}

// Resolve returns the highest-priority candidate at v's path together with
// its origin. Values are returned as stored; mappings are not merged.
func (v *View) Resolve() (Value, Origin, error) {
	if len(v.cands) == 0 {
		if e := v.shared.log.Debug(); e.Enabled() {
			e.Str("path", v.Name()).Msg("configuration value not found")
		}
		return Value{}, Origin{}, &NotFoundError{Name: v.Name()}
	}

	first := v.cands[0]
	origin := v.origin(first)
	if e := v.shared.log.Trace(); e.Enabled() {
		e.Str("path", v.Name()).
			Str("source", origin.Name).
			Stringer("kind", first.value.Kind()).
			Int("candidates", len(v.cands)).
			Msg("resolved")
	}
	return first.value, origin, nil
}

// Get returns the resolved value at v's path, or a *NotFoundError.
func (v *View) Get() (Value, error) {
	val, _, err := v.Resolve()
	return val, err
}

// Exists reports whether any source holds a value at v's path.
func (v *View) Exists() bool {
	return len(v.cands) > 0
}

// Origins lists every source holding a value at v's path, highest priority
// first. The first entry is the one Resolve picks.
func (v *View) Origins() []Origin {
	origins := make([]Origin, len(v.cands))
	for i, c := range v.cands {
		origins[i] = v.origin(c)
	}
	return origins
}

func (v *View) origin(c candidate) Origin {
	return Origin{Index: c.source, Name: v.shared.names[c.source]}
}
