// FILE: lixenwraith/layer/merge.go
package layer

import "iter"

// container resolves v for a container operation: the first candidate must
// be a mapping or a sequence.
func (v *View) container(op string) (Kind, error) {
	val, err := v.Get()
	if err != nil {
		return KindAbsent, err
	}
	if !val.Kind().IsContainer() {
		return KindAbsent, &ConfigTypeError{Name: v.Name(), Op: op, Actual: val.Kind()}
	}
	return val.Kind(), nil
}

// mergedKeys walks mapping candidates in priority order and collects keys
// in first-seen order.
func (v *View) mergedKeys() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, c := range v.cands {
		m := c.value.Map()
		if m == nil {
			continue
		}
		for _, k := range m.keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// mergedLen is the longest sequence among the candidates.
func (v *View) mergedLen() int {
	n := 0
	for _, c := range v.cands {
		if c.value.Kind() == KindSeq && len(c.value.seq) > n {
			n = len(c.value.seq)
		}
	}
	return n
}

// Keys returns the union of keys across every mapping candidate, in
// first-seen order. The highest-priority value must be a mapping.
func (v *View) Keys() ([]string, error) {
	kind, err := v.container("list keys of")
	if err != nil {
		return nil, err
	}
	if kind != KindMap {
		return nil, &ConfigTypeError{Name: v.Name(), Expected: KindMap, Actual: kind}
	}
	return v.mergedKeys(), nil
}

// Len returns the merged length: the size of the key union for mappings,
// the longest candidate for sequences.
func (v *View) Len() (int, error) {
	kind, err := v.container("take length of")
	if err != nil {
		return 0, err
	}
	if kind == KindMap {
		return len(v.mergedKeys()), nil
	}
	return v.mergedLen(), nil
}

// All returns an iterator over the merged children of v: keys in
// first-seen order for mappings, indices 0..Len-1 for sequences. The
// iterator holds no state between runs and can be ranged over repeatedly.
func (v *View) All() (iter.Seq2[Accessor, *View], error) {
	kind, err := v.container("iterate")
	if err != nil {
		return nil, err
	}

	if kind == KindMap {
		keys := v.mergedKeys()
		return func(yield func(Accessor, *View) bool) {
			for _, k := range keys {
				if !yield(Key(k), v.Key(k)) {
					return
				}
			}
		}, nil
	}

	n := v.mergedLen()
	return func(yield func(Accessor, *View) bool) {
		for i := 0; i < n; i++ {
			if !yield(Index(i), v.Index(i)) {
				return
			}
		}
	}, nil
}

// Elements returns the merged child views of v in iteration order.
func (v *View) Elements() ([]*View, error) {
	seq, err := v.All()
	if err != nil {
		return nil, err
	}
	var out []*View
	for _, child := range seq {
		out = append(out, child)
	}
	return out, nil
}

// Merged returns the deep merge of every candidate at v's path: mappings
// combine keys recursively, sequences resolve per index, scalars take the
// highest-priority value.
func (v *View) Merged() (Value, error) {
	val, err := v.Get()
	if err != nil {
		return Value{}, err
	}

	switch val.Kind() {
	case KindMap:
		out := NewMap()
		for _, k := range v.mergedKeys() {
			child, err := v.Key(k).Merged()
			if err != nil {
				return Value{}, err
			}
			out.Set(k, child)
		}
		return Mapping(out), nil
	case KindSeq:
		n := v.mergedLen()
		elems := make([]Value, n)
		for i := range elems {
			elem, err := v.Index(i).Merged()
			if err != nil {
				return Value{}, err
			}
			elems[i] = elem
		}
		return Seq(elems...), nil
	}
	return val, nil
}
