// File: lixenwraith/layer/helper.go
package layer

import "strings"

// LeafPaths lists the dot-notation paths of the leaves of a tree, in tree
// order. Environment lookups use these paths as candidates.
func LeafPaths(tree Value) []string {
	return leafPaths(tree, "")
}

// leafPaths collects the dot-notation paths of every non-mapping value
// reachable through nested mappings, in tree order.
func leafPaths(v Value, prefix string) []string {
	m := v.Map()
	if m == nil {
		if prefix == "" {
			return nil
		}
		return []string{prefix}
	}

	var paths []string
	for _, key := range m.keys {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}
		paths = append(paths, leafPaths(m.vals[key], newPath)...)
	}
	return paths
}

// setNestedValue sets a value in a nested mapping using a dot-notation path.
// It creates intermediate mappings if they don't exist.
// If a segment exists but is not a mapping, it will be overwritten by a new one.
func setNestedValue(nested *Map, path string, value Value) {
	segments := strings.Split(path, ".")
	current := nested

	// Iterate through segments up to the second-to-last one
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current.Get(segment)
		if nextMap := next.Map(); exists && nextMap != nil {
			current = nextMap
			continue
		}
		newMap := NewMap()
		current.Set(segment, Mapping(newMap))
		current = newMap
	}

	current.Set(segments[len(segments)-1], value)
}

// lookupNested returns the value at a dot-notation path in a nested mapping.
func lookupNested(nested *Map, path string) (Value, bool) {
	current := Mapping(nested)
	for _, segment := range strings.Split(path, ".") {
		next, ok := current.Lookup(segment)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	// TOML bare keys are sequences of ASCII letters, ASCII digits, underscores, and dashes (A-Za-z0-9_-).
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
