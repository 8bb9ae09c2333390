package layer

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePath parses a path expression into accessors. Segments are separated
// by dots, indices are bracketed, and keys that contain dots or brackets can
// be quoted in brackets:
//
//	servers[0].host
//	labels['app.kubernetes.io/name']
//	[2][0]
func ParsePath(expr string) ([]Accessor, error) {
	var accs []Accessor
	i := 0
	expectKey := true // a bare key may start here

	for i < len(expr) {
		switch ch := expr[i]; {
		case ch == '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidPath, expr)
			}
			inner := expr[i+1 : i+end]
			if q := len(inner); q >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[q-1] == inner[0] {
				// Quoted key may contain ']' only if the closing quote precedes it
				accs = append(accs, Key(inner[1:q-1]))
			} else if q >= 1 && (inner[0] == '\'' || inner[0] == '"') {
				closing := strings.Index(expr[i+2:], string(inner[0])+"]")
				if closing < 0 {
					return nil, fmt.Errorf("%w: unterminated quoted key in %q", ErrInvalidPath, expr)
				}
				accs = append(accs, Key(expr[i+2:i+2+closing]))
				end = closing + 2 + 1
			} else {
				n, err := strconv.Atoi(strings.TrimSpace(inner))
				if err != nil {
					return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, inner, expr)
				}
				accs = append(accs, Index(n))
			}
			i += end + 1
			expectKey = false
		case ch == '.':
			if expectKey {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, expr)
			}
			i++
			expectKey = true
			if i == len(expr) {
				return nil, fmt.Errorf("%w: trailing dot in %q", ErrInvalidPath, expr)
			}
		default:
			if !expectKey {
				return nil, fmt.Errorf("%w: missing dot before %q in %q", ErrInvalidPath, expr[i:], expr)
			}
			j := i
			for j < len(expr) && expr[j] != '.' && expr[j] != '[' {
				j++
			}
			accs = append(accs, Key(expr[i:j]))
			i = j
			expectKey = false
		}
	}

	return accs, nil
}

// Path derives the view addressed by a path expression relative to v.
func (v *View) Path(expr string) (*View, error) {
	accs, err := ParsePath(expr)
	if err != nil {
		return nil, err
	}
	return v.Walk(accs...), nil
}

// FormatPath renders accessors as a path expression accepted by ParsePath.
func FormatPath(accs []Accessor) string {
	var b strings.Builder
	for i, acc := range accs {
		switch {
		case acc.isIndex:
			b.WriteString(acc.String())
		case isValidKeySegment(acc.key):
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(acc.key)
		default:
			b.WriteString(acc.String())
		}
	}
	return b.String()
}
