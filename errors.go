// FILE: lixenwraith/layer/errors.go
package layer

import (
	"errors"
	"fmt"
)

// Sentinel errors. The view error types below match ErrNotFound and ErrType
// through errors.Is, loader failures wrap the remaining ones.
var (
	ErrNotFound       = errors.New("configuration value not found")
	ErrType           = errors.New("configuration type mismatch")
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrCLIParse       = errors.New("failed to parse command-line arguments")
	ErrValueSize      = errors.New("value size exceeds maximum")
	ErrUnknownFormat  = errors.New("unable to determine config format")
	ErrInvalidPath    = errors.New("invalid path expression")
)

// NotFoundError reports that no source holds a value at the view's path.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Name)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConfigTypeError reports a resolved value of the wrong kind, either for a
// typed get or for a container operation on a scalar.
type ConfigTypeError struct {
	Name     string
	Op       string // operation that failed, empty for typed gets
	Expected Kind   // KindAbsent when any container would do
	Actual   Kind
}

func (e *ConfigTypeError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: cannot %s %s value", e.Name, e.Op, withArticle(e.Actual))
	}
	return fmt.Sprintf("%s must be %s, not %s", e.Name, withArticle(e.Expected), withArticle(e.Actual))
}

// withArticle prefixes a kind name with "a" or "an".
func withArticle(k Kind) string {
	name := k.String()
	switch name[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + name
	}
	return "a " + name
}

// Is reports whether target is ErrType.
func (e *ConfigTypeError) Is(target error) bool {
	return target == ErrType
}
