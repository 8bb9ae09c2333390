// FILE: lixenwraith/layer/loader.go
package layer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/mitchellh/mapstructure"
)

// Layer names a kind of configuration source, used to define load precedence
type Layer string

const (
	// LayerDefault represents values taken from a defaults struct
	LayerDefault Layer = "default"
	// LayerFile represents values loaded from a configuration file
	LayerFile Layer = "file"
	// LayerEnv represents values loaded from environment variables
	LayerEnv Layer = "env"
	// LayerCLI represents values loaded from command-line arguments
	LayerCLI Layer = "cli"
)

// MaxValueSize caps a single environment or command-line value.
const MaxValueSize = 1 << 20

// EnvTransformFunc converts a configuration path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how sources are loaded and layered
type LoadOptions struct {
	// Layers defines the precedence order (first = highest priority)
	// Default: [LayerCLI, LayerEnv, LayerFile, LayerDefault]
	Layers []Layer

	// EnvPrefix is prepended to environment variable names
	// Example: "MYAPP_" transforms "server.port" to "MYAPP_SERVER_PORT"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	// If nil, uses default transformation (dots to underscores, uppercase)
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all known paths)
	EnvWhitelist map[string]bool

	// Format forces the file format; empty or "auto" detects it
	Format string

	// TagName is the struct tag used for defaults and Scan (default "toml")
	TagName string

	// MaxFileSize rejects larger config files (0 = unlimited)
	MaxFileSize int64

	// PreventPathTraversal rejects relative file paths escaping the working directory
	PreventPathTraversal bool

	// EnforceFileOwnership requires the config file to be owned by the current user (Unix only)
	EnforceFileOwnership bool
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Layers:  []Layer{LayerCLI, LayerEnv, LayerFile, LayerDefault},
		TagName: "toml",
	}
}

// LoadFile reads and parses a configuration file. A missing file yields
// ErrConfigNotFound.
func LoadFile(path string, opts LoadOptions) (Value, error) {
	// Security: Path traversal check
	if opts.PreventPathTraversal && !filepath.IsAbs(path) {
		cleanPath := filepath.Clean(path)
		if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
			return Value{}, fmt.Errorf("potential path traversal detected in config path: %s", path)
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Value{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Value{}, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}

	// Security: File size check
	if opts.MaxFileSize > 0 && fileInfo.Size() > opts.MaxFileSize {
		return Value{}, fmt.Errorf("config file '%s' exceeds maximum size %d bytes", path, opts.MaxFileSize)
	}

	// Security: File ownership check (Unix only)
	if opts.EnforceFileOwnership && runtime.GOOS != "windows" {
		if stat, ok := fileInfo.Sys().(*syscall.Stat_t); ok {
			if stat.Uid != uint32(os.Geteuid()) {
				return Value{}, fmt.Errorf("config file '%s' is not owned by current user (file UID: %d, process UID: %d)",
					path, stat.Uid, os.Geteuid())
			}
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return Value{}, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	// Use LimitedReader for additional safety
	var reader io.Reader = file
	if opts.MaxFileSize > 0 {
		reader = io.LimitReader(file, opts.MaxFileSize)
	}

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := opts.Format
	if format == "" || format == "auto" {
		// Try extension first, then content
		format = detectFileFormat(path)
	}

	tree, err := ParseBytes(fileData, format)
	if err != nil {
		return Value{}, fmt.Errorf("config file '%s': %w", path, err)
	}
	return tree, nil
}

// LoadEnv builds a tree from environment variables. Each of paths is
// mapped to a variable name and looked up; opts.EnvWhitelist, when set,
// restricts and extends the paths checked.
func LoadEnv(paths []string, opts LoadOptions) (Value, error) {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	candidates := paths
	if opts.EnvWhitelist != nil {
		candidates = candidates[:0:0]
		for _, path := range paths {
			if opts.EnvWhitelist[path] {
				candidates = append(candidates, path)
			}
		}
		extra := make([]string, 0, len(opts.EnvWhitelist))
		for path := range opts.EnvWhitelist {
			extra = append(extra, path)
		}
		sort.Strings(extra)
		candidates = append(candidates, extra...)
	}

	tree := NewMap()
	seen := make(map[string]bool, len(candidates))
	for _, path := range candidates {
		if seen[path] {
			continue
		}
		seen[path] = true

		value, exists := os.LookupEnv(transform(path))
		if !exists {
			continue
		}
		if len(value) > MaxValueSize {
			return Value{}, fmt.Errorf("%w: environment variable %s", ErrValueSize, transform(path))
		}
		// A deeper path set earlier wins over its ancestor
		if existing, ok := lookupNested(tree, path); ok && existing.Kind() == KindMap {
			continue
		}
		setNestedValue(tree, path, parseValue(value))
	}

	return Mapping(tree), nil
}

// LoadCLI builds a tree from command-line arguments of the form
// --key.subkey value, --key.subkey=value, or --flag.
func LoadCLI(args []string) (Value, error) {
	tree, err := parseArgs(args)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrCLIParse, err)
	}
	return Mapping(tree), nil
}

// FromStruct converts a defaults struct into a tree, naming fields by tagName
// (default "toml"). Nested structs become nested mappings.
func FromStruct(defaults any, tagName string) (Value, error) {
	if tagName == "" {
		tagName = "toml"
	}

	rv := reflect.ValueOf(defaults)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Value{}, fmt.Errorf("defaults must be a non-nil struct pointer or value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Value{}, fmt.Errorf("defaults must be a struct or struct pointer, got %T", defaults)
	}

	out := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: tagName,
	})
	if err != nil {
		return Value{}, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(rv.Interface()); err != nil {
		return Value{}, fmt.Errorf("failed to convert defaults %T: %w", defaults, err)
	}

	return orderByFields(FromAny(out), rv.Type(), tagName), nil
}

// orderByFields reorders mapping keys to follow struct field order.
func orderByFields(v Value, t reflect.Type, tagName string) Value {
	m := v.Map()
	if m == nil {
		return v
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return v
	}

	ordered := NewMap()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key := field.Name
		if tag := field.Tag.Get(tagName); tag != "" {
			if tag == "-" {
				continue
			}
			if name := strings.Split(tag, ",")[0]; name != "" {
				key = name
			}
		}
		if child, ok := m.Get(key); ok {
			ordered.Set(key, orderByFields(child, field.Type, tagName))
		}
	}
	// Keys the field walk did not account for (squashed or remain fields)
	for _, key := range m.keys {
		if _, done := ordered.Get(key); !done {
			ordered.Set(key, m.vals[key])
		}
	}
	return Mapping(ordered)
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ReplaceAll(path, ".", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// parseValue attempts to parse a string into the matching scalar kind
func parseValue(s string) Value {
	// Try int64 first so "0" and "1" stay integers
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(v)
	}

	// Try boolean
	if v, err := strconv.ParseBool(s); err == nil {
		return Bool(v)
	}

	// Try float64
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(v)
	}

	// Remove quotes if present
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return String(s[1 : len(s)-1])
	}

	return String(s)
}

// parseArgs processes command-line arguments into a nested mapping.
func parseArgs(args []string) (*Map, error) {
	result := NewMap()
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath string
		var valueStr string

		// Check for "--key=value" format
		if strings.Contains(argContent, "=") {
			parts := strings.SplitN(argContent, "=", 2)
			keyPath = parts[0]
			valueStr = parts[1]
			i++ // Consume only this argument
		} else {
			// Handle "--key value" or "--booleanflag"
			keyPath = argContent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++ // Consume only the flag argument
			} else {
				valueStr = args[i+1]
				i += 2 // Consume flag and value arguments
			}
		}

		// Validate keyPath segments
		segments := strings.Split(keyPath, ".")
		for _, segment := range segments {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		if len(valueStr) > MaxValueSize {
			return nil, fmt.Errorf("%w: --%s", ErrValueSize, keyPath)
		}

		setNestedValue(result, keyPath, parseValue(valueStr))
	}

	return result, nil
}
