// File: lixenwraith/layer/convenience.go
package layer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Quick builds a root view with a single call
// This is the recommended way to initialize configuration for most applications
func Quick(structDefaults any, envPrefix, configFile string) (*View, error) {
	opts := DefaultLoadOptions()
	opts.EnvPrefix = envPrefix
	return QuickCustom(structDefaults, opts, configFile)
}

// QuickCustom builds a root view with custom load options
func QuickCustom(structDefaults any, opts LoadOptions, configFile string) (*View, error) {
	b := NewBuilder().
		WithDefaults(structDefaults).
		WithFile(configFile)
	b.opts = opts
	if b.opts.TagName == "" {
		b.opts.TagName = "toml"
	}
	return b.Build()
}

// MustQuick is like Quick but panics on any error other than a missing file
func MustQuick(structDefaults any, envPrefix, configFile string) *View {
	root, err := Quick(structDefaults, envPrefix, configFile)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return root
}

// Required returns a validator failing when any of the path expressions
// resolves to nothing
func Required(paths ...string) ValidatorFunc {
	return func(root *View) error {
		var missing []string
		for _, path := range paths {
			view, err := root.Path(path)
			if err != nil {
				return err
			}
			if !view.Exists() {
				missing = append(missing, path)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
		return nil
	}
}

// Debug returns a formatted listing of every leaf under v with its resolved
// value, the source it came from, and the sources it shadows.
func (v *View) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString("Sources (highest priority first):\n")
	for i, name := range v.shared.names {
		fmt.Fprintf(&b, "  %d: %s\n", i, name)
	}
	b.WriteString("Current values:\n")
	v.debugLeaves(&b)
	return b.String()
}

func (v *View) debugLeaves(b *strings.Builder) {
	seq, err := v.All()
	if err != nil {
		val, origin, rerr := v.Resolve()
		if rerr != nil {
			return
		}
		fmt.Fprintf(b, "  %s = %s (%s)\n", v.Name(), val, origin.Name)
		for _, shadowed := range v.Origins()[1:] {
			fmt.Fprintf(b, "    shadows %s\n", shadowed.Name)
		}
		return
	}
	for _, child := range seq {
		child.debugLeaves(b)
	}
}

// Dump writes the deep-merged tree under v to w as toml, yaml, or json.
func (v *View) Dump(w io.Writer, format string) error {
	merged, err := v.Merged()
	if err != nil {
		return err
	}

	switch format {
	case "", FormatTOML:
		if merged.Kind() != KindMap {
			return &ConfigTypeError{Name: v.Name(), Op: "dump as TOML", Actual: merged.Kind()}
		}
		return toml.NewEncoder(w).Encode(merged.Interface())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlNode(merged)); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		data, err := json.MarshalIndent(merged.Interface(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// DumpStdout writes the merged tree under v to stdout in TOML format
func (v *View) DumpStdout() error {
	return v.Dump(os.Stdout, FormatTOML)
}

// yamlNode builds a node tree so the encoder keeps mapping order.
func yamlNode(v Value) *yaml.Node {
	switch v.Kind() {
	case KindMap:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.m.keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				yamlNode(v.m.vals[k]))
		}
		return node
	case KindSeq:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.seq {
			node.Content = append(node.Content, yamlNode(e))
		}
		return node
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.num, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v.flt)}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.num != 0)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
