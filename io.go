// File: lixenwraith/layer/io.go
package layer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ParseBytes parses a configuration document into a tree. An empty or
// "auto" format is detected from the content.
func ParseBytes(data []byte, format string) (Value, error) {
	if format == "" || format == "auto" {
		format = detectFormatFromContent(data)
	}

	switch format {
	case FormatTOML:
		return parseTOML(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	}
	return Value{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// parseTOML decodes TOML and restores document key order from the metadata.
func parseTOML(data []byte) (Value, error) {
	raw := make(map[string]any)
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse TOML: %w", err)
	}

	order := make(map[string]int, len(md.Keys()))
	for i, key := range md.Keys() {
		// Array tables repeat their keys; the first occurrence ranks
		joined := strings.Join(key, "\x00")
		if _, seen := order[joined]; !seen {
			order[joined] = i
		}
	}
	return orderedValue(raw, "", order), nil
}

// orderedValue converts decoded TOML data, ranking mapping keys by their
// position in the document. Array elements share their array's prefix.
func orderedValue(data any, prefix string, order map[string]int) Value {
	switch d := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		rank := func(k string) int {
			if pos, ok := order[joinKey(prefix, k)]; ok {
				return pos
			}
			return len(order)
		}
		sort.SliceStable(keys, func(i, j int) bool {
			ri, rj := rank(keys[i]), rank(keys[j])
			if ri != rj {
				return ri < rj
			}
			return keys[i] < keys[j]
		})
		m := NewMap()
		for _, k := range keys {
			m.Set(k, orderedValue(d[k], joinKey(prefix, k), order))
		}
		return Mapping(m)
	case []map[string]any:
		elems := make([]Value, len(d))
		for i, e := range d {
			elems[i] = orderedValue(e, prefix, order)
		}
		return Seq(elems...)
	case []any:
		elems := make([]Value, len(d))
		for i, e := range d {
			elems[i] = orderedValue(e, prefix, order)
		}
		return Seq(elems...)
	}
	return FromAny(data)
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "\x00" + key
}

// parseYAML decodes through yaml.Node so mappings keep document order.
func parseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty document
		return Mapping(nil), nil
	}
	return yamlNodeValue(doc.Content[0])
}

func yamlNodeValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Value{}, nil
		}
		return yamlNodeValue(node.Content[0])
	case yaml.AliasNode:
		return yamlNodeValue(node.Alias)
	case yaml.MappingNode:
		// Explicit keys override merged ones wherever they appear
		explicit := make(map[string]bool, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !isYAMLMergeKey(node.Content[i]) {
				explicit[node.Content[i].Value] = true
			}
		}

		m := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := yamlNodeValue(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			if isYAMLMergeKey(node.Content[i]) {
				if err := mergeYAMLValue(m, val, explicit, node.Content[i].Line); err != nil {
					return Value{}, err
				}
				continue
			}
			m.Set(node.Content[i].Value, val)
		}
		return Mapping(m), nil
	case yaml.SequenceNode:
		elems := make([]Value, len(node.Content))
		for i, child := range node.Content {
			val, err := yamlNodeValue(child)
			if err != nil {
				return Value{}, err
			}
			elems[i] = val
		}
		return Seq(elems...), nil
	case yaml.ScalarNode:
		var scalar any
		if err := node.Decode(&scalar); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return FromAny(scalar), nil
	}
	return Value{}, fmt.Errorf("unsupported YAML node kind %d at line %d", node.Kind, node.Line)
}

// isYAMLMergeKey reports whether key is the << merge key. A quoted "<<"
// is an ordinary string key.
func isYAMLMergeKey(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.Value == "<<" &&
		(key.Tag == "!!merge" || key.Tag == "")
}

// mergeYAMLValue copies the entries of a merged mapping, or of each mapping
// in a merged sequence, into m. Explicit keys and keys set by an earlier
// merge take precedence.
func mergeYAMLValue(m *Map, val Value, explicit map[string]bool, line int) error {
	sources := []Value{val}
	if val.Kind() == KindSeq {
		sources = val.Elems()
	}
	for _, src := range sources {
		sm := src.Map()
		if sm == nil {
			return fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings, not %s", line, src.Kind())
		}
		for _, k := range sm.keys {
			if explicit[k] {
				continue
			}
			if _, set := m.Get(k); set {
				continue
			}
			m.Set(k, sm.vals[k])
		}
	}
	return nil
}

// parseJSON walks the token stream so objects keep document order and
// integers stay integers.
func parseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // Preserve number precision

	val, err := jsonValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("failed to parse JSON: trailing data after document")
	}
	return val, nil
}

func jsonValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := jsonValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return Value{}, err
			}
			return Mapping(m), nil
		case '[':
			elems := []Value{}
			for dec.More() {
				val, err := jsonValue(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, val)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return Value{}, err
			}
			return Seq(elems...), nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	case json.Number:
		return FromAny(t), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Value{}, nil
	}
	return Value{}, fmt.Errorf("unexpected JSON token %T", tok)
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		// .conf, .config and unknown extensions fall back to content detection
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: plain "key = value" lines are valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
