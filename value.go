// FILE: lixenwraith/layer/value.go
package layer

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Kind tags the payload carried by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindMap
	KindSeq
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindMap:
		return "mapping"
	case KindSeq:
		return "sequence"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsContainer reports whether values of this kind have element structure.
func (k Kind) IsContainer() bool {
	return k == KindMap || k == KindSeq
}

// Value is a node of a raw configuration tree: a mapping, a sequence,
// a scalar, or the absent marker. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	m    *Map
	seq  []Value
}

// Map is an insertion-ordered mapping from string keys to values.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty mapping.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set stores val under key. A new key is appended to the key order,
// an existing key keeps its position.
func (m *Map) Set(key string, val Value) *Map {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	val, ok := m.vals[key]
	return val, ok
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Absent returns the absent marker.
func Absent() Value { return Value{} }

// String returns a string scalar.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integer scalar.
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float returns a floating point scalar.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool returns a boolean scalar.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Seq returns a sequence of the given elements.
func Seq(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindSeq, seq: elems}
}

// Mapping wraps m as a Value. A nil m yields an empty mapping.
func Mapping(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent marker.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Lookup returns the entry under key when v is a mapping that contains it.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	return v.m.Get(key)
}

// At returns element i when v is a sequence and i is in bounds.
func (v Value) At(i int) (Value, bool) {
	if v.kind != KindSeq || i < 0 || i >= len(v.seq) {
		return Value{}, false
	}
	return v.seq[i], true
}

// Len returns the number of entries of a container and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return v.m.Len()
	case KindSeq:
		return len(v.seq)
	}
	return 0
}

// Map returns the mapping payload, or nil.
func (v Value) Map() *Map {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// Elems returns the sequence payload, or nil.
func (v Value) Elems() []Value {
	if v.kind != KindSeq {
		return nil
	}
	return v.seq
}

// Text returns the payload of a string scalar.
func (v Value) Text() (string, bool) { return v.str, v.kind == KindString }

// Int64 returns the payload of an integer scalar.
func (v Value) Int64() (int64, bool) { return v.num, v.kind == KindInt }

// Float64 returns the payload of a float scalar.
func (v Value) Float64() (float64, bool) { return v.flt, v.kind == KindFloat }

// Boolean returns the payload of a boolean scalar.
func (v Value) Boolean() (bool, bool) { return v.num != 0, v.kind == KindBool }

// Interface converts v to plain Go data: map[string]any, []any, string,
// int64, float64, bool, or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindMap:
		out := make(map[string]any, v.m.Len())
		for _, k := range v.m.keys {
			out[k] = v.m.vals[k].Interface()
		}
		return out
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.num != 0
	}
	return nil
}

// String renders scalars in their natural text form and containers as
// their Go representation.
func (v Value) String() string {
	if s, ok := scalarText(v); ok {
		return s
	}
	if v.kind == KindAbsent {
		return "<absent>"
	}
	return fmt.Sprintf("%v", v.Interface())
}

// scalarText renders a scalar; containers and absent report false.
func scalarText(v Value) (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindInt:
		return strconv.FormatInt(v.num, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.num != 0), true
	}
	return "", false
}

// numberLike covers json.Number from both encoding/json and go-json.
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// FromAny converts loader output into a Value. Go maps carry no order, so
// their keys are sorted.
func FromAny(data any) Value {
	switch d := data.(type) {
	case nil:
		return Value{}
	case Value:
		return d
	case *Map:
		return Mapping(d)
	case string:
		return String(d)
	case bool:
		return Bool(d)
	case int:
		return Int(int64(d))
	case int64:
		return Int(d)
	case float64:
		return Float(d)
	case time.Duration:
		return String(d.String())
	case time.Time:
		return String(d.Format(time.RFC3339))
	case numberLike:
		if i, err := d.Int64(); err == nil {
			return Int(i)
		}
		if f, err := d.Float64(); err == nil {
			return Float(f)
		}
		return String(d.String())
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(d) {
			m.Set(k, FromAny(d[k]))
		}
		return Mapping(m)
	case []any:
		elems := make([]Value, len(d))
		for i, e := range d {
			elems[i] = FromAny(e)
		}
		return Seq(elems...)
	}
	return fromReflect(reflect.ValueOf(data))
}

// fromReflect handles the remaining numeric widths, typed slices and maps.
// Named scalar types keep their kind even when they implement fmt.Stringer;
// other Stringers, such as *url.URL or net.IP, become strings.
func fromReflect(rv reflect.Value) Value {
	if !isScalarKind(rv.Kind()) && rv.IsValid() {
		if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return Value{}
		}
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return String(s.String())
		}
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u))
		}
		return Int(int64(u))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Value{}
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())
		for i := range elems {
			elems[i] = FromAny(rv.Index(i).Interface())
		}
		return Seq(elems...)
	case reflect.Map:
		keys := make(map[string]reflect.Value, rv.Len())
		names := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			name := fmt.Sprint(iter.Key().Interface())
			keys[name] = iter.Value()
			names = append(names, name)
		}
		sort.Strings(names)
		m := NewMap()
		for _, name := range names {
			m.Set(name, FromAny(keys[name].Interface()))
		}
		return Mapping(m)
	}
	if !rv.IsValid() {
		return Value{}
	}
	return String(fmt.Sprintf("%v", rv.Interface()))
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
