// FILE: lixenwraith/layer/value_test.go
package layer

import (
	"math"
	"net"
	"net/url"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOrder(t *testing.T) {
	m := NewMap()
	m.Set("zeta", Int(1)).Set("alpha", Int(2)).Set("mid", Int(3))
	m.Set("zeta", Int(4))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	assert.Equal(t, 3, m.Len())

	val, ok := m.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, Int(4), val)

	keys := m.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "zeta", m.Keys()[0], "Keys must return a copy")

	var nilMap *Map
	assert.Nil(t, nilMap.Keys())
	assert.Zero(t, nilMap.Len())
	_, ok = nilMap.Get("x")
	assert.False(t, ok)
}

func TestValueAccess(t *testing.T) {
	t.Run("ZeroValueIsAbsent", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsAbsent())
		assert.Equal(t, KindAbsent, v.Kind())
		assert.Nil(t, v.Interface())
		assert.Equal(t, "<absent>", v.String())
	})

	t.Run("LookupAndAt", func(t *testing.T) {
		m := Mapping(NewMap().Set("k", String("v")))
		s := Seq(Int(1), Int(2))

		val, ok := m.Lookup("k")
		assert.True(t, ok)
		assert.Equal(t, String("v"), val)

		_, ok = m.At(0)
		assert.False(t, ok, "mappings have no indices")

		_, ok = s.Lookup("k")
		assert.False(t, ok, "sequences have no keys")

		val, ok = s.At(1)
		assert.True(t, ok)
		assert.Equal(t, Int(2), val)

		_, ok = s.At(2)
		assert.False(t, ok)
		_, ok = s.At(-1)
		assert.False(t, ok)

		_, ok = String("x").Lookup("x")
		assert.False(t, ok)
	})

	t.Run("ScalarPayloads", func(t *testing.T) {
		s, ok := String("x").Text()
		assert.True(t, ok)
		assert.Equal(t, "x", s)

		_, ok = Int(1).Text()
		assert.False(t, ok)

		b, ok := Bool(true).Boolean()
		assert.True(t, ok)
		assert.True(t, b)

		_, ok = Int(1).Boolean()
		assert.False(t, ok, "integers are not booleans")

		_, ok = Bool(true).Int64()
		assert.False(t, ok, "booleans are not integers")
	})

	t.Run("EmptyContainers", func(t *testing.T) {
		assert.Equal(t, KindSeq, Seq().Kind())
		assert.Equal(t, []any{}, Seq().Interface())
		assert.Equal(t, KindMap, Mapping(nil).Kind())
		assert.Equal(t, map[string]any{}, Mapping(nil).Interface())
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "42", Int(42).String())
		assert.Equal(t, "0.1", Float(0.1).String())
		assert.Equal(t, "false", Bool(false).String())
		assert.Equal(t, "[1 2]", Seq(Int(1), Int(2)).String())
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "mapping", KindMap.String())
	assert.Equal(t, "sequence", KindSeq.String())
	assert.Equal(t, "integer", KindInt.String())
	assert.Equal(t, "boolean", KindBool.String())
	assert.True(t, KindMap.IsContainer())
	assert.True(t, KindSeq.IsContainer())
	assert.False(t, KindString.IsContainer())
	assert.False(t, KindAbsent.IsContainer())
}

type port uint16

type level int

func (l level) String() string { return [...]string{"low", "mid", "high"}[l] }

func TestFromAny(t *testing.T) {
	u, _ := url.Parse("https://example.com/x")
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	host := "db"

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"Nil", nil, Absent()},
		{"String", "x", String("x")},
		{"Int", 3, Int(3)},
		{"Int32", int32(-4), Int(-4)},
		{"Uint8", uint8(200), Int(200)},
		{"NamedUint", port(8080), Int(8080)},
		{"HugeUint", uint64(math.MaxUint64), Float(float64(uint64(math.MaxUint64)))},
		{"Float32", float32(0.5), Float(0.5)},
		{"Bool", false, Bool(false)},
		{"Duration", 90 * time.Second, String("1m30s")},
		{"Time", ts, String("2024-03-01T12:00:00Z")},
		{"Stringer", u, String("https://example.com/x")},
		{"Pointer", &host, String("db")},
		{"NilPointer", (*string)(nil), Absent()},
		{"Value", Int(7), Int(7)},
		{"NamedIntStringer", level(2), Int(2)},
		{"SliceStringer", net.ParseIP("10.0.0.1"), String("10.0.0.1")},
		{"NilStringerPointer", (*url.URL)(nil), Absent()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromAny(tt.in))
		})
	}

	t.Run("SortedMapKeys", func(t *testing.T) {
		v := FromAny(map[string]any{"c": 1, "a": 2, "b": map[string]any{"y": 1, "x": 2}})
		assert.Equal(t, []string{"a", "b", "c"}, v.Map().Keys())

		inner, _ := v.Lookup("b")
		assert.Equal(t, []string{"x", "y"}, inner.Map().Keys())
	})

	t.Run("TypedCollections", func(t *testing.T) {
		v := FromAny(map[string][]int{"ports": {80, 443}})
		assert.Equal(t, map[string]any{"ports": []any{int64(80), int64(443)}}, v.Interface())

		v = FromAny([]string{"a", "b"})
		assert.Equal(t, []any{"a", "b"}, v.Interface())

		v = FromAny(map[int]string{2: "two", 1: "one"})
		assert.Equal(t, []string{"1", "2"}, v.Map().Keys())
	})

	t.Run("JSONNumber", func(t *testing.T) {
		assert.Equal(t, Int(12), FromAny(json.Number("12")))
		assert.Equal(t, Float(1.5), FromAny(json.Number("1.5")))
	})
}
