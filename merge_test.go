// FILE: lixenwraith/layer/merge_test.go
package layer_test

import (
	"testing"

	"github.com/lixenwraith/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, v *layer.View) ([]string, []any) {
	t.Helper()
	children, err := v.All()
	require.NoError(t, err)

	var accs []string
	var vals []any
	for acc, child := range children {
		accs = append(accs, acc.String())
		val, err := child.Get()
		require.NoError(t, err)
		vals = append(vals, val.Interface())
	}
	return accs, vals
}

func TestIteration(t *testing.T) {
	t.Run("MappingKeysFirstSeenOrder", func(t *testing.T) {
		root := layer.NewRoot(
			obj("b", 1, "a", 2),
			obj("c", 3, "a", 4),
			obj("d", 5, "b", 6),
		)
		keys, err := root.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c", "d"}, keys)

		accs, vals := collect(t, root)
		assert.Equal(t, []string{"['b']", "['a']", "['c']", "['d']"}, accs)
		assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(5)}, vals)
	})

	t.Run("SequenceLengthIsLongest", func(t *testing.T) {
		root := layer.NewRoot(list("a", "b"), list("c", "d", "e"))
		n, err := root.Len()
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		accs, vals := collect(t, root)
		assert.Equal(t, []string{"[0]", "[1]", "[2]"}, accs)
		assert.Equal(t, []any{"a", "b", "e"}, vals)
	})

	t.Run("ChildViewsAreNamed", func(t *testing.T) {
		root := layer.NewRoot(obj("servers", list(obj("port", 1), obj("port", 2))))
		elems, err := root.Key("servers").Elements()
		require.NoError(t, err)
		require.Len(t, elems, 2)
		assert.Equal(t, "root['servers'][1]", elems[1].Name())

		port, err := elems[1].Key("port").GetInt()
		require.NoError(t, err)
		assert.Equal(t, int64(2), port)
	})

	t.Run("OtherKindsIgnored", func(t *testing.T) {
		root := layer.NewRoot(obj("x", obj("a", 1)), obj("x", list(9, 9, 9)), obj("x", obj("b", 2)))
		keys, err := root.Key("x").Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("KeysOnSequence", func(t *testing.T) {
		root := layer.NewRoot(list(1, 2))
		_, err := root.Keys()
		te := requireTypeError(t, err)
		assert.Equal(t, layer.KindMap, te.Expected)
		assert.Equal(t, layer.KindSeq, te.Actual)
	})

	t.Run("ScalarIsTypeError", func(t *testing.T) {
		root := layer.NewRoot(obj("foo", "bar"), obj("foo", obj("a", 1)))

		_, err := root.Key("foo").Len()
		te := requireTypeError(t, err)
		assert.Equal(t, "root['foo']", te.Name)
		assert.Equal(t, layer.KindString, te.Actual)

		_, err = root.Key("foo").All()
		requireTypeError(t, err)

		_, err = root.Key("foo").Keys()
		requireTypeError(t, err)
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		root := layer.NewRoot(obj("foo", 1))
		_, err := root.Key("bar").Len()
		requireNotFound(t, err, "root['bar']")

		_, err = root.Key("bar").All()
		requireNotFound(t, err, "root['bar']")
	})

	t.Run("EmptyContainers", func(t *testing.T) {
		root := layer.NewRoot(obj("m", obj(), "l", list()))
		n, err := root.Key("m").Len()
		require.NoError(t, err)
		assert.Zero(t, n)

		elems, err := root.Key("l").Elements()
		require.NoError(t, err)
		assert.Empty(t, elems)
	})

	t.Run("Restartable", func(t *testing.T) {
		root := layer.NewRoot(obj("a", 1, "b", 2))
		children, err := root.All()
		require.NoError(t, err)

		var first, second []string
		for acc := range children {
			first = append(first, acc.Key())
		}
		for acc := range children {
			second = append(second, acc.Key())
		}
		assert.Equal(t, first, second)
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		root := layer.NewRoot(list(1, 2, 3, 4))
		children, err := root.All()
		require.NoError(t, err)

		count := 0
		for range children {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("LenMatchesIteration", func(t *testing.T) {
		roots := []*layer.View{
			layer.NewRoot(obj("a", 1), obj("b", 2, "a", 3)),
			layer.NewRoot(list(1), list(1, 2, 3), list(1, 2)),
		}
		for _, root := range roots {
			n, err := root.Len()
			require.NoError(t, err)
			elems, err := root.Elements()
			require.NoError(t, err)
			assert.Len(t, elems, n)
		}
	})
}

func TestMerged(t *testing.T) {
	root := layer.NewRoot(
		obj("server", obj("port", 9090), "upstreams", list("a")),
		obj("server", obj("host", "localhost", "port", 80), "upstreams", list("x", "y"), "debug", false),
	)

	merged, err := root.Merged()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"server":    map[string]any{"port": int64(9090), "host": "localhost"},
		"upstreams": []any{"a", "y"},
		"debug":     false,
	}, merged.Interface())
	assert.Equal(t, []string{"server", "upstreams", "debug"}, merged.Map().Keys())

	server, err := root.Key("server").Get()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": int64(9090)}, server.Interface())

	_, err = root.Key("missing").Merged()
	requireNotFound(t, err, "root['missing']")

	scalar, err := root.Key("server").Key("port").Merged()
	require.NoError(t, err)
	assert.Equal(t, layer.Int(9090), scalar)
}
