package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const localConfig = `
[server]
port = 9090
`

const baseConfig = `
server:
  host: localhost
  port: 8080
upstreams:
  - a
  - b
`

func setupFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	local := filepath.Join(dir, "local.toml")
	base := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(local, []byte(localConfig), 0644))
	require.NoError(t, os.WriteFile(base, []byte(baseConfig), 0644))
	return local, base
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	local, base := setupFiles(t)

	t.Run("Shadowed", func(t *testing.T) {
		out, err := run(t, "get", "-f", local, "-f", base, "server.port")
		require.NoError(t, err)
		assert.Equal(t, "9090\n", out)
	})

	t.Run("FallThroughWithOrigin", func(t *testing.T) {
		out, err := run(t, "get", "-f", local, "-f", base, "--origin", "server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost\n# from file:"+base+"\n", out)
	})

	t.Run("Container", func(t *testing.T) {
		out, err := run(t, "get", "-f", local, "-f", base, "server")
		require.NoError(t, err)
		assert.Equal(t, "port: 9090\nhost: localhost\n", out)
	})

	t.Run("Index", func(t *testing.T) {
		out, err := run(t, "get", "-f", base, "upstreams[1]")
		require.NoError(t, err)
		assert.Equal(t, "b\n", out)
	})

	t.Run("NullLeaf", func(t *testing.T) {
		nulls := filepath.Join(t.TempDir(), "nulls.yaml")
		require.NoError(t, os.WriteFile(nulls, []byte("empty: null\n"), 0644))
		out, err := run(t, "get", "-f", nulls, "empty")
		require.NoError(t, err)
		assert.Equal(t, "null\n", out)
	})

	t.Run("TypeCheck", func(t *testing.T) {
		_, err := run(t, "get", "-f", local, "--type", "string", "server.port")
		assert.ErrorIs(t, err, layer.ErrType)

		out, err := run(t, "get", "-f", local, "--type", "int", "server.port")
		require.NoError(t, err)
		assert.Equal(t, "9090\n", out)

		_, err = run(t, "get", "-f", local, "--type", "decimal", "server.port")
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := run(t, "get", "-f", local, "server.user")
		assert.ErrorIs(t, err, layer.ErrNotFound)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := run(t, "get", "-f", filepath.Join(t.TempDir(), "none.toml"), "server.port")
		assert.ErrorIs(t, err, layer.ErrConfigNotFound)
	})

	t.Run("BadPath", func(t *testing.T) {
		_, err := run(t, "get", "-f", local, "server..port")
		assert.ErrorIs(t, err, layer.ErrInvalidPath)
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("LAYERCLI_SERVER_PORT", "7000")
		out, err := run(t, "get", "-f", local, "-f", base, "--env-prefix", "LAYERCLI_", "--origin", "server.port")
		require.NoError(t, err)
		assert.Equal(t, "7000\n# from env\n", out)
	})
}

func TestKeysCommand(t *testing.T) {
	local, base := setupFiles(t)

	out, err := run(t, "keys", "-f", local, "-f", base)
	require.NoError(t, err)
	assert.Equal(t, "server\nupstreams\n", out)

	out, err = run(t, "keys", "-f", local, "-f", base, "server")
	require.NoError(t, err)
	assert.Equal(t, "port\nhost\n", out)

	out, err = run(t, "keys", "-f", base, "upstreams")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n", out)

	_, err = run(t, "keys", "-f", base, "server.port")
	assert.ErrorIs(t, err, layer.ErrType)
}

func TestDumpCommand(t *testing.T) {
	local, base := setupFiles(t)

	out, err := run(t, "dump", "-f", local, "-f", base, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"server": {"port": 9090, "host": "localhost"}, "upstreams": ["a", "b"]}`, out)

	out, err = run(t, "dump", "-f", local, "-f", base, "server", "-o", "toml")
	require.NoError(t, err)
	tree, err := layer.ParseBytes([]byte(out), layer.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": int64(9090), "host": "localhost"}, tree.Interface())

	_, err = run(t, "dump", "-f", local, "-o", "xml")
	assert.ErrorIs(t, err, layer.ErrUnknownFormat)
}

func TestExplainCommand(t *testing.T) {
	local, base := setupFiles(t)

	out, err := run(t, "explain", "-f", local, "-f", base)
	require.NoError(t, err)
	assert.Contains(t, out, "0: file:"+local)
	assert.Contains(t, out, "root['server']['port'] = 9090 (file:"+local+")\n    shadows file:"+base)
	assert.Contains(t, out, "root['upstreams'][0] = a (file:"+base+")")
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]layer.Kind{
		"string":  layer.KindString,
		"INT":     layer.KindInt,
		"float":   layer.KindFloat,
		"boolean": layer.KindBool,
		"map":     layer.KindMap,
		"list":    layer.KindSeq,
	} {
		got, err := parseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}
