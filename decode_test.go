// FILE: lixenwraith/layer/decode_test.go
package layer_test

import (
	"net"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/layer"
	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	t.Run("MergedAcrossSources", func(t *testing.T) {
		type server struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}
		type config struct {
			Server    server   `toml:"server"`
			Upstreams []string `toml:"upstreams"`
			Debug     bool     `toml:"debug"`
		}

		root := layer.NewRoot(
			obj("server", obj("port", 9090), "upstreams", list("a")),
			obj("server", obj("host", "localhost", "port", 80), "upstreams", list("x", "y"), "debug", true),
		)

		var cfg config
		require.NoError(t, root.Scan(&cfg))
		assert.Equal(t, config{
			Server:    server{Host: "localhost", Port: 9090},
			Upstreams: []string{"a", "y"},
			Debug:     true,
		}, cfg)
	})

	t.Run("Hooks", func(t *testing.T) {
		type network struct {
			Timeout  time.Duration `toml:"timeout"`
			Started  time.Time     `toml:"started"`
			IP       net.IP        `toml:"ip"`
			Subnet   *net.IPNet    `toml:"subnet"`
			Endpoint *url.URL      `toml:"endpoint"`
			Peers    []string      `toml:"peers"`
		}

		root := layer.NewRoot(obj(
			"timeout", "1m30s",
			"started", "2024-03-01T12:00:00Z",
			"ip", "192.168.1.10",
			"subnet", "10.0.0.0/8",
			"endpoint", "https://example.com:8443/api",
			"peers", "a,b,c",
		))

		var cfg network
		require.NoError(t, root.Scan(&cfg))
		assert.Equal(t, 90*time.Second, cfg.Timeout)
		assert.True(t, cfg.Started.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
		assert.Equal(t, "192.168.1.10", cfg.IP.String())
		require.NotNil(t, cfg.Subnet)
		assert.Equal(t, "10.0.0.0/8", cfg.Subnet.String())
		require.NotNil(t, cfg.Endpoint)
		assert.Equal(t, "example.com:8443", cfg.Endpoint.Host)
		assert.Equal(t, []string{"a", "b", "c"}, cfg.Peers)
	})

	t.Run("InvalidIP", func(t *testing.T) {
		var cfg struct {
			IP net.IP `toml:"ip"`
		}
		err := layer.NewRoot(obj("ip", "not-an-ip")).Scan(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid IP address")
	})

	t.Run("Subtree", func(t *testing.T) {
		var db struct {
			URL string `toml:"url"`
		}
		root := layer.NewRoot(obj("database", obj("url", "postgres://db")))
		require.NoError(t, root.Key("database").Scan(&db))
		assert.Equal(t, "postgres://db", db.URL)
	})

	t.Run("MissingPath", func(t *testing.T) {
		var out map[string]any
		err := layer.NewRoot(obj("a", 1)).Key("b").Scan(&out)
		assert.ErrorIs(t, err, layer.ErrNotFound)
	})

	t.Run("NonPointerTarget", func(t *testing.T) {
		var out struct{}
		err := layer.NewRoot(obj()).Scan(out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-nil pointer")
	})

	t.Run("ErrorUnused", func(t *testing.T) {
		var cfg struct {
			A int `toml:"a"`
		}
		root := layer.NewRoot(obj("a", 1, "b", 2))
		require.NoError(t, root.Scan(&cfg))

		err := root.ScanWithOptions(&cfg, layer.ScanOptions{ErrorUnused: true})
		assert.Error(t, err)
	})

	t.Run("CustomTagAndHook", func(t *testing.T) {
		var cfg struct {
			Mode string `json:"mode"`
		}
		upper := func(f reflect.Type, to reflect.Type, data any) (any, error) {
			if s, ok := data.(string); ok && to.Kind() == reflect.String {
				return strings.ToUpper(s), nil
			}
			return data, nil
		}
		root := layer.NewRoot(obj("mode", "fast"))
		err := root.ScanWithOptions(&cfg, layer.ScanOptions{
			TagName:    "json",
			DecodeHook: mapstructure.DecodeHookFuncType(upper),
		})
		require.NoError(t, err)
		assert.Equal(t, "FAST", cfg.Mode)
	})
}
