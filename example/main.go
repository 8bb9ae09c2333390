// FILE: example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/layer"
)

// AppConfig represents our application configuration
type AppConfig struct {
	Server struct {
		Host        string        `toml:"host"`
		Port        int           `toml:"port"`
		ReadTimeout time.Duration `toml:"read_timeout"`
	} `toml:"server"`

	Database struct {
		URL      string `toml:"url"`
		MaxConns int    `toml:"max_conns"`
	} `toml:"database"`

	Upstreams []string `toml:"upstreams"`
	Debug     bool     `toml:"debug"`
}

const fileContent = `
upstreams = ["10.0.0.1", "10.0.0.2"]

[server]
port = 9090

[database]
url = "postgres://db.internal/app"
`

func main() {
	dir, err := os.MkdirTemp("", "layer-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "app.toml")
	if err := os.WriteFile(configPath, []byte(fileContent), 0644); err != nil {
		log.Fatal(err)
	}

	defaults := &AppConfig{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 8080
	defaults.Server.ReadTimeout = 5 * time.Second
	defaults.Database.MaxConns = 10
	defaults.Upstreams = []string{"127.0.0.1", "127.0.0.2", "127.0.0.3"}

	root, err := layer.NewBuilder().
		WithDefaults(defaults).
		WithFile(configPath).
		WithEnvPrefix("EXAMPLE_").
		WithArgs([]string{"--debug"}).
		WithValidator(layer.Required("database.url")).
		Build()
	if err != nil && !errors.Is(err, layer.ErrConfigNotFound) {
		log.Fatal("Failed to load config:", err)
	}

	// Shadowing: the file's port hides the default
	port, _ := root.Key("server").Key("port").GetInt()
	fmt.Printf("server.port = %d\n", port)

	// Fall-through: the host only exists in the defaults
	host, src, _ := root.Key("server").Key("host").Resolve()
	fmt.Printf("server.host = %s (from %s)\n", host, src.Name)

	// Merged iteration: two upstreams from the file, the third from defaults
	upstreams, _ := root.Key("upstreams").Elements()
	for _, u := range upstreams {
		addr, _ := u.ToString()
		fmt.Printf("%s = %s\n", u.Name(), addr)
	}

	// Typed gets never coerce
	if _, err := root.Key("server").Key("port").GetString(); err != nil {
		fmt.Println("typed get:", err)
	}

	var cfg AppConfig
	if err := root.Scan(&cfg); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("scanned: %+v\n", cfg)

	fmt.Print(root.Debug())
}
