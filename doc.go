// File: lixenwraith/layer/doc.go

// Package layer provides a read-only view over layered configuration: an
// ordered list of already-loaded trees (mappings, sequences, scalars) is
// exposed as one logical configuration in which higher-priority sources
// shadow lower-priority ones.
//
// Features:
//   - Lazy views: indexing never fails and never resolves
//   - Shadowing: Get returns the first source holding the path, unmerged
//   - Merged iteration: Keys, Len and All combine every source's containers
//   - Strict typed gets (GetString, GetInt, ...) and explicit conversions
//   - Diagnostic path names such as root['servers'][0]['host']
//   - Provenance: which source supplied a value and which ones it shadows
//   - Loaders for TOML, YAML and JSON files, environment variables,
//     command-line arguments and defaults structs
//   - Builder pattern and struct scanning through mapstructure
//
// Quick Start:
//
//	root := layer.NewRoot(override, defaults)
//
//	host, err := root.Key("server").Key("host").GetString()
//	if errors.Is(err, layer.ErrNotFound) {
//	    // no source defines server.host
//	}
//
//	keys, _ := root.Key("server").Keys() // union across both trees
//
// With loaders:
//
//	root, err := layer.NewBuilder().
//	    WithDefaults(defaults).
//	    WithEnvPrefix("MYAPP_").
//	    WithFile("config.toml").
//	    Build()
//	if err != nil && !errors.Is(err, layer.ErrConfigNotFound) {
//	    log.Fatal(err)
//	}
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--server.port=9090)
//  2. Environment variables (MYAPP_SERVER_PORT=9090)
//  3. Configuration file (config.toml)
//  4. Default values
//
// Thread Safety:
// Views are immutable and hold no locks. Any number of goroutines may read
// them as long as nobody mutates the underlying trees.
package layer
