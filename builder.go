// File: lixenwraith/layer/builder.go
package layer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ValidatorFunc defines the signature for a function that can validate a built configuration.
// It receives the root view over all loaded sources and should return an error if validation fails.
type ValidatorFunc func(root *View) error

// Builder provides a fluent interface for loading sources and layering them into a root view
type Builder struct {
	opts       LoadOptions
	defaults   any
	prefix     string
	file       string
	discovery  *FileDiscoveryOptions
	args       []string
	extra      []Source
	logger     *zerolog.Logger
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		args:       os.Args[1:],
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the struct containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithPrefix nests the defaults under a dot-separated path and makes
// BuildAndScan decode from that path
func (b *Builder) WithPrefix(prefix string) *Builder {
	prefix = strings.Trim(prefix, ".")
	for _, segment := range strings.Split(prefix, ".") {
		if prefix != "" && !isValidKeySegment(segment) {
			b.err = fmt.Errorf("invalid prefix segment %q in %q", segment, prefix)
			return b
		}
	}
	b.prefix = prefix
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileDiscovery searches for the configuration file at build time when
// no explicit file was set. The discovery CLI flag is removed from the
// arguments before they are parsed as overrides.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}

// WithFormat forces the file format instead of detecting it
func (b *Builder) WithFormat(format string) *Builder {
	switch format {
	case "", "auto", FormatTOML, FormatYAML, FormatJSON:
		b.opts.Format = format
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithLayers sets the precedence order for configuration layers, highest first
func (b *Builder) WithLayers(layers ...Layer) *Builder {
	b.opts.Layers = layers
	return b
}

// WithSource adds an already-loaded tree above every configured layer.
// Sources added earlier take precedence over later ones.
func (b *Builder) WithSource(name string, tree Value) *Builder {
	b.extra = append(b.extra, Source{Name: name, Tree: tree})
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithSecurity applies the file loading limits
func (b *Builder) WithSecurity(maxFileSize int64, preventTraversal, enforceOwnership bool) *Builder {
	b.opts.MaxFileSize = maxFileSize
	b.opts.PreventPathTraversal = preventTraversal
	b.opts.EnforceFileOwnership = enforceOwnership
	return b
}

// WithLogger sets the logger for load events and view resolution
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build loads every configured layer and returns the root view over them in
// precedence order. A missing file is not fatal: the view is returned along
// with an error matching ErrConfigNotFound.
func (b *Builder) Build() (*View, error) {
	if b.err != nil {
		return nil, b.err
	}

	log := zerolog.Nop()
	if b.logger != nil {
		log = *b.logger
	}

	file, args := b.file, b.args
	if b.discovery != nil {
		if file == "" {
			file = DiscoverFile(*b.discovery, args)
		}
		args = stripFlag(b.discovery.CLIFlag, args)
	}

	loaded := make(map[Layer]Source, len(b.opts.Layers))
	var loadErr error

	for _, layer := range b.opts.Layers {
		switch layer {
		case LayerDefault:
			if b.defaults == nil {
				continue
			}
			tree, err := FromStruct(b.defaults, b.opts.TagName)
			if err != nil {
				return nil, fmt.Errorf("failed to register defaults: %w", err)
			}
			if b.prefix != "" {
				nested := NewMap()
				setNestedValue(nested, b.prefix, tree)
				tree = Mapping(nested)
			}
			loaded[layer] = Source{Name: string(LayerDefault), Tree: tree}

		case LayerFile:
			if file == "" {
				continue
			}
			tree, err := LoadFile(file, b.opts)
			if err != nil {
				if errors.Is(err, ErrConfigNotFound) {
					// Not fatal, the application can run with the other layers
					log.Debug().Str("file", file).Msg("config file not found")
					loadErr = err
					continue
				}
				return nil, err
			}
			loaded[layer] = Source{Name: string(LayerFile) + ":" + file, Tree: tree}

		case LayerCLI:
			if len(args) == 0 {
				continue
			}
			tree, err := LoadCLI(args)
			if err != nil {
				return nil, err
			}
			loaded[layer] = Source{Name: string(LayerCLI), Tree: tree}

		case LayerEnv:
			// Loaded below, once the paths of the other layers are known

		default:
			return nil, fmt.Errorf("unknown configuration layer %q", layer)
		}
	}

	if containsLayer(b.opts.Layers, LayerEnv) {
		var paths []string
		for _, src := range b.extra {
			paths = append(paths, leafPaths(src.Tree, "")...)
		}
		for _, layer := range b.opts.Layers {
			if src, ok := loaded[layer]; ok {
				paths = append(paths, leafPaths(src.Tree, "")...)
			}
		}
		tree, err := LoadEnv(paths, b.opts)
		if err != nil {
			return nil, err
		}
		loaded[LayerEnv] = Source{Name: string(LayerEnv), Tree: tree}
	}

	sources := make([]Source, 0, len(b.extra)+len(loaded))
	sources = append(sources, b.extra...)
	for _, layer := range b.opts.Layers {
		if src, ok := loaded[layer]; ok {
			sources = append(sources, src)
		}
	}
	for i, src := range sources {
		log.Debug().
			Int("priority", i).
			Str("source", src.Name).
			Int("keys", src.Tree.Len()).
			Msg("configuration source loaded")
	}

	root := NewRootWithOptions(sources, RootOptions{Logger: &log})

	for _, validator := range b.validators {
		if err := validator(root); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return root, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *View {
	root, err := b.Build()
	if err != nil {
		// Ignore ErrConfigNotFound as it is not a fatal error for MustBuild.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return root
}

// BuildAndScan builds and decodes the merged configuration under the
// prefix into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	root, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return err
	}

	section := root
	if b.prefix != "" {
		var pathErr error
		if section, pathErr = root.Path(b.prefix); pathErr != nil {
			return pathErr
		}
	}

	if scanErr := section.Scan(target); scanErr != nil {
		return fmt.Errorf("failed to scan final config into target: %w", scanErr)
	}

	// ErrConfigNotFound or nil
	return err
}

func containsLayer(layers []Layer, want Layer) bool {
	for _, layer := range layers {
		if layer == want {
			return true
		}
	}
	return false
}
