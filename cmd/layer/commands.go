package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/lixenwraith/layer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Global flags
type globalOptions struct {
	files     []string
	envPrefix string
	format    string
	logLevel  string
}

func newRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "layer",
		Short: "Inspect layered configuration",
		Long: `layer reads one or more configuration files (TOML, YAML or JSON),
layers them in the order given (the first file wins) and answers questions
about the combined view.

Environment variables override every file when --env-prefix is set.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setLogLevel(opts.logLevel)
		},
	}

	rootCmd.PersistentFlags().StringArrayVarP(&opts.files, "file", "f", nil, "config file, repeat to add lower-priority layers")
	rootCmd.PersistentFlags().StringVar(&opts.envPrefix, "env-prefix", "", "load environment overrides with this prefix")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "", "force file format (toml, yaml, json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newKeysCommand(opts))
	rootCmd.AddCommand(newDumpCommand(opts))
	rootCmd.AddCommand(newExplainCommand(opts))

	return rootCmd
}

// loadRoot layers the configured files, with the environment on top.
func loadRoot(opts *globalOptions) (*layer.View, error) {
	loadOpts := layer.DefaultLoadOptions()
	loadOpts.EnvPrefix = opts.envPrefix
	loadOpts.Format = opts.format

	var sources []layer.Source
	var paths []string
	for _, file := range opts.files {
		tree, err := layer.LoadFile(file, loadOpts)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", file).Int("keys", tree.Len()).Msg("loaded config file")
		sources = append(sources, layer.Source{Name: "file:" + file, Tree: tree})
		paths = append(paths, layer.LeafPaths(tree)...)
	}

	if opts.envPrefix != "" {
		env, err := layer.LoadEnv(paths, loadOpts)
		if err != nil {
			return nil, err
		}
		sources = append([]layer.Source{{Name: "env", Tree: env}}, sources...)
	}

	return layer.NewRootWithOptions(sources, layer.RootOptions{Logger: &log.Logger}), nil
}

func viewAt(opts *globalOptions, args []string) (*layer.View, error) {
	root, err := loadRoot(opts)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return root, nil
	}
	return root.Path(args[0])
}

func newGetCommand(opts *globalOptions) *cobra.Command {
	var (
		kind   string
		origin bool
	)

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a path",
		Long: `Print the highest-priority value at a path. Scalars are printed as text,
containers as YAML of the merged subtree.`,
		Example: `  layer get -f local.toml -f base.toml server.port
  layer get -f app.yaml --type int servers[0].port`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := viewAt(opts, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if kind != "" {
				expected, err := parseKind(kind)
				if err != nil {
					return err
				}
				if _, err := view.GetAs(expected); err != nil {
					return err
				}
			}

			val, src, err := view.Resolve()
			if err != nil {
				return err
			}
			switch {
			case val.IsAbsent():
				fmt.Fprintln(out, "null")
			case val.Kind().IsContainer():
				if err := view.Dump(out, layer.FormatYAML); err != nil {
					return err
				}
			default:
				text, err := view.ToString()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			}
			if origin {
				fmt.Fprintf(out, "# from %s\n", src.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "require the value kind (string, int, float, bool, map, seq)")
	cmd.Flags().BoolVar(&origin, "origin", false, "print the source that supplied the value")

	return cmd
}

func newKeysCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [path]",
		Short: "List the merged keys or indices under a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := viewAt(opts, args)
			if err != nil {
				return err
			}
			children, err := view.All()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for acc := range children {
				if acc.IsIndex() {
					fmt.Fprintln(out, acc.Index())
				} else {
					fmt.Fprintln(out, acc.Key())
				}
			}
			return nil
		},
	}
}

func newDumpCommand(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump [path]",
		Short: "Print the merged configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := viewAt(opts, args)
			if err != nil {
				return err
			}
			return view.Dump(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", layer.FormatYAML, "output format (toml, yaml, json)")
	return cmd
}

func newExplainCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [path]",
		Short: "Show where every value under a path comes from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := viewAt(opts, args)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), view.Debug())
			return err
		},
	}
}

func parseKind(name string) (layer.Kind, error) {
	switch strings.ToLower(name) {
	case "string", "str":
		return layer.KindString, nil
	case "int", "integer":
		return layer.KindInt, nil
	case "float":
		return layer.KindFloat, nil
	case "bool", "boolean":
		return layer.KindBool, nil
	case "map", "mapping":
		return layer.KindMap, nil
	case "seq", "sequence", "list":
		return layer.KindSeq, nil
	}
	return layer.KindAbsent, fmt.Errorf("unknown value type %q", name)
}
