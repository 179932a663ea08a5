package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sjc5/lux"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	root       string
	configPath string
	sassBinary string
}

// NewRootCmd builds a fresh command tree so tests never share flag state.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "lux",
		Short: "Build pipeline for the lux starter kit",
		Long: `lux compiles the starter kit's JavaScript and Sass entries, injects the
shared theme variables into every stylesheet, and publishes the versioned
assets into the public directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.root, "root", ".", "Project root containing resources/ and public/")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: lux.yaml, lux.yml or lux.toml in the root)")
	rootCmd.PersistentFlags().StringVar(&flags.sassBinary, "sass", "", "Dart Sass binary used to compile stylesheets")

	rootCmd.AddCommand(
		newBuildCmd(flags, "dev", "Run a development build (source maps, no versioning)", false),
		newBuildCmd(flags, "prod", "Run a production build (versioned, minified)", true),
		newWatchCmd(flags),
		newHotCmd(flags),
		newInitCmd(flags),
	)
	return rootCmd
}

func (f *rootFlags) load(cmd *cobra.Command, overrides map[string]any) (*lux.Lux, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	if cmd.Flags().Changed("sass") {
		overrides["sass_binary"] = f.sassBinary
	}
	return lux.Load(lux.LoadOptions{
		RootDir:    f.root,
		ConfigPath: f.configPath,
		Overrides:  overrides,
	})
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
