package main

import (
	"fmt"
	"sort"

	"github.com/sjc5/lux/internal/config"
	"github.com/spf13/cobra"
)

func newBuildCmd(flags *rootFlags, use, short string, production bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.load(cmd, map[string]any{"production": production, "hmr": false})
			if err != nil {
				return err
			}
			result, err := l.Build(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(result.Manifest))
			for src := range result.Manifest {
				keys = append(keys, src)
			}
			sort.Strings(keys)
			for _, src := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", src, result.Manifest[src])
			}
			return nil
		},
	}
}

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var production bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild and republish whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.load(cmd, map[string]any{"production": production, "hmr": false})
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return l.Watch(ctx)
		},
	}
	cmd.Flags().BoolVar(&production, "production", false, "Watch with production settings")
	return cmd
}

func newHotCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "hot",
		Short: "Serve builds from memory and reload the browser on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.load(cmd, map[string]any{"production": false, "hmr": true})
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return l.Hot(ctx)
		},
	}
}

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a lux.yaml with the starter kit defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault(flags.root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
