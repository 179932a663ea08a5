package buildtime

import (
	"context"
	"fmt"
	"os"

	"github.com/sjc5/lux/internal/common"
)

// SetupNewBuild clears the previous build dir. Hot builds never touch disk.
func SetupNewBuild(config *common.Config) error {
	if config.Mode.HMR {
		return nil
	}
	if err := os.RemoveAll(config.GetBuildDir()); err != nil {
		return fmt.Errorf("error removing build directory: %w", err)
	}
	return nil
}

// Build runs the whole pipeline once: assemble the build configuration,
// compile, write the manifest and fire completion listeners. Outside hot
// mode the publisher runs after every listener has returned.
func Build(ctx context.Context, config *common.Config, listeners ...Listener) (*BuildResult, error) {
	config.ApplyDefaults()
	mode := config.Mode
	config.Logger.Infof("lux: starting %s build", mode)

	if err := SetupNewBuild(config); err != nil {
		return nil, fmt.Errorf("error setting up new build: %w", err)
	}

	bc, err := NewDriverBuilder(config).Build(mode)
	if err != nil {
		return nil, fmt.Errorf("error assembling build config: %w", err)
	}

	result, err := Compile(ctx, config, bc)
	if err != nil {
		return nil, fmt.Errorf("error compiling: %w", err)
	}
	for _, w := range result.Warnings {
		config.Logger.Warning(w)
	}

	if !mode.HMR {
		if err := WriteManifest(config, result.Manifest); err != nil {
			return nil, fmt.Errorf("error writing manifest: %w", err)
		}
	}

	lc := &Lifecycle{}
	lc.Then(func(ctx context.Context, result *BuildResult) error {
		if result.Mode.HMR {
			return nil
		}
		lc.NextTick(func(ctx context.Context) error {
			report, err := Publish(config, result.Mode)
			if err != nil {
				return err
			}
			result.Publish = report
			config.Logger.Infof("lux: published %d files (dist %s)", report.FilesCopied, report.DistDigest)
			return nil
		})
		return nil
	})
	for _, fn := range listeners {
		lc.Then(fn)
	}
	if err := lc.Complete(ctx, result); err != nil {
		return nil, err
	}

	config.Logger.Infof("lux: %s build done (%d files)", mode, len(result.Files))
	return result, nil
}
