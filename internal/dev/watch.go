package dev

import (
	"context"

	"github.com/sjc5/lux/internal/common"
)

// Watch runs a full build now and again after every batch of source changes,
// publishing each time. Failed builds are logged and watching continues.
func Watch(ctx context.Context, config *common.Config, build BuildFunc) error {
	config.Mode.HMR = false
	config.ApplyDefaults()
	if build == nil {
		build = defaultBuild
	}

	watcher, err := NewWatcher(config)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) {
		if _, err := build(ctx, config); err != nil {
			config.Logger.Errorf("build failed: %v", err)
		}
	}

	rebuild(ctx)
	config.Logger.Infof("lux: watching for changes")
	return watcher.Run(ctx, func(ctx context.Context, changed []string) {
		config.Logger.Infof("lux: %d file(s) changed, rebuilding", len(changed))
		rebuild(ctx)
	})
}
