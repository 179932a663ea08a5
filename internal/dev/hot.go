package dev

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/sjc5/lux/internal/buildtime"
	"github.com/sjc5/lux/internal/common"
	"github.com/sjc5/lux/internal/runtime"
	"github.com/sjc5/lux/internal/util"
)

type BuildFunc func(ctx context.Context, config *common.Config) (*buildtime.BuildResult, error)

func defaultBuild(ctx context.Context, config *common.Config) (*buildtime.BuildResult, error) {
	return buildtime.Build(ctx, config)
}

// RunHot serves hot builds from memory until ctx is done. The public dir
// only ever gets the hot file, which is removed again on the way out.
func RunHot(ctx context.Context, config *common.Config, build BuildFunc) error {
	// hashed names would break the unversioned hot URLs that Mix hands out
	config.Mode = common.Mode{HMR: true}
	config.ApplyDefaults()
	if build == nil {
		build = defaultBuild
	}

	port, err := util.GetFreePort(config.HotPort)
	if err != nil {
		return fmt.Errorf("error getting free port: %w", err)
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("error listening on port %d: %w", port, err)
	}

	root := NewMemoryRoot()
	result, err := build(ctx, config)
	if err != nil {
		listener.Close()
		return fmt.Errorf("error running initial hot build: %w", err)
	}
	root.Replace(result.Files)

	watcher, err := NewWatcher(config)
	if err != nil {
		listener.Close()
		return err
	}

	manager := NewClientManager()
	go manager.start()

	mux := http.NewServeMux()
	mux.Handle(runtime.HMRPath, wsHandler(manager))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		root.ServeHTTP(w, r)
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	hotURL := fmt.Sprintf("http://localhost:%d", port)
	if err := writeHotFile(config, hotURL); err != nil {
		listener.Close()
		watcher.Close()
		manager.stop()
		return err
	}
	defer removeHotFile(config)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	config.Logger.Infof("lux: hot server listening on %s", hotURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Run(ctx, func(ctx context.Context, changed []string) {
			config.Logger.Infof("lux: %d file(s) changed, rebuilding", len(changed))
			result, err := build(ctx, config)
			if err != nil {
				config.Logger.Errorf("hot rebuild failed: %v", err)
				manager.Broadcast(Message{Type: MessageTypeError, Error: err.Error()})
				return
			}
			root.Replace(result.Files)
			manager.Broadcast(Message{Type: MessageTypeRebuilt})
		})
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("error serving hot files: %w", err)
		}
	}

	cancel()
	<-watchErr
	manager.stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("error shutting down hot server: %w", err)
	}
	return runErr
}

// MustStartHot runs the hot server until ctx is done, panicking on failure.
func MustStartHot(ctx context.Context, config *common.Config) {
	if err := RunHot(ctx, config, nil); err != nil {
		errMsg := fmt.Sprintf("error: hot server failed: %v", err)
		util.Log.Error(errMsg)
		panic(errMsg)
	}
}

func writeHotFile(config *common.Config, hotURL string) error {
	if err := os.MkdirAll(config.GetPublicDir(), 0755); err != nil {
		return fmt.Errorf("error creating public dir: %w", err)
	}
	if err := os.WriteFile(config.GetHotFilePath(), []byte(hotURL), 0644); err != nil {
		return fmt.Errorf("error writing hot file: %w", err)
	}
	return nil
}

func removeHotFile(config *common.Config) {
	if err := os.Remove(config.GetHotFilePath()); err != nil && !os.IsNotExist(err) {
		config.Logger.Errorf("error removing hot file: %v", err)
	}
}
