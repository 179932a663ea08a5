package lux

import (
	"context"
	"html/template"
	"io"
	"net/http"

	"github.com/sjc5/lux/internal/buildtime"
	"github.com/sjc5/lux/internal/common"
	"github.com/sjc5/lux/internal/config"
	"github.com/sjc5/lux/internal/dev"
	"github.com/sjc5/lux/internal/runtime"
)

type Config = common.Config
type DevConfig = common.DevConfig
type Mode = common.Mode
type Entry = common.Entry
type Alias = common.Alias
type BuildResult = buildtime.BuildResult
type PublishReport = buildtime.PublishReport
type ShellData = runtime.ShellData
type Listener = buildtime.Listener
type LoadOptions = config.Options

type Lux struct {
	Config  *common.Config
	runtime *runtime.Runtime
}

func New(config *Config) *Lux {
	config.ApplyDefaults()
	return &Lux{Config: config, runtime: runtime.New(config)}
}

// Load builds a Lux from lux.yaml/lux.toml, LUX_ env vars and overrides.
func Load(opts LoadOptions) (*Lux, error) {
	c, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

// Build runs the pipeline once in the configured mode. Listeners run after
// compilation and before assets are published.
func (l *Lux) Build(ctx context.Context, listeners ...Listener) (*BuildResult, error) {
	return buildtime.Build(ctx, l.Config, listeners...)
}

// Watch rebuilds and republishes on every source change until ctx is done.
func (l *Lux) Watch(ctx context.Context) error {
	return dev.Watch(ctx, l.Config, nil)
}

func (l *Lux) MustStartHot(ctx context.Context) {
	dev.MustStartHot(ctx, l.Config)
}

// AssetURL is the mix() helper: "dist/js/app.js" -> "/dist/js/app.<hash>.js".
func (l *Lux) AssetURL(assetPath string) (string, error) {
	return l.runtime.Mix(assetPath)
}

func (l *Lux) RenderShell(w io.Writer, data ShellData) error {
	return l.runtime.Shell().Render(w, data)
}

func (l *Lux) GetRefreshScript() template.HTML {
	return l.runtime.GetRefreshScript()
}

func (l *Lux) GetServeStaticHandler(pathPrefix string) http.Handler {
	return l.runtime.GetServeStaticHandler(pathPrefix)
}

func (l *Lux) GetShellHandler(data func(*http.Request) ShellData) http.Handler {
	return l.runtime.GetShellHandler(data)
}

// Hot serves in-memory builds with live reload until ctx is done.
func (l *Lux) Hot(ctx context.Context) error {
	return dev.RunHot(ctx, l.Config, nil)
}
