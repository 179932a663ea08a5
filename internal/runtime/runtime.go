package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sjc5/kit/pkg/safecache"
	"github.com/sjc5/lux/internal/common"
)

const defaultHotURL = "//localhost:8080"

// Runtime resolves asset URLs for the server-rendered shell. The manifest is
// read once in production and on every lookup otherwise.
type Runtime struct {
	config   *common.Config
	manifest *safecache.Cache[map[string]string]
	shell    *Shell
}

func New(config *common.Config) *Runtime {
	config.ApplyDefaults()
	r := &Runtime{config: config}
	r.manifest = safecache.New(r.readManifest, r.isDev)
	r.shell = newShell(r)
	return r
}

func (r *Runtime) isDev() bool {
	return !r.config.Mode.Production
}

func (r *Runtime) readManifest() (map[string]string, error) {
	manifestPath := r.config.GetManifestPath()
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", manifestPath, err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("error decoding manifest %s: %w", manifestPath, err)
	}
	return m, nil
}

// HotURL returns the base URL written by a running hot server, if any.
func (r *Runtime) HotURL() (string, bool) {
	data, err := os.ReadFile(r.config.GetHotFilePath())
	if err != nil {
		return "", false
	}
	url := strings.TrimRight(strings.TrimSpace(string(data)), "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = defaultHotURL
	}
	return url, true
}

// Mix maps an unversioned asset path like "dist/js/app.js" to the URL the
// browser should load: the hot server's copy while one is running, the
// versioned file from the manifest otherwise.
func (r *Runtime) Mix(assetPath string) (string, error) {
	if !strings.HasPrefix(assetPath, "/") {
		assetPath = "/" + assetPath
	}

	if hotURL, ok := r.HotURL(); ok {
		return hotURL + assetPath, nil
	}

	m, err := r.manifest.Get()
	if err != nil {
		return "", &common.OpError{Op: "mix", Kind: common.KindConfig, Path: assetPath, Err: err}
	}
	url, ok := m[assetPath]
	if !ok {
		return "", &common.OpError{Op: "mix", Kind: common.KindConfig, Path: assetPath, Err: common.ErrNoManifest}
	}
	return url, nil
}

func (r *Runtime) Shell() *Shell {
	return r.shell
}
