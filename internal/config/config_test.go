package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sjc5/lux/internal/common"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	c, err := Load(Options{RootDir: root})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.PublicDir != common.DefaultPublicDir || c.BuildDir != common.DefaultBuildDir {
		t.Errorf("dirs = %q, %q", c.PublicDir, c.BuildDir)
	}
	if c.JSEntry != (common.Entry{Src: common.DefaultJSEntrySrc, Dest: common.DefaultJSEntryDest}) {
		t.Errorf("JSEntry = %+v", c.JSEntry)
	}
	if diff := cmp.Diff(common.DefaultResolveExtensions, c.ResolveExtensions); diff != "" {
		t.Errorf("extensions mismatch (-want +got):\n%s", diff)
	}
	if c.Mode != (common.Mode{}) {
		t.Errorf("Mode = %v, want development", c.Mode)
	}
	if c.HotPort != common.DefaultHotPort || c.DevConfig.DebounceMS != 50 {
		t.Errorf("HotPort = %d, DebounceMS = %d", c.HotPort, c.DevConfig.DebounceMS)
	}
	if diff := cmp.Diff(common.DefaultAliases(root), c.Aliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "lux.yaml",
			content: `public_dir: web
production: true
js_entry:
  src: assets/main.js
publish_exclude:
  - "**/*.map"
`,
		},
		{
			name: "lux.toml",
			content: `public_dir = "web"
production = true
publish_exclude = ["**/*.map"]

[js_entry]
src = "assets/main.js"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, tt.name), tt.content)

			c, err := Load(Options{RootDir: root})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if c.PublicDir != "web" || !c.Mode.Production {
				t.Errorf("PublicDir = %q, Production = %v", c.PublicDir, c.Mode.Production)
			}
			// dest keeps its default when only src is overridden
			if c.JSEntry != (common.Entry{Src: "assets/main.js", Dest: common.DefaultJSEntryDest}) {
				t.Errorf("JSEntry = %+v", c.JSEntry)
			}
			if diff := cmp.Diff([]string{"**/*.map"}, c.PublishExclude); diff != "" {
				t.Errorf("PublishExclude mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadLayering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lux.yaml"), "hot_port: 9000\npublic_dir: from-file\n")
	t.Setenv("LUX_HOT_PORT", "9100")
	t.Setenv("LUX_HMR", "true")
	t.Setenv("LUX_STYLE_ENTRY__SRC", "resources/sass/theme.scss")

	c, err := Load(Options{RootDir: root, Overrides: map[string]any{"hmr": false}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.HotPort != 9100 {
		t.Errorf("HotPort = %d, want env value 9100", c.HotPort)
	}
	if c.PublicDir != "from-file" {
		t.Errorf("PublicDir = %q, want file value", c.PublicDir)
	}
	if c.StyleEntry.Src != "resources/sass/theme.scss" {
		t.Errorf("StyleEntry.Src = %q, want env value", c.StyleEntry.Src)
	}
	if c.Mode.HMR {
		t.Error("override did not win over env")
	}
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lux.json"), "{}")

	tests := []struct {
		name string
		opts Options
	}{
		{"missing explicit file", Options{RootDir: root, ConfigPath: filepath.Join(root, "nope.yaml")}},
		{"unsupported format", Options{RootDir: root, ConfigPath: filepath.Join(root, "lux.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opts)
			if !common.IsKind(err, common.KindConfig) {
				t.Errorf("Load() error = %v, want a %s error", err, common.KindConfig)
			}
		})
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	root := t.TempDir()

	path, err := WriteDefault(root)
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if filepath.Base(path) != "lux.yaml" {
		t.Errorf("path = %q", path)
	}

	fromFile, err := Load(Options{RootDir: root})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	builtin, err := Load(Options{RootDir: root})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// a generated file changes nothing
	if diff := cmp.Diff(builtin, fromFile, cmpopts.IgnoreFields(common.Config{}, "Logger")); diff != "" {
		t.Errorf("generated config differs from defaults (-builtin +file):\n%s", diff)
	}

	if _, err := WriteDefault(root); err != nil {
		t.Fatalf("WriteDefault() on an empty dir error = %v", err)
	}
	if _, err := WriteDefault(root); !errors.Is(err, os.ErrExist) {
		t.Errorf("second WriteDefault() error = %v, want %v", err, os.ErrExist)
	}
}
