package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sjc5/lux/internal/common"
)

const EnvPrefix = "LUX_"

// FileNames are tried in order when no explicit config path is given.
var FileNames = []string{"lux.yaml", "lux.yml", "lux.toml"}

// File is the on-disk (and env) shape of the configuration.
type File struct {
	PublicDir         string      `koanf:"public_dir" yaml:"public_dir"`
	BuildDir          string      `koanf:"build_dir" yaml:"build_dir"`
	JSEntry           EntryFile   `koanf:"js_entry" yaml:"js_entry"`
	StyleEntry        EntryFile   `koanf:"style_entry" yaml:"style_entry"`
	Aliases           []AliasFile `koanf:"aliases" yaml:"aliases,omitempty"`
	ResolveExtensions []string    `koanf:"resolve_extensions" yaml:"resolve_extensions"`
	SassVariablesPath string      `koanf:"sass_variables_path" yaml:"sass_variables_path"`
	SassBinary        string      `koanf:"sass_binary" yaml:"sass_binary,omitempty"`
	ChunkNames        string      `koanf:"chunk_names" yaml:"chunk_names"`
	PublishExclude    []string    `koanf:"publish_exclude" yaml:"publish_exclude,omitempty"`
	HotPort           int         `koanf:"hot_port" yaml:"hot_port"`
	Production        bool        `koanf:"production" yaml:"production"`
	HMR               bool        `koanf:"hmr" yaml:"hmr"`
	Watch             WatchFile   `koanf:"watch" yaml:"watch"`
}

type EntryFile struct {
	Src  string `koanf:"src" yaml:"src"`
	Dest string `koanf:"dest" yaml:"dest"`
}

type AliasFile struct {
	Key    string `koanf:"key" yaml:"key"`
	Target string `koanf:"target" yaml:"target"`
}

type WatchFile struct {
	IgnoreDirs  []string `koanf:"ignore_dirs" yaml:"ignore_dirs,omitempty"`
	IgnoreFiles []string `koanf:"ignore_files" yaml:"ignore_files,omitempty"`
	DebounceMS  int      `koanf:"debounce_ms" yaml:"debounce_ms"`
}

type Options struct {
	RootDir string

	// ConfigPath skips the FileNames lookup. A missing explicit file is an error.
	ConfigPath string

	// Overrides win over every other layer. Keys use the file's dotted names,
	// e.g. "production" or "js_entry.src".
	Overrides map[string]any
}

func defaults() map[string]any {
	return map[string]any{
		"public_dir":          common.DefaultPublicDir,
		"build_dir":           common.DefaultBuildDir,
		"js_entry.src":        common.DefaultJSEntrySrc,
		"js_entry.dest":       common.DefaultJSEntryDest,
		"style_entry.src":     common.DefaultStyleEntrySrc,
		"style_entry.dest":    common.DefaultStyleEntryDest,
		"resolve_extensions":  common.DefaultResolveExtensions,
		"sass_variables_path": common.DefaultSassVariablesPath,
		"chunk_names":         common.DefaultChunkNames,
		"hot_port":            common.DefaultHotPort,
		"production":          false,
		"hmr":                 false,
		"watch.debounce_ms":   50,
	}
}

// Load layers defaults, the config file, LUX_ env vars and overrides, in
// that order, and returns a Config with every default applied.
func Load(opts Options) (*common.Config, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, configError("load defaults", "", err)
	}

	path, err := findConfigFile(rootDir, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, configError("load config file", path, err)
		}
	}

	// LUX_JS_ENTRY__SRC -> js_entry.src
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, configError("load env", "", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, configError("load overrides", "", err)
		}
	}

	var f File
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &f,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &f, unmarshalConf); err != nil {
		return nil, configError("unmarshal", path, err)
	}

	return f.ToConfig(rootDir), nil
}

// ToConfig converts the file shape to a runtime Config rooted at rootDir.
// Alias targets starting with "." are resolved against rootDir.
func (f *File) ToConfig(rootDir string) *common.Config {
	c := &common.Config{
		RootDir:           rootDir,
		PublicDir:         f.PublicDir,
		BuildDir:          f.BuildDir,
		JSEntry:           common.Entry{Src: f.JSEntry.Src, Dest: f.JSEntry.Dest},
		StyleEntry:        common.Entry{Src: f.StyleEntry.Src, Dest: f.StyleEntry.Dest},
		ResolveExtensions: f.ResolveExtensions,
		SassVariablesPath: f.SassVariablesPath,
		SassBinary:        f.SassBinary,
		ChunkNames:        f.ChunkNames,
		PublishExclude:    f.PublishExclude,
		HotPort:           f.HotPort,
		Mode:              common.Mode{Production: f.Production, HMR: f.HMR},
		DevConfig: &common.DevConfig{
			IgnorePatterns: common.IgnorePatterns{Dirs: f.Watch.IgnoreDirs, Files: f.Watch.IgnoreFiles},
			DebounceMS:     f.Watch.DebounceMS,
		},
	}
	for _, a := range f.Aliases {
		target := a.Target
		if strings.HasPrefix(target, ".") {
			if abs, err := filepath.Abs(filepath.Join(c.GetCleanRootDir(), target)); err == nil {
				target = abs
			}
		}
		c.Aliases = append(c.Aliases, common.Alias{Key: a.Key, Target: target})
	}
	c.ApplyDefaults()
	return c
}

func findConfigFile(rootDir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", configError("find config file", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range FileNames {
		path := filepath.Join(rootDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	}
	return nil, configError("pick parser", path, fmt.Errorf("unsupported config format %q", filepath.Ext(path)))
}

func configError(op, path string, err error) error {
	return &common.OpError{Op: "config: " + op, Kind: common.KindConfig, Path: path, Err: err}
}
