package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sjc5/lux/internal/common"
	"gopkg.in/yaml.v3"
)

const generatedHeader = "# lux build configuration. Every key can also be set with a LUX_ env var\n# (nested keys use a double underscore, e.g. LUX_JS_ENTRY__SRC).\n"

// DefaultFile is the starter kit configuration as a config file would spell it.
func DefaultFile() File {
	return File{
		PublicDir:         common.DefaultPublicDir,
		BuildDir:          common.DefaultBuildDir,
		JSEntry:           EntryFile{Src: common.DefaultJSEntrySrc, Dest: common.DefaultJSEntryDest},
		StyleEntry:        EntryFile{Src: common.DefaultStyleEntrySrc, Dest: common.DefaultStyleEntryDest},
		ResolveExtensions: append([]string{}, common.DefaultResolveExtensions...),
		SassVariablesPath: common.DefaultSassVariablesPath,
		ChunkNames:        common.DefaultChunkNames,
		HotPort:           common.DefaultHotPort,
		Aliases: []AliasFile{
			{Key: "vue$", Target: "vue/dist/vue.esm.js"},
			{Key: "@", Target: "./" + common.DefaultSourceDir},
			{Key: "~", Target: "./" + common.DefaultSourceDir},
		},
		Watch: WatchFile{DebounceMS: 50},
	}
}

// Generate renders DefaultFile as YAML.
func Generate() ([]byte, error) {
	f := DefaultFile()
	out, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("error encoding default config: %w", err)
	}
	return append([]byte(generatedHeader), out...), nil
}

// WriteDefault writes lux.yaml into rootDir unless a config file already
// exists there. It returns the path it wrote.
func WriteDefault(rootDir string) (string, error) {
	if existing, err := findConfigFile(rootDir, ""); err != nil {
		return "", err
	} else if existing != "" {
		return "", configError("init", existing, os.ErrExist)
	}

	out, err := Generate()
	if err != nil {
		return "", err
	}
	path := filepath.Join(rootDir, FileNames[0])
	if err := os.WriteFile(path, out, 0644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	return path, nil
}
