package common

import (
	"path/filepath"

	"github.com/sjc5/kit/pkg/colorlog"
)

const (
	DefaultPublicDir         = "public"
	DefaultBuildDir          = "public/build"
	DefaultJSEntrySrc        = "resources/js/app.js"
	DefaultJSEntryDest       = "dist/js"
	DefaultStyleEntrySrc     = "resources/sass/app.scss"
	DefaultStyleEntryDest    = "dist/css"
	DefaultSourceDir         = "resources/js"
	DefaultSassVariablesPath = "./resources/sass/vuetify/variables"
	DefaultChunkNames        = "dist/js/[hash]"
	DefaultHotPort           = 8080

	DistDirName      = "dist"
	ImagesDirName    = "images"
	ManifestFileName = "mix-manifest.json"
	HotFileName      = "hot"
	InMemoryRoot     = "/"
)

var DefaultResolveExtensions = []string{".js", ".vue", ".json"}

type Config struct {
	/*
		RootDir is the directory every other path in this config is resolved
		against (where "resources" and "public" live). It is usually your
		project root, so "." is the right value for most setups. We run
		filepath.Clean on it, so leaving it blank also means ".".
	*/
	RootDir string

	// PublicDir is the web-facing directory that published assets end up in.
	PublicDir string

	/*
		BuildDir is the internal output location the bundler writes to before
		the publish step relocates "dist" and "images" into PublicDir. It is
		deleted at the end of every successful non-hot build, so don't point
		it at anything you want to keep.
	*/
	BuildDir string

	JSEntry    Entry
	StyleEntry Entry

	// Aliases are resolved in order. A key ending in "$" only matches the
	// exact import path (e.g. "vue$"); any other key also matches "key/...".
	Aliases []Alias

	ResolveExtensions []string

	// Import path of the shared theme variables every stylesheet gets prepended with.
	SassVariablesPath string

	ChunkNames string

	// Glob patterns (relative to the build dist/images dirs) skipped while publishing.
	PublishExclude []string

	HotPort int

	Mode Mode

	// Transpiler compiles stylesheets. Leave nil to run the Dart Sass binary
	// at SassBinary ("sass" on the PATH if blank).
	Transpiler Transpiler
	SassBinary string

	DevConfig *DevConfig

	Logger Logger
}

type Entry struct {
	Src  string // relative to RootDir
	Dest string // output subdirectory, relative to the output root
}

type Alias struct {
	Key    string
	Target string
}

type DevConfig struct {
	IgnorePatterns IgnorePatterns

	// Window in which filesystem events are batched into a single rebuild. Defaults to 50.
	DebounceMS int
}

type IgnorePatterns struct {
	Dirs  []string // Glob patterns
	Files []string // Glob patterns
}

func (c *Config) GetCleanRootDir() string {
	return filepath.Clean(c.RootDir)
}

func (c *Config) GetPublicDir() string {
	return filepath.Join(c.GetCleanRootDir(), c.PublicDir)
}

func (c *Config) GetBuildDir() string {
	return filepath.Join(c.GetCleanRootDir(), c.BuildDir)
}

func (c *Config) GetManifestPath() string {
	return filepath.Join(c.GetPublicDir(), ManifestFileName)
}

func (c *Config) GetHotFilePath() string {
	return filepath.Join(c.GetPublicDir(), HotFileName)
}

// GetOutputPath is where compiled bundles go: an in-memory root while a hot
// session is active, the on-disk build dir otherwise.
func (c *Config) GetOutputPath() string {
	if c.Mode.HMR {
		return InMemoryRoot
	}
	return c.GetBuildDir()
}

// ApplyDefaults fills every zero-valued field with the starter kit default.
func (c *Config) ApplyDefaults() {
	if c.RootDir == "" {
		c.RootDir = "."
	}
	if c.PublicDir == "" {
		c.PublicDir = DefaultPublicDir
	}
	if c.BuildDir == "" {
		c.BuildDir = DefaultBuildDir
	}
	if c.JSEntry.Src == "" {
		c.JSEntry = Entry{Src: DefaultJSEntrySrc, Dest: DefaultJSEntryDest}
	}
	if c.StyleEntry.Src == "" {
		c.StyleEntry = Entry{Src: DefaultStyleEntrySrc, Dest: DefaultStyleEntryDest}
	}
	if c.Aliases == nil {
		c.Aliases = DefaultAliases(c.GetCleanRootDir())
	}
	if c.ResolveExtensions == nil {
		c.ResolveExtensions = append([]string{}, DefaultResolveExtensions...)
	}
	if c.SassVariablesPath == "" {
		c.SassVariablesPath = DefaultSassVariablesPath
	}
	if c.ChunkNames == "" {
		c.ChunkNames = DefaultChunkNames
	}
	if c.HotPort == 0 {
		c.HotPort = DefaultHotPort
	}
	if c.DevConfig == nil {
		c.DevConfig = &DevConfig{}
	}
	if c.DevConfig.DebounceMS == 0 {
		c.DevConfig.DebounceMS = 50
	}
	if c.Logger == nil {
		c.Logger = &colorlog.Log{}
	}
}

func DefaultAliases(cleanRootDir string) []Alias {
	srcDir := filepath.Join(cleanRootDir, DefaultSourceDir)
	if abs, err := filepath.Abs(srcDir); err == nil {
		srcDir = abs
	}
	return []Alias{
		{Key: "vue$", Target: "vue/dist/vue.esm.js"},
		{Key: "@", Target: srcDir},
		{Key: "~", Target: srcDir},
	}
}
