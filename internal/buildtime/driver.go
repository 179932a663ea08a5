package buildtime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/sjc5/lux/internal/common"
	"golang.org/x/sync/errgroup"
)

func assetNames(versionHash bool) string {
	if versionHash {
		return "images/[name].[hash]"
	}
	return "images/[name]"
}

var assetLoaders = map[string]api.Loader{
	".png":  api.LoaderFile,
	".jpg":  api.LoaderFile,
	".jpeg": api.LoaderFile,
	".gif":  api.LoaderFile,
	".webp": api.LoaderFile,
	".svg":  api.LoaderFile,
}

type OutputFile struct {
	Path     string // slash-separated, relative to the output root
	Contents []byte
}

type BuildResult struct {
	Mode       common.Mode
	OutputRoot string
	InMemory   bool
	Files      []OutputFile
	Manifest   Manifest
	Warnings   []string
	Publish    *PublishReport
}

// DeclareSteps are the starter kit's compile targets, resolution rules,
// output location and optimization choice.
func DeclareSteps(cfg *common.Config) []Step {
	return []Step{
		{
			Name:  "entries",
			Phase: PhaseDeclare,
			Apply: func(bc *common.BuildConfig, _ common.Mode) error {
				bc.Entries = append(bc.Entries,
					common.BuildEntry{Kind: common.EntryKindJS, Src: cfg.JSEntry.Src, OutDir: cfg.JSEntry.Dest},
					common.BuildEntry{Kind: common.EntryKindStyle, Src: cfg.StyleEntry.Src, OutDir: cfg.StyleEntry.Dest},
				)
				return nil
			},
		},
		{
			Name:  "resolve",
			Phase: PhaseDeclare,
			Apply: func(bc *common.BuildConfig, _ common.Mode) error {
				bc.Resolve.Extensions = append([]string(nil), cfg.ResolveExtensions...)
				bc.Resolve.Aliases = append([]common.Alias(nil), cfg.Aliases...)
				return nil
			},
		},
		{
			Name:  "output",
			Phase: PhaseDeclare,
			Apply: func(bc *common.BuildConfig, mode common.Mode) error {
				bc.Output = common.Output{
					Path:       cfg.GetOutputPath(),
					InMemory:   mode.HMR,
					ChunkNames: cfg.ChunkNames,
					AssetNames: assetNames(mode.Production),
				}
				return nil
			},
		},
		{
			Name:  "optimize",
			Phase: PhaseDeclare,
			Apply: func(bc *common.BuildConfig, mode common.Mode) error {
				bc.VersionHash = mode.Production
				bc.SourceMaps = !mode.Production
				return nil
			},
		},
	}
}

// NewDriverBuilder wires the full step list: declarations, the
// vuetify-loader plugin and the Sass prelude injection.
func NewDriverBuilder(cfg *common.Config) *Builder {
	return NewBuilder().
		Add(DeclareSteps(cfg)...).
		Vuetify().
		Listen("sass-prelude", sassPreludeStep(NewPrelude(cfg.SassVariablesPath)))
}

func entryNames(entry common.BuildEntry, versionHash bool) string {
	if versionHash {
		return path.Join(entry.OutDir, "[name].[hash]")
	}
	return path.Join(entry.OutDir, "[name]")
}

func (eb *entryBuild) options() api.BuildOptions {
	sourcemap := api.SourceMapNone
	if eb.config.SourceMaps {
		sourcemap = api.SourceMapLinked
	}
	prod := eb.config.Mode.Production

	plugins := []api.Plugin{
		aliasPlugin(eb.config.Resolve.Aliases),
		sassPlugin(eb.config, eb.transpiler, []string{eb.absRoot}),
	}
	plugins = append(plugins, eb.config.Plugins...)

	opts := api.BuildOptions{
		EntryPoints:       []string{eb.absSrc},
		AbsWorkingDir:     eb.absRoot,
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Outdir:            eb.outRoot,
		EntryNames:        entryNames(eb.entry, eb.config.VersionHash),
		ChunkNames:        eb.config.Output.ChunkNames,
		AssetNames:        eb.config.Output.AssetNames,
		Loader:            assetLoaders,
		ResolveExtensions: eb.config.Resolve.Extensions,
		Plugins:           plugins,
		Platform:          api.PlatformBrowser,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  prod,
		MinifyIdentifiers: prod,
		MinifySyntax:      prod,
		LogLevel:          api.LogLevelSilent,
	}
	if eb.entry.Kind == common.EntryKindJS {
		opts.Format = api.FormatIIFE
		opts.Target = api.ES2017
	}
	return opts
}

type entryBuild struct {
	config     *common.BuildConfig
	entry      common.BuildEntry
	transpiler common.Transpiler
	absRoot    string
	absSrc     string
	outRoot    string
}

type entryOutput struct {
	files    []OutputFile
	manifest Manifest
	warnings []string
}

// Compile runs the bundler once per entry (concurrently) and emits the
// combined output: to disk under the build dir, or kept in memory when
// bc.Output.InMemory is set.
func Compile(ctx context.Context, cfg *common.Config, bc *common.BuildConfig) (*BuildResult, error) {
	absRoot, err := filepath.Abs(cfg.GetCleanRootDir())
	if err != nil {
		return nil, fmt.Errorf("error resolving root dir: %w", err)
	}
	outRoot := bc.Output.Path
	if !bc.Output.InMemory {
		if outRoot, err = filepath.Abs(outRoot); err != nil {
			return nil, fmt.Errorf("error resolving output dir: %w", err)
		}
	}

	transpiler := cfg.Transpiler
	if transpiler == nil {
		ds := NewDartSass(cfg.SassBinary)
		defer ds.Close()
		transpiler = ds
	}

	outputs := make([]entryOutput, len(bc.Entries))
	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range bc.Entries {
		eb := &entryBuild{
			config:     bc,
			entry:      entry,
			transpiler: transpiler,
			absRoot:    absRoot,
			absSrc:     filepath.Join(absRoot, entry.Src),
			outRoot:    outRoot,
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := eb.run()
			if err != nil {
				return err
			}
			outputs[i] = *out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BuildResult{
		Mode:       bc.Mode,
		OutputRoot: outRoot,
		InMemory:   bc.Output.InMemory,
		Manifest:   Manifest{},
	}
	seen := map[string]bool{}
	for _, out := range outputs {
		for _, f := range out.files {
			// entries can emit the same asset
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			result.Files = append(result.Files, f)
		}
		for k, v := range out.manifest {
			result.Manifest[k] = v
		}
		result.Warnings = append(result.Warnings, out.warnings...)
	}

	if !result.InMemory {
		if err := emitToDisk(outRoot, result.Files); err != nil {
			return nil, &common.OpError{Op: "emit", Kind: common.KindCompile, Path: outRoot, Err: err}
		}
	}
	return result, nil
}

func (eb *entryBuild) run() (*entryOutput, error) {
	res := api.Build(eb.options())
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, m := range res.Errors {
			msgs = append(msgs, formatMessage(m))
		}
		return nil, &common.OpError{
			Op:   "compile",
			Kind: common.KindCompile,
			Path: eb.entry.Src,
			Err:  fmt.Errorf("%w: %s", common.ErrCompile, strings.Join(msgs, "; ")),
		}
	}

	out := &entryOutput{manifest: Manifest{}}
	for _, w := range res.Warnings {
		out.warnings = append(out.warnings, formatMessage(w))
	}
	for _, f := range res.OutputFiles {
		rel, err := filepath.Rel(eb.outRoot, f.Path)
		if err != nil {
			return nil, fmt.Errorf("error relativizing output %s: %w", f.Path, err)
		}
		out.files = append(out.files, OutputFile{Path: filepath.ToSlash(rel), Contents: f.Contents})
	}

	entryOut, err := eb.entryOutputFromMetafile(res.Metafile)
	if err != nil {
		return nil, err
	}
	out.manifest[manifestKey(eb.entry)] = entryOut
	return out, nil
}

type metafile struct {
	Outputs map[string]struct {
		EntryPoint string `json:"entryPoint"`
	} `json:"outputs"`
}

// entryOutputFromMetafile finds the main output of the entry (never the
// .map sibling) and returns it as a root-relative URL.
func (eb *entryBuild) entryOutputFromMetafile(raw string) (string, error) {
	var meta metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return "", fmt.Errorf("error decoding metafile: %w", err)
	}
	for outPath, out := range meta.Outputs {
		if out.EntryPoint == "" || strings.HasSuffix(outPath, ".map") {
			continue
		}
		abs := outPath
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(eb.absRoot, outPath)
		}
		rel, err := filepath.Rel(eb.outRoot, abs)
		if err != nil {
			return "", fmt.Errorf("error relativizing %s: %w", outPath, err)
		}
		return "/" + filepath.ToSlash(rel), nil
	}
	return "", fmt.Errorf("no output found for entry %s", eb.entry.Src)
}

func manifestKey(entry common.BuildEntry) string {
	base := filepath.Base(entry.Src)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	ext := ".js"
	if entry.Kind == common.EntryKindStyle {
		ext = ".css"
	}
	return "/" + path.Join(entry.OutDir, name+ext)
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}

func emitToDisk(outRoot string, files []OutputFile) error {
	for _, f := range files {
		dest := filepath.Join(outRoot, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
		if err := os.WriteFile(dest, f.Contents, 0644); err != nil {
			return fmt.Errorf("error writing %s: %w", dest, err)
		}
	}
	return nil
}
