package common

import (
	"github.com/evanw/esbuild/pkg/api"
)

type EntryKind string

const (
	EntryKindJS    EntryKind = "js"
	EntryKindStyle EntryKind = "style"
)

// RuleID is the stable identifier a rule is looked up by. Steps never match
// on a rule's Test pattern.
type RuleID string

const (
	RuleSCSS   RuleID = "scss"
	RuleSass   RuleID = "sass"
	RuleCSS    RuleID = "css"
	RuleImages RuleID = "images"
)

const (
	LoaderSass = "sass-loader"
	LoaderCSS  = "css-loader"
	LoaderFile = "file-loader"

	OptionPrependData = "prependData"
)

// BuildConfig is the fully assembled description of a single build. It is
// produced by the step builder and patched in place by its steps, once.
type BuildConfig struct {
	Mode    Mode
	Entries []BuildEntry
	Output  Output
	Resolve Resolve
	Rules   []Rule
	Plugins []api.Plugin

	VersionHash bool
	SourceMaps  bool
}

type BuildEntry struct {
	Kind   EntryKind
	Src    string
	OutDir string
}

type Output struct {
	Path       string
	InMemory   bool
	ChunkNames string
	AssetNames string
}

type Resolve struct {
	Extensions []string
	Aliases    []Alias
}

type Rule struct {
	ID      RuleID
	Test    string
	Loaders []LoaderDescriptor
}

type LoaderDescriptor struct {
	Loader  string
	Options map[string]any
}

// FindRule returns a pointer into bc.Rules so callers can patch it in place.
func (bc *BuildConfig) FindRule(id RuleID) *Rule {
	for i := range bc.Rules {
		if bc.Rules[i].ID == id {
			return &bc.Rules[i]
		}
	}
	return nil
}

func (r *Rule) FindLoader(loader string) *LoaderDescriptor {
	for i := range r.Loaders {
		if r.Loaders[i].Loader == loader {
			return &r.Loaders[i]
		}
	}
	return nil
}

// StringOption reads a string option, returning "" if unset or not a string.
func (l *LoaderDescriptor) StringOption(key string) string {
	if l == nil || l.Options == nil {
		return ""
	}
	s, _ := l.Options[key].(string)
	return s
}

// DefaultRules mirrors the loader rules a bundler sets up for stylesheets
// and images before any user patch is applied.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:   RuleCSS,
			Test: `\.css$`,
			Loaders: []LoaderDescriptor{
				{Loader: LoaderCSS, Options: map[string]any{"url": true}},
			},
		},
		{
			ID:   RuleSCSS,
			Test: `\.scss$`,
			Loaders: []LoaderDescriptor{
				{Loader: LoaderCSS, Options: map[string]any{"url": true}},
				{Loader: LoaderSass, Options: map[string]any{"sourceMap": false}},
			},
		},
		{
			ID:   RuleSass,
			Test: `\.sass$`,
			Loaders: []LoaderDescriptor{
				{Loader: LoaderCSS, Options: map[string]any{"url": true}},
				{Loader: LoaderSass, Options: map[string]any{"sourceMap": false, "indentedSyntax": true}},
			},
		},
		{
			ID:   RuleImages,
			Test: `\.(png|jpe?g|gif|webp|svg)$`,
			Loaders: []LoaderDescriptor{
				{Loader: LoaderFile, Options: map[string]any{"name": "images/[name]"}},
			},
		},
	}
}
