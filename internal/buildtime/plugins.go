package buildtime

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/sjc5/lux/internal/common"
)

const (
	VuetifyLoaderPluginName = "vuetify-loader"
	aliasPluginName         = "lux-alias"
	sassPluginName          = "lux-sass"
)

type aliasMarker struct{}

// VuetifyLoaderPlugin points bare "vuetify" imports at the tree-shakable
// "vuetify/lib" build so only the components actually used get bundled.
func VuetifyLoaderPlugin() api.Plugin {
	return api.Plugin{
		Name: VuetifyLoaderPluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^vuetify$`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				res := build.Resolve("vuetify/lib", api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind,
				})
				if len(res.Errors) > 0 {
					return api.OnResolveResult{Errors: res.Errors}, nil
				}
				return api.OnResolveResult{Path: res.Path, External: res.External, Namespace: res.Namespace}, nil
			})
		},
	}
}

// matchAlias applies the first matching alias. Keys ending in "$" only match
// exactly; other keys match themselves and anything below "key/".
func matchAlias(aliases []common.Alias, importPath string) (string, bool) {
	for _, a := range aliases {
		if exact, ok := strings.CutSuffix(a.Key, "$"); ok {
			if importPath == exact {
				return a.Target, true
			}
			continue
		}
		if importPath == a.Key {
			return a.Target, true
		}
		if rest, ok := strings.CutPrefix(importPath, a.Key+"/"); ok {
			return filepath.ToSlash(a.Target) + "/" + rest, true
		}
	}
	return "", false
}

func aliasFilter(aliases []common.Alias) string {
	parts := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if exact, ok := strings.CutSuffix(a.Key, "$"); ok {
			parts = append(parts, regexp.QuoteMeta(exact)+"$")
			continue
		}
		parts = append(parts, regexp.QuoteMeta(a.Key)+"(/|$)")
	}
	return "^(" + strings.Join(parts, "|") + ")"
}

func aliasPlugin(aliases []common.Alias) api.Plugin {
	return api.Plugin{
		Name: aliasPluginName,
		Setup: func(build api.PluginBuild) {
			if len(aliases) == 0 {
				return
			}
			build.OnResolve(api.OnResolveOptions{Filter: aliasFilter(aliases)}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if _, seen := args.PluginData.(aliasMarker); seen {
					return api.OnResolveResult{}, nil
				}
				target, ok := matchAlias(aliases, args.Path)
				if !ok {
					return api.OnResolveResult{}, nil
				}
				res := build.Resolve(target, api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: args.ResolveDir,
					Kind:       args.Kind,
					PluginData: aliasMarker{},
				})
				if len(res.Errors) > 0 {
					return api.OnResolveResult{Errors: res.Errors}, nil
				}
				return api.OnResolveResult{Path: res.Path, External: res.External, Namespace: res.Namespace}, nil
			})
		},
	}
}

// sassPlugin compiles .scss/.sass files through the transpiler, honoring the
// sass-loader options of the matching rule (prependData in particular).
func sassPlugin(bc *common.BuildConfig, transpiler common.Transpiler, includePaths []string) api.Plugin {
	return api.Plugin{
		Name: sassPluginName,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.s[ac]ss$`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				syntax, ruleID := common.SyntaxSCSS, common.RuleSCSS
				if filepath.Ext(args.Path) == ".sass" {
					syntax, ruleID = common.SyntaxSass, common.RuleSass
				}

				var prependData string
				if rule := bc.FindRule(ruleID); rule != nil {
					prependData = rule.FindLoader(common.LoaderSass).StringOption(common.OptionPrependData)
				}

				source, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, fmt.Errorf("error reading stylesheet: %w", err)
				}
				src := string(source)
				if prependData != "" {
					src = prependData + "\n" + src
				}

				dir := filepath.Dir(args.Path)
				css, err := transpiler.Transpile(common.TranspileRequest{
					Path:         args.Path,
					Source:       src,
					Syntax:       syntax,
					IncludePaths: append([]string{dir}, includePaths...),
					Compressed:   bc.Mode.Production,
				})
				if err != nil {
					return api.OnLoadResult{}, fmt.Errorf("error transpiling %s: %w", args.Path, err)
				}

				return api.OnLoadResult{
					Contents:   &css,
					ResolveDir: dir,
					Loader:     api.LoaderCSS,
				}, nil
			})
		},
	}
}
