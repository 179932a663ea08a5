package buildtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sjc5/lux/internal/common"
)

const testVarsPath = "./resources/sass/vuetify/variables"

func TestInjectSassPrelude(t *testing.T) {
	bc := &common.BuildConfig{Rules: common.DefaultRules()}

	if err := InjectSassPrelude(bc, NewPrelude(testVarsPath)); err != nil {
		t.Fatalf("InjectSassPrelude() error = %v", err)
	}

	scss := bc.FindRule(common.RuleSCSS).FindLoader(common.LoaderSass)
	wantSCSS := map[string]any{
		"sourceMap":   false,
		"prependData": `@import "./resources/sass/vuetify/variables";`,
	}
	if diff := cmp.Diff(wantSCSS, scss.Options); diff != "" {
		t.Errorf("scss sass-loader options mismatch (-want +got):\n%s", diff)
	}

	sass := bc.FindRule(common.RuleSass).FindLoader(common.LoaderSass)
	wantSass := map[string]any{
		"sourceMap":      false,
		"indentedSyntax": true,
		"prependData":    `@import "./resources/sass/vuetify/variables"`,
	}
	if diff := cmp.Diff(wantSass, sass.Options); diff != "" {
		t.Errorf("sass sass-loader options mismatch (-want +got):\n%s", diff)
	}

	// the css-loader descriptors and unrelated rules are left alone
	if diff := cmp.Diff(common.DefaultRules()[0], bc.Rules[0]); diff != "" {
		t.Errorf("css rule changed (-want +got):\n%s", diff)
	}
	if got := bc.FindRule(common.RuleSCSS).FindLoader(common.LoaderCSS).Options; len(got) != 1 {
		t.Errorf("css-loader options changed: %v", got)
	}
}

func TestInjectSassPreludeCreatesOptions(t *testing.T) {
	bc := &common.BuildConfig{Rules: common.DefaultRules()}
	bc.FindRule(common.RuleSCSS).FindLoader(common.LoaderSass).Options = nil

	if err := InjectSassPrelude(bc, NewPrelude(testVarsPath)); err != nil {
		t.Fatalf("InjectSassPrelude() error = %v", err)
	}
	got := bc.FindRule(common.RuleSCSS).FindLoader(common.LoaderSass).StringOption(common.OptionPrependData)
	if got != `@import "./resources/sass/vuetify/variables";` {
		t.Errorf("prependData = %q", got)
	}
}

func TestInjectSassPreludeMissingShape(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(bc *common.BuildConfig)
		wantErr error
	}{
		{
			name: "missing scss rule",
			mutate: func(bc *common.BuildConfig) {
				bc.Rules = removeRule(bc.Rules, common.RuleSCSS)
			},
			wantErr: common.ErrRuleNotFound,
		},
		{
			name: "missing sass rule",
			mutate: func(bc *common.BuildConfig) {
				bc.Rules = removeRule(bc.Rules, common.RuleSass)
			},
			wantErr: common.ErrRuleNotFound,
		},
		{
			name: "missing sass-loader",
			mutate: func(bc *common.BuildConfig) {
				rule := bc.FindRule(common.RuleSass)
				rule.Loaders = rule.Loaders[:1]
			},
			wantErr: common.ErrLoaderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := &common.BuildConfig{Rules: common.DefaultRules()}
			tt.mutate(bc)

			err := InjectSassPrelude(bc, NewPrelude(testVarsPath))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("InjectSassPrelude() error = %v, want %v", err, tt.wantErr)
			}
			if !common.IsKind(err, common.KindConfigShape) {
				t.Errorf("error kind is not %s: %v", common.KindConfigShape, err)
			}
			// nothing is half-applied
			if rule := bc.FindRule(common.RuleSCSS); rule != nil {
				if got := rule.FindLoader(common.LoaderSass).StringOption(common.OptionPrependData); got != "" {
					t.Errorf("scss prependData was set to %q despite the error", got)
				}
			}
		})
	}
}

func TestDriverAbortsOnMissingRule(t *testing.T) {
	env := setupTestEnv(t, common.Mode{})

	_, err := NewDriverBuilder(env.config).
		WebpackConfig("drop-scss", func(bc *common.BuildConfig, _ common.Mode) error {
			bc.Rules = removeRule(bc.Rules, common.RuleSCSS)
			return nil
		}).
		Build(env.config.Mode)

	if !common.IsKind(err, common.KindConfigShape) {
		t.Fatalf("Build() error = %v, want a %s error", err, common.KindConfigShape)
	}
}

func removeRule(rules []common.Rule, id common.RuleID) []common.Rule {
	var out []common.Rule
	for _, r := range rules {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
