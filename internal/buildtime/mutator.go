package buildtime

import (
	"fmt"

	"github.com/sjc5/lux/internal/common"
)

// Prelude holds the statement prepended to every stylesheet, per syntax.
// The indented syntax takes no trailing semicolon.
type Prelude struct {
	SCSS string
	Sass string
}

func NewPrelude(variablesPath string) Prelude {
	return Prelude{
		SCSS: fmt.Sprintf(`@import "%s";`, variablesPath),
		Sass: fmt.Sprintf(`@import "%s"`, variablesPath),
	}
}

// InjectSassPrelude sets prependData on the sass-loader of the SCSS and Sass
// rules. Both must exist; if either is missing nothing is patched.
func InjectSassPrelude(bc *common.BuildConfig, prelude Prelude) error {
	targets := []struct {
		id   common.RuleID
		data string
	}{
		{common.RuleSCSS, prelude.SCSS},
		{common.RuleSass, prelude.Sass},
	}

	loaders := make([]*common.LoaderDescriptor, len(targets))
	for i, target := range targets {
		rule := bc.FindRule(target.id)
		if rule == nil {
			return &common.OpError{Op: "inject sass prelude", Kind: common.KindConfigShape, Path: string(target.id), Err: common.ErrRuleNotFound}
		}
		loader := rule.FindLoader(common.LoaderSass)
		if loader == nil {
			return &common.OpError{Op: "inject sass prelude", Kind: common.KindConfigShape, Path: string(target.id), Err: common.ErrLoaderNotFound}
		}
		loaders[i] = loader
	}

	for i, loader := range loaders {
		if loader.Options == nil {
			loader.Options = map[string]any{}
		}
		loader.Options[common.OptionPrependData] = targets[i].data
	}
	return nil
}

func sassPreludeStep(prelude Prelude) StepFunc {
	return func(bc *common.BuildConfig, _ common.Mode) error {
		return InjectSassPrelude(bc, prelude)
	}
}
