package buildtime

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/sjc5/lux/internal/common"
)

// Phase orders steps: every PhaseDeclare step runs before any
// PhaseWebpackConfig step, which all run before PhaseConfigReady.
type Phase int

const (
	PhaseDeclare Phase = iota
	PhaseWebpackConfig
	PhaseConfigReady
)

var phaseOrder = []Phase{PhaseDeclare, PhaseWebpackConfig, PhaseConfigReady}

func (p Phase) String() string {
	switch p {
	case PhaseDeclare:
		return "declare"
	case PhaseWebpackConfig:
		return "webpackConfig"
	case PhaseConfigReady:
		return "configReady"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type StepFunc func(bc *common.BuildConfig, mode common.Mode) error

type Step struct {
	Name  string
	Phase Phase
	Apply StepFunc
}

// Builder is an explicit, ordered list of named build steps.
type Builder struct {
	steps []Step
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Add(steps ...Step) *Builder {
	b.steps = append(b.steps, steps...)
	return b
}

// Listen registers fn to run once the configuration is fully assembled.
func (b *Builder) Listen(name string, fn StepFunc) *Builder {
	return b.Add(Step{Name: name, Phase: PhaseConfigReady, Apply: fn})
}

// WebpackConfig registers fn to run during finalization.
func (b *Builder) WebpackConfig(name string, fn StepFunc) *Builder {
	return b.Add(Step{Name: name, Phase: PhaseWebpackConfig, Apply: fn})
}

// Vuetify registers the vuetify-loader plugin. Calling it twice registers it twice.
func (b *Builder) Vuetify() *Builder {
	return b.Add(RegisterPlugin(VuetifyLoaderPluginName, VuetifyLoaderPlugin))
}

func (b *Builder) Steps() []Step {
	return append([]Step(nil), b.steps...)
}

// Build assembles a fresh BuildConfig by running every step, phase by phase.
func (b *Builder) Build(mode common.Mode) (*common.BuildConfig, error) {
	bc := &common.BuildConfig{
		Mode:  mode,
		Rules: common.DefaultRules(),
	}
	for _, phase := range phaseOrder {
		for _, step := range b.steps {
			if step.Phase != phase {
				continue
			}
			if err := step.Apply(bc, mode); err != nil {
				return nil, fmt.Errorf("error in %s step %q: %w", phase, step.Name, err)
			}
		}
	}
	return bc, nil
}

type PluginFactory func() api.Plugin

// RegisterPlugin returns a finalization step that appends a fresh plugin
// instance to the plugin list. The plugin is not created until the step runs.
func RegisterPlugin(name string, factory PluginFactory) Step {
	return Step{
		Name:  "plugin:" + name,
		Phase: PhaseWebpackConfig,
		Apply: func(bc *common.BuildConfig, _ common.Mode) error {
			bc.Plugins = append(bc.Plugins, factory())
			return nil
		},
	}
}
