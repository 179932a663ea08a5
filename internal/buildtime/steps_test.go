package buildtime

import (
	"errors"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/go-cmp/cmp"
	"github.com/sjc5/lux/internal/common"
)

func TestBuilderRunsPhasesInOrder(t *testing.T) {
	var order []string
	record := func(name string) StepFunc {
		return func(*common.BuildConfig, common.Mode) error {
			order = append(order, name)
			return nil
		}
	}

	// registered out of phase order on purpose
	b := NewBuilder().
		Listen("ready", record("ready")).
		WebpackConfig("finalize-a", record("finalize-a")).
		Add(Step{Name: "declare", Phase: PhaseDeclare, Apply: record("declare")}).
		WebpackConfig("finalize-b", record("finalize-b"))

	if _, err := b.Build(common.Mode{}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"declare", "finalize-a", "finalize-b", "ready"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("step order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderPassesModeToEveryStep(t *testing.T) {
	mode := common.Mode{Production: true, HMR: true}
	var seen []common.Mode
	step := func(bc *common.BuildConfig, m common.Mode) error {
		seen = append(seen, m)
		if bc.Mode != m {
			t.Errorf("bc.Mode = %v, step mode = %v", bc.Mode, m)
		}
		return nil
	}

	_, err := NewBuilder().
		Add(Step{Name: "a", Phase: PhaseDeclare, Apply: step}).
		WebpackConfig("b", step).
		Listen("c", step).
		Build(mode)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]common.Mode{mode, mode, mode}, seen); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	_, err := NewBuilder().
		Add(Step{Name: "broken", Phase: PhaseDeclare, Apply: func(*common.BuildConfig, common.Mode) error { return boom }}).
		Listen("never", func(*common.BuildConfig, common.Mode) error { ran = true; return nil }).
		Build(common.Mode{})

	if !errors.Is(err, boom) {
		t.Fatalf("Build() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), `declare step "broken"`) {
		t.Errorf("error does not name the step: %v", err)
	}
	if ran {
		t.Error("step after the failing one still ran")
	}
}

func TestRegisterPluginAppendsOnFinalize(t *testing.T) {
	existing := api.Plugin{Name: "existing"}
	calls := 0
	factory := func() api.Plugin {
		calls++
		return api.Plugin{Name: "probe"}
	}

	step := RegisterPlugin("probe", factory)
	if calls != 0 {
		t.Fatal("plugin was created at registration time")
	}
	if step.Phase != PhaseWebpackConfig {
		t.Errorf("Phase = %v, want %v", step.Phase, PhaseWebpackConfig)
	}

	bc, err := NewBuilder().
		Add(Step{Name: "seed", Phase: PhaseDeclare, Apply: func(bc *common.BuildConfig, _ common.Mode) error {
			bc.Plugins = append(bc.Plugins, existing)
			return nil
		}}).
		Add(step).
		Build(common.Mode{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var names []string
	for _, p := range bc.Plugins {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"existing", "probe"}, names); diff != "" {
		t.Errorf("plugins mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestRegisterPluginTwiceAppendsTwice(t *testing.T) {
	bc, err := NewBuilder().Vuetify().Vuetify().Build(common.Mode{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(bc.Plugins) != 2 {
		t.Errorf("len(Plugins) = %d, want 2", len(bc.Plugins))
	}
}

func TestDriverBuilderRegistersVuetifyOnce(t *testing.T) {
	env := setupTestEnv(t, common.Mode{})
	bc, err := NewDriverBuilder(env.config).Build(env.config.Mode)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	count := 0
	for _, p := range bc.Plugins {
		if p.Name == VuetifyLoaderPluginName {
			count++
		}
	}
	if count != 1 {
		t.Errorf("vuetify-loader registered %d times, want 1", count)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseDeclare, "declare"},
		{PhaseWebpackConfig, "webpackConfig"},
		{PhaseConfigReady, "configReady"},
		{Phase(9), "phase(9)"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}
