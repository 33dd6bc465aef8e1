package bootstrap

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/envfile"
)

func testContext() context.Context {
	logger := zerolog.Nop()
	return pkg.WithLogger(context.Background(), &logger)
}

func TestStepsSequence(t *testing.T) {
	steps := Steps("/src/farrt", "farrt-env")
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}

	expected := []string{
		"conda install -n base -y mamba",
		"mamba env create -f " + filepath.Join("/src/farrt", "environment.yml"),
		"conda run -n farrt-env python --version",
		"conda run -n farrt-env python -m pip install -e /src/farrt",
	}

	for idx, step := range steps {
		got := strings.Join(step.Argv, " ")
		if got != expected[idx] {
			t.Fatalf("step %d: expected %q, got %q", idx, expected[idx], got)
		}
	}
}

func TestRunInvokesAllStepsInOrder(t *testing.T) {
	spec := &envfile.Spec{Name: "farrt-env"}

	var calls []string
	run := func(ctx context.Context, name string, args ...string) error {
		calls = append(calls, name)
		return nil
	}

	if err := Run(testContext(), "/src/farrt", spec, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"conda", "mamba", "conda", "conda"}
	if len(calls) != len(want) {
		t.Fatalf("expected %d invocations, got %d", len(want), len(calls))
	}
	for idx, name := range want {
		if calls[idx] != name {
			t.Fatalf("invocation %d: expected %s, got %s", idx, name, calls[idx])
		}
	}
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	spec := &envfile.Spec{Name: "farrt-env"}

	for failAt := 0; failAt < 4; failAt++ {
		var calls int
		run := func(ctx context.Context, name string, args ...string) error {
			if calls == failAt {
				calls++
				return eris.New("boom")
			}
			calls++
			return nil
		}

		err := Run(testContext(), "/src/farrt", spec, run)
		if err == nil {
			t.Fatalf("failAt=%d: expected an error", failAt)
		}
		if calls != failAt+1 {
			t.Fatalf("failAt=%d: expected %d invocations, got %d", failAt, failAt+1, calls)
		}
	}
}

func TestRunUsesSpecName(t *testing.T) {
	spec := &envfile.Spec{Name: "other-env"}

	var sawEnvFlag bool
	run := func(ctx context.Context, name string, args ...string) error {
		joined := strings.Join(args, " ")
		if strings.Contains(joined, "run -n") {
			sawEnvFlag = true
			if !strings.Contains(joined, "-n other-env") {
				t.Fatalf("expected the declared environment name, got %q", joined)
			}
		}
		return nil
	}

	if err := Run(testContext(), "/src/farrt", spec, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawEnvFlag {
		t.Fatal("expected at least one conda run invocation")
	}
}
