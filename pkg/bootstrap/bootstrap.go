// Package bootstrap materializes the farrt conda environment and installs
// the project into it.
package bootstrap

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/envfile"
)

// Step is one external invocation of the bootstrap sequence.
type Step struct {
	Desc string
	Argv []string
}

// Steps returns the fixed four-step sequence for the given checkout. The
// order matters: mamba has to exist before the environment can be created
// and the environment has to exist before anything runs inside it.
func Steps(root, envName string) []Step {
	specPath := filepath.Join(root, envfile.FileName)

	return []Step{
		{
			Desc: "install mamba",
			Argv: []string{"conda", "install", "-n", "base", "-y", "mamba"},
		},
		{
			Desc: "create environment",
			Argv: []string{"mamba", "env", "create", "-f", specPath},
		},
		{
			// A child process can't activate an environment in the calling
			// shell; running python inside the new environment is the
			// observable part of activation.
			Desc: "activate environment",
			Argv: []string{"conda", "run", "-n", envName, "python", "--version"},
		},
		{
			Desc: "install farrt",
			Argv: []string{"conda", "run", "-n", envName, "python", "-m", "pip", "install", "-e", root},
		},
	}
}

// Run executes the bootstrap sequence and aborts on the first failing step.
// There is no rollback; a partially created environment is left for the user
// to remove.
func Run(ctx context.Context, root string, spec *envfile.Spec, run pkg.Runner) error {
	logger := pkg.Log(ctx)

	for _, step := range Steps(root, spec.Name) {
		logger.Info().
			Str("step", step.Desc).
			Msgf("Running %s", strings.Join(step.Argv, " "))

		err := run(ctx, step.Argv[0], step.Argv[1:]...)
		if err != nil {
			return eris.Wrapf(err, "Bootstrap aborted during step %s", step.Desc)
		}
	}

	return nil
}
