package pkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// Runner executes one external command and blocks until it exits. The
// default implementation is RunCommand; tests substitute fakes.
type Runner func(ctx context.Context, name string, args ...string) error

// CommandError reports a failed external command together with the exit
// status that should be passed through to our own caller.
type CommandError struct {
	Argv     []string
	ExitCode int
	cause    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed with exit status %d", strings.Join(e.Argv, " "), e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.cause
}

// RunCommand runs the given command with inherited standard streams. The
// child's own output is the user-visible error context, so nothing is
// captured or rewritten here.
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	argv := append([]string{name}, args...)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Argv: argv, ExitCode: exitErr.ExitCode(), cause: err}
	}

	return eris.Wrapf(err, "Failed to start %s", name)
}
