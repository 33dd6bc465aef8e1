// Package toolchain probes the external tools the other commands rely on.
package toolchain

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/farrt/build-tools/pkg/configure"
)

// Runner executes a probe command and returns its combined output. Tests
// substitute fakes.
type Runner func(name string, args ...string) ([]byte, error)

// CheckResult is the outcome of probing one tool.
type CheckResult struct {
	Name     string
	Path     string
	OK       bool
	Required bool
	Version  string
	Detail   string
}

// DefaultRunner probes with the real binary. Stderr is folded into the
// output so failure details reach the report.
func DefaultRunner(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	stdout, err := cmd.Output()
	if err == nil {
		return stdout, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		combined := make([]byte, 0, len(stdout)+len(exitErr.Stderr))
		combined = append(combined, stdout...)
		combined = append(combined, exitErr.Stderr...)
		return combined, err
	}

	return stdout, err
}

// CheckAll probes every tool the configure and bootstrap-env commands
// invoke. mamba is optional because bootstrap-env installs it.
func CheckAll(run Runner) []CheckResult {
	cfg := configure.NewConfig(".")

	return []CheckResult{
		check("cmake", cfg.CMake, true, run),
		check("cc", cfg.CCompiler, true, run),
		check("c++", cfg.CXXCompiler, true, run),
		check("conda", "conda", true, run),
		check("mamba", "mamba", false, run),
		check("python", "python", true, run),
	}
}

func check(name, binary string, required bool, run Runner) CheckResult {
	output, err := run(binary, "--version")
	if err != nil {
		return CheckResult{
			Name:     name,
			Path:     binary,
			Required: required,
			Detail:   strings.TrimSpace(string(output)),
		}
	}

	version := firstLine(string(output))
	return CheckResult{
		Name:     name,
		Path:     binary,
		OK:       version != "",
		Required: required,
		Version:  version,
	}
}

func firstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[0])
}
