// Package configure assembles and runs the CMake invocation for the native
// planner core.
package configure

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/envfile"
)

const (
	// BuildType is the only build type the project configures with.
	BuildType = "RelWithDebInfo"
	// Generator is the CMake generator backend.
	Generator = "Unix Makefiles"

	fallbackPrefix = "/usr"
)

// Config carries everything the single CMake invocation needs. It's built
// once per run and never persisted.
type Config struct {
	BuildType     string
	CMake         string
	CCompiler     string
	CXXCompiler   string
	ToolchainFile string
	SourceDir     string
	BuildDir      string
	Rebuild       bool
}

// NewConfig resolves the toolchain and returns the configuration for the
// given source directory. The toolchain file is optional and comes from
// FARRT_TOOLCHAIN_FILE.
func NewConfig(sourceDir string) Config {
	primary := CondaPrefix()

	return Config{
		BuildType:     BuildType,
		CMake:         ResolveTool(primary, fallbackPrefix, "cmake"),
		CCompiler:     ResolveTool(primary, fallbackPrefix, "gcc"),
		CXXCompiler:   ResolveTool(primary, fallbackPrefix, "g++"),
		ToolchainFile: os.Getenv("FARRT_TOOLCHAIN_FILE"),
		SourceDir:     sourceDir,
		BuildDir:      filepath.Join(sourceDir, "build"),
	}
}

// CondaPrefix returns the environment prefix probed first for build tools:
// the active conda environment if there is one, the farrt-env default
// location otherwise.
func CondaPrefix() string {
	if prefix := os.Getenv("CONDA_PREFIX"); prefix != "" {
		return prefix
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, "miniconda3", "envs", envfile.DefaultName)
}

// ResolveTool returns the path of the named binary under primary if a
// regular file exists there and the fallback path otherwise. Note that the
// fallback path is returned even if it doesn't exist either; a missing tool
// surfaces as an error from the CMake invocation, not from us.
func ResolveTool(primary, fallback, name string) string {
	candidate := filepath.Join(primary, "bin", name)
	info, err := os.Stat(candidate)
	if err == nil && info.Mode().IsRegular() {
		return candidate
	}

	return filepath.Join(fallback, "bin", name)
}

// CMakeArgs returns the argument list for the CMake invocation.
func (c Config) CMakeArgs() []string {
	args := []string{
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
		"-DCMAKE_BUILD_TYPE=" + c.BuildType,
		"-DCMAKE_C_COMPILER=" + c.CCompiler,
		"-DCMAKE_CXX_COMPILER=" + c.CXXCompiler,
	}

	if c.ToolchainFile != "" {
		args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+c.ToolchainFile)
	}

	return append(args,
		"-S", c.SourceDir,
		"-B", c.BuildDir,
		"-G", Generator,
	)
}

// Run removes the build directory if a rebuild was requested and then hands
// off to CMake. In dry mode nothing is touched; the planned invocation is
// only logged.
func Run(ctx context.Context, cfg Config, dry bool, run pkg.Runner) error {
	logger := pkg.Log(ctx)

	if dry {
		if cfg.Rebuild {
			logger.Info().
				Str("step", "configure").
				Str("path", cfg.BuildDir).
				Msg("Would remove the build directory")
		}

		logger.Info().
			Str("step", "configure").
			Msgf("Would run %s %s", cfg.CMake, strings.Join(cfg.CMakeArgs(), " "))
		return nil
	}

	if cfg.Rebuild {
		logger.Info().
			Str("step", "configure").
			Str("path", cfg.BuildDir).
			Msg("Removing previous build directory")

		err := os.RemoveAll(cfg.BuildDir)
		if err != nil {
			return eris.Wrapf(err, "Failed to remove %s", cfg.BuildDir)
		}
	}

	return run(ctx, cfg.CMake, cfg.CMakeArgs()...)
}
