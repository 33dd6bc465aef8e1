package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/configure"
)

const configureUsage = `Usage: tool configure [-h|--help] [-r|--re-build] [--dry]

Configures the native build directory (<cwd>/build) for the planner core
and exports compile_commands.json.

Options:
  -h, --help      display this help text and exit
  -r, --re-build  remove the build directory before configuring
      --dry       print the CMake invocation instead of running it
`

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configures the native build via CMake",
	Long: `Resolves the toolchain (preferring the conda environment), optionally wipes
the previous build directory and invokes CMake for the planner core.`,
	// The flag contract predates this tool; pflag's unknown-flag error text
	// doesn't match it, so tokens are parsed by hand.
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := configure.ParseArgs(args)
		if err != nil {
			var usageErr *configure.UsageError
			if errors.As(err, &usageErr) {
				fmt.Println(usageErr.Error())
				os.Exit(1)
			}
			return err
		}

		if opts.Help {
			fmt.Print(configureUsage)
			return nil
		}

		wd, err := os.Getwd()
		if err != nil {
			return eris.Wrap(err, "Failed to retrieve the current working directory")
		}

		cfg := configure.NewConfig(wd)
		cfg.Rebuild = opts.Rebuild

		logger := zerolog.New(NewConsoleWriter())
		ctx := pkg.WithLogger(cmd.Context(), &logger)

		pkg.PrintTask("Configuring native build")
		err = configure.Run(ctx, cfg, opts.Dry, pkg.RunCommand)
		if err != nil {
			return exitOnCommandError(err)
		}

		return nil
	},
}

// exitOnCommandError passes the exit status of a failed external command
// through unchanged. Other errors go back to cobra.
func exitOnCommandError(err error) error {
	var cmdErr *pkg.CommandError
	if errors.As(err, &cmdErr) {
		pkg.PrintError(cmdErr.Error())
		os.Exit(cmdErr.ExitCode)
	}

	return err
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
