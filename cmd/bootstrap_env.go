package cmd

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/bootstrap"
	"github.com/farrt/build-tools/pkg/envfile"
)

var bootstrapEnvCmd = &cobra.Command{
	Use:   "bootstrap-env",
	Short: "Creates the farrt conda environment and installs the project into it",
	Long: `Installs mamba into the base environment, creates the environment declared in
environment.yml at the project root and installs the checkout in editable
mode. The sequence aborts on the first failing step; re-running with an
existing environment is expected to fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		spec, err := envfile.Load(filepath.Join(root, envfile.FileName))
		if err != nil {
			return err
		}

		logger := zerolog.New(NewConsoleWriter())
		ctx := pkg.WithLogger(cmd.Context(), &logger)

		pkg.PrintTask("Bootstrapping environment " + spec.Name)
		err = bootstrap.Run(ctx, root, spec, pkg.RunCommand)
		if err != nil {
			return exitOnCommandError(err)
		}

		pkg.PrintTask("Done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapEnvCmd)
}
