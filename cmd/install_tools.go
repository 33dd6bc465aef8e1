package cmd

import (
	"github.com/spf13/cobra"

	"github.com/farrt/build-tools/pkg"
)

var installToolsCmd = &cobra.Command{
	Use:   "install-tools",
	Short: "Installs Go CLI tools",
	Long: `Installs the dev tools used while working on the native planner core (the modd
watcher for rebuild-on-change) into the checkout's .tools directory. If you
have direnv enabled, they will be available in your PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pkg.InstallTools()
	},
}

func init() {
	rootCmd.AddCommand(installToolsCmd)
}
