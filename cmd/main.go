package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tool",
	Short: "Build tools for farrt",
	Long: `This command bundles several tools that are used to set up a farrt development
checkout. This includes the native build configuration, the conda environment
bootstrap and helpers to download prebuilt dependencies for the planner core.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
