package cmd

import (
	"github.com/spf13/cobra"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/deps"
)

var fetchDepsCmd = &cobra.Command{
	Use:   "fetch-deps",
	Short: "Downloads and unpacks prebuilt native dependencies",
	Long: `Downloads and unpacks the prebuilt libraries the planner core links against,
as listed in DEPS.yml at the project root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		update, err := cmd.Flags().GetBool("update")
		if err != nil {
			return err
		}

		return deps.Fetch(cmd.Context(), root, deps.Options{Update: update})
	},
}

func init() {
	rootCmd.AddCommand(fetchDepsCmd)
	fetchDepsCmd.Flags().BoolP("update", "u", false, "Update checksums")
}
