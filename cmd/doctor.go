package cmd

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/farrt/build-tools/pkg"
	"github.com/farrt/build-tools/pkg/toolchain"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks that the tools needed for a farrt checkout are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg.PrintTask("Checking toolchain")

		var missing []string
		for _, result := range toolchain.CheckAll(toolchain.DefaultRunner) {
			if result.OK {
				pkg.PrintSubtask(fmt.Sprintf("%s: %s (%s)", result.Name, result.Version, result.Path))
				continue
			}

			detail := result.Detail
			if detail == "" {
				detail = "not found"
			}
			pkg.PrintError(fmt.Sprintf("%s: %s (%s)", result.Name, detail, result.Path))

			if result.Required {
				missing = append(missing, result.Name)
			}
		}

		if len(missing) > 0 {
			return eris.Errorf("Missing required tools: %s", strings.Join(missing, ", "))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
