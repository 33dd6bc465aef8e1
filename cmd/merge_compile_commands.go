package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var mergeCompileCommandsCmd = &cobra.Command{
	Use:   "merge-compile-commands <output file> <input files...>",
	Short: "Merges the compile_commands.json files exported by configure. Only absolute paths are accepted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return eris.Errorf("Expected at least 2 arguments but got %d!", len(args))
		}

		return mergeCompileCommands(args[0], args[1:])
	},
}

type compileCommand struct {
	Directory string   `json:"directory"`
	Command   string   `json:"command,omitempty"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

func mergeCompileCommands(outPath string, inputs []string) error {
	output := make([]compileCommand, 0)
	for _, fpath := range inputs {
		data, err := os.ReadFile(fpath)
		if err != nil {
			return eris.Wrapf(err, "failed to read %s", fpath)
		}

		var chunk []compileCommand
		err = json.Unmarshal(data, &chunk)
		if err != nil {
			return eris.Wrapf(err, "failed to decode %s", fpath)
		}

		// merging makes directory-relative entries ambiguous
		for _, entry := range chunk {
			if !filepath.IsAbs(entry.File) {
				return eris.Errorf("%s contains the relative path %s", fpath, entry.File)
			}
		}

		output = append(output, chunk...)
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode output")
	}

	err = os.WriteFile(outPath, data, 0660)
	if err != nil {
		return eris.Wrapf(err, "failed to write to %s", outPath)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(mergeCompileCommandsCmd)
}
