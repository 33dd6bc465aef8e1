package pkg

import (
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ToolImports returns the import paths pinned by the blank imports in the
// given tools file.
func ToolImports(toolsFile string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, toolsFile, nil, parser.ImportsOnly)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", toolsFile)
	}

	imports := make([]string, 0, len(f.Imports))
	for _, path := range f.Imports {
		imports = append(imports, strings.Trim(path.Path.Value, `"`))
	}

	return imports, nil
}

// InstallTools installs the dev tools listed in tools.go at the checkout
// root into the .tools directory. The bare import paths are installed from
// inside the module so the versions resolve through go.mod; a version
// suffix would bypass that pin.
func InstallTools() error {
	projectRoot, err := GetProjectRoot()
	if err != nil {
		return err
	}

	binPath := filepath.Join(projectRoot, ".tools")
	toolsFile := filepath.Join(projectRoot, "tools.go")

	imports, err := ToolImports(toolsFile)
	if err != nil {
		return err
	}

	for _, dep := range imports {
		PrintSubtask("go install " + dep)

		cmd := exec.Command("go", "install", dep)
		cmd.Dir = filepath.Dir(toolsFile)
		cmd.Env = append(os.Environ(), "GOBIN="+binPath)
		cmd.Stderr = os.Stderr
		cmd.Stdout = os.Stdout
		err := cmd.Run()
		if err != nil {
			return eris.Wrapf(err, "Failed to install %s", dep)
		}
	}

	return nil
}
