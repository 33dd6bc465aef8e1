package pkg

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestToolImports(t *testing.T) {
	toolsFile := filepath.Join(t.TempDir(), "tools.go")
	content := `//go:build tools
// +build tools

package main

import (
	_ "github.com/cortesi/modd/cmd/modd"
)
`
	if err := os.WriteFile(toolsFile, []byte(content), 0660); err != nil {
		t.Fatal(err)
	}

	imports, err := ToolImports(toolsFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// bare import paths, no version suffix: the pin in go.mod is what
	// resolves the installed version
	want := []string{"github.com/cortesi/modd/cmd/modd"}
	if !reflect.DeepEqual(imports, want) {
		t.Fatalf("expected %v, got %v", want, imports)
	}
}

func TestToolImportsMissingFile(t *testing.T) {
	_, err := ToolImports(filepath.Join(t.TempDir(), "tools.go"))
	if err == nil {
		t.Fatal("expected an error for a missing tools file")
	}
}
