package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCompileCommands(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0660); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMergeCompileCommands(t *testing.T) {
	dir := t.TempDir()
	first := writeCompileCommands(t, dir, "a.json", `[
  {"directory": "/src/farrt/build", "command": "gcc -c /src/farrt/core/rrt.c", "file": "/src/farrt/core/rrt.c"},
  {"directory": "/src/farrt/build", "command": "gcc -c /src/farrt/core/world.c", "file": "/src/farrt/core/world.c"}
]`)
	second := writeCompileCommands(t, dir, "b.json", `[
  {"directory": "/src/farrt/build-dbg", "command": "gcc -c /src/farrt/core/rrt.c", "file": "/src/farrt/core/rrt.c"}
]`)

	outPath := filepath.Join(dir, "compile_commands.json")
	if err := mergeCompileCommands(outPath, []string{first, second}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}

	var merged []compileCommand
	if err := json.Unmarshal(data, &merged); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(merged))
	}
	if merged[0].File != "/src/farrt/core/rrt.c" || merged[2].Directory != "/src/farrt/build-dbg" {
		t.Fatalf("input order not preserved: %+v", merged)
	}
}

func TestMergeCompileCommandsRejectsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	input := writeCompileCommands(t, dir, "a.json", `[
  {"directory": "/src/farrt/build", "command": "gcc -c rrt.c", "file": "core/rrt.c"}
]`)

	outPath := filepath.Join(dir, "compile_commands.json")
	err := mergeCompileCommands(outPath, []string{input})
	if err == nil {
		t.Fatal("expected an error for a relative file path")
	}
	if !strings.Contains(err.Error(), "relative path core/rrt.c") {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatal("no output may be written when validation fails")
	}
}

func TestMergeCompileCommandsBadInput(t *testing.T) {
	dir := t.TempDir()
	input := writeCompileCommands(t, dir, "a.json", `{"not": "an array"}`)

	err := mergeCompileCommands(filepath.Join(dir, "out.json"), []string{input})
	if err == nil {
		t.Fatal("expected a decode error")
	}
}
