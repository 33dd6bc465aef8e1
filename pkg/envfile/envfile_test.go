package envfile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleSpec = `name: farrt-env
channels:
  - conda-forge
  - defaults
dependencies:
  - python=3.9
  - numpy
  - shapely
  - matplotlib
  - pip
  - pip:
      - imageio
      - scikit-image
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0660); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	spec, err := Load(writeSpec(t, sampleSpec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if spec.Name != DefaultName {
		t.Fatalf("expected name %q, got %q", DefaultName, spec.Name)
	}
	if !reflect.DeepEqual(spec.Channels, []string{"conda-forge", "defaults"}) {
		t.Fatalf("unexpected channels: %v", spec.Channels)
	}
	if len(spec.Dependencies) != 6 {
		t.Fatalf("expected 6 dependency entries, got %d", len(spec.Dependencies))
	}
	if spec.Dependencies[0].Package != "python=3.9" {
		t.Fatalf("unexpected first dependency: %+v", spec.Dependencies[0])
	}

	pip := spec.PipPackages()
	if !reflect.DeepEqual(pip, []string{"imageio", "scikit-image"}) {
		t.Fatalf("unexpected pip packages: %v", pip)
	}
}

func TestLoadMissingName(t *testing.T) {
	_, err := Load(writeSpec(t, "channels:\n  - defaults\n"))
	if err == nil {
		t.Fatal("expected an error for a spec without a name")
	}
	if !strings.Contains(err.Error(), "environment name") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeSpec(t, "name: [unterminated"))
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
