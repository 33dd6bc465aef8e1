// Package envfile reads the environment.yml that describes the farrt conda
// environment.
package envfile

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultName is the environment name the project's environment.yml declares.
const DefaultName = "farrt-env"

// FileName is the fixed name of the spec file at the project root.
const FileName = "environment.yml"

// Spec is the parsed environment specification.
type Spec struct {
	Name         string       `yaml:"name"`
	Channels     []string     `yaml:"channels"`
	Dependencies []Dependency `yaml:"dependencies"`
}

// Dependency is one entry of the dependencies list. Conda packages appear as
// plain strings, pip packages as a nested mapping with a "pip" key.
type Dependency struct {
	Package string
	Pip     []string
}

func (d *Dependency) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&d.Package)
	case yaml.MappingNode:
		var section struct {
			Pip []string `yaml:"pip"`
		}

		err := node.Decode(&section)
		if err != nil {
			return eris.Wrap(err, "Failed to parse dependency section")
		}

		d.Pip = section.Pip
		return nil
	}

	return eris.Errorf("Unexpected YAML node in the dependencies list (line %d)", node.Line)
}

// Load parses and validates the spec file at the given path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s.", path)
	}

	var spec Spec
	err = yaml.Unmarshal(data, &spec)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s.", path)
	}

	if spec.Name == "" {
		return nil, eris.Errorf("%s doesn't declare an environment name", path)
	}

	return &spec, nil
}

// PipPackages collects the packages from all nested pip sections.
func (s *Spec) PipPackages() []string {
	var result []string
	for _, dep := range s.Dependencies {
		result = append(result, dep.Pip...)
	}

	return result
}
