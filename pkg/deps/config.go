// Package deps downloads and unpacks the prebuilt native libraries the
// planner core links against (GEOS, Eigen, ...). The pinned URLs and
// checksums live in DEPS.yml at the project root.
package deps

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigName is the name of the dependency list at the project root.
	ConfigName = "DEPS.yml"
	// StampName is the name of the stamp file recording what has already
	// been fetched.
	StampName = "DEPS.stamps"
)

// Entry describes one pinned dependency.
type Entry struct {
	Condition  string `yaml:"if,omitempty"`
	Rejections string `yaml:"ifNot,omitempty"`
	URL        string
	Dest       string
	Sha256     string
	Strip      int
	MarkExec   []string `yaml:"markExec,omitempty"`
}

// Config is the parsed DEPS.yml.
type Config struct {
	Vars map[string]string
	Deps map[string]Entry
}

var varMatcher = regexp.MustCompile(`\{([A-Z0-9_]+)\}`)

// Eval substitutes {VAR} placeholders in the URL and reports whether the
// entry applies under the given variables. The "if" list requires every
// named variable to be set and non-empty, the "ifNot" list the opposite.
func (e *Entry) Eval(vars map[string]string) bool {
	e.URL = varMatcher.ReplaceAllStringFunc(e.URL, func(name string) string {
		return vars[name[1:len(name)-1]]
	})

	for _, condition := range strings.Split(e.Condition, ",") {
		if condition == "" {
			continue
		}

		if vars[strings.TrimSpace(condition)] == "" {
			return false
		}
	}

	for _, condition := range strings.Split(e.Rejections, ",") {
		if condition == "" {
			continue
		}

		if vars[strings.TrimSpace(condition)] != "" {
			return false
		}
	}

	return true
}

// LoadConfig reads DEPS.yml and the stamp file next to it. The raw config
// text is returned as well because update mode patches checksums textually
// to keep comments intact.
func LoadConfig(projectRoot string) (Config, string, map[string]string, error) {
	var cfg Config
	cfgPath := filepath.Join(projectRoot, ConfigName)
	cfgData, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfg, "", nil, eris.Wrapf(err, "Could not open file %s.", cfgPath)
	}

	err = yaml.Unmarshal(cfgData, &cfg)
	if err != nil {
		return cfg, "", nil, eris.Wrapf(err, "Failed to parse %s.", cfgPath)
	}

	if cfg.Vars == nil {
		cfg.Vars = map[string]string{}
	}

	stamps := map[string]string{}
	stampPath := filepath.Join(projectRoot, StampName)
	stampData, err := os.ReadFile(stampPath)
	if err != nil {
		if !eris.Is(err, os.ErrNotExist) {
			return cfg, "", nil, eris.Wrapf(err, "Failed to read stamps file %s.", stampPath)
		}
	} else {
		err = json.Unmarshal(stampData, &stamps)
		if err != nil {
			return cfg, "", nil, eris.Wrapf(err, "Failed to parse JSON file %s.", stampPath)
		}
	}

	return cfg, string(cfgData), stamps, nil
}

func writeStamps(projectRoot string, stamps map[string]string) error {
	stampData, err := json.Marshal(stamps)
	if err != nil {
		return eris.Wrap(err, "Failed to encode stamps")
	}

	stampPath := filepath.Join(projectRoot, StampName)
	err = os.WriteFile(stampPath, stampData, 0660)
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", stampPath)
	}

	return nil
}
