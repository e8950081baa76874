// Public domain.

package gcprog

import (
	"fmt"
	"os"

	"github.com/soniakeys/exit"
	"gopkg.in/yaml.v3"

	"github.com/seismotools/gmcoll/collection"
	"github.com/seismotools/gmcoll/trace"
)

// configFile is the YAML shape of the optional config file.  Absent
// sections and fields keep their defaults.
type configFile struct {
	Duplicate struct {
		MaxDistTolerance       *float64 `yaml:"max_dist_tolerance"`
		ProcessLevelPreference []string `yaml:"process_level_preference"`
		FormatPreference       []string `yaml:"format_preference"`
	} `yaml:"duplicate"`
	Colocated struct {
		Preference []string `yaml:"preference"`
	} `yaml:"colocated"`
}

// readConfig builds the collection configuration, defaulted from
// collection.DefaultConfig and overridden by the config file when one
// is given.  Terminates on error, like all setup here.
func readConfig(cl *commandLine) collection.Config {
	cfg := collection.DefaultConfig()
	if cl.fnConfig == "" {
		return cfg
	}
	b, err := os.ReadFile(cl.fnConfig)
	if err != nil {
		exit.Log(err)
	}
	var cf configFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		exit.Log(fmt.Sprintf("%s: %s", cl.fnConfig, err))
	}
	if cf.Duplicate.MaxDistTolerance != nil {
		cfg.MaxDistTolerance = *cf.Duplicate.MaxDistTolerance
	}
	if cf.Duplicate.ProcessLevelPreference != nil {
		levels := make([]trace.ProcessLevel, len(cf.Duplicate.ProcessLevelPreference))
		for i, s := range cf.Duplicate.ProcessLevelPreference {
			l, err := trace.ParseProcessLevel(s)
			if err != nil {
				exit.Log(fmt.Sprintf("%s: %s", cl.fnConfig, err))
			}
			levels[i] = l
		}
		cfg.ProcessLevelPreference = levels
	}
	if cf.Duplicate.FormatPreference != nil {
		cfg.FormatPreference = cf.Duplicate.FormatPreference
	}
	if cf.Colocated.Preference != nil {
		cfg.ColocationPreference = cf.Colocated.Preference
	}
	return cfg
}
