// Package config loads Settings from a YAML file, applying the same
// defaults as sim.DefaultSettings and overriding them with whatever the
// file specifies; environment variables are not read. There was no strong reason to pick viper
// for this over flag parsing beyond matching this lineage's own prior art
// for file-based configuration, which does the same.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hybridpetri/simcore/sim"
	"github.com/hybridpetri/simcore/timeutil"
)

// fileSettings mirrors sim.Settings with mapstructure/yaml tags for
// viper/yaml.v3 decoding; durations and the conflict policy are strings on
// the wire and converted after decode.
type fileSettings struct {
	TimeUnits       string   `mapstructure:"timeUnits" yaml:"timeUnits"`
	DurationSeconds *float64 `mapstructure:"durationSeconds" yaml:"durationSeconds"`
	DtMode          string   `mapstructure:"dtMode" yaml:"dtMode"`
	DtManual        float64  `mapstructure:"dtManual" yaml:"dtManual"`
	TargetSteps     int      `mapstructure:"targetSteps" yaml:"targetSteps"`
	TimeScale       float64  `mapstructure:"timeScale" yaml:"timeScale"`
	ConflictPolicy  string   `mapstructure:"conflictPolicy" yaml:"conflictPolicy"`
	RngSeed         *int64   `mapstructure:"rngSeed" yaml:"rngSeed"`
}

// LoadSettings reads path (a YAML document) and merges it over
// sim.DefaultSettings(), returning the result. Fields absent from the file
// retain their default value; an unreadable or malformed file is an error.
func LoadSettings(path string) (sim.Settings, error) {
	defaults := sim.DefaultSettings()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return sim.Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	raw := &fileSettings{}
	if err := vp.Unmarshal(raw); err != nil {
		return sim.Settings{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	// Round-trip through yaml.v3, matching this lineage's own FromYaml
	// two-stage decode. raw's yaml tags carry the same names as its
	// mapstructure tags, so this re-encode and decode leaves raw unchanged.
	spec, err := yaml.Marshal(raw)
	if err != nil {
		return sim.Settings{}, fmt.Errorf("config: re-marshal %s: %w", path, err)
	}
	if err := yaml.Unmarshal(spec, raw); err != nil {
		return sim.Settings{}, fmt.Errorf("config: re-unmarshal %s: %w", path, err)
	}

	return merge(defaults, raw), nil
}

func merge(defaults sim.Settings, raw *fileSettings) sim.Settings {
	out := defaults
	if raw.TimeUnits != "" {
		out.TimeUnits = timeutil.Unit(raw.TimeUnits)
	}
	if raw.DurationSeconds != nil {
		out.DurationSeconds = raw.DurationSeconds
	}
	if raw.DtMode != "" {
		out.DtMode = sim.DtMode(raw.DtMode)
	}
	if raw.DtManual != 0 {
		out.DtManual = raw.DtManual
	}
	if raw.TargetSteps != 0 {
		out.TargetSteps = raw.TargetSteps
	}
	if raw.TimeScale != 0 {
		out.TimeScale = raw.TimeScale
	}
	if raw.ConflictPolicy != "" {
		out.ConflictPolicy = sim.ConflictPolicy(raw.ConflictPolicy)
	}
	if raw.RngSeed != nil {
		out.RngSeed = raw.RngSeed
	}
	return out
}
