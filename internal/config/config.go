package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 25000.0
	DefaultDuration      = 31557600.0
	DefaultPrecision     = 4
	DefaultDataDir       = ".nbodysim"
	DefaultLogLevel      = "info"
	DefaultRecordEvery   = 10
	DefaultProgressEvery = 0
)

type Config struct {
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	Preset        string  `yaml:"preset"`
	Input         string  `yaml:"input"`
	MinSeparation float64 `yaml:"min_separation"`
	Precision     int     `yaml:"precision"`
	Save          bool    `yaml:"save"`
	DataDir       string  `yaml:"data_dir"`
	RecordEvery   int     `yaml:"record_every"`
	ProgressEvery int     `yaml:"progress_every"`
	LogLevel      string  `yaml:"log_level"`
	MetricsFile   string  `yaml:"metrics_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		Precision:     DefaultPrecision,
		DataDir:       DefaultDataDir,
		RecordEvery:   DefaultRecordEvery,
		ProgressEvery: DefaultProgressEvery,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads a YAML file on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.MinSeparation < 0 {
		return fmt.Errorf("min_separation must not be negative, got %g", c.MinSeparation)
	}
	if c.Precision < 0 || c.Precision > 17 {
		return fmt.Errorf("precision must be in [0, 17], got %d", c.Precision)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record_every must not be negative, got %d", c.RecordEvery)
	}
	if c.Preset != "" && GetPreset(c.Preset) == nil {
		return fmt.Errorf("unknown preset %q (available: %v)", c.Preset, ListPresets())
	}
	return nil
}
