// Package config loads organizer settings from an optional YAML file, .env
// files and the environment, and validates them.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"toolchange-organizer/pkg/gcode"
)

// DefaultSuffix is appended to the input path to name the output file.
const DefaultSuffix = ".fixed"

// MaxExtruders bounds the extruder count accepted from configuration.
const MaxExtruders = 64

// Environment variables read by ApplyEnv.
const (
	EnvExtruders   = "TOOLCHANGE_EXTRUDERS"
	EnvSuffix      = "TOOLCHANGE_SUFFIX"
	EnvMetricsFile = "TOOLCHANGE_METRICS_FILE"
)

// LogConfig selects logger level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds all organizer settings.
type Config struct {
	Extruders   int           `yaml:"extruders"`
	Suffix      string        `yaml:"suffix"`
	Markers     gcode.Markers `yaml:"markers"`
	Log         LogConfig     `yaml:"log"`
	MetricsFile string        `yaml:"metrics_file"`
}

// Default returns the settings of the reference machine.
func Default() *Config {
	return &Config{
		Extruders: gcode.DefaultExtruders,
		Suffix:    DefaultSuffix,
		Markers:   gcode.DefaultMarkers(),
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Load reads a YAML settings file over the defaults. Keys that are absent
// keep their default; unknown keys are an error. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError("", "", err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadString parses YAML settings from a string over the defaults.
func LoadString(data string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode([]byte(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return WrapError("", "", err)
	}
	return nil
}

// LoadEnvFiles loads KEY=value pairs from the given .env files into the
// process environment. Missing files are skipped and variables that are
// already set are not overwritten.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return WrapError("", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from TOOLCHANGE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvExtruders)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ErrInvalidValue("env", EnvExtruders, v, "an integer")
		}
		c.Extruders = n
	}
	if v, ok := os.LookupEnv(EnvSuffix); ok {
		c.Suffix = v
	}
	if v, ok := os.LookupEnv(EnvMetricsFile); ok {
		c.MetricsFile = v
	}
	return nil
}

var (
	logLevels  = []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}
	logFormats = []string{"text", "json"}
)

func oneOf(v string, choices []string) bool {
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return true
		}
	}
	return false
}

// Validate checks the settings for values the organizer cannot run with.
func (c *Config) Validate() error {
	if c.Extruders < 1 || c.Extruders > MaxExtruders {
		return ErrOutOfRange("", "extruders", float64(c.Extruders), "must be between 1 and "+strconv.Itoa(MaxExtruders))
	}
	if c.Suffix == "" {
		return ErrMissingOption("", "suffix")
	}
	markers := map[string]string{
		"preamble": c.Markers.Preamble,
		"sentinel": c.Markers.Sentinel,
		"layer":    c.Markers.Layer,
		"terminal": c.Markers.Terminal,
	}
	for _, name := range []string{"preamble", "sentinel", "layer", "terminal"} {
		if markers[name] == "" {
			return ErrMissingOption("markers", name)
		}
	}
	if !oneOf(c.Log.Level, logLevels) {
		return ErrInvalidChoice("log", "level", c.Log.Level, logLevels)
	}
	if !oneOf(c.Log.Format, logFormats) {
		return ErrInvalidChoice("log", "format", c.Log.Format, logFormats)
	}
	return nil
}
