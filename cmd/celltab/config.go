package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"celltab/cmd/celltab/prim"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// appName is the single source of truth for the application name.
// All derived identifiers (env vars, config paths, error messages) are computed from it.
const appName = "celltab"

const configFileName = "config.yaml"

var (
	envConfigDir = strings.ToUpper(appName) + "_CONFIG_DIR"
	envTable     = strings.ToUpper(appName) + "_TABLE"
)

// resolveConfigDir returns the base config directory for the application.
// Priority: $CELLTAB_CONFIG_DIR > $XDG_CONFIG_HOME/celltab > ~/.config/celltab
func resolveConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// Config is the effective celltab configuration.
type Config struct {
	// Table is the primitive table file. Empty selects the shipped table.
	Table string `yaml:"table"`
	// Strict promotes validation warnings to errors.
	Strict bool `yaml:"strict"`
	// KnownPins extends the built-in input pin conventions.
	KnownPins []string `yaml:"known_pins"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string       `yaml:"log_level"`
	Limits   LimitsConfig `yaml:"limits"`
}

// LimitsConfig bounds the input accepted by the loader and parser.
type LimitsConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MaxLineLen int `yaml:"max_line_len"`
	MaxAttrs   int `yaml:"max_attrs"`
}

func DefaultConfig() *Config {
	l := prim.DefaultLimits()
	return &Config{
		LogLevel: "warn",
		Limits: LimitsConfig{
			MaxDepth:   l.MaxDepth,
			MaxLineLen: l.MaxLineLen,
			MaxAttrs:   l.MaxAttrs,
		},
	}
}

// LoadFromFile reads a YAML config file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Table != "" {
		c.Table = other.Table
	}
	if other.Strict {
		c.Strict = true
	}
	if len(other.KnownPins) > 0 {
		c.KnownPins = other.KnownPins
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Limits.MaxDepth != 0 {
		c.Limits.MaxDepth = other.Limits.MaxDepth
	}
	if other.Limits.MaxLineLen != 0 {
		c.Limits.MaxLineLen = other.Limits.MaxLineLen
	}
	if other.Limits.MaxAttrs != 0 {
		c.Limits.MaxAttrs = other.Limits.MaxAttrs
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Limits.MaxDepth <= 0 {
		return errors.New("limits.max_depth must be positive")
	}
	if c.Limits.MaxLineLen <= 0 {
		return errors.New("limits.max_line_len must be positive")
	}
	if c.Limits.MaxAttrs <= 0 {
		return errors.New("limits.max_attrs must be positive")
	}
	for _, p := range c.KnownPins {
		if !prim.IsIdent(p) {
			return fmt.Errorf("known_pins: %q is not a pin name", p)
		}
	}
	return nil
}

// BindFlags registers command-line overrides on fs, writing into c.
// ApplyFlags copies the ones the user actually set onto the effective config.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Table, "table", "t", "", "primitive table file (default: shipped table, or $"+envTable+")")
	fs.BoolVar(&c.Strict, "strict", false, "treat validation warnings as errors")
	fs.StringSliceVar(&c.KnownPins, "pin", nil, "additional known input pin (repeatable)")
	fs.StringVar(&c.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.IntVar(&c.Limits.MaxDepth, "max-depth", 0, "maximum expression nesting depth")
}

// ApplyFlags copies every flag changed on fs from src into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet, src *Config) {
	if fs.Changed("table") {
		c.Table = src.Table
	}
	if fs.Changed("strict") {
		c.Strict = src.Strict
	}
	if fs.Changed("pin") {
		c.KnownPins = append(c.KnownPins, src.KnownPins...)
	}
	if fs.Changed("log-level") {
		c.LogLevel = src.LogLevel
	}
	if fs.Changed("max-depth") {
		c.Limits.MaxDepth = src.Limits.MaxDepth
	}
}

// loadConfig builds the effective config: defaults, then the config file,
// then the environment. An explicit path must exist; the default one may not.
func loadConfig(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		dir, err := resolveConfigDir()
		if err != nil {
			return nil, "", err
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg, err := LoadFromFile(path)
	switch {
	case err == nil:
	case explicit == "" && errors.Is(err, fs.ErrNotExist):
		cfg = DefaultConfig()
	default:
		return nil, "", err
	}

	cfg.Merge(envConfig())
	return cfg, path, nil
}

// envConfig holds the settings taken from the environment. Unset variables
// leave their fields zero so Merge skips them.
func envConfig() *Config {
	return &Config{Table: os.Getenv(envTable)}
}

func (c *Config) limits() prim.Limits {
	return prim.Limits{
		MaxDepth:   c.Limits.MaxDepth,
		MaxLineLen: c.Limits.MaxLineLen,
		MaxAttrs:   c.Limits.MaxAttrs,
	}
}

// engineOptions translates the config into prim engine options.
func (c *Config) engineOptions(logger *slog.Logger) []prim.Option {
	return []prim.Option{
		prim.WithLogger(logger),
		prim.WithLimits(c.limits()),
		prim.WithKnownPins(c.KnownPins...),
		prim.WithStrict(c.Strict),
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
