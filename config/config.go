// Package config loads the defaults of the xre tools from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/magnetde/xre"
)

// Sentinel errors of the configuration
var (
	ErrNegativeTimeout    = errors.New("match timeout must not be negative")
	ErrSubpatternKind     = errors.New("subpattern needs exactly one of pattern and template")
	ErrSubpatternCompiled = errors.New("only patterns can be compiled")
)

// Config holds the configuration of the xre tools.
type Config struct {
	// Compile options
	Astral       bool          `yaml:"astral" env:"XRE_ASTRAL"`
	MatchTimeout time.Duration `yaml:"match_timeout" env:"XRE_MATCH_TIMEOUT"`

	// Flags added to every pattern compiled by the command line tool
	Flags string `yaml:"flags" env:"XRE_FLAGS"`

	// Named subpatterns available to the build command
	Subpatterns map[string]Subpattern `yaml:"subpatterns"`

	flags xre.Flags `yaml:"-"`
}

// Subpattern is a configured subpattern. Either Pattern or Template must be set.
type Subpattern struct {
	Pattern     string                `yaml:"pattern"`
	Template    string                `yaml:"template"`
	Flags       string                `yaml:"flags"`
	Compile     bool                  `yaml:"compile"`
	Subpatterns map[string]Subpattern `yaml:"subpatterns"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Subpatterns: map[string]Subpattern{},
	}
}

// Load loads the configuration from a file and the environment.
// If path is empty, the file is searched at the default locations and may be missing.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = getConfigPath()
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && (explicit || !os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("XRE_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "xre", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "xre", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if astral := os.Getenv("XRE_ASTRAL"); astral != "" {
		switch astral {
		case "true", "1", "yes":
			cfg.Astral = true
		case "false", "0", "no":
			cfg.Astral = false
		default:
			return fmt.Errorf("invalid XRE_ASTRAL value: %q (use true/false)", astral)
		}
	}

	if timeout := os.Getenv("XRE_MATCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid XRE_MATCH_TIMEOUT: %w", err)
		}
		cfg.MatchTimeout = d
	}

	if flags, ok := os.LookupEnv("XRE_FLAGS"); ok {
		cfg.Flags = flags
	}

	return nil
}

// validate checks the configuration and parses the flag strings
func validate(cfg *Config) error {
	if cfg.MatchTimeout < 0 {
		return ErrNegativeTimeout
	}

	flags, err := xre.ParseFlags(cfg.Flags)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	cfg.flags = flags

	return validateSubpatterns(cfg.Subpatterns, "")
}

func validateSubpatterns(subs map[string]Subpattern, prefix string) error {
	for name, sub := range subs {
		path := prefix + name

		if (sub.Pattern == "") == (sub.Template == "") {
			return fmt.Errorf("subpattern %s: %w", path, ErrSubpatternKind)
		}
		if sub.Compile && sub.Template != "" {
			return fmt.Errorf("subpattern %s: %w", path, ErrSubpatternCompiled)
		}
		if _, err := xre.ParseFlags(sub.Flags); err != nil {
			return fmt.Errorf("subpattern %s: %w", path, err)
		}

		if err := validateSubpatterns(sub.Subpatterns, path+"."); err != nil {
			return err
		}
	}

	return nil
}

// PatternFlags returns the parsed flags of the configuration.
func (c *Config) PatternFlags() xre.Flags {
	return c.flags
}

// Xre returns the compile configuration of the library.
func (c *Config) Xre(logger *log.Logger) xre.Config {
	return xre.Config{
		Astral:       c.Astral,
		MatchTimeout: c.MatchTimeout,
		Logger:       logger,
	}
}

// Apply installs the configuration as the process-wide defaults of the library.
func Apply(c *Config, logger *log.Logger) {
	xre.SetDefaults(c.Xre(logger))
}

// Resolve converts the configured subpatterns into subpatterns of the library.
// Subpatterns marked with compile are compiled with the configuration.
func (c *Config) Resolve() (xre.Subpatterns, error) {
	return c.resolve(c.Subpatterns)
}

func (c *Config) resolve(subs map[string]Subpattern) (xre.Subpatterns, error) {
	res := make(xre.Subpatterns, len(subs))

	for name, sub := range subs {
		switch {
		case sub.Template != "":
			nested, err := c.resolve(sub.Subpatterns)
			if err != nil {
				return nil, err
			}
			res[name] = xre.Nested(sub.Template, nested)
		case sub.Compile:
			flags, err := xre.ParseFlags(sub.Flags)
			if err != nil {
				return nil, err
			}

			p, err := c.Xre(nil).Compile(sub.Pattern, flags)
			if err != nil {
				return nil, fmt.Errorf("subpattern %s: %w", name, err)
			}
			res[name] = xre.Compiled(p)
		default:
			res[name] = xre.Fragment(sub.Pattern)
		}
	}

	return res, nil
}
