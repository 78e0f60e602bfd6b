package config

import (
	"fmt"
	"sort"

	"github.com/kbukum/resilkit/logger"
	"github.com/kbukum/resilkit/validation"
)

// Config is the root configuration: service identity, logging, a defaults
// profile, and per-dependency profile overrides.
//
// Example YAML:
//
//	name: checkout
//	environment: production
//	defaults:
//	  retry:
//	    max_attempts: 3
//	    initial_backoff: 100ms
//	  circuit_breaker:
//	    failure_threshold: 5
//	    break_duration: 30s
//	dependencies:
//	  payments:
//	    circuit_breaker:
//	      failure_threshold: 2
type Config struct {
	Name         string             `yaml:"name" mapstructure:"name" validate:"required"`
	Environment  string             `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Debug        bool               `yaml:"debug" mapstructure:"debug"`
	Logging      logger.Config      `yaml:"logging" mapstructure:"logging"`
	Defaults     Profile            `yaml:"defaults" mapstructure:"defaults"`
	Dependencies map[string]Profile `yaml:"dependencies" mapstructure:"dependencies"`
}

// ApplyDefaults applies default values to the whole configuration tree.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Defaults.ApplyDefaults()
}

// Validate validates the configuration tree. Struct tags cover shape,
// profile conversion covers the semantic rules.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Defaults.Validate("defaults"); err != nil {
		return err
	}
	for name, p := range c.Dependencies {
		merged := p.merge(c.Defaults)
		if err := merged.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// ProfileFor returns the effective profile for a dependency: its own
// overrides merged onto the defaults profile. Unknown dependencies get the
// defaults profile.
func (c *Config) ProfileFor(dependency string) Profile {
	p, ok := c.Dependencies[dependency]
	if !ok {
		return c.Defaults
	}
	return p.merge(c.Defaults)
}

// DependencyNames returns the configured dependency names, sorted.
func (c *Config) DependencyNames() []string {
	names := make([]string, 0, len(c.Dependencies))
	for name := range c.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
