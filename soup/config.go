package soup

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for a run.
type Config struct {
	Soup        SoupConfig
	Termination TerminationConfig
}

// SoupConfig holds the parameters of the population and its environment.
type SoupConfig struct {
	Environment string `ini:"environment"` // binary sequence to predict
	PopSize     int    `ini:"pop_size"`
	NumStates   int    `ini:"num_states"` // states per automaton at seeding, 1..26
	Seed        int64  `ini:"seed"`       // 0 => time-based
}

// TerminationConfig holds the stopping rules added on top of convergence.
// Zero values keep the loop unbounded.
type TerminationConfig struct {
	MaxGenerations        int    `ini:"max_generations"`
	MaxStagnation         int    `ini:"max_stagnation"`
	StagnationFitnessFunc string `ini:"stagnation_fitness_func"` // e.g., "max", "mean"
}

// Defaults applied when a key is missing.
const (
	DefaultEnvironment           = "011001"
	DefaultPopSize               = 10
	DefaultNumStates             = 6
	DefaultStagnationFitnessFunc = "max"
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	// Inline "; ..." and "# ..." comments are stripped by the parser.
	cfg, err := ini.LoadSources(ini.LoadOptions{}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	// StrictMapTo fails on unparsable values; MapTo would leave the field zero.
	config := &Config{}
	if err := cfg.Section("Soup").StrictMapTo(&config.Soup); err != nil {
		return nil, fmt.Errorf("config error: [Soup] section: %w", err)
	}
	if err := cfg.Section("Termination").StrictMapTo(&config.Termination); err != nil {
		return nil, fmt.Errorf("config error: [Termination] section: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Soup.Environment == "" {
		c.Soup.Environment = DefaultEnvironment
	}
	if c.Soup.PopSize == 0 {
		c.Soup.PopSize = DefaultPopSize
	}
	if c.Soup.NumStates == 0 {
		c.Soup.NumStates = DefaultNumStates
	}
	if c.Termination.StagnationFitnessFunc == "" {
		c.Termination.StagnationFitnessFunc = DefaultStagnationFitnessFunc
	}
}

// Validate checks that every parameter is within range.
func (c *Config) Validate() error {
	if _, err := ParseEnvironment(c.Soup.Environment); err != nil {
		return fmt.Errorf("config error: environment: %w", err)
	}
	// The worst and best slots are never mutated, so a third slot must exist.
	if c.Soup.PopSize < 3 {
		return fmt.Errorf("config error: pop_size must be at least 3, got %d", c.Soup.PopSize)
	}
	if c.Soup.NumStates < 1 || c.Soup.NumStates > MaxStates {
		return fmt.Errorf("config error: num_states must be between 1 and %d, got %d", MaxStates, c.Soup.NumStates)
	}
	if c.Termination.MaxGenerations < 0 {
		return fmt.Errorf("config error: max_generations cannot be negative")
	}
	if c.Termination.MaxStagnation < 0 {
		return fmt.Errorf("config error: max_stagnation cannot be negative")
	}
	if _, ok := StatFunctions[strings.ToLower(c.Termination.StagnationFitnessFunc)]; !ok {
		return fmt.Errorf("config error: invalid stagnation_fitness_func '%s'", c.Termination.StagnationFitnessFunc)
	}
	c.Termination.StagnationFitnessFunc = strings.ToLower(c.Termination.StagnationFitnessFunc)
	return nil
}
