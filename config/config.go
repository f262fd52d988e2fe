package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"orion/search"
)

// Config holds the user-tunable settings shared by every front end
type Config struct {
	// Root is the directory searched when none is given on the command line
	Root string `mapstructure:"root" toml:"root"`
	// Workers is the available parallelism; 0 means GOMAXPROCS
	Workers int `mapstructure:"workers" toml:"workers"`
	// Cadence is how many entries are counted between enumeration progress events
	Cadence int `mapstructure:"cadence" toml:"cadence"`
	// Ignore lists glob patterns pruned from enumeration
	Ignore []string `mapstructure:"ignore" toml:"ignore"`
	// LogFile receives diagnostics; empty disables logging in the TUI
	LogFile string `mapstructure:"log_file" toml:"log_file"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Root:    ".",
		Workers: 0,
		Cadence: search.DefaultCadence,
		Ignore:  []string{},
		LogFile: "",
	}
}

// Validate checks that the configuration can drive an engine
func Validate(cfg *Config) error {
	var errs []error
	if cfg.Root == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers))
	}
	if cfg.Cadence <= 0 {
		errs = append(errs, fmt.Errorf("cadence must be > 0, got %d", cfg.Cadence))
	}
	if _, err := search.CompileIgnore(cfg.Ignore); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EngineOptions converts the configuration into search engine options
func (c *Config) EngineOptions(logger *log.Logger) (search.Options, error) {
	ignore, err := search.CompileIgnore(c.Ignore)
	if err != nil {
		return search.Options{}, err
	}
	return search.Options{
		Workers: c.Workers,
		Cadence: c.Cadence,
		Ignore:  ignore,
		Logger:  logger,
	}, nil
}

// OpenLog opens the configured log file for appending. With no log file
// configured it returns a logger that discards everything.
func (c *Config) OpenLog() (*log.Logger, io.Closer, error) {
	if c.LogFile == "" {
		return log.New(io.Discard, "", 0), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.New(f, "orion ", log.LstdFlags), f, nil
}

// Dir returns the directory holding orion's configuration file
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "orion")
}

// DefaultPath returns the path `orion config init` writes to
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}
