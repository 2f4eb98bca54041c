// Package config loads the tracker's process configuration and manages the
// persisted runtime settings.
//
// Process configuration (listen address, storage backend, sync intervals)
// comes from an optional habit.yaml file plus HABIT_* environment variables.
// Runtime settings (the connected spreadsheet ID) live in a separate
// config.json in the data directory, the same file the legacy tracker wrote,
// and are updated at runtime through the config API.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// File names used inside the data directory. They match the legacy layout so
// an existing installation keeps working unchanged.
const (
	// DataFileName is the JSON document written by the file backend.
	DataFileName = "tracker_data.json"

	// DatabaseFileName is the embedded database written by the sqlite backend.
	DatabaseFileName = "tracker.db"

	// SettingsFileName holds the persisted runtime settings.
	SettingsFileName = "config.json"
)

// Config is the process configuration for the tracker.
type Config struct {
	// Host and Port form the HTTP listen address.
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Backend selects the storage backend: file, sqlite, or memory.
	Backend string `mapstructure:"backend"`

	// DataDir holds the data file or database plus the settings file.
	DataDir string `mapstructure:"data_dir"`

	// CredentialsFile is the Google service account key used by the
	// spreadsheet mirror.
	CredentialsFile string `mapstructure:"credentials_file"`

	// SeedFile optionally replaces the built-in habit set on first run.
	SeedFile string `mapstructure:"seed_file"`

	// LogFile enables rotating file logging when set.
	LogFile string `mapstructure:"log_file"`

	// PullInterval is how often the daemon imports remote spreadsheet
	// state; DebounceInterval is how long data file edits must settle
	// before they are exported.
	PullInterval     time.Duration `mapstructure:"pull_interval"`
	DebounceInterval time.Duration `mapstructure:"debounce_interval"`
}

// Load reads the process configuration. The lookup order is the standard
// viper one: explicit path (when non-empty), then habit.yaml in the working
// directory, then $HOME/.config/habit/habit.yaml. HABIT_* environment
// variables override file values (HABIT_PORT, HABIT_BACKEND, ...). A missing
// config file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("habit")
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "habit"))
		}
	}

	v.SetEnvPrefix("HABIT")
	v.AutomaticEnv()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 5200)
	v.SetDefault("backend", "file")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("credentials_file", "service-account.json")
	v.SetDefault("pull_interval", "60s")
	v.SetDefault("debounce_interval", "2s")

	if err := v.ReadInConfig(); err != nil {
		// A search miss is fine; an unreadable or explicitly named file
		// is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values no deployment can run with.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Backend == "" {
		return fmt.Errorf("backend cannot be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.PullInterval <= 0 {
		return fmt.Errorf("pull_interval must be positive")
	}
	if c.DebounceInterval <= 0 {
		return fmt.Errorf("debounce_interval must be positive")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DataFile returns the path of the JSON data file.
func (c *Config) DataFile() string {
	return filepath.Join(c.DataDir, DataFileName)
}

// DatabaseFile returns the path of the sqlite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, DatabaseFileName)
}

// SettingsFile returns the path of the persisted runtime settings.
func (c *Config) SettingsFile() string {
	return filepath.Join(c.DataDir, SettingsFileName)
}

// StorePath returns the backend's data path for the configured backend type.
// The memory backend has no path.
func (c *Config) StorePath() string {
	switch c.Backend {
	case "sqlite":
		return c.DatabaseFile()
	case "memory":
		return ""
	default:
		return c.DataFile()
	}
}

// fileConfig is the YAML layout written by WriteFile. Durations are written
// as strings ("60s") so the file stays hand-editable.
type fileConfig struct {
	Host             string `yaml:"host,omitempty"`
	Port             int    `yaml:"port,omitempty"`
	Backend          string `yaml:"backend,omitempty"`
	DataDir          string `yaml:"data_dir,omitempty"`
	CredentialsFile  string `yaml:"credentials_file,omitempty"`
	SeedFile         string `yaml:"seed_file,omitempty"`
	LogFile          string `yaml:"log_file,omitempty"`
	PullInterval     string `yaml:"pull_interval,omitempty"`
	DebounceInterval string `yaml:"debounce_interval,omitempty"`
}

// WriteFile writes the configuration as a habit.yaml, creating parent
// directories as needed. Used by the init wizard.
func (c *Config) WriteFile(path string) error {
	fc := fileConfig{
		Host:            c.Host,
		Port:            c.Port,
		Backend:         c.Backend,
		DataDir:         c.DataDir,
		CredentialsFile: c.CredentialsFile,
		SeedFile:        c.SeedFile,
		LogFile:         c.LogFile,
	}
	if c.PullInterval > 0 {
		fc.PullInterval = c.PullInterval.String()
	}
	if c.DebounceInterval > 0 {
		fc.DebounceInterval = c.DebounceInterval.String()
	}

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
