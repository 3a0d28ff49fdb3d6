package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file at the project root.
const FileName = "bote.yaml"

// Store backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Environment overrides.
const (
	EnvMongoURI = "BOTE_MONGO_URI"
	EnvLogLevel = "BOTE_LOG_LEVEL"
)

// Config represents the top-level bote.yaml configuration.
type Config struct {
	Group     GroupConfig     `yaml:"group"`
	Store     StoreConfig     `yaml:"store"`
	IDs       IDsConfig       `yaml:"ids"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
	Git       GitConfig       `yaml:"git"`
}

// GroupConfig identifies the group sharing the pot.
type GroupConfig struct {
	Name string `yaml:"name"`
}

// StoreConfig selects where the ledger lives.
type StoreConfig struct {
	Backend  string `yaml:"backend"` // "file" or "mongo"
	MongoURI string `yaml:"mongo_uri,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// IDsConfig bounds transaction ID generation.
type IDsConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// ReconcileConfig tunes bank matching.
type ReconcileConfig struct {
	AmountTolerance float64 `yaml:"amount_tolerance"`
	MinNameLength   int     `yaml:"min_name_length"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a bote.yaml file from disk and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides settings from the environment. Empty values are
// ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks settings that would fail later in a less obvious way.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "", BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store backend %q needs mongo_uri or %s", BackendMongo, EnvMongoURI)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Reconcile.AmountTolerance < 0 {
		return fmt.Errorf("reconcile.amount_tolerance must not be negative")
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(groupName string) *Config {
	return &Config{
		Group: GroupConfig{
			Name: groupName,
		},
		Store: StoreConfig{
			Backend: BackendFile,
		},
		IDs: IDsConfig{
			MaxAttempts: 20,
		},
		Reconcile: ReconcileConfig{
			AmountTolerance: 0.01,
			MinNameLength:   3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Bote",
			AuthorEmail: "bote@localhost",
		},
	}
}
