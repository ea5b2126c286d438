package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/Supinic/supi-core-sub000/internal/store"
)

//go:embed schema.cue
var schemaSource string

// Config is the root configuration. It is loaded from YAML, overridden by
// environment variables and validated against the embedded CUE schema.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Batch    BatchConfig    `yaml:"batch" json:"batch"`
}

// DatabaseConfig selects and sizes the database connection pool.
type DatabaseConfig struct {
	Dialect         string            `yaml:"dialect" json:"dialect"`
	DSN             string            `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int               `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int               `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime int               `yaml:"conn_max_lifetime" json:"conn_max_lifetime"` // seconds
	Attach          map[string]string `yaml:"attach" json:"attach,omitempty"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// BatchConfig holds defaults for batch inserts and staggered updates.
type BatchConfig struct {
	Threshold int `yaml:"threshold" json:"threshold"`
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	StaggerMS int `yaml:"stagger_ms" json:"stagger_ms"`
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:      string(store.SQLite),
			DSN:          "supicore.db",
			MaxOpenConns: 4,
			MaxIdleConns: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Batch: BatchConfig{
			Threshold: 1,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUPICORE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SUPICORE_DATABASE_DIALECT"); v != "" {
		cfg.Database.Dialect = v
	}
	if v := os.Getenv("SUPICORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate unifies the configuration with the #Config CUE definition.
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := def.Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("configuration errors: %w", err)
	}
	return nil
}

// StoreConfig converts the database section for store.Open.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Dialect:         store.Dialect(c.Database.Dialect),
		DSN:             c.Database.DSN,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.Database.ConnMaxLifetime) * time.Second,
		Attach:          c.Database.Attach,
	}
}

// Stagger returns the batch stagger as a duration.
func (c *Config) Stagger() time.Duration {
	return time.Duration(c.Batch.StaggerMS) * time.Millisecond
}
