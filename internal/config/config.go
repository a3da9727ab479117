package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds the propsync service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Search    SearchConfig    `yaml:"search"`
	Sources   []SourceConfig  `yaml:"sources"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // postgres, redis (default: postgres)
	DSN              string   `yaml:"dsn"`    // postgres
	MaxConns         int      `yaml:"max_conns"`
	Addrs            []string `yaml:"addrs"` // redis
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IngestionConfig holds feed pipeline settings.
type IngestionConfig struct {
	BatchSize            int    `yaml:"batch_size"`
	FetchTimeoutSec      int    `yaml:"fetch_timeout_sec"`
	ProbeTimeoutSec      int    `yaml:"probe_timeout_sec"`
	FingerprintCacheSize int    `yaml:"fingerprint_cache_size"`
	InvalidLogLimit      *int   `yaml:"invalid_log_limit"`
	Schedule             string `yaml:"schedule"` // cron expression; empty disables scheduled runs
}

// SearchConfig holds pagination bounds.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// SourceConfig describes one external feed.
type SourceConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// DefaultSources are used when the config file lists none.
var DefaultSources = []SourceConfig{
	{
		ID:      "source1",
		Name:    "Source1",
		URL:     "https://buenro-tech-assessment-materials.s3.eu-north-1.amazonaws.com/structured_generated_data.json",
		Enabled: true,
	},
	{
		ID:      "source2",
		Name:    "Source2",
		URL:     "https://buenro-tech-assessment-materials.s3.eu-north-1.amazonaws.com/large_generated_data.json",
		Enabled: true,
	},
}

// Load reads configuration from a YAML file by environment name (local, dev, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 600 // POST /ingest blocks for the whole run
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 4
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "propsync:"
	}
	if c.Ingestion.BatchSize <= 0 {
		c.Ingestion.BatchSize = 1000
	}
	if c.Ingestion.FetchTimeoutSec <= 0 {
		c.Ingestion.FetchTimeoutSec = 300
	}
	if c.Ingestion.ProbeTimeoutSec <= 0 {
		c.Ingestion.ProbeTimeoutSec = 10
	}
	if c.Ingestion.FingerprintCacheSize <= 0 {
		c.Ingestion.FingerprintCacheSize = 256
	}
	if c.Ingestion.InvalidLogLimit == nil {
		n := 5
		c.Ingestion.InvalidLogLimit = &n
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 100
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 1000
	}
	if len(c.Sources) == 0 {
		c.Sources = append([]SourceConfig(nil), DefaultSources...)
	}
	for i := range c.Sources {
		if c.Sources[i].Name == "" {
			c.Sources[i].Name = c.Sources[i].ID
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", DriverPostgres)
		}
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverRedis, c.Database.Driver)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Ingestion.InvalidLogLimit != nil && *c.Ingestion.InvalidLogLimit < 0 {
		return fmt.Errorf("ingestion.invalid_log_limit must be >= 0")
	}
	if c.Ingestion.Schedule != "" {
		if _, err := cron.ParseStandard(c.Ingestion.Schedule); err != nil {
			return fmt.Errorf("ingestion.schedule: %w", err)
		}
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d].id is required", i)
		}
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("sources[%d].id %q is duplicated", i, src.ID)
		}
		seen[src.ID] = struct{}{}
		u, err := url.Parse(src.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sources[%d].url must be an absolute http(s) URL, got %q", i, src.URL)
		}
	}
	return nil
}

// findConfigPath locates the config file. CONFIG_PATH wins over the env lookup.
func findConfigPath(env string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
