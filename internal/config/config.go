package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/facetsearch/internal/domain/asset"
)

// Config holds the facetsearch server configuration.
type Config struct {
	HTTP     HTTPConfig        `yaml:"http"`
	Database DatabaseConfig    `yaml:"database"`
	Search   SearchConfig      `yaml:"search"`
	Cache    CacheConfig       `yaml:"cache"`
	Auth     AuthConfig        `yaml:"auth"`
	Assets   AssetsConfig      `yaml:"assets"`
	Labels   map[string]string `yaml:"labels"`
	Logging  LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer keys for operational endpoints (/metrics).
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig describes the index the front end queries and how facets are built.
type SearchConfig struct {
	Index      string   `yaml:"index"`
	KeyPrefix  string   `yaml:"key_prefix"`
	TitleField string   `yaml:"title_field"`
	Facets     []string `yaml:"facets"` // TAG fields, rendered in this order
	FacetSize  int      `yaml:"facet_size"`
	PageSize   int      `yaml:"page_size"`
	MaxPage    int      `yaml:"max_page"`
}

// CacheConfig holds facet cache settings.
type CacheConfig struct {
	FacetTTLSec int `yaml:"facet_ttl_sec"` // 0 disables the cache
}

// AssetsConfig holds CSS/JS includes keyed by type and page location.
type AssetsConfig struct {
	BaseURL string        `yaml:"base_url"`
	Catalog asset.Catalog `yaml:"catalog"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes raw YAML, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.Index == "" {
		c.Search.Index = "products"
	}
	if c.Search.KeyPrefix == "" {
		c.Search.KeyPrefix = "facetsearch:"
	}
	if c.Search.TitleField == "" {
		c.Search.TitleField = "title"
	}
	if c.Search.FacetSize <= 0 {
		c.Search.FacetSize = 20
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 20
	}
	if c.Search.MaxPage <= 0 {
		c.Search.MaxPage = 50
	}
	if c.Cache.FacetTTLSec < 0 {
		c.Cache.FacetTTLSec = 0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if c.Database.DB < 0 {
		return fmt.Errorf("database.db must not be negative, got %d", c.Database.DB)
	}

	seen := make(map[string]struct{}, len(c.Search.Facets))
	for i, f := range c.Search.Facets {
		name := strings.ToLower(strings.TrimSpace(f))
		if name == "" {
			return fmt.Errorf("search.facets[%d] is empty", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("search.facets: duplicate category %q", name)
		}
		seen[name] = struct{}{}
	}

	for typ, locations := range c.Assets.Catalog {
		if typ != asset.TypeCSS && typ != asset.TypeJS {
			return fmt.Errorf("assets.catalog: unknown asset type %q", typ)
		}
		for loc, items := range locations {
			for i, it := range items {
				if it.URL == "" {
					return fmt.Errorf("assets.catalog.%s.%s[%d].url is required", typ, loc, i)
				}
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from a package dir.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
