package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	Environment string `yaml:"app_env"`
	Debug       bool   `yaml:"app_debug"`
	Port        string `yaml:"port"`
	APIPrefix   string `yaml:"api_prefix"`

	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`

	DBDriver     string `yaml:"db_driver"`
	DatabasePath string `yaml:"database_path"`
	DatabaseURL  string `yaml:"database_url"`
	LogSQL       bool   `yaml:"db_log_sql"`

	RateLimitEnabled bool                       `yaml:"rate_limit_enabled"`
	RateLimit        RateLimitConfig            `yaml:"rate_limit"`
	RateLimitConfigs map[string]RateLimitConfig `yaml:"rate_limit_paths"`
	RedisURL         string                     `yaml:"redis_url"`

	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CacheSize    int           `yaml:"cache_size"`

	EnforceHTTPS   bool     `yaml:"enforce_https"`
	TrustedProxies []string `yaml:"trusted_proxies"`

	MetricsPort  string `yaml:"metrics_port"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	LokiURL      string `yaml:"loki_url"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment:      "development",
		Debug:            false,
		Port:             "8080",
		APIPrefix:        "/api",
		ServiceName:      "todoapi",
		ServiceVersion:   "1.0.0",
		DBDriver:         DriverSQLite,
		DatabasePath:     "database.db",
		RateLimitEnabled: true,
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
		},
		RateLimitConfigs: map[string]RateLimitConfig{},
		CacheEnabled:     true,
		CacheTTL:         30 * time.Second,
		CacheSize:        256,
		EnforceHTTPS:     false,
		MetricsPort:      "9090",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE, then .env, then the process environment. Later sources win.
func Load() (*AppConfig, error) {
	cfg := GetDefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *AppConfig) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c *AppConfig) loadEnv(lookup func(string) (string, bool)) error {
	var errs []string

	list := func(key string, dest *[]string) {
		if value, ok := lookup(key); ok && value != "" {
			var items []string
			for _, item := range strings.Split(value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*dest = items
		}
	}

	str := func(key string, dest *string) {
		if value, ok := lookup(key); ok && value != "" {
			*dest = value
		}
	}

	boolean := func(key string, dest *bool) {
		if value, ok := lookup(key); ok && value != "" {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, key+" must be a boolean")
				return
			}
			*dest = parsed
		}
	}

	integer := func(key string, dest *int) {
		if value, ok := lookup(key); ok && value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, key+" must be an integer")
				return
			}
			*dest = parsed
		}
	}

	duration := func(key string, dest *time.Duration) {
		if value, ok := lookup(key); ok && value != "" {
			parsed, err := time.ParseDuration(value)
			if err != nil {
				errs = append(errs, key+" must be a duration")
				return
			}
			*dest = parsed
		}
	}

	str("APP_ENV", &c.Environment)
	boolean("APP_DEBUG", &c.Debug)
	str("PORT", &c.Port)
	str("API_PREFIX", &c.APIPrefix)
	str("SERVICE_NAME", &c.ServiceName)
	str("SERVICE_VERSION", &c.ServiceVersion)
	str("DB_DRIVER", &c.DBDriver)
	str("DATABASE_PATH", &c.DatabasePath)
	str("DATABASE_URL", &c.DatabaseURL)
	boolean("DB_LOG_SQL", &c.LogSQL)
	boolean("RATE_LIMIT_ENABLED", &c.RateLimitEnabled)
	integer("RATE_LIMIT_REQUESTS", &c.RateLimit.Requests)
	duration("RATE_LIMIT_WINDOW", &c.RateLimit.Window)
	str("REDIS_URL", &c.RedisURL)
	boolean("CACHE_ENABLED", &c.CacheEnabled)
	duration("CACHE_TTL", &c.CacheTTL)
	integer("CACHE_SIZE", &c.CacheSize)
	boolean("ENFORCE_HTTPS", &c.EnforceHTTPS)
	list("TRUSTED_PROXIES", &c.TrustedProxies)
	str("METRICS_PORT", &c.MetricsPort)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.OTLPEndpoint)
	str("LOKI_URL", &c.LokiURL)

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, ", "))
	}

	return nil
}

func (c *AppConfig) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER is %s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}

	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
			}
		}
	}

	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		c.APIPrefix = "/" + c.APIPrefix
	}
	c.APIPrefix = strings.TrimRight(c.APIPrefix, "/")

	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
