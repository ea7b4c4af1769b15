package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	OpenFoodFacts OpenFoodFactsConfig
	Cache         CacheConfig
	Reference     ReferenceConfig
	Analysis      AnalysisConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds Open Food Facts API configuration
type OpenFoodFactsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // only "memory" for now
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ReferenceConfig points at the additive reference table
type ReferenceConfig struct {
	Path string `mapstructure:"path"`
}

// AnalysisConfig controls how findings are reported
type AnalysisConfig struct {
	Deduplicate        bool `mapstructure:"deduplicate"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file; an empty path searches the default locations
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutrigrade/")
	}

	// Environment variable settings: NUTRIGRADE_OPENFOODFACTS_BASE_URL -> openfoodfacts.base_url
	v.SetEnvPrefix("NUTRIGRADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "NutriGrade/1.0")
	v.SetDefault("openfoodfacts.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Reference table defaults
	v.SetDefault("reference.path", "data/fssai_additives.json")

	// Analysis defaults
	v.SetDefault("analysis.deduplicate", false)
	v.SetDefault("analysis.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Reference.Path) == "" {
		return fmt.Errorf("reference table path is required (set NUTRIGRADE_REFERENCE_PATH)")
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	u, err := url.Parse(config.OpenFoodFacts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("Open Food Facts base URL must be an absolute URL, got: %q", config.OpenFoodFacts.BaseURL)
	}

	if config.OpenFoodFacts.Timeout <= 0 {
		return fmt.Errorf("Open Food Facts timeout must be positive, got: %s", config.OpenFoodFacts.Timeout)
	}

	return nil
}

// loadEnvFile reads KEY=VALUE lines from ./.env into the process environment.
// A missing file is not an error and variables that are already set win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return gotenv.Load(".env")
}
