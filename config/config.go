package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Storage drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// DataPaths holds all data directory and file path configuration
type DataPaths struct {
	// DataDir is the base data directory (RECEIVING_DATA_DIR, default: ./data)
	DataDir string `mapstructure:"data_dir"`
	// SQLitePath is the SQLite database file path (RECEIVING_SQLITE_PATH, default: ${DataDir}/receiving.db)
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Config holds all configuration for the receiving tools
type Config struct {
	DataPaths DataPaths `mapstructure:"data_paths"`

	Barcode struct {
		// RegexTimeoutMS bounds a single pattern match
		RegexTimeoutMS   int `mapstructure:"regex_timeout_ms"`
		PatternCacheSize int `mapstructure:"pattern_cache_size"`
		// BloodGroupDisambiguator is the sixth-digit value used for blood-group lookups
		BloodGroupDisambiguator string `mapstructure:"blood_group_disambiguator"`
	} `mapstructure:"barcode"`

	Storage struct {
		Driver   string `mapstructure:"driver"`
		SeedFile string `mapstructure:"seed_file"`
	} `mapstructure:"storage"`

	Redis struct {
		Enabled  bool          `mapstructure:"enabled"`
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		PoolSize int           `mapstructure:"pool_size"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_paths.data_dir", "./data")
	v.SetDefault("data_paths.sqlite_path", "") // Empty = derive from data_dir

	v.SetDefault("barcode.regex_timeout_ms", 500)
	v.SetDefault("barcode.pattern_cache_size", 128)
	v.SetDefault("barcode.blood_group_disambiguator", "V")

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.seed_file", "seed.yaml")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("logging.level", "info")
}

// loadFromEnv sets up environment variable loading
func loadFromEnv(v *viper.Viper) {
	v.SetEnvPrefix("RECEIVING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Shorter names for the path settings
	_ = v.BindEnv("data_paths.data_dir", "RECEIVING_DATA_DIR")
	_ = v.BindEnv("data_paths.sqlite_path", "RECEIVING_SQLITE_PATH")
}

// LoadConfig loads configuration from configFile, or from config.yaml in . or
// ./config when configFile is empty, overlaid with RECEIVING_* environment variables.
// A missing default config file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	loadFromEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config.ResolveDataPaths()
	return &config, nil
}

// ResolveDataPaths derives the SQLite path from DataDir when not explicitly set
func (c *Config) ResolveDataPaths() {
	dataDir := c.DataPaths.DataDir
	if dataDir == "" {
		dataDir = "./data"
	}

	if c.DataPaths.SQLitePath == "" {
		c.DataPaths.SQLitePath = filepath.Join(dataDir, "receiving.db")
	} else if !filepath.IsAbs(c.DataPaths.SQLitePath) {
		c.DataPaths.SQLitePath = filepath.Clean(c.DataPaths.SQLitePath)
	}

	c.DataPaths.DataDir = dataDir
}

// GetSQLitePath returns the resolved SQLite database path
func (c *Config) GetSQLitePath() string {
	if c.DataPaths.SQLitePath == "" {
		dataDir := c.DataPaths.DataDir
		if dataDir == "" {
			dataDir = "./data"
		}
		return filepath.Join(dataDir, "receiving.db")
	}
	return c.DataPaths.SQLitePath
}

// GetRegexTimeout returns the configured regex timeout, defaulting to 500ms if not set
func (c *Config) GetRegexTimeout() time.Duration {
	if c.Barcode.RegexTimeoutMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Barcode.RegexTimeoutMS) * time.Millisecond
}

// Masked returns a copy safe to log
func (c *Config) Masked() *Config {
	masked := *c
	if masked.Redis.Password != "" {
		masked.Redis.Password = "****"
	}
	return &masked
}

// validateConfig validates the configuration for correctness
func validateConfig(config *Config) error {
	if config.Barcode.RegexTimeoutMS <= 0 {
		return fmt.Errorf("barcode.regex_timeout_ms must be positive, got %d", config.Barcode.RegexTimeoutMS)
	}
	if config.Barcode.PatternCacheSize <= 0 {
		return fmt.Errorf("barcode.pattern_cache_size must be positive, got %d", config.Barcode.PatternCacheSize)
	}
	if utf8.RuneCountInString(config.Barcode.BloodGroupDisambiguator) != 1 {
		return fmt.Errorf("barcode.blood_group_disambiguator must be a single character, got %q", config.Barcode.BloodGroupDisambiguator)
	}

	switch config.Storage.Driver {
	case DriverMemory:
		if strings.TrimSpace(config.Storage.SeedFile) == "" {
			return fmt.Errorf("storage.seed_file is required for the %s driver", DriverMemory)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverMemory, DriverSQLite, config.Storage.Driver)
	}

	if config.Redis.Enabled {
		if _, _, err := net.SplitHostPort(config.Redis.Addr); err != nil {
			return fmt.Errorf("invalid redis.addr %q: %w", config.Redis.Addr, err)
		}
		if config.Redis.DB < 0 {
			return fmt.Errorf("redis.db cannot be negative")
		}
		if config.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be positive")
		}
		if config.Redis.TTL <= 0 {
			return fmt.Errorf("redis.ttl must be positive")
		}
	}

	if _, err := zapcore.ParseLevel(config.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	return nil
}
