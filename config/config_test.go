package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a valid Config for testing
func newTestConfig() Config {
	var c Config
	c.DataPaths.DataDir = "./data"
	c.Barcode.RegexTimeoutMS = 500
	c.Barcode.PatternCacheSize = 128
	c.Barcode.BloodGroupDisambiguator = "V"
	c.Storage.Driver = DriverMemory
	c.Storage.SeedFile = "seed.yaml"
	c.Redis.Addr = "localhost:6379"
	c.Redis.PoolSize = 10
	c.Redis.TTL = time.Minute
	c.Logging.Level = "info"
	return c
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, config.GetRegexTimeout())
	assert.Equal(t, 128, config.Barcode.PatternCacheSize)
	assert.Equal(t, "V", config.Barcode.BloodGroupDisambiguator)
	assert.Equal(t, DriverMemory, config.Storage.Driver)
	assert.Equal(t, "seed.yaml", config.Storage.SeedFile)
	assert.False(t, config.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, config.Redis.TTL)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, filepath.Join("data", "receiving.db"), config.GetSQLitePath())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
data_paths:
  data_dir: ./var
barcode:
  regex_timeout_ms: 250
  blood_group_disambiguator: W
storage:
  driver: sqlite
redis:
  enabled: true
  addr: cache:6380
  ttl: 30s
logging:
  level: debug
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, config.GetRegexTimeout())
	assert.Equal(t, "W", config.Barcode.BloodGroupDisambiguator)
	assert.Equal(t, DriverSQLite, config.Storage.Driver)
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "cache:6380", config.Redis.Addr)
	assert.Equal(t, 30*time.Second, config.Redis.TTL)
	assert.Equal(t, filepath.Join("var", "receiving.db"), config.GetSQLitePath())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\n")
	t.Setenv("RECEIVING_STORAGE_DRIVER", "sqlite")
	t.Setenv("RECEIVING_SQLITE_PATH", "db/custom.db")
	t.Setenv("RECEIVING_LOGGING_LEVEL", "warn")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, config.Storage.Driver)
	assert.Equal(t, filepath.Join("db", "custom.db"), config.GetSQLitePath())
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "storage:\n  driver: postgres\n"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  newTestConfig(),
			wantErr: false,
		},
		{
			name: "zero regex timeout",
			config: func() Config {
				c := newTestConfig()
				c.Barcode.RegexTimeoutMS = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "zero pattern cache",
			config: func() Config {
				c := newTestConfig()
				c.Barcode.PatternCacheSize = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "long disambiguator",
			config: func() Config {
				c := newTestConfig()
				c.Barcode.BloodGroupDisambiguator = "VW"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "memory without seed file",
			config: func() Config {
				c := newTestConfig()
				c.Storage.SeedFile = " "
				return c
			}(),
			wantErr: true,
		},
		{
			name: "sqlite without seed file",
			config: func() Config {
				c := newTestConfig()
				c.Storage.Driver = DriverSQLite
				c.Storage.SeedFile = ""
				return c
			}(),
			wantErr: false,
		},
		{
			name: "unknown driver",
			config: func() Config {
				c := newTestConfig()
				c.Storage.Driver = "mongodb"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "redis addr without port",
			config: func() Config {
				c := newTestConfig()
				c.Redis.Enabled = true
				c.Redis.Addr = "localhost"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "redis disabled ignores addr",
			config: func() Config {
				c := newTestConfig()
				c.Redis.Addr = "localhost"
				return c
			}(),
			wantErr: false,
		},
		{
			name: "redis zero ttl",
			config: func() Config {
				c := newTestConfig()
				c.Redis.Enabled = true
				c.Redis.TTL = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "bad log level",
			config: func() Config {
				c := newTestConfig()
				c.Logging.Level = "loud"
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMasked(t *testing.T) {
	c := newTestConfig()
	c.Redis.Password = "s3cret"

	masked := c.Masked()
	assert.Equal(t, "****", masked.Redis.Password)
	assert.Equal(t, "s3cret", c.Redis.Password)
}
