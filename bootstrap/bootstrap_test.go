package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"receiving/config"
	"receiving/core"
	"receiving/storage"
)

var seedPath = filepath.Join("..", "storage", "testdata", "seed.yaml")

func writeConfig(t *testing.T, format string, args ...interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(format, args...)), 0600))
	return path
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	_, sugar, err := InitLogger("warn", &buf)
	require.NoError(t, err)

	sugar.Infow("hidden")
	sugar.Warnw("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "value")

	_, _, err = InitLogger("chatty", nil)
	assert.Error(t, err)
}

func TestNewApp_MemoryStore(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, "storage:\n  driver: memory\n  seed_file: %s\n", seedPath)

	app, err := NewApp(ctx, Options{ConfigFile: path, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	defer app.Shutdown()

	assert.Nil(t, app.Stores.SQLite)
	assert.Nil(t, app.Stores.Cache)

	cmd, err := core.NewValidateBarcodeCommand("=W03689878680000", core.ParseTypeUnitNumber, "")
	require.NoError(t, err)
	out, err := app.Service.ValidateBarcode(ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, out.Data)
	assert.True(t, out.Data.Valid)
	assert.Equal(t, "W036898786800", out.Data.Result)
}

func TestNewApp_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "receiving.db")
	path := writeConfig(t, "data_paths:\n  sqlite_path: %s\nstorage:\n  driver: sqlite\n", dbPath)

	app, err := NewApp(ctx, Options{ConfigFile: path, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	defer app.Shutdown()

	require.NotNil(t, app.Stores.SQLite)
	seed, err := storage.LoadSeed(seedPath)
	require.NoError(t, err)
	require.NoError(t, app.Stores.SQLite.Seed(ctx, seed))

	cmd, err := core.NewValidateBarcodeCommand("=%5100", core.ParseTypeBloodGroup, "")
	require.NoError(t, err)
	out, err := app.Service.ValidateBarcode(ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, out.Data)
	assert.Equal(t, "OP", out.Data.Result)
	assert.Equal(t, "O Positive", out.Data.ResultDescription)
}

func TestNewApp_MissingSeed(t *testing.T) {
	path := writeConfig(t, "storage:\n  seed_file: %s\n", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := NewApp(context.Background(), Options{ConfigFile: path, LogOutput: &bytes.Buffer{}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitStorage_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	stores, err := InitStorage(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer stores.Close()

	require.NotNil(t, stores.Cache)
	assert.Same(t, stores.Cache, stores.Configuration)

	_, err = stores.Configuration.FindFacilityByCode(context.Background(), "W0368")
	require.NoError(t, err)
	assert.True(t, mr.Exists(storage.CacheKeyFacilityPrefix+"W0368"))
}

func TestInitStorage_RedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr

	stores, err := InitStorage(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer stores.Close()

	assert.Nil(t, stores.Cache)
	_, isMemory := stores.Configuration.(*storage.Memory)
	assert.True(t, isMemory)
}

func TestClassifySQLiteError(t *testing.T) {
	tests := []struct {
		err      error
		contains string
	}{
		{errors.New("open data/r.db: permission denied"), "Permission denied"},
		{errors.New("database is locked (5) (SQLITE_BUSY)"), "locked by another process"},
		{errors.New("file is not a database"), "corrupted"},
		{errors.New("invalid database path: path traversal not allowed"), "not allowed"},
		{errors.New("boom"), "Failed to open"},
	}

	for _, tt := range tests {
		assert.Contains(t, ClassifySQLiteError(tt.err, "data/r.db"), tt.contains)
	}
	assert.Empty(t, ClassifySQLiteError(nil, "data/r.db"))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(writeConfig(t, "storage:\n  seed_file: %s\n", seedPath))
	require.NoError(t, err)
	return cfg
}
