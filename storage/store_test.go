package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"receiving/core"
)

// referenceStore is what both stores implement
type referenceStore interface {
	core.ConfigurationService
	core.ProductConsequenceRepository
}

func loadTestSeed(t *testing.T) *Seed {
	t.Helper()
	seed, err := LoadSeed(filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)
	return seed
}

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "receiving.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func storesUnderTest(t *testing.T) map[string]referenceStore {
	seed := loadTestSeed(t)

	mem, err := NewMemoryFromSeed(seed)
	require.NoError(t, err)

	sqlite := newTestSQLite(t)
	require.NoError(t, sqlite.Seed(context.Background(), seed))

	return map[string]referenceStore{"memory": mem, "sqlite": sqlite}
}

func TestStores_Lookups(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			pattern, err := store.FindPatternByParseType(ctx, core.ParseTypeUnitNumber)
			require.NoError(t, err)
			assert.Equal(t, `(\=)([A-Z]{1}\w{12})(00)`, pattern.Pattern)
			assert.Equal(t, 2, pattern.MatchGroups)
			assert.Equal(t, core.ParseTypeUnitNumber, pattern.ParseType)

			facility, err := store.FindFacilityByCode(ctx, "W0368")
			require.NoError(t, err)
			assert.Equal(t, "Main Donor Center", facility.FacilityName)

			product, err := store.FindProductByCodeAndTemperatureCategory(ctx, "E0869V00", "FROZEN")
			require.NoError(t, err)
			assert.Equal(t, "PLASMA", product.ProductFamily)

			translation, err := store.FindBloodGroupTranslation(ctx, "5100", "V")
			require.NoError(t, err)
			assert.Equal(t, "OP", translation.ToValue)
		})
	}
}

func TestStores_MissesWrapNotFound(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.FindFacilityByCode(ctx, "X9999")
			assert.True(t, core.IsNotFound(err))
			assert.ErrorIs(t, err, ErrFacilityNotFound)

			_, err = store.FindProductByCodeAndTemperatureCategory(ctx, "E0869V00", "REFRIGERATED")
			assert.True(t, core.IsNotFound(err))

			_, err = store.FindBloodGroupTranslation(ctx, "5100", "W")
			assert.True(t, core.IsNotFound(err))

			_, err = store.FindPatternByParseType(ctx, "BARCODE_OTHER")
			assert.True(t, core.IsNotFound(err))
		})
	}
}

func TestStores_ConsequencesKeepOrder(t *testing.T) {
	ctx := context.Background()

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			rules, err := store.FindConsequencesByCategoryAndProperty(ctx, "FROZEN", core.PropertyTransitTime)
			require.NoError(t, err)
			require.Len(t, rules, 2)
			assert.True(t, rules[0].Acceptable)
			assert.Equal(t, "TRANSIT_TIME >= 0 && TRANSIT_TIME <= (24 * 60)", rules[0].ResultValue)
			assert.False(t, rules[1].Acceptable)
			assert.Equal(t, "TRANSIT_TIME_EXCEEDED", rules[1].ConsequenceReason)

			none, err := store.FindConsequencesByCategoryAndProperty(ctx, "ROOM_TEMPERATURE", core.PropertyTemperature)
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem, err := NewMemoryFromSeed(loadTestSeed(t))
	require.NoError(t, err)

	rules, err := mem.FindConsequencesByCategoryAndProperty(ctx, "FROZEN", core.PropertyTemperature)
	require.NoError(t, err)
	rules[0].ResultValue = "TEMPERATURE > 1000"

	again, err := mem.FindConsequencesByCategoryAndProperty(ctx, "FROZEN", core.PropertyTemperature)
	require.NoError(t, err)
	assert.Equal(t, "TEMPERATURE <= -18", again[0].ResultValue)
}

func TestSQLite_ReseedReplacesRules(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	require.NoError(t, s.Seed(ctx, loadTestSeed(t)))

	update := &Seed{
		Patterns: []core.BarcodePattern{{ParseType: core.ParseTypeUnitNumber, Pattern: `(\=)(\w{13})`, MatchGroups: 2}},
		Consequences: []core.ProductConsequence{{
			ProductCategory:   "FROZEN",
			Acceptable:        true,
			ResultProperty:    core.PropertyTemperature,
			ResultType:        "RANGE",
			ResultValue:       "TEMPERATURE <= -25",
			ConsequenceType:   "NONE",
			ConsequenceReason: "NONE",
		}},
	}
	require.NoError(t, s.Seed(ctx, update))

	pattern, err := s.FindPatternByParseType(ctx, core.ParseTypeUnitNumber)
	require.NoError(t, err)
	assert.Equal(t, `(\=)(\w{13})`, pattern.Pattern)

	rules, err := s.FindConsequencesByCategoryAndProperty(ctx, "FROZEN", core.PropertyTemperature)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "TEMPERATURE <= -25", rules[0].ResultValue)

	// pairs absent from the update are untouched
	transit, err := s.FindConsequencesByCategoryAndProperty(ctx, "FROZEN", core.PropertyTransitTime)
	require.NoError(t, err)
	assert.Len(t, transit, 2)
}

func TestSQLite_InvalidSeedWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	bad := &Seed{
		Facilities: []core.FinNumber{{FinNumber: "W0368"}},
		Products:   []core.Product{{Code: "E0869V00"}},
	}
	err := s.Seed(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = s.FindFacilityByCode(ctx, "W0368")
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestSQLite_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(":memory:", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Seed(ctx, loadTestSeed(t)))
	f, err := s.FindFacilityByCode(ctx, "W0368")
	require.NoError(t, err)
	assert.Equal(t, "W0368", f.FinNumber)
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	path := filepath.Join(t.TempDir(), "receiving.db")

	first, err := NewSQLite(path, logger)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLite(path, logger)
	require.NoError(t, err)
	defer second.Close()

	runner, err := NewMigrationRunner(second.WriteDB, logger)
	require.NoError(t, err)
	RegisterSQLiteMigrations(runner)

	pending, err := runner.PendingMigrations()
	require.NoError(t, err)
	assert.Empty(t, pending)

	applied, err := runner.AppliedMigrations()
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "1.0.0", applied[0].Version)
	assert.Equal(t, "1.1.0", applied[1].Version)

	issues, err := runner.VerifyIntegrity()
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateDatabasePath(t *testing.T) {
	assert.NoError(t, validateDatabasePath(":memory:"))
	assert.NoError(t, validateDatabasePath("data/receiving.db"))
	assert.NoError(t, validateDatabasePath(filepath.Join(t.TempDir(), "x.db")))

	assert.Error(t, validateDatabasePath(""))
	assert.Error(t, validateDatabasePath("../escape.db"))
	assert.Error(t, validateDatabasePath("/etc/receiving.db"))
	assert.Error(t, validateDatabasePath("data/x.db?mode=ro"))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, compareVersions("1.0.0", "1.1.0"))
	assert.Equal(t, 1, compareVersions("1.10.0", "1.9.0"))
	assert.Equal(t, 0, compareVersions("1.0", "1.0.0"))
}
