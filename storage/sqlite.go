package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"receiving/core"
)

// SQLite is the durable ConfigurationService and ProductConsequenceRepository.
// Writes go through a single-connection pool; lookups use a separate
// query-only pool so WAL mode can serve them concurrently.
type SQLite struct {
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Path    string
	Logger  *zap.SugaredLogger
}

// NewSQLite opens (creating if needed) the database at dbPath and applies the
// schema migrations. ":memory:" opens a private in-memory database.
func NewSQLite(dbPath string, logger *zap.SugaredLogger) (*SQLite, error) {
	if err := validateDatabasePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if dbPath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	base := "file:" + dbPath + "?"
	if dbPath == ":memory:" {
		// a named shared-cache database lets both pools see the same data
		base = "file:receiving-" + uuid.NewString() + "?mode=memory&cache=shared&"
	}

	writeDB, err := sql.Open("sqlite", base+pragmas(false))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(0)

	if err := configureSQLiteConnection(writeDB, dbPath); err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("failed to configure write connection: %w", err)
	}

	readDB, err := sql.Open("sqlite", base+pragmas(true))
	if err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("failed to open SQLite read database: %w", err)
	}
	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	readDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := readDB.Ping(); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("failed to ping SQLite read database: %w", err)
	}

	s := &SQLite{
		WriteDB: writeDB,
		ReadDB:  readDB,
		Path:    dbPath,
		Logger:  logger,
	}

	runner, err := NewMigrationRunner(writeDB, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	RegisterSQLiteMigrations(runner)
	if err := runner.RunMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Infow("SQLite reference store initialized", "path", dbPath)
	return s, nil
}

// pragmas returns the per-connection settings applied by the driver on every
// new connection in the pool
func pragmas(readOnly bool) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if readOnly {
		q.Add("_pragma", "query_only(1)")
	}
	return q.Encode()
}

// configureSQLiteConnection switches a file database to WAL mode and checks it took effect
func configureSQLiteConnection(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to query journal mode: %w", err)
	}
	// in-memory databases report "memory"
	if dbPath != ":memory:" && journalMode != "wal" {
		return fmt.Errorf("WAL mode not enabled (got: %s, expected: wal)", journalMode)
	}
	return nil
}

// Close closes both connection pools
func (s *SQLite) Close() error {
	var writeErr, readErr error
	if s.WriteDB != nil {
		writeErr = s.WriteDB.Close()
	}
	if s.ReadDB != nil {
		readErr = s.ReadDB.Close()
	}

	if writeErr != nil {
		return fmt.Errorf("failed to close write pool: %w", writeErr)
	}
	if readErr != nil {
		return fmt.Errorf("failed to close read pool: %w", readErr)
	}
	return nil
}

// WithTransaction executes fn within a write transaction, rolling back on error or panic
func (s *SQLite) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.WriteDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction (original error: %w, rollback error: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Seed validates seed and writes it in one transaction. Existing rows with the
// same key are replaced; the consequence rules of every (category, property)
// pair present in the seed replace the stored ones, keeping seed order.
func (s *SQLite) Seed(ctx context.Context, seed *Seed) error {
	if err := seed.Validate(); err != nil {
		return err
	}

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, p := range seed.Patterns {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO barcode_patterns (parse_type, pattern, match_groups) VALUES (?, ?, ?)
				ON CONFLICT(parse_type) DO UPDATE SET pattern = excluded.pattern, match_groups = excluded.match_groups
			`, string(p.ParseType), p.Pattern, p.MatchGroups); err != nil {
				return fmt.Errorf("failed to insert pattern %s: %w", p.ParseType, err)
			}
		}

		for _, f := range seed.Facilities {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO fin_numbers (fin_number, facility_name) VALUES (?, ?)`,
				f.FinNumber, f.FacilityName); err != nil {
				return fmt.Errorf("failed to insert facility %s: %w", f.FinNumber, err)
			}
		}

		for _, p := range seed.Products {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO products (code, temperature_category, product_family) VALUES (?, ?, ?)`,
				p.Code, p.TemperatureCategory, p.ProductFamily); err != nil {
				return fmt.Errorf("failed to insert product %s: %w", p.Code, err)
			}
		}

		for _, t := range seed.Translations {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO barcode_translations (from_value, sixth_digit, to_value) VALUES (?, ?, ?)`,
				t.FromValue, t.SixthDigit, t.ToValue); err != nil {
				return fmt.Errorf("failed to insert translation %s: %w", t.FromValue, err)
			}
		}

		replaced := make(map[consequenceKey]bool)
		for _, c := range seed.Consequences {
			key := consequenceKey{c.ProductCategory, c.ResultProperty}
			if !replaced[key] {
				if _, err := tx.ExecContext(ctx, `DELETE FROM product_consequences WHERE product_category = ? AND result_property = ?`,
					c.ProductCategory, string(c.ResultProperty)); err != nil {
					return fmt.Errorf("failed to clear consequences for %s/%s: %w", c.ProductCategory, c.ResultProperty, err)
				}
				replaced[key] = true
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_consequences
					(product_category, acceptable, result_property, result_type, result_value, consequence_type, consequence_reason)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, c.ProductCategory, c.Acceptable, string(c.ResultProperty), c.ResultType, c.ResultValue,
				c.ConsequenceType, c.ConsequenceReason); err != nil {
				return fmt.Errorf("failed to insert consequence for %s/%s: %w", c.ProductCategory, c.ResultProperty, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("Reference data seeded",
		"patterns", len(seed.Patterns),
		"facilities", len(seed.Facilities),
		"products", len(seed.Products),
		"translations", len(seed.Translations),
		"consequences", len(seed.Consequences))
	return nil
}

// FindPatternByParseType implements core.ConfigurationService
func (s *SQLite) FindPatternByParseType(ctx context.Context, parseType core.ParseType) (*core.BarcodePattern, error) {
	var p core.BarcodePattern
	var pt string
	err := s.ReadDB.QueryRowContext(ctx,
		`SELECT id, parse_type, pattern, match_groups FROM barcode_patterns WHERE parse_type = ?`,
		string(parseType)).Scan(&p.ID, &pt, &p.Pattern, &p.MatchGroups)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query barcode pattern: %w", err)
	}
	p.ParseType = core.ParseType(pt)
	return &p, nil
}

// FindFacilityByCode implements core.ConfigurationService
func (s *SQLite) FindFacilityByCode(ctx context.Context, code string) (*core.FinNumber, error) {
	var f core.FinNumber
	var name sql.NullString
	err := s.ReadDB.QueryRowContext(ctx,
		`SELECT fin_number, facility_name FROM fin_numbers WHERE fin_number = ?`, code).Scan(&f.FinNumber, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query facility: %w", err)
	}
	f.FacilityName = name.String
	return &f, nil
}

// FindProductByCodeAndTemperatureCategory implements core.ConfigurationService
func (s *SQLite) FindProductByCodeAndTemperatureCategory(ctx context.Context, code, temperatureCategory string) (*core.Product, error) {
	var p core.Product
	var family sql.NullString
	err := s.ReadDB.QueryRowContext(ctx,
		`SELECT code, temperature_category, product_family FROM products WHERE code = ? AND temperature_category = ?`,
		code, temperatureCategory).Scan(&p.Code, &p.TemperatureCategory, &family)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	p.ProductFamily = family.String
	return &p, nil
}

// FindBloodGroupTranslation implements core.ConfigurationService
func (s *SQLite) FindBloodGroupTranslation(ctx context.Context, fromValue, sixthDigit string) (*core.BarcodeTranslation, error) {
	var t core.BarcodeTranslation
	err := s.ReadDB.QueryRowContext(ctx,
		`SELECT from_value, sixth_digit, to_value FROM barcode_translations WHERE from_value = ? AND sixth_digit = ?`,
		fromValue, sixthDigit).Scan(&t.FromValue, &t.SixthDigit, &t.ToValue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTranslationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query barcode translation: %w", err)
	}
	return &t, nil
}

// FindConsequencesByCategoryAndProperty implements core.ProductConsequenceRepository.
// Rules come back in insertion order.
func (s *SQLite) FindConsequencesByCategoryAndProperty(ctx context.Context, category string, property core.ResultProperty) ([]core.ProductConsequence, error) {
	rows, err := s.ReadDB.QueryContext(ctx, `
		SELECT id, product_category, acceptable, result_property, result_type, result_value, consequence_type, consequence_reason
		FROM product_consequences
		WHERE product_category = ? AND result_property = ?
		ORDER BY id ASC
	`, category, string(property))
	if err != nil {
		return nil, fmt.Errorf("failed to query product consequences: %w", err)
	}
	defer rows.Close()

	rules := []core.ProductConsequence{}
	for rows.Next() {
		var c core.ProductConsequence
		var prop string
		if err := rows.Scan(&c.ID, &c.ProductCategory, &c.Acceptable, &prop, &c.ResultType, &c.ResultValue,
			&c.ConsequenceType, &c.ConsequenceReason); err != nil {
			return nil, fmt.Errorf("failed to scan product consequence: %w", err)
		}
		c.ResultProperty = core.ResultProperty(prop)
		rules = append(rules, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product consequences: %w", err)
	}
	return rules, nil
}

// validateDatabasePath rejects paths that could escape the working directory.
// Temp directories and ":memory:" are allowed.
func validateDatabasePath(dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if dbPath == ":memory:" {
		return nil
	}
	if len(dbPath) > 512 {
		return fmt.Errorf("database path exceeds maximum length of 512 characters")
	}
	if strings.Contains(dbPath, "\x00") {
		return fmt.Errorf("null bytes not allowed in path")
	}
	if strings.Contains(dbPath, "..") {
		return fmt.Errorf("path traversal not allowed (..): %s", dbPath)
	}
	if strings.ContainsAny(dbPath, "?#") {
		return fmt.Errorf("query characters not allowed in path: %s", dbPath)
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if strings.HasPrefix(absPath, os.TempDir()) {
		return nil
	}
	if filepath.IsAbs(dbPath) {
		return fmt.Errorf("absolute paths not allowed: %s", dbPath)
	}
	return nil
}
