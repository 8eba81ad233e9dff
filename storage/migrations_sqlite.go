package storage

import (
	"database/sql"
	"fmt"
)

// RegisterSQLiteMigrations registers the reference-data schema with the runner
func RegisterSQLiteMigrations(runner *MigrationRunner) {
	runner.Register(Migration{
		Version:     "1.0.0",
		Name:        "create_reference_tables",
		Description: "Barcode patterns, facilities, products and blood-group translations",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS barcode_patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					parse_type TEXT NOT NULL UNIQUE,
					pattern TEXT NOT NULL,
					match_groups INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE TABLE IF NOT EXISTS fin_numbers (
					fin_number TEXT PRIMARY KEY,
					facility_name TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS products (
					code TEXT NOT NULL,
					temperature_category TEXT NOT NULL,
					product_family TEXT,
					PRIMARY KEY (code, temperature_category)
				)`,
				`CREATE TABLE IF NOT EXISTS barcode_translations (
					from_value TEXT NOT NULL,
					sixth_digit TEXT NOT NULL DEFAULT '',
					to_value TEXT NOT NULL,
					PRIMARY KEY (from_value, sixth_digit)
				)`,
			)
		},
	})

	runner.Register(Migration{
		Version:     "1.1.0",
		Name:        "create_product_consequences",
		Description: "Ordered consequence rules per product category and result property",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS product_consequences (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					product_category TEXT NOT NULL,
					acceptable INTEGER NOT NULL,
					result_property TEXT NOT NULL,
					result_type TEXT NOT NULL,
					result_value TEXT NOT NULL,
					consequence_type TEXT NOT NULL,
					consequence_reason TEXT NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_product_consequences_lookup
					ON product_consequences(product_category, result_property, id)`,
			)
		},
	})
}

func execAll(tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
