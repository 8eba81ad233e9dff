package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ClassifySQLiteError turns a SQLite open failure into an actionable hint.
func ClassifySQLiteError(err error, dbPath string) string {
	if err == nil {
		return ""
	}

	errStr := strings.ToLower(err.Error())
	absPath, _ := filepath.Abs(dbPath)
	parentDir := filepath.Dir(absPath)

	switch {
	case strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access denied"):
		return fmt.Sprintf("Permission denied accessing SQLite database at %s. Check permissions on %s and %s.",
			absPath, absPath, parentDir)
	case strings.Contains(errStr, "database is locked") || strings.Contains(errStr, "sqlite_busy"):
		return fmt.Sprintf("SQLite database at %s is locked by another process. Wait for a running seed to finish and retry.",
			absPath)
	case strings.Contains(errStr, "not a database") || strings.Contains(errStr, "malformed"):
		return fmt.Sprintf("SQLite database at %s is corrupted. Move it aside and reseed.", absPath)
	case strings.Contains(errStr, "invalid database path"):
		return fmt.Sprintf("Database path %s is not allowed. Use a relative path inside the working directory.", dbPath)
	case strings.Contains(errStr, "no space left"):
		return fmt.Sprintf("No disk space left for SQLite database at %s.", absPath)
	default:
		return fmt.Sprintf("Failed to open SQLite database at %s.", absPath)
	}
}
