package storage

import (
	"errors"
	"fmt"

	"receiving/core"
)

// Storage error constants. Every not-found error wraps core.ErrNotFound so the
// translators treat it as a business miss.
var (
	// ErrPatternNotFound is returned when no barcode pattern exists for a parse type
	ErrPatternNotFound = fmt.Errorf("barcode pattern %w", core.ErrNotFound)

	// ErrFacilityNotFound is returned when a FIN is not registered
	ErrFacilityNotFound = fmt.Errorf("facility %w", core.ErrNotFound)

	// ErrProductNotFound is returned when a product code is not configured for a category
	ErrProductNotFound = fmt.Errorf("product %w", core.ErrNotFound)

	// ErrTranslationNotFound is returned when a blood-group code has no translation
	ErrTranslationNotFound = fmt.Errorf("barcode translation %w", core.ErrNotFound)

	// ErrDatabaseClosed is returned when attempting to use a closed database connection
	ErrDatabaseClosed = errors.New("database is closed")

	// ErrInvalidSeed is returned when a seed file fails validation
	ErrInvalidSeed = errors.New("invalid seed")
)
