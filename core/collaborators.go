package core

import "context"

// ConfigurationService supplies barcode patterns and the reference data the field
// translators look up. Implementations return an error wrapping ErrNotFound when
// no row matches.
type ConfigurationService interface {
	FindPatternByParseType(ctx context.Context, parseType ParseType) (*BarcodePattern, error)
	FindFacilityByCode(ctx context.Context, code string) (*FinNumber, error)
	FindProductByCodeAndTemperatureCategory(ctx context.Context, code, temperatureCategory string) (*Product, error)
	FindBloodGroupTranslation(ctx context.Context, fromValue, sixthDigit string) (*BarcodeTranslation, error)
}

// ProductConsequenceRepository supplies the ordered consequence rules for a
// product category and measured property. An empty slice means none are configured.
type ProductConsequenceRepository interface {
	FindConsequencesByCategoryAndProperty(ctx context.Context, category string, property ResultProperty) ([]ProductConsequence, error)
}
