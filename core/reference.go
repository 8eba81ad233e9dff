package core

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// validate is shared by every domain type and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// BarcodePattern is the configured regular expression for one parse type.
// MatchGroups is the number of leading capture groups the decoder extracts; the
// translated value is capture group number MatchGroups.
type BarcodePattern struct {
	ID          int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Pattern     string    `json:"pattern" yaml:"pattern" validate:"notblank"`
	MatchGroups int       `json:"matchGroups" yaml:"matchGroups" validate:"gte=0"`
	ParseType   ParseType `json:"parseType" yaml:"parseType" validate:"notblank"`
}

// Validate checks the pattern definition
func (p *BarcodePattern) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid barcode pattern: %w", err)
	}
	if !p.ParseType.IsValid() {
		return fmt.Errorf("invalid barcode pattern: unknown parse type %q", p.ParseType)
	}
	return nil
}

// BarcodeTranslation maps a raw blood-group code plus disambiguator to a human code.
// The struct is comparable; equality covers every field.
type BarcodeTranslation struct {
	FromValue  string `json:"fromValue" yaml:"fromValue" validate:"notblank"`
	ToValue    string `json:"toValue" yaml:"toValue" validate:"notblank"`
	SixthDigit string `json:"sixthDigit,omitempty" yaml:"sixthDigit,omitempty"`
}

// Validate checks the translation row
func (t *BarcodeTranslation) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid barcode translation: %w", err)
	}
	return nil
}

// FinNumber is a registered facility identification number
type FinNumber struct {
	FinNumber    string `json:"finNumber" yaml:"finNumber" validate:"len=5"`
	FacilityName string `json:"facilityName,omitempty" yaml:"facilityName,omitempty"`
}

// Validate checks the facility row
func (f *FinNumber) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid fin number: %w", err)
	}
	return nil
}

// Product is a product code accepted for a temperature category
type Product struct {
	Code                string `json:"code" yaml:"code" validate:"notblank"`
	TemperatureCategory string `json:"temperatureCategory" yaml:"temperatureCategory" validate:"notblank"`
	ProductFamily       string `json:"productFamily,omitempty" yaml:"productFamily,omitempty"`
}

// Validate checks the product row
func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return nil
}
