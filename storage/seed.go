package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"receiving/core"
)

// Seed is the reference data a store is loaded with: barcode patterns, the
// lookup tables the translators consult and the ordered consequence rules.
type Seed struct {
	Patterns     []core.BarcodePattern     `yaml:"patterns"`
	Facilities   []core.FinNumber          `yaml:"facilities"`
	Products     []core.Product            `yaml:"products"`
	Translations []core.BarcodeTranslation `yaml:"translations"`
	Consequences []core.ProductConsequence `yaml:"consequences"`
}

// LoadSeed reads and validates a YAML seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates YAML seed data
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks every row and rejects duplicate patterns per parse type
func (s *Seed) Validate() error {
	parseTypes := make(map[core.ParseType]bool)
	for i := range s.Patterns {
		p := &s.Patterns[i]
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: patterns[%d]: %v", ErrInvalidSeed, i, err)
		}
		if parseTypes[p.ParseType] {
			return fmt.Errorf("%w: patterns[%d]: duplicate parse type %s", ErrInvalidSeed, i, p.ParseType)
		}
		parseTypes[p.ParseType] = true
	}
	for i := range s.Facilities {
		if err := s.Facilities[i].Validate(); err != nil {
			return fmt.Errorf("%w: facilities[%d]: %v", ErrInvalidSeed, i, err)
		}
	}
	for i := range s.Products {
		if err := s.Products[i].Validate(); err != nil {
			return fmt.Errorf("%w: products[%d]: %v", ErrInvalidSeed, i, err)
		}
	}
	for i := range s.Translations {
		if err := s.Translations[i].Validate(); err != nil {
			return fmt.Errorf("%w: translations[%d]: %v", ErrInvalidSeed, i, err)
		}
	}
	for i := range s.Consequences {
		if err := s.Consequences[i].Validate(); err != nil {
			return fmt.Errorf("%w: consequences[%d]: %v", ErrInvalidSeed, i, err)
		}
	}
	return nil
}
