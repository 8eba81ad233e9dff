package storage

import (
	"context"
	"sync"

	"receiving/core"
)

type productKey struct {
	code     string
	category string
}

type translationKey struct {
	from       string
	sixthDigit string
}

type consequenceKey struct {
	category string
	property core.ResultProperty
}

// Memory is an in-process ConfigurationService and ProductConsequenceRepository
// backed by maps. It is safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	patterns     map[core.ParseType]core.BarcodePattern
	facilities   map[string]core.FinNumber
	products     map[productKey]core.Product
	translations map[translationKey]core.BarcodeTranslation
	consequences map[consequenceKey][]core.ProductConsequence
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{
		patterns:     make(map[core.ParseType]core.BarcodePattern),
		facilities:   make(map[string]core.FinNumber),
		products:     make(map[productKey]core.Product),
		translations: make(map[translationKey]core.BarcodeTranslation),
		consequences: make(map[consequenceKey][]core.ProductConsequence),
	}
}

// NewMemoryFromSeed creates a store holding the seed's rows
func NewMemoryFromSeed(seed *Seed) (*Memory, error) {
	m := NewMemory()
	if err := m.Load(seed); err != nil {
		return nil, err
	}
	return m, nil
}

// Load validates seed and adds its rows. Patterns replace any existing pattern
// for the same parse type; consequences are appended in seed order.
func (m *Memory) Load(seed *Seed) error {
	if err := seed.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range seed.Patterns {
		m.patterns[p.ParseType] = p
	}
	for _, f := range seed.Facilities {
		m.facilities[f.FinNumber] = f
	}
	for _, p := range seed.Products {
		m.products[productKey{p.Code, p.TemperatureCategory}] = p
	}
	for _, t := range seed.Translations {
		m.translations[translationKey{t.FromValue, t.SixthDigit}] = t
	}
	for _, c := range seed.Consequences {
		key := consequenceKey{c.ProductCategory, c.ResultProperty}
		m.consequences[key] = append(m.consequences[key], c)
	}
	return nil
}

// FindPatternByParseType implements core.ConfigurationService
func (m *Memory) FindPatternByParseType(_ context.Context, parseType core.ParseType) (*core.BarcodePattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patterns[parseType]
	if !ok {
		return nil, ErrPatternNotFound
	}
	return &p, nil
}

// FindFacilityByCode implements core.ConfigurationService
func (m *Memory) FindFacilityByCode(_ context.Context, code string) (*core.FinNumber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.facilities[code]
	if !ok {
		return nil, ErrFacilityNotFound
	}
	return &f, nil
}

// FindProductByCodeAndTemperatureCategory implements core.ConfigurationService
func (m *Memory) FindProductByCodeAndTemperatureCategory(_ context.Context, code, temperatureCategory string) (*core.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[productKey{code, temperatureCategory}]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// FindBloodGroupTranslation implements core.ConfigurationService
func (m *Memory) FindBloodGroupTranslation(_ context.Context, fromValue, sixthDigit string) (*core.BarcodeTranslation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.translations[translationKey{fromValue, sixthDigit}]
	if !ok {
		return nil, ErrTranslationNotFound
	}
	return &t, nil
}

// FindConsequencesByCategoryAndProperty implements core.ProductConsequenceRepository.
// The returned slice is a copy in stored order.
func (m *Memory) FindConsequencesByCategoryAndProperty(_ context.Context, category string, property core.ResultProperty) ([]core.ProductConsequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := m.consequences[consequenceKey{category, property}]
	out := make([]core.ProductConsequence, len(rules))
	copy(out, rules)
	return out, nil
}
