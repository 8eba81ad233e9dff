package barcode

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"receiving/core"
)

const (
	facilityCodeLength = 5
	bloodGroupLength   = 4
	expirationLength   = 10

	// expirationLayout puts the day before the month; downstream consumers
	// read the result in that order.
	expirationLayout            = "2006-02-01T15:04:05Z"
	expirationDescriptionLayout = "Jan 2, 2006"
)

// translateUnitNumber splits the value into a facility code and the remaining
// digits and checks that the facility is registered.
func translateUnitNumber(ctx context.Context, value string, cfg core.ConfigurationService) (core.ValidationResult, error) {
	if len(value) < facilityCodeLength {
		return core.Rejected(core.MsgBarcodeNotValid), nil
	}

	code := value[:facilityCodeLength]
	facility, err := cfg.FindFacilityByCode(ctx, code)
	if err != nil && !core.IsNotFound(err) {
		return core.ValidationResult{}, fmt.Errorf("failed to find facility %s: %w", code, err)
	}
	if facility == nil {
		return core.Rejected(core.MsgFacilityNotRegistered), nil
	}

	unitNumber := code + strings.TrimSpace(value[facilityCodeLength:])
	return core.Accepted(unitNumber, ""), nil
}

// translateProductCode checks the product is offered in the temperature category.
func translateProductCode(ctx context.Context, value, temperatureCategory string, cfg core.ConfigurationService) (core.ValidationResult, error) {
	product, err := cfg.FindProductByCodeAndTemperatureCategory(ctx, value, temperatureCategory)
	if err != nil && !core.IsNotFound(err) {
		return core.ValidationResult{}, fmt.Errorf("failed to find product %s: %w", value, err)
	}
	if product == nil {
		return core.Rejected(core.MsgProductTypeMismatch), nil
	}
	return core.Accepted(value, ""), nil
}

// translateExpirationDate decodes a cyyjjjhhmm value. Seconds are fixed at 59.
func translateExpirationDate(value string) core.ValidationResult {
	expiry, ok := ParseExpiration(value)
	if !ok {
		return core.Rejected(core.MsgInvalidExpirationDate)
	}
	return core.Accepted(expiry.Format(expirationLayout), expiry.Format(expirationDescriptionLayout))
}

// ParseExpiration converts a cyyjjjhhmm value into a UTC instant. The first
// three digits are years after 2000, jjj is the 1-based day of the year, hh and
// mm the time of day. Out-of-range fields report false.
func ParseExpiration(value string) (time.Time, bool) {
	if len(value) != expirationLength {
		return time.Time{}, false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}

	years, _ := strconv.Atoi(value[0:3])
	dayOfYear, _ := strconv.Atoi(value[3:6])
	hour, _ := strconv.Atoi(value[6:8])
	minute, _ := strconv.Atoi(value[8:10])

	year := 2000 + years
	daysInYear := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
	if dayOfYear < 1 || dayOfYear > daysInYear || hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	// time.Date normalizes January 42 to February 11
	return time.Date(year, time.January, dayOfYear, hour, minute, 59, 0, time.UTC), true
}

// translateBloodGroup looks the four-character code up under the fixed
// disambiguator and expands the ABO/Rh label.
func translateBloodGroup(ctx context.Context, value, disambiguator string, cfg core.ConfigurationService) (core.ValidationResult, error) {
	if len(value) != bloodGroupLength {
		return core.Rejected(core.MsgBarcodeNotValid), nil
	}

	translation, err := cfg.FindBloodGroupTranslation(ctx, value, disambiguator)
	if err != nil && !core.IsNotFound(err) {
		return core.ValidationResult{}, fmt.Errorf("failed to find blood group translation %s: %w", value, err)
	}
	if translation == nil {
		return core.Rejected(core.MsgBarcodeNotValid), nil
	}

	aboRh, err := core.ParseAboRh(translation.ToValue)
	if err != nil {
		return core.ValidationResult{}, err
	}
	return core.Accepted(aboRh.String(), aboRh.Label()), nil
}
