package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidateBarcodeCommand asks the decoder to decode one scanned barcode field
type ValidateBarcodeCommand struct {
	BarcodeValue string
	ParseType    ParseType
	// TemperatureCategory is required for product codes only
	TemperatureCategory string
}

// NewValidateBarcodeCommand creates a barcode command, rejecting blank input
func NewValidateBarcodeCommand(barcodeValue string, parseType ParseType, temperatureCategory string) (*ValidateBarcodeCommand, error) {
	cmd := &ValidateBarcodeCommand{
		BarcodeValue:        barcodeValue,
		ParseType:           parseType,
		TemperatureCategory: temperatureCategory,
	}
	if err := cmd.CheckValid(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// CheckValid verifies the required fields
func (c *ValidateBarcodeCommand) CheckValid() error {
	if c == nil {
		return NewPreconditionError(MsgBarcodeCommandRequired)
	}
	if isBlank(c.BarcodeValue) {
		return NewPreconditionError(MsgBarcodeValueRequired)
	}
	if !c.ParseType.IsValid() {
		return NewPreconditionError(MsgParseTypeRequired)
	}
	return nil
}

// ValidateTemperatureCommand carries a measured temperature for a product category
type ValidateTemperatureCommand struct {
	Temperature         decimal.Decimal
	TemperatureCategory string
}

// NewValidateTemperatureCommand creates a temperature command
func NewValidateTemperatureCommand(temperature decimal.Decimal, temperatureCategory string) (*ValidateTemperatureCommand, error) {
	if isBlank(temperatureCategory) {
		return nil, NewPreconditionError(MsgTemperatureCategoryRequired)
	}
	return &ValidateTemperatureCommand{Temperature: temperature, TemperatureCategory: temperatureCategory}, nil
}

// ValidateTransitTimeCommand carries the transit window of a shipment.
//
// StartDateTime and EndDateTime are wall-clock readings; only their calendar and clock
// fields are used and they are interpreted in StartTimeZone and EndTimeZone
// respectively (IANA names such as "America/New_York").
type ValidateTransitTimeCommand struct {
	TemperatureCategory string
	StartDateTime       time.Time
	StartTimeZone       string
	EndDateTime         time.Time
	EndTimeZone         string
}

// NewValidateTransitTimeCommand creates a transit-time command and checks its fields
func NewValidateTransitTimeCommand(temperatureCategory string, start time.Time, startZone string, end time.Time, endZone string) (*ValidateTransitTimeCommand, error) {
	cmd := &ValidateTransitTimeCommand{
		TemperatureCategory: temperatureCategory,
		StartDateTime:       start,
		StartTimeZone:       startZone,
		EndDateTime:         end,
		EndTimeZone:         endZone,
	}
	if isBlank(temperatureCategory) {
		return nil, NewPreconditionError(MsgTemperatureCategoryRequired)
	}
	if _, _, err := cmd.Instants(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Instants resolves both wall-clock readings to absolute instants in their own zones.
func (c *ValidateTransitTimeCommand) Instants() (time.Time, time.Time, error) {
	if c == nil {
		return time.Time{}, time.Time{}, NewPreconditionError(MsgTransitTimeCommandRequired)
	}
	if c.StartDateTime.IsZero() {
		return time.Time{}, time.Time{}, NewPreconditionError(MsgTransitStartDateRequired)
	}
	if isBlank(c.StartTimeZone) {
		return time.Time{}, time.Time{}, NewPreconditionError(MsgTransitStartTimeZoneRequired)
	}
	if c.EndDateTime.IsZero() {
		return time.Time{}, time.Time{}, NewPreconditionError(MsgTransitEndDateRequired)
	}
	if isBlank(c.EndTimeZone) {
		return time.Time{}, time.Time{}, NewPreconditionError(MsgTransitEndTimeZoneRequired)
	}

	startLoc, err := time.LoadLocation(c.StartTimeZone)
	if err != nil {
		return time.Time{}, time.Time{}, WrapPrecondition(MsgTransitStartTimeZoneInvalid, err)
	}
	endLoc, err := time.LoadLocation(c.EndTimeZone)
	if err != nil {
		return time.Time{}, time.Time{}, WrapPrecondition(MsgTransitEndTimeZoneInvalid, err)
	}

	return inZone(c.StartDateTime, startLoc), inZone(c.EndDateTime, endLoc), nil
}

// inZone reinterprets the wall-clock fields of t in loc
func inZone(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
