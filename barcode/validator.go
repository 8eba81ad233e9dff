package barcode

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"receiving/core"
	"receiving/metrics"
)

// DefaultBloodGroupDisambiguator is the sixth-digit key every blood-group
// lookup uses, regardless of the scanned digits.
const DefaultBloodGroupDisambiguator = "V"

// Validator decodes one barcode field and translates it into a ValidationResult.
type Validator struct {
	decoder       *Decoder
	disambiguator string
	logger        *zap.SugaredLogger
}

// NewValidator creates a barcode validator. An empty disambiguator selects
// DefaultBloodGroupDisambiguator.
func NewValidator(decoder *Decoder, disambiguator string, logger *zap.SugaredLogger) *Validator {
	if decoder == nil {
		panic("decoder is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if disambiguator == "" {
		disambiguator = DefaultBloodGroupDisambiguator
	}
	return &Validator{decoder: decoder, disambiguator: disambiguator, logger: logger}
}

// ValidateBarcode fetches the pattern for the command's parse type, decodes the
// scanned value and runs the field translator.
//
// Lookup misses and non-matching input are returned as invalid results. A nil
// command or configuration service, a missing or unusable pattern, and an
// unknown ABO/Rh translation are *core.PreconditionError. Other collaborator
// errors are wrapped and returned.
func (v *Validator) ValidateBarcode(ctx context.Context, cmd *core.ValidateBarcodeCommand, cfg core.ConfigurationService) (core.ValidationResult, error) {
	if err := cmd.CheckValid(); err != nil {
		return core.ValidationResult{}, err
	}
	if cfg == nil {
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgConfigurationServiceRequired)
	}

	result, err := v.validate(ctx, cmd, cfg)
	v.record(cmd.ParseType, result, err)
	return result, err
}

func (v *Validator) validate(ctx context.Context, cmd *core.ValidateBarcodeCommand, cfg core.ConfigurationService) (core.ValidationResult, error) {
	pattern, err := cfg.FindPatternByParseType(ctx, cmd.ParseType)
	if err != nil && !core.IsNotFound(err) {
		return core.ValidationResult{}, fmt.Errorf("failed to find barcode pattern for %s: %w", cmd.ParseType, err)
	}
	if pattern == nil {
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgBarcodePatternRequired)
	}
	// decode against a copy keyed to the requested field
	resolved := *pattern
	resolved.ParseType = cmd.ParseType

	fragments, err := v.decoder.Decode(&resolved, cmd.BarcodeValue)
	if errors.Is(err, ErrRegexTimeout) {
		return core.Rejected(core.MsgBarcodeNotValid), nil
	}
	if err != nil {
		return core.ValidationResult{}, err
	}
	if len(fragments) == 0 {
		v.logger.Debugw("Barcode did not match pattern", "parse_type", cmd.ParseType)
		return core.Rejected(core.MsgBarcodeNotValid), nil
	}

	value := fragments[len(fragments)-1]

	switch cmd.ParseType {
	case core.ParseTypeUnitNumber:
		return translateUnitNumber(ctx, value, cfg)
	case core.ParseTypeProductCode:
		return translateProductCode(ctx, value, cmd.TemperatureCategory, cfg)
	case core.ParseTypeExpirationDate:
		return translateExpirationDate(value), nil
	case core.ParseTypeBloodGroup:
		return translateBloodGroup(ctx, value, v.disambiguator, cfg)
	default:
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgParseTypeRequired)
	}
}

func (v *Validator) record(parseType core.ParseType, result core.ValidationResult, err error) {
	outcome := metrics.OutcomeValid
	switch {
	case core.IsPrecondition(err):
		outcome = metrics.OutcomePrecondition
		v.logger.Warnw("Barcode validation precondition failed", "parse_type", parseType, "error", err)
	case err != nil:
		outcome = metrics.OutcomeError
		v.logger.Errorw("Barcode validation failed", "parse_type", parseType, "error", err)
	case !result.Valid:
		outcome = metrics.OutcomeInvalid
	}
	metrics.BarcodesDecoded.WithLabelValues(parseType.String(), outcome).Inc()
}
