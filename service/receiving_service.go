package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"receiving/barcode"
	"receiving/consequence"
	"receiving/core"
	"receiving/metrics"
	"receiving/threshold"
)

// Messages shown when a collaborator fails; the underlying error is logged only.
const (
	msgBarcodeSystemError     = "Unable to validate barcode. Please try again."
	msgTemperatureSystemError = "Unable to validate temperature. Please try again."
	msgTransitSystemError     = "Unable to validate transit time. Please try again."
)

// ReceivingService runs the receiving validation use cases: it fetches the
// configuration a validator needs, runs it and maps the outcome to a
// UseCaseOutput.
//
// Failures never escape as errors. Business outcomes become CAUTION
// notifications next to the result; precondition and collaborator failures
// become a single SYSTEM notification with no data. The returned error is only
// set when ctx is already done.
type ReceivingService struct {
	configuration core.ConfigurationService
	consequences  core.ProductConsequenceRepository
	barcodes      *barcode.Validator
	logger        *zap.SugaredLogger
}

// NewReceivingService creates a new ReceivingService. Every dependency is
// required; the constructor panics on nil.
func NewReceivingService(
	configuration core.ConfigurationService,
	consequences core.ProductConsequenceRepository,
	barcodes *barcode.Validator,
	logger *zap.SugaredLogger,
) *ReceivingService {
	if configuration == nil {
		panic("configuration is required")
	}
	if consequences == nil {
		panic("consequences is required")
	}
	if barcodes == nil {
		panic("barcodes is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &ReceivingService{
		configuration: configuration,
		consequences:  consequences,
		barcodes:      barcodes,
		logger:        logger,
	}
}

// ValidateBarcode decodes one scanned barcode field.
func (s *ReceivingService) ValidateBarcode(ctx context.Context, cmd *core.ValidateBarcodeCommand) (*UseCaseOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer observe("validate_barcode", time.Now())

	result, err := s.barcodes.ValidateBarcode(ctx, cmd, s.configuration)
	if err != nil {
		return s.failure(err, msgBarcodeSystemError, CodeBarcodeSystem, "parse_type", parseTypeOf(cmd)), nil
	}

	if !result.Valid {
		s.logger.Infow("Barcode rejected", "parse_type", cmd.ParseType, "message", result.Message)
	}
	return resultOutput(result, CodeBarcodeCaution), nil
}

// ValidateTemperature checks a measured temperature against the category's
// TEMPERATURE rules.
func (s *ReceivingService) ValidateTemperature(ctx context.Context, cmd *core.ValidateTemperatureCommand) (*UseCaseOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer observe("validate_temperature", time.Now())

	if cmd == nil {
		return s.failure(core.NewPreconditionError(core.MsgTemperatureCommandRequired), msgTemperatureSystemError, CodeTemperatureSystem), nil
	}

	rules, err := s.consequences.FindConsequencesByCategoryAndProperty(ctx, cmd.TemperatureCategory, core.PropertyTemperature)
	if err != nil {
		return s.failure(fmt.Errorf("failed to load temperature rules: %w", err), msgTemperatureSystemError, CodeTemperatureSystem,
			"category", cmd.TemperatureCategory), nil
	}

	result, err := threshold.ValidateTemperature(cmd, rules)
	if err != nil {
		s.recordRuleFailure(core.PropertyTemperature, err)
		return s.failure(err, msgTemperatureSystemError, CodeTemperatureSystem,
			"category", cmd.TemperatureCategory, "temperature", cmd.Temperature.String()), nil
	}

	recordThreshold(core.PropertyTemperature, result)
	return resultOutput(result, CodeTemperatureCaution), nil
}

// ValidateTransitTime checks the elapsed transit time against the category's
// TRANSIT_TIME rules.
func (s *ReceivingService) ValidateTransitTime(ctx context.Context, cmd *core.ValidateTransitTimeCommand) (*UseCaseOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer observe("validate_transit_time", time.Now())

	if cmd == nil {
		return s.failure(core.NewPreconditionError(core.MsgTransitTimeCommandRequired), msgTransitSystemError, CodeTransitTimeSystem), nil
	}
	if _, _, err := cmd.Instants(); err != nil {
		return s.failure(err, msgTransitSystemError, CodeTransitTimeSystem), nil
	}

	rules, err := s.consequences.FindConsequencesByCategoryAndProperty(ctx, cmd.TemperatureCategory, core.PropertyTransitTime)
	if err != nil {
		return s.failure(fmt.Errorf("failed to load transit time rules: %w", err), msgTransitSystemError, CodeTransitTimeSystem,
			"category", cmd.TemperatureCategory), nil
	}

	result, err := threshold.ValidateTransitTime(cmd, rules)
	if err != nil {
		s.recordRuleFailure(core.PropertyTransitTime, err)
		return s.failure(err, msgTransitSystemError, CodeTransitTimeSystem, "category", cmd.TemperatureCategory), nil
	}

	recordThreshold(core.PropertyTransitTime, result)
	return resultOutput(result, CodeTransitTimeCaution), nil
}

// failure logs err and builds the SYSTEM output. Precondition messages are
// shown as is; anything else is replaced by fallback.
func (s *ReceivingService) failure(err error, fallback string, code int, keysAndValues ...interface{}) *UseCaseOutput {
	var pe *core.PreconditionError
	if errors.As(err, &pe) {
		fields := append([]interface{}{"message", pe.Message}, keysAndValues...)
		if pe.Cause != nil {
			fields = append(fields, "cause", pe.Cause.Error())
		}
		s.logger.Warnw("Receiving validation precondition failed", fields...)
		return systemOutput(pe.Message, code)
	}

	fields := append([]interface{}{"error", err}, keysAndValues...)
	s.logger.Errorw("Receiving validation failed", fields...)
	return systemOutput(fallback, code)
}

func (s *ReceivingService) recordRuleFailure(property core.ResultProperty, err error) {
	if !errors.Is(err, core.ErrConsequenceNotFound) {
		if errors.Is(err, core.NewPreconditionError(core.MsgConsequenceListRequired)) {
			metrics.ConsequenceRuleFailures.WithLabelValues(property.String(), "not_configured").Inc()
		}
		return
	}

	reason := "no_match"
	var ruleErr *consequence.RuleError
	if errors.As(err, &ruleErr) {
		reason = "malformed"
	}
	metrics.ConsequenceRuleFailures.WithLabelValues(property.String(), reason).Inc()
}

func recordThreshold(property core.ResultProperty, result core.ValidationResult) {
	outcome := metrics.OutcomeValid
	if !result.Valid {
		outcome = metrics.OutcomeInvalid
	}
	metrics.ThresholdValidations.WithLabelValues(property.String(), outcome).Inc()
}

func observe(useCase string, start time.Time) {
	metrics.UseCaseDuration.WithLabelValues(useCase).Observe(time.Since(start).Seconds())
}

func parseTypeOf(cmd *core.ValidateBarcodeCommand) string {
	if cmd == nil {
		return ""
	}
	return cmd.ParseType.String()
}
