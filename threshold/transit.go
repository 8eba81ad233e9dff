package threshold

import (
	"time"

	"github.com/shopspring/decimal"

	"receiving/consequence"
	"receiving/core"
)

// TransitTime is the elapsed time between the two instants of a transit window.
type TransitTime struct {
	Elapsed time.Duration
	// TotalMinutes is Elapsed in whole minutes, truncated toward zero
	TotalMinutes int64
}

// ComputeTransitTime resolves both wall-clock readings in their own zones and
// returns the signed elapsed time.
func ComputeTransitTime(cmd *core.ValidateTransitTimeCommand) (TransitTime, error) {
	start, end, err := cmd.Instants()
	if err != nil {
		return TransitTime{}, err
	}

	elapsed := end.Sub(start)
	return TransitTime{Elapsed: elapsed, TotalMinutes: int64(elapsed / time.Minute)}, nil
}

// ISO returns the ISO-8601 rendering, e.g. "PT5H30M".
func (t TransitTime) ISO() string {
	return FormatISODuration(t.Elapsed)
}

// Description returns the "{hours}h {minutes}m" rendering.
func (t TransitTime) Description() string {
	return FormatHoursMinutes(t.TotalMinutes)
}

// ValidateTransitTime binds the total minutes to TRANSIT_TIME and applies the
// first matching rule. Both valid and invalid results carry the elapsed time.
func ValidateTransitTime(cmd *core.ValidateTransitTimeCommand, rules []core.ProductConsequence) (core.ValidationResult, error) {
	if cmd == nil {
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgTransitTimeCommandRequired)
	}
	if len(rules) == 0 {
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgConsequenceListRequired)
	}

	transit, err := ComputeTransitTime(cmd)
	if err != nil {
		return core.ValidationResult{}, err
	}

	rule, err := consequence.Evaluate(core.PropertyTransitTime, decimal.NewFromInt(transit.TotalMinutes), rules)
	if err != nil {
		return core.ValidationResult{}, err
	}

	outcome := consequence.Outcome(core.PropertyTransitTime, rule)
	outcome.Result = transit.ISO()
	outcome.ResultDescription = transit.Description()
	return outcome, nil
}
