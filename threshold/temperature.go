package threshold

import (
	"receiving/consequence"
	"receiving/core"
)

// ValidateTemperature binds the measured temperature to TEMPERATURE and applies
// the first matching rule. The result carries no value, only validity and the
// quarantine message.
func ValidateTemperature(cmd *core.ValidateTemperatureCommand, rules []core.ProductConsequence) (core.ValidationResult, error) {
	if cmd == nil {
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgTemperatureCommandRequired)
	}
	if len(rules) == 0 {
		return core.ValidationResult{}, core.NewPreconditionError(core.MsgConsequenceListRequired)
	}

	rule, err := consequence.Evaluate(core.PropertyTemperature, cmd.Temperature, rules)
	if err != nil {
		return core.ValidationResult{}, err
	}

	return consequence.Outcome(core.PropertyTemperature, rule), nil
}
