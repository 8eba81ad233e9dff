package consequence

import (
	"fmt"

	"github.com/shopspring/decimal"

	"receiving/core"
)

// Expression is a parsed consequence rule. It is immutable after Compile and
// safe for concurrent use.
type Expression struct {
	text        string
	root        Node
	identifiers []*IdentifierNode
}

// Compile parses a rule expression.
func Compile(expression string) (*Expression, error) {
	p := NewParser()
	root, err := p.Parse(expression)
	if err != nil {
		return nil, err
	}
	return &Expression{text: expression, root: root, identifiers: p.Identifiers()}, nil
}

// String returns the source text.
func (e *Expression) String() string {
	return e.text
}

// Matches binds property to value and reports whether the expression is true.
// Every identifier must name property, even in branches that short-circuit, and
// the expression must produce a boolean.
func (e *Expression) Matches(property core.ResultProperty, value decimal.Decimal) (bool, error) {
	for _, ident := range e.identifiers {
		if ident.Name != property.String() {
			return false, &UndefinedIdentifierError{Identifier: ident.Name, Position: ident.Position, Bound: property.String()}
		}
	}

	v, err := e.root.Evaluate(Binding{Name: property.String(), Value: value})
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, &TypeError{Operator: "result", Expected: KindBool, Got: v.Kind}
	}
	return v.Bool, nil
}

// Evaluate returns the first rule whose expression is true for value.
//
// A nil or empty rule list is a precondition failure. A malformed rule stops
// evaluation at once. Both a malformed rule and a list where nothing matched
// surface as core.MsgProductConsequenceNotFound; the cause (a *RuleError or
// ErrNoRuleMatched) is kept for diagnostics.
func Evaluate(property core.ResultProperty, value decimal.Decimal, rules []core.ProductConsequence) (*core.ProductConsequence, error) {
	if len(rules) == 0 {
		return nil, core.NewPreconditionError(core.MsgConsequenceListRequired)
	}

	for i := range rules {
		rule := &rules[i]

		expr, err := Compile(rule.ResultValue)
		if err != nil {
			return nil, core.WrapPrecondition(core.MsgProductConsequenceNotFound,
				&RuleError{Index: i, Expression: rule.ResultValue, Err: err})
		}

		matched, err := expr.Matches(property, value)
		if err != nil {
			return nil, core.WrapPrecondition(core.MsgProductConsequenceNotFound,
				&RuleError{Index: i, Expression: rule.ResultValue, Err: err})
		}
		if matched {
			return rule, nil
		}
	}

	return nil, core.WrapPrecondition(core.MsgProductConsequenceNotFound,
		fmt.Errorf("%w: %s = %s over %d rules", ErrNoRuleMatched, property, value, len(rules)))
}

// QuarantineMessage returns the message shown when property fails its thresholds.
func QuarantineMessage(property core.ResultProperty) string {
	switch property {
	case core.PropertyTemperature:
		return core.MsgTemperatureQuarantine
	case core.PropertyTransitTime:
		return core.MsgTransitTimeQuarantine
	default:
		return core.MsgVisualInspectionQuarantine
	}
}

// Outcome converts the matched rule into a result: valid when the rule is
// acceptable, otherwise invalid with the property's quarantine message.
func Outcome(property core.ResultProperty, rule *core.ProductConsequence) core.ValidationResult {
	if rule.Acceptable {
		return core.ValidationResult{Valid: true}
	}
	return core.Rejected(QuarantineMessage(property))
}
