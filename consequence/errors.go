package consequence

import (
	"errors"
	"fmt"
)

// ErrNoRuleMatched is the diagnostic cause when every rule evaluated to false.
var ErrNoRuleMatched = errors.New("no consequence rule matched")

// ErrDivisionByZero is returned when a rule divides by a zero operand.
var ErrDivisionByZero = errors.New("division by zero")

// TokenizationError represents an invalid character in a rule expression.
type TokenizationError struct {
	// Position is the byte offset of the invalid character
	Position int
	// InvalidChar is the character that matched no token
	InvalidChar rune
	// Context provides surrounding text for debugging
	Context string
}

// Error implements the error interface for TokenizationError.
func (e *TokenizationError) Error() string {
	return fmt.Sprintf("tokenization error at position %d: invalid character %q (context: %q)",
		e.Position, e.InvalidChar, e.Context)
}

// Is returns true if the target is a TokenizationError at the same position.
func (e *TokenizationError) Is(target error) bool {
	t, ok := target.(*TokenizationError)
	if !ok {
		return false
	}
	return e.Position == t.Position
}

// ParseError represents a syntax error in a rule expression.
type ParseError struct {
	// Position is the byte offset in the expression where the error occurred
	Position int
	// Token is the actual token that was encountered
	Token TokenType
	// TokenValue is the string value of the token
	TokenValue string
	// Expected describes what was expected at this position
	Expected string
	// Context provides additional context about the error
	Context string
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("parse error at position %d: expected %s but got %s (%q) - %s",
			e.Position, e.Expected, e.Token, e.TokenValue, e.Context)
	}
	return fmt.Sprintf("parse error at position %d: expected %s but got %s (%q)",
		e.Position, e.Expected, e.Token, e.TokenValue)
}

// Is returns true if the target is a ParseError at the same position.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return e.Position == t.Position
}

// UndefinedIdentifierError represents a reference to a name other than the
// property the rule is bound to.
type UndefinedIdentifierError struct {
	// Identifier is the unknown name
	Identifier string
	// Position is the byte offset of the identifier
	Position int
	// Bound is the property name that was available
	Bound string
}

// Error implements the error interface for UndefinedIdentifierError.
func (e *UndefinedIdentifierError) Error() string {
	return fmt.Sprintf("undefined identifier '%s' at position %d (available: %s)",
		e.Identifier, e.Position, e.Bound)
}

// Is returns true if the target names the same identifier.
func (e *UndefinedIdentifierError) Is(target error) bool {
	t, ok := target.(*UndefinedIdentifierError)
	if !ok {
		return false
	}
	return e.Identifier == t.Identifier
}

// TypeError represents an operator applied to operands of the wrong kind,
// or a rule whose overall value is not boolean.
type TypeError struct {
	// Operator is the operator text, or "result" for the top-level value
	Operator string
	// Expected is the kind the operator needs
	Expected Kind
	// Got is the kind that was supplied
	Got Kind
}

// Error implements the error interface for TypeError.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: %s expects %s operand but got %s", e.Operator, e.Expected, e.Got)
}

// RuleError reports that one configured rule could not be evaluated.
// Evaluation stops at the first such rule.
type RuleError struct {
	// Index is the zero-based position of the rule in the supplied list
	Index int
	// Expression is the rule text
	Expression string
	// Err is the tokenization, parse or evaluation failure
	Err error
}

// Error implements the error interface for RuleError.
func (e *RuleError) Error() string {
	return fmt.Sprintf("consequence rule %d (%q) is malformed: %v", e.Index, e.Expression, e.Err)
}

// Unwrap returns the underlying failure.
func (e *RuleError) Unwrap() error {
	return e.Err
}
