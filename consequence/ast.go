package consequence

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the runtime type of an expression value.
type Kind int

const (
	// KindNumber is an exact decimal number
	KindNumber Kind = iota
	// KindBool is a boolean
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindBool {
		return "boolean"
	}
	return "number"
}

// Value is the result of evaluating an expression node.
type Value struct {
	Kind Kind
	Num  decimal.Decimal
	Bool bool
}

// NumberValue wraps a decimal.
func NumberValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// String renders the value for diagnostics.
func (v Value) String() string {
	if v.Kind == KindBool {
		return fmt.Sprintf("%t", v.Bool)
	}
	return v.Num.String()
}

// Binding supplies the single free identifier a rule may reference.
type Binding struct {
	Name  string
	Value decimal.Decimal
}

// Node is a node of a parsed rule expression.
type Node interface {
	// Evaluate computes the node value with the identifier bound by b.
	Evaluate(b Binding) (Value, error)
}

// NumberNode is a numeric literal.
type NumberNode struct {
	Value decimal.Decimal
}

// Evaluate returns the literal.
func (n *NumberNode) Evaluate(Binding) (Value, error) {
	return NumberValue(n.Value), nil
}

// BoolNode is a true or false literal.
type BoolNode struct {
	Value bool
}

// Evaluate returns the literal.
func (n *BoolNode) Evaluate(Binding) (Value, error) {
	return BoolValue(n.Value), nil
}

// IdentifierNode references the bound property.
type IdentifierNode struct {
	Name     string
	Position int
}

// Evaluate returns the bound value, or an UndefinedIdentifierError when the
// identifier names anything other than the bound property.
func (n *IdentifierNode) Evaluate(b Binding) (Value, error) {
	if n.Name != b.Name {
		return Value{}, &UndefinedIdentifierError{Identifier: n.Name, Position: n.Position, Bound: b.Name}
	}
	return NumberValue(b.Value), nil
}

// UnaryNode is numeric negation or logical not.
type UnaryNode struct {
	Operator TokenType
	Operand  Node
}

// Evaluate applies the operator to its operand.
func (n *UnaryNode) Evaluate(b Binding) (Value, error) {
	v, err := n.Operand.Evaluate(b)
	if err != nil {
		return Value{}, err
	}

	switch n.Operator {
	case TokenMINUS:
		if v.Kind != KindNumber {
			return Value{}, &TypeError{Operator: n.Operator.String(), Expected: KindNumber, Got: v.Kind}
		}
		return NumberValue(v.Num.Neg()), nil
	case TokenNOT:
		if v.Kind != KindBool {
			return Value{}, &TypeError{Operator: n.Operator.String(), Expected: KindBool, Got: v.Kind}
		}
		return BoolValue(!v.Bool), nil
	default:
		return Value{}, fmt.Errorf("unknown unary operator %s", n.Operator)
	}
}

// BinaryNode is an arithmetic, comparison or logical operation.
// && and || short-circuit: the right operand is not evaluated when the left
// operand decides the result.
type BinaryNode struct {
	Operator TokenType
	Left     Node
	Right    Node
}

// Evaluate applies the operator to both operands.
func (n *BinaryNode) Evaluate(b Binding) (Value, error) {
	left, err := n.Left.Evaluate(b)
	if err != nil {
		return Value{}, err
	}

	if n.Operator == TokenAND || n.Operator == TokenOR {
		if left.Kind != KindBool {
			return Value{}, &TypeError{Operator: n.Operator.String(), Expected: KindBool, Got: left.Kind}
		}
		if n.Operator == TokenAND && !left.Bool {
			return BoolValue(false), nil
		}
		if n.Operator == TokenOR && left.Bool {
			return BoolValue(true), nil
		}
		right, err := n.Right.Evaluate(b)
		if err != nil {
			return Value{}, err
		}
		if right.Kind != KindBool {
			return Value{}, &TypeError{Operator: n.Operator.String(), Expected: KindBool, Got: right.Kind}
		}
		return BoolValue(right.Bool), nil
	}

	right, err := n.Right.Evaluate(b)
	if err != nil {
		return Value{}, err
	}

	if n.Operator == TokenEQ || n.Operator == TokenNEQ {
		if left.Kind != right.Kind {
			return Value{}, &TypeError{Operator: n.Operator.String(), Expected: left.Kind, Got: right.Kind}
		}
		var equal bool
		if left.Kind == KindBool {
			equal = left.Bool == right.Bool
		} else {
			equal = left.Num.Equal(right.Num)
		}
		if n.Operator == TokenNEQ {
			return BoolValue(!equal), nil
		}
		return BoolValue(equal), nil
	}

	if left.Kind != KindNumber {
		return Value{}, &TypeError{Operator: n.Operator.String(), Expected: KindNumber, Got: left.Kind}
	}
	if right.Kind != KindNumber {
		return Value{}, &TypeError{Operator: n.Operator.String(), Expected: KindNumber, Got: right.Kind}
	}

	switch n.Operator {
	case TokenLT:
		return BoolValue(left.Num.LessThan(right.Num)), nil
	case TokenLTE:
		return BoolValue(left.Num.LessThanOrEqual(right.Num)), nil
	case TokenGT:
		return BoolValue(left.Num.GreaterThan(right.Num)), nil
	case TokenGTE:
		return BoolValue(left.Num.GreaterThanOrEqual(right.Num)), nil
	case TokenPLUS:
		return NumberValue(left.Num.Add(right.Num)), nil
	case TokenMINUS:
		return NumberValue(left.Num.Sub(right.Num)), nil
	case TokenSTAR:
		return NumberValue(left.Num.Mul(right.Num)), nil
	case TokenSLASH:
		if right.Num.IsZero() {
			return Value{}, ErrDivisionByZero
		}
		return NumberValue(left.Num.Div(right.Num)), nil
	default:
		return Value{}, fmt.Errorf("unknown binary operator %s", n.Operator)
	}
}
