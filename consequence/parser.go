package consequence

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parser builds an expression tree from a consequence rule.
//
// Grammar, lowest precedence first; every binary level is left-associative:
//
//	or       := and ( "||" and )*
//	and      := equality ( "&&" equality )*
//	equality := relation ( ("==" | "!=") relation )*
//	relation := sum ( ("<" | "<=" | ">" | ">=") sum )*
//	sum      := product ( ("+" | "-") product )*
//	product  := unary ( ("*" | "/") unary )*
//	unary    := ("-" | "!") unary | primary
//	primary  := NUMBER | "true" | "false" | IDENTIFIER | "(" or ")"
//
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	tokens      []Token
	position    int
	identifiers []*IdentifierNode
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse tokenizes and parses expression. It fails on empty input, invalid
// characters, syntax errors and trailing tokens.
func (p *Parser) Parse(expression string) (Node, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("cannot parse empty rule expression")
	}

	tokens, err := Tokenize(expression)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	p.tokens = tokens
	p.position = 0
	p.identifiers = nil

	ast, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		current := p.peek()
		return nil, &ParseError{
			Position:   current.Position,
			Token:      current.Type,
			TokenValue: current.Value,
			Expected:   "end of expression",
			Context:    "unexpected tokens remain after parsing complete expression",
		}
	}

	return ast, nil
}

// Identifiers returns the identifier references seen by the last Parse call.
func (p *Parser) Identifiers() []*IdentifierNode {
	return p.identifiers
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (Node, error), operators ...TokenType) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.peekIsOneOf(operators) {
		opToken := p.consume()

		right, err := next()
		if err != nil {
			if p.peek().Type == TokenEOF {
				return nil, &ParseError{
					Position:   opToken.Position,
					Token:      opToken.Type,
					TokenValue: opToken.Value,
					Expected:   "operand after " + opToken.Value,
					Context:    opToken.Value + " operator missing right operand",
				}
			}
			return nil, fmt.Errorf("expected operand after %s at position %d: %w",
				opToken.Value, opToken.Position, err)
		}

		left = &BinaryNode{Operator: opToken.Type, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseOr() (Node, error) {
	return p.binaryLevel(p.parseAnd, TokenOR)
}

func (p *Parser) parseAnd() (Node, error) {
	return p.binaryLevel(p.parseEquality, TokenAND)
}

func (p *Parser) parseEquality() (Node, error) {
	return p.binaryLevel(p.parseRelation, TokenEQ, TokenNEQ)
}

func (p *Parser) parseRelation() (Node, error) {
	return p.binaryLevel(p.parseSum, TokenLT, TokenLTE, TokenGT, TokenGTE)
}

func (p *Parser) parseSum() (Node, error) {
	return p.binaryLevel(p.parseProduct, TokenPLUS, TokenMINUS)
}

func (p *Parser) parseProduct() (Node, error) {
	return p.binaryLevel(p.parseUnary, TokenSTAR, TokenSLASH)
}

// parseUnary handles prefix minus and not; nesting such as "!!x" or "--1" is allowed.
func (p *Parser) parseUnary() (Node, error) {
	if p.peekIsOneOf([]TokenType{TokenMINUS, TokenNOT}) {
		opToken := p.consume()

		operand, err := p.parseUnary()
		if err != nil {
			if p.peek().Type == TokenEOF {
				return nil, &ParseError{
					Position:   opToken.Position,
					Token:      opToken.Type,
					TokenValue: opToken.Value,
					Expected:   "operand after " + opToken.Value,
					Context:    opToken.Value + " operator missing operand",
				}
			}
			return nil, err
		}

		return &UnaryNode{Operator: opToken.Type, Operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	current := p.peek()

	switch current.Type {
	case TokenLPAREN:
		p.consume()

		expr, err := p.parseOr()
		if err != nil {
			return nil, fmt.Errorf("invalid expression inside parentheses starting at position %d: %w",
				current.Position, err)
		}

		closeToken := p.peek()
		if closeToken.Type != TokenRPAREN {
			return nil, &ParseError{
				Position:   closeToken.Position,
				Token:      closeToken.Type,
				TokenValue: closeToken.Value,
				Expected:   "closing parenthesis ')'",
				Context:    fmt.Sprintf("unmatched opening parenthesis at position %d", current.Position),
			}
		}
		p.consume()

		return expr, nil

	case TokenNUMBER:
		p.consume()
		d, err := decimal.NewFromString(current.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d: %w", current.Value, current.Position, err)
		}
		return &NumberNode{Value: d}, nil

	case TokenTRUE, TokenFALSE:
		p.consume()
		return &BoolNode{Value: current.Type == TokenTRUE}, nil

	case TokenIDENTIFIER:
		p.consume()
		node := &IdentifierNode{Name: current.Value, Position: current.Position}
		p.identifiers = append(p.identifiers, node)
		return node, nil

	case TokenEOF:
		return nil, &ParseError{
			Position: current.Position,
			Token:    TokenEOF,
			Expected: "operand or expression",
			Context:  "unexpected end of expression",
		}

	case TokenRPAREN:
		return nil, &ParseError{
			Position:   current.Position,
			Token:      TokenRPAREN,
			TokenValue: current.Value,
			Expected:   "operand or expression",
			Context:    "unmatched closing parenthesis (no matching opening parenthesis)",
		}

	default:
		return nil, &ParseError{
			Position:   current.Position,
			Token:      current.Type,
			TokenValue: current.Value,
			Expected:   "operand or expression",
			Context:    current.Value + " operator missing left operand",
		}
	}
}

func (p *Parser) peek() Token {
	if p.position >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1]
		}
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.position]
}

func (p *Parser) consume() Token {
	token := p.peek()
	if p.position < len(p.tokens) {
		p.position++
	}
	return token
}

func (p *Parser) peekIsOneOf(types []TokenType) bool {
	current := p.peek().Type
	for _, t := range types {
		if current == t {
			return true
		}
	}
	return false
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == TokenEOF
}
