package consequence

import (
	"fmt"
	"regexp"
)

// TokenType represents the type of a token in a consequence rule expression.
type TokenType int

const (
	// TokenEOF represents end of input
	TokenEOF TokenType = iota
	// TokenNUMBER represents a non-negative decimal literal
	TokenNUMBER
	// TokenIDENTIFIER represents a property name such as TEMPERATURE
	TokenIDENTIFIER
	// TokenTRUE represents the boolean literal true
	TokenTRUE
	// TokenFALSE represents the boolean literal false
	TokenFALSE
	// TokenAND represents &&
	TokenAND
	// TokenOR represents ||
	TokenOR
	// TokenNOT represents unary !
	TokenNOT
	// TokenEQ represents ==
	TokenEQ
	// TokenNEQ represents !=
	TokenNEQ
	// TokenLT represents <
	TokenLT
	// TokenLTE represents <=
	TokenLTE
	// TokenGT represents >
	TokenGT
	// TokenGTE represents >=
	TokenGTE
	// TokenPLUS represents +
	TokenPLUS
	// TokenMINUS represents binary or unary -
	TokenMINUS
	// TokenSTAR represents *
	TokenSTAR
	// TokenSLASH represents /
	TokenSLASH
	// TokenLPAREN represents a left parenthesis
	TokenLPAREN
	// TokenRPAREN represents a right parenthesis
	TokenRPAREN
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenNUMBER:     "NUMBER",
	TokenIDENTIFIER: "IDENTIFIER",
	TokenTRUE:       "TRUE",
	TokenFALSE:      "FALSE",
	TokenAND:        "&&",
	TokenOR:         "||",
	TokenNOT:        "!",
	TokenEQ:         "==",
	TokenNEQ:        "!=",
	TokenLT:         "<",
	TokenLTE:        "<=",
	TokenGT:         ">",
	TokenGTE:        ">=",
	TokenPLUS:       "+",
	TokenMINUS:      "-",
	TokenSTAR:       "*",
	TokenSLASH:      "/",
	TokenLPAREN:     "(",
	TokenRPAREN:     ")",
}

// String returns the string representation of a token type.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a single lexeme with its byte offset in the expression.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// String returns a string representation of the token for debugging.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at pos %d", t.Type, t.Value, t.Position)
}

type tokenPattern struct {
	Type    TokenType
	Pattern *regexp.Regexp
}

var (
	// tokenPatterns are tried in order; two-character operators precede their
	// one-character prefixes and keywords precede identifiers.
	tokenPatterns = []tokenPattern{
		{TokenAND, regexp.MustCompile(`^&&`)},
		{TokenOR, regexp.MustCompile(`^\|\|`)},
		{TokenEQ, regexp.MustCompile(`^==`)},
		{TokenNEQ, regexp.MustCompile(`^!=`)},
		{TokenLTE, regexp.MustCompile(`^<=`)},
		{TokenGTE, regexp.MustCompile(`^>=`)},
		{TokenLT, regexp.MustCompile(`^<`)},
		{TokenGT, regexp.MustCompile(`^>`)},
		{TokenNOT, regexp.MustCompile(`^!`)},
		{TokenPLUS, regexp.MustCompile(`^\+`)},
		{TokenMINUS, regexp.MustCompile(`^-`)},
		{TokenSTAR, regexp.MustCompile(`^\*`)},
		{TokenSLASH, regexp.MustCompile(`^/`)},
		{TokenLPAREN, regexp.MustCompile(`^\(`)},
		{TokenRPAREN, regexp.MustCompile(`^\)`)},

		{TokenNUMBER, regexp.MustCompile(`^(?:\d+(?:\.\d+)?|\.\d+)`)},

		{TokenTRUE, regexp.MustCompile(`^true\b`)},
		{TokenFALSE, regexp.MustCompile(`^false\b`)},
		{TokenIDENTIFIER, regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)},
	}

	whitespacePattern = regexp.MustCompile(`^\s+`)
)

// Tokenize converts a rule expression into tokens terminated by TokenEOF.
// Literals are unsigned; a leading minus is tokenized as TokenMINUS and handled
// by the parser as unary negation.
func Tokenize(expression string) ([]Token, error) {
	var tokens []Token
	position := 0

	for position < len(expression) {
		if match := whitespacePattern.FindString(expression[position:]); match != "" {
			position += len(match)
			continue
		}

		matched := false
		for _, pattern := range tokenPatterns {
			if match := pattern.Pattern.FindString(expression[position:]); match != "" {
				tokens = append(tokens, Token{
					Type:     pattern.Type,
					Value:    match,
					Position: position,
				})
				position += len(match)
				matched = true
				break
			}
		}

		if !matched {
			start := position
			if start > 20 {
				start = position - 20
			}
			end := position + 20
			if end > len(expression) {
				end = len(expression)
			}

			return nil, &TokenizationError{
				Position:    position,
				InvalidChar: rune(expression[position]),
				Context:     expression[start:end],
			}
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Value: "", Position: position})

	return tokens, nil
}
