package spreadsheet

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenEquals
	TokenNumber
	TokenCell
	TokenRange
	TokenFunction
	TokenUnaryPrefixOp
	TokenBinaryOp
	TokenLeftParen
	TokenRightParen
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenEquals:
		return "EQUALS"
	case TokenNumber:
		return "NUMBER"
	case TokenCell:
		return "CELL"
	case TokenRange:
		return "RANGE"
	case TokenFunction:
		return "FUNCTION"
	case TokenUnaryPrefixOp:
		return "UNARY"
	case TokenBinaryOp:
		return "BINARY"
	case TokenLeftParen:
		return "LPAREN"
	case TokenRightParen:
		return "RPAREN"
	default:
		return fmt.Sprintf("TOKEN(%d)", int(t))
	}
}

// BinaryOp represents binary operators in AST nodes
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
)

// UnaryOp represents unary operators in AST nodes
type UnaryOp int

const (
	UnaryOpPlus UnaryOp = iota
	UnaryOpMinus
)

// character classification constants. slightly easier to read.
const (
	charNull     = 0
	charTab      = '\t'
	charNewline  = '\n'
	charReturn   = '\r'
	charSpace    = ' '
	charLParen   = '('
	charRParen   = ')'
	charAsterisk = '*'
	charPlus     = '+'
	charMinus    = '-'
	charPeriod   = '.'
	charSlash    = '/'
	charColon    = ':'
	charEqual    = '='
	charUnder    = '_'
)

// TokenState represents the lexer state for validation
type TokenState int

const (
	StateStart TokenState = iota
	StateAfterEquals
	StateAfterValue
	StateAfterOperator
	StateAfterLeftParen
	StateAfterRightParen
	StateAfterFunction
)

// tokenTransitions maps the current state to valid next token types
var tokenTransitions = map[TokenState]map[TokenType]bool{
	StateStart: {
		TokenEquals:        true, // formula prefix
		TokenUnaryPrefixOp: true,
		TokenNumber:        true,
		TokenCell:          true,
		TokenFunction:      true,
		TokenLeftParen:     true,
	},
	StateAfterEquals: {
		TokenUnaryPrefixOp: true,
		TokenNumber:        true,
		TokenCell:          true,
		TokenFunction:      true,
		TokenLeftParen:     true,
	},
	StateAfterValue: { // after number, cell, range
		TokenBinaryOp:   true,
		TokenRightParen: true,
		TokenEOF:        true,
	},
	StateAfterOperator: {
		TokenUnaryPrefixOp: true,
		TokenNumber:        true,
		TokenCell:          true,
		TokenFunction:      true,
		TokenLeftParen:     true,
	},
	StateAfterLeftParen: {
		TokenUnaryPrefixOp: true,
		TokenNumber:        true,
		TokenCell:          true,
		TokenRange:         true, // only legal as the single argument of an aggregate, the parser checks
		TokenFunction:      true,
		TokenLeftParen:     true,
	},
	StateAfterRightParen: {
		TokenBinaryOp:   true,
		TokenRightParen: true,
		TokenEOF:        true,
	},
	StateAfterFunction: {
		TokenLeftParen: true,
	},
}

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in input
}

// LexerContext defines the context for lexing
type LexerContext struct {
	// RequireEquals rejects input that does not start with "=". residual
	// expressions are lexed without it.
	RequireEquals bool
}

// Lexer tokenizes formula text into tagged tokens
type Lexer struct {
	input      string
	runes      []rune
	pos        int
	state      TokenState
	parenDepth int
	tokens     []Token
	context    *LexerContext
}

// NewLexer creates a lexer for a full formula, which must start with "="
func NewLexer(input string) *Lexer {
	return NewLexerWithContext(input, &LexerContext{RequireEquals: true})
}

// NewLexerForExpression creates a lexer for a residual arithmetic
// expression. a leading "=" is accepted but not required.
func NewLexerForExpression(input string) *Lexer {
	return NewLexerWithContext(input, &LexerContext{RequireEquals: false})
}

// NewLexerWithContext creates a new lexer with specific context
func NewLexerWithContext(input string, context *LexerContext) *Lexer {
	return &Lexer{
		input:   input,
		runes:   []rune(input),
		state:   StateStart,
		tokens:  []Token{},
		context: context,
	}
}

// Tokenize tokenizes the entire input. the returned error wraps ErrSyntax
// or ErrUnknownFunction.
func (l *Lexer) Tokenize() ([]Token, error) {
	if l.context.RequireEquals && (len(l.runes) == 0 || l.runes[0] != charEqual) {
		return nil, fmt.Errorf("%w: formula must start with '='", ErrSyntax)
	}

	for {
		l.skipWhitespace()
		if l.pos >= len(l.runes) {
			break
		}
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if !l.validateTransition(tok.Type) {
			return nil, fmt.Errorf("%w: unexpected token %q at %d", ErrSyntax, tok.Value, tok.Pos)
		}
		l.tokens = append(l.tokens, tok)
		l.updateState(tok.Type)
	}

	// check for unbalanced parentheses
	if l.parenDepth > 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses: missing closing parenthesis", ErrSyntax)
	}

	if !l.validateTransition(TokenEOF) {
		return nil, fmt.Errorf("%w: unexpected end of formula", ErrSyntax)
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos})
	return l.tokens, nil
}

// validateTransition checks if the token type is valid in current state
func (l *Lexer) validateTransition(tokenType TokenType) bool {
	validTokens, exists := tokenTransitions[l.state]
	if !exists {
		return false
	}
	return validTokens[tokenType]
}

// updateState updates the lexer state based on the token type
func (l *Lexer) updateState(tokenType TokenType) {
	switch tokenType {
	case TokenEquals:
		l.state = StateAfterEquals
	case TokenNumber, TokenCell, TokenRange:
		l.state = StateAfterValue
	case TokenUnaryPrefixOp, TokenBinaryOp:
		l.state = StateAfterOperator
	case TokenLeftParen:
		l.state = StateAfterLeftParen
	case TokenRightParen:
		l.state = StateAfterRightParen
	case TokenFunction:
		l.state = StateAfterFunction
	}
}

// nextToken returns the next token from the input
func (l *Lexer) nextToken() (Token, error) {
	startPos := l.pos
	ch := l.current()

	// check for numbers
	if isDigit(ch) || (ch == charPeriod && isDigit(l.peek(1))) {
		return l.scanNumber(), nil
	}

	switch ch {
	case charEqual:
		// only the formula prefix. comparisons are not part of the grammar
		if l.pos == 0 {
			l.pos++
			return Token{Type: TokenEquals, Value: "=", Pos: startPos}, nil
		}
		return Token{}, fmt.Errorf("%w: comparison operators are not supported", ErrSyntax)
	case charLParen:
		l.pos++
		l.parenDepth++
		return Token{Type: TokenLeftParen, Value: "(", Pos: startPos}, nil
	case charRParen:
		l.pos++
		l.parenDepth--
		if l.parenDepth < 0 {
			return Token{}, fmt.Errorf("%w: unexpected closing parenthesis at %d", ErrSyntax, startPos)
		}
		return Token{Type: TokenRightParen, Value: ")", Pos: startPos}, nil
	case charPlus, charMinus:
		l.pos++
		if l.isUnaryContext() {
			return Token{Type: TokenUnaryPrefixOp, Value: string(ch), Pos: startPos}, nil
		}
		return Token{Type: TokenBinaryOp, Value: string(ch), Pos: startPos}, nil
	case charAsterisk, charSlash:
		l.pos++
		return Token{Type: TokenBinaryOp, Value: string(ch), Pos: startPos}, nil
	}

	if unicode.IsLetter(ch) || ch == charUnder {
		return l.scanIdentifierOrCell()
	}

	l.pos++
	return Token{}, fmt.Errorf("%w: unexpected character %q at %d", ErrSyntax, ch, startPos)
}

// helper methods for character navigation

// substring returns a substring of the original input based on rune positions
func (l *Lexer) substring(start, end int) string {
	if start < 0 || end > len(l.runes) || start > end {
		return ""
	}
	return string(l.runes[start:end])
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos >= len(l.runes) || pos < 0 {
		return charNull
	}
	return l.runes[pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		switch l.current() {
		case charSpace, charTab, charNewline, charReturn:
			l.pos++
		default:
			return
		}
	}
}

// scanNumber scans a number token including decimals and scientific notation
func (l *Lexer) scanNumber() Token {
	startPos := l.pos

	// integer part
	for isDigit(l.current()) {
		l.pos++
	}

	// decimal part
	if l.current() == charPeriod && isDigit(l.peek(1)) {
		l.pos++ // consume '.'
		for isDigit(l.current()) {
			l.pos++
		}
	}

	// scientific notation
	if l.current() == 'e' || l.current() == 'E' {
		savedPos := l.pos
		l.pos++
		if l.current() == charPlus || l.current() == charMinus {
			l.pos++
		}
		if !isDigit(l.current()) {
			// not scientific notation, restore position
			l.pos = savedPos
		} else {
			for isDigit(l.current()) {
				l.pos++
			}
		}
	}

	return Token{Type: TokenNumber, Value: l.substring(startPos, l.pos), Pos: startPos}
}

// scanWord consumes a run of letters, digits and underscores
func (l *Lexer) scanWord() string {
	startPos := l.pos
	for l.pos < len(l.runes) {
		ch := l.current()
		if !unicode.IsLetter(ch) && !isDigit(ch) && ch != charUnder {
			break
		}
		l.pos++
	}
	return l.substring(startPos, l.pos)
}

// scanIdentifierOrCell scans function names, cells and ranges
func (l *Lexer) scanIdentifierOrCell() (Token, error) {
	startPos := l.pos
	value := l.scanWord()

	if _, _, ok := splitCellKey(value); ok {
		// check for range (A1:B2)
		if l.current() == charColon {
			savedPos := l.pos
			l.pos++
			secondStart := l.pos
			second := l.scanWord()
			if _, _, ok := splitCellKey(second); ok {
				return Token{
					Type:  TokenRange,
					Value: strings.ToUpper(value) + ":" + strings.ToUpper(second),
					Pos:   startPos,
				}, nil
			}
			l.pos = savedPos
			return Token{}, fmt.Errorf("%w: invalid range end %q at %d", ErrSyntax, second, secondStart)
		}
		return Token{Type: TokenCell, Value: strings.ToUpper(value), Pos: startPos}, nil
	}

	// function names are only recognized when followed by an open paren
	l.skipWhitespace()
	if l.current() == charLParen {
		name := strings.ToUpper(value)
		if _, ok := LookupFunction(name); !ok {
			return Token{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		}
		return Token{Type: TokenFunction, Value: name, Pos: startPos}, nil
	}

	return Token{}, fmt.Errorf("%w: unexpected identifier %q at %d", ErrSyntax, value, startPos)
}

// isUnaryContext checks if the current context allows for unary operators
func (l *Lexer) isUnaryContext() bool {
	switch l.state {
	case StateStart, StateAfterEquals, StateAfterOperator, StateAfterLeftParen:
		return true
	default:
		return false
	}
}

// referenceSpan locates one cell reference inside formula text
type referenceSpan struct {
	Start   int // rune offset
	End     int // rune offset, exclusive
	Word    string
	Address CellAddress
	Valid   bool // false for rows outside 1..MaxRows, e.g. A0
}

// scanReferences finds every standalone <Letter><Digits> word in text,
// including both endpoints of a range. unlike Tokenize it never fails:
// text that is not valid formula syntax is skipped over, so references
// inside unsupported constructs are still found.
func scanReferences(text string) []referenceSpan {
	l := NewLexerForExpression(text)
	var spans []referenceSpan
	for l.pos < len(l.runes) {
		ch := l.current()
		if !unicode.IsLetter(ch) && !isDigit(ch) && ch != charUnder {
			l.pos++
			continue
		}
		start := l.pos
		word := l.scanWord()
		if !hasReferenceShape(word) {
			continue
		}
		span := referenceSpan{Start: start, End: l.pos, Word: word}
		if col, row, ok := splitCellKey(word); ok {
			span.Address = CellAddress{Column: col, Row: row}
			span.Valid = true
		}
		spans = append(spans, span)
	}
	return spans
}
