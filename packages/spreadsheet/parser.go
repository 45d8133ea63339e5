package spreadsheet

import (
	"fmt"
	"strconv"
)

type NodePosition struct {
	Start int
	End   int
}

// ASTNode is one tagged node of a parsed formula. the parser produces the
// whole tree before anything is evaluated, so function dispatch happens
// on node kinds rather than on substrings of the formula text.
type ASTNode interface {
	Eval(ctx *evalContext) (float64, error)
	GetPosition() NodePosition
	ToString() string
}

// Parser parses tokens into an AST
type Parser struct {
	tokens []Token
	pos    int
}

// NumberNode represents a numeric literal. Text, when set, is the exact
// rendering to use in residual expressions (aggregate results keep their
// own formatting).
type NumberNode struct {
	Value    float64
	Text     string
	Position NodePosition
}

func (n *NumberNode) Eval(ctx *evalContext) (float64, error) {
	return n.Value, nil
}

func (n *NumberNode) GetPosition() NodePosition {
	return n.Position
}

func (n *NumberNode) ToString() string {
	if n.Text != "" {
		return n.Text
	}
	return formatPlain(n.Value)
}

// CellRefNode represents a direct cell reference. it reads the referenced
// cell's cached value and never evaluates that cell's formula.
type CellRefNode struct {
	Address  CellAddress
	Position NodePosition
}

func (n *CellRefNode) Eval(ctx *evalContext) (float64, error) {
	cell, ok := ctx.cells.Lookup(n.Address.Key())
	if !ok {
		return 0, nil // empty cell
	}
	num, numeric := ctx.toNumber(cell.Value)
	if !numeric {
		if isBlank(cell.Value) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %s holds %q", ErrNotNumeric, n.Address, cell.Value)
	}
	return num, nil
}

func (n *CellRefNode) GetPosition() NodePosition {
	return n.Position
}

func (n *CellRefNode) ToString() string {
	return string(n.Address.Key())
}

// AggregateNode is a call of one of the supported range functions
type AggregateNode struct {
	Kind     AggregateKind
	Range    RangeAddress
	Position NodePosition
}

func (n *AggregateNode) Eval(ctx *evalContext) (float64, error) {
	value, _ := ctx.aggregate(n)
	return value, nil
}

func (n *AggregateNode) GetPosition() NodePosition {
	return n.Position
}

func (n *AggregateNode) ToString() string {
	return fmt.Sprintf("%s(%s)", n.Kind.Name(), n.Range)
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Op       BinaryOp
	Left     ASTNode
	Right    ASTNode
	Position NodePosition
}

func (n *BinaryOpNode) Eval(ctx *evalContext) (float64, error) {
	left, err := n.Left.Eval(ctx)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval(ctx)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case BinOpAdd:
		return left + right, nil
	case BinOpSubtract:
		return left - right, nil
	case BinOpMultiply:
		return left * right, nil
	case BinOpDivide:
		// division by zero yields +Inf, -Inf or NaN, which are results and
		// not errors
		return left / right, nil
	default:
		return 0, fmt.Errorf("%w: unknown operator", ErrSyntax)
	}
}

func (n *BinaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *BinaryOpNode) ToString() string {
	prec := n.Op.precedence()
	left := n.Left.ToString()
	if precedenceOf(n.Left) < prec {
		left = "(" + left + ")"
	}
	right := n.Right.ToString()
	// left-associative, so an equal-precedence right operand needs parens
	if precedenceOf(n.Right) <= prec {
		right = "(" + right + ")"
	}
	return left + n.Op.String() + right
}

func (op BinaryOp) String() string {
	switch op {
	case BinOpAdd:
		return "+"
	case BinOpSubtract:
		return "-"
	case BinOpMultiply:
		return "*"
	case BinOpDivide:
		return "/"
	default:
		return "?"
	}
}

func (op BinaryOp) precedence() int {
	switch op {
	case BinOpMultiply, BinOpDivide:
		return 2
	default:
		return 1
	}
}

// precedenceOf returns the binding strength of a node when rendered.
// leaves bind tightest.
func precedenceOf(node ASTNode) int {
	switch n := node.(type) {
	case *BinaryOpNode:
		return n.Op.precedence()
	case *UnaryOpNode:
		return 3
	default:
		return 4
	}
}

// UnaryOpNode represents a unary operation
type UnaryOpNode struct {
	Op       UnaryOp
	Operand  ASTNode
	Position NodePosition
}

func (n *UnaryOpNode) Eval(ctx *evalContext) (float64, error) {
	val, err := n.Operand.Eval(ctx)
	if err != nil {
		return 0, err
	}
	if n.Op == UnaryOpMinus {
		return -val, nil
	}
	return val, nil
}

func (n *UnaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *UnaryOpNode) ToString() string {
	opStr := "+"
	if n.Op == UnaryOpMinus {
		opStr = "-"
	}
	operand := n.Operand.ToString()
	if precedenceOf(n.Operand) < 3 {
		operand = "(" + operand + ")"
	}
	return opStr + operand
}

// NewParser creates a new parser over the given tokens
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// ParseFormula lexes and parses a formula, which must start with "="
func ParseFormula(formula string) (ASTNode, error) {
	tokens, err := NewLexer(formula).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// ParseExpression lexes and parses a residual expression, with or without
// a leading "="
func ParseExpression(text string) (ASTNode, error) {
	tokens, err := NewLexerForExpression(text).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (ASTNode, error) {
	if len(p.tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens to parse", ErrSyntax)
	}

	// skip the equals prefix
	if p.tokens[p.pos].Type == TokenEquals {
		p.pos++
	}

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	// ensure we've consumed all tokens except EOF
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: missing end of input", ErrSyntax)
	}
	if tok := p.tokens[p.pos]; tok.Type != TokenEOF {
		return nil, fmt.Errorf("%w: unexpected token after expression: %s", ErrSyntax, tok.Value)
	}

	return node, nil
}

// parseAddition handles addition and subtraction (lowest precedence)
func (p *Parser) parseAddition() (ASTNode, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "+":
			op = BinOpAdd
		case "-":
			op = BinOpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *Parser) parseMultiplication() (ASTNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "*":
			op = BinOpMultiply
		case "/":
			op = BinOpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseUnary handles unary operators
func (p *Parser) parseUnary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	tok := p.tokens[p.pos]
	if tok.Type != TokenUnaryPrefixOp {
		return p.parsePrimary()
	}

	op := UnaryOpPlus
	if tok.Value == "-" {
		op = UnaryOpMinus
	}

	p.pos++
	operand, err := p.parseUnary() // recurse for chained unary operators
	if err != nil {
		return nil, err
	}

	return &UnaryOpNode{
		Op:       op,
		Operand:  operand,
		Position: NodePosition{Start: tok.Pos, End: operand.GetPosition().End},
	}, nil
}

// parsePrimary handles literals, references, function calls and
// parentheses
func (p *Parser) parsePrimary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenNumber:
		p.pos++
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number: %s", ErrSyntax, tok.Value)
		}
		return &NumberNode{
			Value:    val,
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenCell:
		p.pos++
		addr, err := ParseCellKey(CellKey(tok.Value))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return &CellRefNode{
			Address:  addr,
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenFunction:
		return p.parseFunctionCall()

	case TokenLeftParen:
		p.pos++
		node, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenRightParen {
			return nil, fmt.Errorf("%w: expected closing parenthesis", ErrSyntax)
		}
		p.pos++
		return node, nil

	default:
		return nil, fmt.Errorf("%w: unexpected token: %s", ErrSyntax, tok.Value)
	}
}

// parseFunctionCall parses FUNC(CELL:CELL). aggregates take exactly one
// range argument.
func (p *Parser) parseFunctionCall() (ASTNode, error) {
	funcTok := p.tokens[p.pos]
	kind, ok := LookupFunction(funcTok.Value)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, funcTok.Value)
	}
	p.pos++

	// expect opening parenthesis
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenLeftParen {
		return nil, fmt.Errorf("%w: expected '(' after %s", ErrSyntax, funcTok.Value)
	}
	p.pos++

	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenRange {
		return nil, fmt.Errorf("%w: %s expects a single range argument", ErrSyntax, funcTok.Value)
	}
	rangeTok := p.tokens[p.pos]
	rangeAddr, err := ParseRange(rangeTok.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	p.pos++

	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenRightParen {
		return nil, fmt.Errorf("%w: expected ')' after %s argument", ErrSyntax, funcTok.Value)
	}
	p.pos++

	return &AggregateNode{
		Kind:     kind,
		Range:    rangeAddr,
		Position: NodePosition{Start: funcTok.Pos, End: p.tokens[p.pos-1].Pos + 1},
	}, nil
}

// walk visits every node of the tree depth-first, parents before children
func walk(node ASTNode, visit func(ASTNode)) {
	if node == nil {
		return
	}
	visit(node)
	switch n := node.(type) {
	case *BinaryOpNode:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case *UnaryOpNode:
		walk(n.Operand, visit)
	}
}
