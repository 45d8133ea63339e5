package spreadsheet

import (
	"context"
	"fmt"

	"go.alis.build/alog"
)

// evalContext carries what node evaluation reads from
type evalContext struct {
	cells CellReader
	cfg   *config
}

func (ctx *evalContext) toNumber(value string) (float64, bool) {
	return ctx.cfg.parseNumber(value)
}

// aggregate folds the node's range straight from the cells, nothing is
// collected
func (ctx *evalContext) aggregate(n *AggregateNode) (float64, string) {
	return n.Kind.compute(newCellRange(ctx.cells, n.Range, ctx.cfg).Iterate())
}

// Result is the outcome of evaluating a formula. a failed evaluation keeps
// its cause in Err and displays as the error marker.
type Result struct {
	Number float64
	Text   string
	Err    error

	marker string
}

// String returns the display text
func (r Result) String() string {
	if r.Err != nil {
		if r.marker == "" {
			return ErrorMarker
		}
		return r.marker
	}
	return r.Text
}

// Failed reports whether the evaluation collapsed to the error marker
func (r Result) Failed() bool {
	return r.Err != nil
}

// Engine evaluates formulas against the cached values of a CellReader
type Engine struct {
	cells CellReader
	cfg   *config
}

// NewEngine creates an engine reading from cells
func NewEngine(cells CellReader, opts ...Option) *Engine {
	return newEngine(cells, applyOptions(opts))
}

func newEngine(cells CellReader, cfg *config) *Engine {
	if cells == nil {
		cells = CellMap{}
	}
	return &Engine{cells: cells, cfg: cfg}
}

func (e *Engine) readContext() *evalContext {
	return &evalContext{cells: e.cells, cfg: e.cfg}
}

// Evaluate returns the display result of text. text that is not a formula
// comes back verbatim. referenced cells contribute their cached values,
// their own formulas are not evaluated.
func (e *Engine) Evaluate(text string) Result {
	if !IsFormula(text) {
		num, _ := e.cfg.parseNumber(text)
		return Result{Number: num, Text: text}
	}
	node, err := ParseFormula(text)
	if err != nil {
		return e.fail(text, err)
	}
	return e.evaluateNode(text, node)
}

// EvaluateExpression evaluates an arithmetic expression, with or without
// the leading "=". used for residual expressions after function
// resolution.
func (e *Engine) EvaluateExpression(text string) Result {
	node, err := ParseExpression(text)
	if err != nil {
		return e.fail(text, err)
	}
	return e.evaluateNode(text, node)
}

// ResolveFunctions returns the formula with every aggregate call replaced
// by its formatted result. cell references and operators are kept, the
// leading "=" is dropped.
func (e *Engine) ResolveFunctions(formula string) (string, error) {
	node, err := ParseExpression(formula)
	if err != nil {
		return "", err
	}
	return foldAggregates(node, e.readContext()).ToString(), nil
}

// EvaluateNode evaluates an already parsed formula
func (e *Engine) EvaluateNode(node ASTNode) Result {
	if node == nil {
		return e.fail("", fmt.Errorf("%w: empty formula", ErrSyntax))
	}
	return e.evaluateNode(node.ToString(), node)
}

func (e *Engine) evaluateNode(text string, node ASTNode) Result {
	ctx := e.readContext()

	// a formula that is exactly one aggregate call keeps that aggregate's
	// formatting
	if agg, ok := node.(*AggregateNode); ok {
		value, display := ctx.aggregate(agg)
		return Result{Number: value, Text: display}
	}

	value, err := node.Eval(ctx)
	if err != nil {
		return e.fail(text, err)
	}
	return Result{Number: value, Text: formatFixed(value)}
}

func (e *Engine) fail(text string, err error) Result {
	alog.Debugf(context.Background(), "evaluate %q: %v", text, err)
	return Result{Err: err, marker: e.cfg.errorMarker}
}

// foldAggregates returns a copy of the tree with aggregate nodes replaced
// by number nodes holding their formatted results
func foldAggregates(node ASTNode, ctx *evalContext) ASTNode {
	switch n := node.(type) {
	case *AggregateNode:
		value, text := ctx.aggregate(n)
		return &NumberNode{Value: value, Text: text, Position: n.Position}
	case *BinaryOpNode:
		return &BinaryOpNode{
			Op:       n.Op,
			Left:     foldAggregates(n.Left, ctx),
			Right:    foldAggregates(n.Right, ctx),
			Position: n.Position,
		}
	case *UnaryOpNode:
		return &UnaryOpNode{Op: n.Op, Operand: foldAggregates(n.Operand, ctx), Position: n.Position}
	default:
		return node
	}
}
