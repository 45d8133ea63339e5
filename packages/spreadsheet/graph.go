package spreadsheet

import (
	"context"
	"slices"
	"strings"

	"go.alis.build/alog"
)

// DependencyNode represents a cell in the dependency graph
type DependencyNode struct {
	// address of *THIS* node
	Address CellAddress

	// cell-to-cell dependencies
	CellPrecedents map[CellAddress]*DependencyNode // cells this cell depends on
	CellDependents map[CellAddress]*DependencyNode // cells that depend on this cell

	// range dependencies (only for formula cells that aggregate ranges)
	RangePrecedents map[RangeAddress]struct{}

	// formula text, empty for cells that are only referenced
	Formula string
}

// DependencyGraph records which cells read which. it is built on demand
// from the grid's formulas and is not kept up to date by Set.
type DependencyGraph struct {
	nodes          map[CellAddress]*DependencyNode           // all nodes in the graph
	rangeObservers map[RangeAddress]map[CellAddress]struct{} // range -> cells that depend on it
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:          make(map[CellAddress]*DependencyNode),
		rangeObservers: make(map[RangeAddress]map[CellAddress]struct{}),
	}
}

// GetOrCreateNode gets an existing node or creates a new one
func (dg *DependencyGraph) GetOrCreateNode(addr CellAddress) *DependencyNode {
	if node, exists := dg.nodes[addr]; exists {
		return node
	}

	node := &DependencyNode{
		Address:         addr,
		CellPrecedents:  make(map[CellAddress]*DependencyNode),
		CellDependents:  make(map[CellAddress]*DependencyNode),
		RangePrecedents: make(map[RangeAddress]struct{}),
	}
	dg.nodes[addr] = node
	return node
}

// GetNode retrieves a node if it exists
func (dg *DependencyGraph) GetNode(addr CellAddress) (*DependencyNode, bool) {
	node, exists := dg.nodes[addr]
	return node, exists
}

// SetFormula sets the formula for a node (creates node if needed)
func (dg *DependencyGraph) SetFormula(addr CellAddress, formula string) {
	node := dg.GetOrCreateNode(addr)
	node.Formula = formula
}

// AddCellDependency adds a cell-to-cell dependency (from depends on to)
func (dg *DependencyGraph) AddCellDependency(from, to CellAddress) {
	fromNode := dg.GetOrCreateNode(from)
	toNode := dg.GetOrCreateNode(to)

	fromNode.CellPrecedents[to] = toNode
	toNode.CellDependents[from] = fromNode
}

// AddRangeDependency adds a cell-to-range dependency (from depends on range)
func (dg *DependencyGraph) AddRangeDependency(from CellAddress, rangeAddr RangeAddress) {
	rangeAddr = rangeAddr.Normalize()
	node := dg.GetOrCreateNode(from)
	node.RangePrecedents[rangeAddr] = struct{}{}

	if dg.rangeObservers[rangeAddr] == nil {
		dg.rangeObservers[rangeAddr] = make(map[CellAddress]struct{})
	}
	dg.rangeObservers[rangeAddr][from] = struct{}{}
}

// GetDirectPrecedents returns cells this cell directly depends on, in
// row-major order
func (dg *DependencyGraph) GetDirectPrecedents(addr CellAddress) []CellAddress {
	node, exists := dg.nodes[addr]
	if !exists {
		return nil
	}

	result := make([]CellAddress, 0, len(node.CellPrecedents))
	for precedentAddr := range node.CellPrecedents {
		result = append(result, precedentAddr)
	}
	slices.SortFunc(result, compareAddress)
	return result
}

// GetAllDependents returns all cells affected by this cell (transitive closure)
func (dg *DependencyGraph) GetAllDependents(addr CellAddress) []CellAddress {
	visited := make(map[CellAddress]struct{})
	var result []CellAddress

	dg.collectDependents(addr, visited, &result)
	return result
}

// collectDependents recursively collects all dependents
func (dg *DependencyGraph) collectDependents(addr CellAddress, visited map[CellAddress]struct{}, result *[]CellAddress) {
	if _, alreadyVisited := visited[addr]; alreadyVisited {
		return
	}
	visited[addr] = struct{}{}

	node, exists := dg.nodes[addr]
	if !exists {
		return
	}

	for dependentAddr := range node.CellDependents {
		if _, alreadyVisited := visited[dependentAddr]; !alreadyVisited {
			*result = append(*result, dependentAddr)
			dg.collectDependents(dependentAddr, visited, result)
		}
	}
}

// GetAffectedCells returns all cells that need recalculation when a
// cell changes: direct and transitive dependents, plus cells observing a
// range that contains it. the result is in row-major order.
func (dg *DependencyGraph) GetAffectedCells(addr CellAddress) []CellAddress {
	affected := make(map[CellAddress]struct{})

	for _, dep := range dg.GetAllDependents(addr) {
		affected[dep] = struct{}{}
	}

	for rangeAddr, observers := range dg.rangeObservers {
		if !rangeAddr.Contains(addr) {
			continue
		}
		for observerAddr := range observers {
			affected[observerAddr] = struct{}{}
			for _, dep := range dg.GetAllDependents(observerAddr) {
				affected[dep] = struct{}{}
			}
		}
	}

	result := make([]CellAddress, 0, len(affected))
	for affectedAddr := range affected {
		result = append(result, affectedAddr)
	}
	slices.SortFunc(result, compareAddress)
	return result
}

// GetCalculationOrder returns the nodes with every precedent before its
// dependents, and whether a cycle was found
func (dg *DependencyGraph) GetCalculationOrder() ([]CellAddress, bool) {
	// three states: unvisited (not in map), visiting (false), visited (true)
	state := make(map[CellAddress]bool)
	var order []CellAddress
	hasCycle := false

	var visit func(addr CellAddress)
	visit = func(addr CellAddress) {
		if completed, exists := state[addr]; exists {
			if !completed {
				// currently visiting - cycle detected
				hasCycle = true
			}
			return
		}

		state[addr] = false
		for _, precedentAddr := range dg.GetDirectPrecedents(addr) {
			visit(precedentAddr)
		}
		state[addr] = true
		order = append(order, addr)
	}

	for _, addr := range dg.sortedAddresses() {
		visit(addr)
	}

	return order, hasCycle
}

// HasCycle checks if there are circular dependencies
func (dg *DependencyGraph) HasCycle() bool {
	_, hasCycle := dg.GetCalculationOrder()
	return hasCycle
}

// CyclicCells returns every cell that lies on a cycle, in row-major
// order. these are the strongly connected components with more than one
// cell, plus cells that read themselves (Tarjan's algorithm).
func (dg *DependencyGraph) CyclicCells() []CellAddress {
	index := make(map[CellAddress]int)
	lowlink := make(map[CellAddress]int)
	onStack := make(map[CellAddress]bool)
	var stack []CellAddress
	var result []CellAddress

	var strongConnect func(addr CellAddress)
	strongConnect = func(addr CellAddress) {
		index[addr] = len(index)
		lowlink[addr] = index[addr]
		stack = append(stack, addr)
		onStack[addr] = true

		for _, precedent := range dg.GetDirectPrecedents(addr) {
			if _, visited := index[precedent]; !visited {
				strongConnect(precedent)
				lowlink[addr] = min(lowlink[addr], lowlink[precedent])
			} else if onStack[precedent] {
				lowlink[addr] = min(lowlink[addr], index[precedent])
			}
		}

		if lowlink[addr] != index[addr] {
			return
		}

		// addr is the root of a component, pop it off the stack
		i := slices.Index(stack, addr)
		component := stack[i:]
		stack = stack[:i]
		for _, member := range component {
			onStack[member] = false
		}
		_, readsItself := dg.nodes[addr].CellPrecedents[addr]
		if len(component) > 1 || readsItself {
			result = append(result, component...)
		}
	}

	for _, addr := range dg.sortedAddresses() {
		if _, visited := index[addr]; !visited {
			strongConnect(addr)
		}
	}

	slices.SortFunc(result, compareAddress)
	return result
}

func (dg *DependencyGraph) sortedAddresses() []CellAddress {
	addrs := make([]CellAddress, 0, len(dg.nodes))
	for addr := range dg.nodes {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, compareAddress)
	return addrs
}

// NodeCount returns the number of nodes in the graph
func (dg *DependencyGraph) NodeCount() int {
	return len(dg.nodes)
}

// RangeObserverCount returns the number of observed ranges
func (dg *DependencyGraph) RangeObserverCount() int {
	return len(dg.rangeObservers)
}

// DependencyGraph builds the graph of the grid's current formulas. a
// formula that aggregates a range depends on every formula cell inside
// that range, and observes the range for everything else.
func (g *Grid) DependencyGraph() *DependencyGraph {
	dg := NewDependencyGraph()

	var formulaCells []CellAddress
	for key, cell := range g.cells {
		if cell.HasFormula() {
			addr := MustParseCellKey(key)
			formulaCells = append(formulaCells, addr)
			dg.SetFormula(addr, cell.Formula)
		}
	}

	for _, addr := range formulaCells {
		ast, ok := g.formulas.GetASTAtCell(addr.Key())
		if !ok {
			continue // unparseable formula reads nothing
		}
		walk(ast, func(node ASTNode) {
			switch n := node.(type) {
			case *CellRefNode:
				dg.AddCellDependency(addr, n.Address)
			case *AggregateNode:
				dg.AddRangeDependency(addr, n.Range)
				for _, other := range formulaCells {
					if n.Range.Contains(other) {
						dg.AddCellDependency(addr, other)
					}
				}
			}
		})
	}

	return dg
}

// Dependents lists the cells whose formulas read key, directly or through
// other formulas, in row-major order
func (g *Grid) Dependents(key CellKey) ([]CellKey, error) {
	addr, err := ParseCellKey(key)
	if err != nil {
		return nil, err
	}
	affected := g.DependencyGraph().GetAffectedCells(addr)
	keys := make([]CellKey, 0, len(affected))
	for _, a := range affected {
		keys = append(keys, a.Key())
	}
	return keys, nil
}

// Recalculate re-evaluates every formula cell after the cells it reads,
// so chains of formulas settle in one call. cells on a cycle get the error
// marker and a FailedPrecondition error names them. the display path
// never calls this.
func (g *Grid) Recalculate() error {
	dg := g.DependencyGraph()
	cyclic := dg.CyclicCells()
	onCycle := make(map[CellAddress]struct{}, len(cyclic))
	for _, addr := range cyclic {
		onCycle[addr] = struct{}{}
	}
	stack := NewCalculationStack()

	var calculate func(addr CellAddress)
	calculate = func(addr CellAddress) {
		if stack.isCompleted(addr) || stack.isProcessing(addr) {
			return
		}

		node, ok := dg.GetNode(addr)
		if !ok || node.Formula == "" {
			return // literal cells hold their value already
		}

		stack.push(addr)
		for _, precedent := range dg.GetDirectPrecedents(addr) {
			calculate(precedent)
		}
		stack.pop()

		key := addr.Key()
		cell := g.cells[key]
		if _, ok := onCycle[addr]; ok {
			cell.Value = g.cfg.errorMarker
		} else {
			cell.Value = g.computeCell(key, cell.Formula).Value
		}
		stack.markCompleted(addr)
	}

	// cycle members are marked first so everything reading them sees the
	// marker, whatever order the walk reaches them in
	for _, addr := range cyclic {
		g.cells[addr.Key()].Value = g.cfg.errorMarker
	}
	for _, addr := range dg.sortedAddresses() {
		calculate(addr)
	}

	if len(cyclic) == 0 {
		return nil
	}

	names := make([]string, 0, len(cyclic))
	for _, addr := range cyclic {
		names = append(names, addr.String())
	}
	err := newApplicationErrorf(FailedPrecondition, "%v: %s", ErrCircular, strings.Join(names, ", "))
	alog.Warnf(context.Background(), "recalculate: %v", err)
	return err
}

// CalculationStack tracks the cells being calculated in one
// recalculation pass
type CalculationStack struct {
	items      []CellAddress            // stack of cells to process
	processing map[CellAddress]struct{} // currently being processed (cycle detection)
	completed  map[CellAddress]struct{} // already calculated in this pass
}

// NewCalculationStack creates a new calculation stack
func NewCalculationStack() *CalculationStack {
	return &CalculationStack{
		items:      make([]CellAddress, 0),
		processing: make(map[CellAddress]struct{}),
		completed:  make(map[CellAddress]struct{}),
	}
}

// push adds a cell to the stack
func (cs *CalculationStack) push(addr CellAddress) {
	cs.items = append(cs.items, addr)
	cs.processing[addr] = struct{}{}
}

// pop removes and returns the top cell from the stack
func (cs *CalculationStack) pop() (CellAddress, bool) {
	if len(cs.items) == 0 {
		return CellAddress{}, false
	}
	addr := cs.items[len(cs.items)-1]
	cs.items = cs.items[:len(cs.items)-1]
	delete(cs.processing, addr)
	return addr, true
}

// isProcessing checks if a cell is currently being processed
func (cs *CalculationStack) isProcessing(addr CellAddress) bool {
	_, exists := cs.processing[addr]
	return exists
}

// markCompleted marks a cell as calculated
func (cs *CalculationStack) markCompleted(addr CellAddress) {
	cs.completed[addr] = struct{}{}
}

// isCompleted checks if a cell has been calculated
func (cs *CalculationStack) isCompleted(addr CellAddress) bool {
	_, exists := cs.completed[addr]
	return exists
}
