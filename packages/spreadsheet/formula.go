package spreadsheet

// ASTKey is the normalized rendering of a parsed formula. two formulas
// that differ only in whitespace or letter case share a key.
type ASTKey string

// FormulaTable stores parsed formulas centrally, shared by every cell
// holding the same formula, and tracks which cells use each one.
type FormulaTable struct {
	// core formula storage

	astIndex  map[ASTKey]uint32  // normalized AST -> formula ID
	textIndex map[string]uint32  // formula text as entered -> formula ID
	astCache  map[uint32]ASTNode // formula ID -> cached parsed AST
	refCounts map[uint32]int     // formula ID -> reference count

	// cell tracking

	cellsUsingFormula map[uint32]map[CellKey]struct{} // formula ID -> cells using it
	formulaAtCell     map[CellKey]uint32              // cell -> formula ID (reverse index)

	nextID uint32
}

// NewFormulaTable creates a new formula table
func NewFormulaTable() *FormulaTable {
	return &FormulaTable{
		astIndex:          make(map[ASTKey]uint32),
		textIndex:         make(map[string]uint32),
		astCache:          make(map[uint32]ASTNode),
		refCounts:         make(map[uint32]int),
		cellsUsingFormula: make(map[uint32]map[CellKey]struct{}),
		formulaAtCell:     make(map[CellKey]uint32),
		nextID:            1, // start at 1, reserve 0 for no formula
	}
}

// normalizeAST converts an AST to its normalized string representation
func (ft *FormulaTable) normalizeAST(ast ASTNode) ASTKey {
	if ast == nil {
		return ""
	}
	return ASTKey(ast.ToString())
}

// Parse returns the AST for formula, reusing the cached tree when the same
// text was parsed before.
func (ft *FormulaTable) Parse(formula string) (ASTNode, error) {
	if id, ok := ft.textIndex[formula]; ok {
		if ast, ok := ft.astCache[id]; ok {
			return ast, nil
		}
	}
	return ParseFormula(formula)
}

// InternFormula parses formula and records that cell uses it. returns the
// formula ID, or the parse error (the cell then holds no formula ID).
func (ft *FormulaTable) InternFormula(formula string, cell CellKey) (uint32, error) {
	ast, err := ft.Parse(formula)
	if err != nil {
		ft.ReleaseCell(cell)
		return 0, err
	}

	key := ft.normalizeAST(ast)

	// check if formula already exists
	if id, exists := ft.astIndex[key]; exists {
		ft.textIndex[formula] = id
		ft.trackCellUsage(id, cell)
		return id, nil
	}

	// add new formula
	id := ft.nextID
	ft.astIndex[key] = id
	ft.textIndex[formula] = id
	ft.astCache[id] = ast
	ft.trackCellUsage(id, cell)
	ft.nextID++

	return id, nil
}

// trackCellUsage moves cell onto formulaID, releasing its previous formula
func (ft *FormulaTable) trackCellUsage(formulaID uint32, cell CellKey) {
	if oldFormulaID, exists := ft.formulaAtCell[cell]; exists {
		if oldFormulaID == formulaID {
			return
		}
		ft.ReleaseCell(cell)
	}

	if ft.cellsUsingFormula[formulaID] == nil {
		ft.cellsUsingFormula[formulaID] = make(map[CellKey]struct{})
	}
	ft.cellsUsingFormula[formulaID][cell] = struct{}{}
	ft.formulaAtCell[cell] = formulaID
	ft.refCounts[formulaID]++
}

// ReleaseCell drops the cell's formula reference. returns true if the
// formula was removed due to zero references.
func (ft *FormulaTable) ReleaseCell(cell CellKey) bool {
	formulaID, exists := ft.formulaAtCell[cell]
	if !exists {
		return false
	}
	delete(ft.formulaAtCell, cell)

	if cells, ok := ft.cellsUsingFormula[formulaID]; ok {
		delete(cells, cell)
		if len(cells) == 0 {
			delete(ft.cellsUsingFormula, formulaID)
		}
	}

	ft.refCounts[formulaID]--
	if ft.refCounts[formulaID] <= 0 {
		ft.removeFormula(formulaID)
		return true
	}
	return false
}

// removeFormula removes a formula and all its tracking data
func (ft *FormulaTable) removeFormula(formulaID uint32) {
	if ast, ok := ft.astCache[formulaID]; ok {
		delete(ft.astIndex, ft.normalizeAST(ast))
	}
	for text, id := range ft.textIndex {
		if id == formulaID {
			delete(ft.textIndex, text)
		}
	}
	delete(ft.astCache, formulaID)
	delete(ft.refCounts, formulaID)
	delete(ft.cellsUsingFormula, formulaID)
}

// GetAST retrieves the cached AST for a formula ID
func (ft *FormulaTable) GetAST(id uint32) (ASTNode, bool) {
	ast, exists := ft.astCache[id]
	return ast, exists
}

// GetASTAtCell returns the parsed formula of a cell
func (ft *FormulaTable) GetASTAtCell(cell CellKey) (ASTNode, bool) {
	id, ok := ft.formulaAtCell[cell]
	if !ok {
		return nil, false
	}
	return ft.GetAST(id)
}

// GetFormulaAtCell returns the formula ID at a specific cell
func (ft *FormulaTable) GetFormulaAtCell(cell CellKey) (uint32, bool) {
	id, exists := ft.formulaAtCell[cell]
	return id, exists
}

// GetReferenceCount returns the reference count for a formula
func (ft *FormulaTable) GetReferenceCount(id uint32) int {
	return ft.refCounts[id]
}

// GetCellsUsingFormula returns all cells using a specific formula
func (ft *FormulaTable) GetCellsUsingFormula(formulaID uint32) []CellKey {
	cells := ft.cellsUsingFormula[formulaID]
	result := make([]CellKey, 0, len(cells))
	for cell := range cells {
		result = append(result, cell)
	}
	return result
}

// Count returns the number of unique formulas
func (ft *FormulaTable) Count() int {
	return len(ft.astCache)
}

// Clear removes all formulas from the table
func (ft *FormulaTable) Clear() {
	ft.astIndex = make(map[ASTKey]uint32)
	ft.textIndex = make(map[string]uint32)
	ft.astCache = make(map[uint32]ASTNode)
	ft.refCounts = make(map[uint32]int)
	ft.cellsUsingFormula = make(map[uint32]map[CellKey]struct{})
	ft.formulaAtCell = make(map[CellKey]uint32)
	ft.nextID = 1
}
