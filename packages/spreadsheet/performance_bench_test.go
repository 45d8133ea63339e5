package spreadsheet

import (
	"fmt"
	"strconv"
	"testing"
)

func BenchmarkLargeCellPopulation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := NewGrid()
		for row := 1; row <= 100; row++ {
			for col := 0; col < MaxColumns; col++ {
				key, _ := EncodeCellKey(col, row)
				g.Set(key, strconv.Itoa(row*(col+1)))
			}
		}
	}
}

func BenchmarkSeedTable(b *testing.B) {
	rows := make([][]string, 200)
	for i := range rows {
		rows[i] = []string{"Artikel", strconv.Itoa(i), strconv.Itoa(i * 2)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewGridFromTable(rows); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFormulaDependencyChain(b *testing.B) {
	g := NewGrid()
	g.Set("A1", "1")
	for i := 2; i <= 100; i++ {
		g.Set(CellKey(fmt.Sprintf("A%d", i)), fmt.Sprintf("=A%d+1", i-1))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.Recalculate(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLargeRangeSUMME(b *testing.B) {
	g := NewGrid()
	for i := 1; i <= 1000; i++ {
		g.Set(CellKey(fmt.Sprintf("A%d", i)), strconv.Itoa(i))
	}
	g.Set("B1", "=SUMME(A1:A1000)")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Display("B1")
	}
}

func BenchmarkMixedAggregates(b *testing.B) {
	g := NewGrid()
	for i := 1; i <= 500; i++ {
		g.Set(CellKey(fmt.Sprintf("A%d", i)), strconv.Itoa(i))
		if i%3 == 0 {
			g.Set(CellKey(fmt.Sprintf("B%d", i)), "text")
		}
	}
	engine := g.Engine()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Evaluate("=SUMME(A1:B500)+MIN(A1:B500)*MAX(A1:B500)-MITTELWERT(A1:B500)")
	}
}

func BenchmarkFillDown(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := NewGrid()
		for row := 1; row <= 200; row++ {
			g.Set(CellKey(fmt.Sprintf("A%d", row)), strconv.Itoa(row))
		}
		g.Set("B1", "=A1*2+SUMME(A1:A2)")
		if err := g.Fill("B1", "B200"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranslateFormula(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := TranslateFormula("=SUMME(A1:C10)+MITTELWERT(B2:B9)*D4", i%50, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseFormula(b *testing.B) {
	formulas := []string{
		"=1+2*3",
		"=SUMME(A1:A100)",
		"=(A1+B2)*(C3-D4)/E5",
		"=MITTELWERT(A1:Z50)-MIN(A1:A5)+MAX(B1:B5)",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseFormula(formulas[i%len(formulas)]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWideDependents(b *testing.B) {
	g := NewGrid()
	g.Set("A1", "100")
	for i := 2; i <= 500; i++ {
		g.Set(CellKey(fmt.Sprintf("B%d", i)), "=A1*2")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Dependents("A1"); err != nil {
			b.Fatal(err)
		}
	}
}
