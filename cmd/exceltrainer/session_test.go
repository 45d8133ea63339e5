package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathe-trainer/exceltrainer/packages/spreadsheet"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	grid, err := spreadsheet.NewGridFromTable([][]string{{"3"}, {"4"}})
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return newSession(grid, out), out
}

func TestSessionCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"set literal", "set B1 5", "B1 = 5\n"},
		{"set formula", "set b2 =A2*2", "B2 = 6.00\n"},
		{"show cell", "show A3", "A3 = 4\n"},
		{"show empty", "show C9", "C9 is empty\n"},
		{"translate", "translate =A1+B1 1 1", "=B2+C2\n"},
		{"resolve", "resolve =SUMME(A2:A3)*2", "7*2 -> 14.00\n"},
		{"suggest", "suggest M", "MIN MAX MITTELWERT\n"},
		{"bare formula", "=MITTELWERT(A2:A3)", "3.50\n"},
		{"deps none", "deps A2", "(none)\n"},
		{"blank line", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out := newTestSession(t)
			require.NoError(t, s.exec(tt.line))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSessionDeps(t *testing.T) {
	s, out := newTestSession(t)
	require.NoError(t, s.exec("set B2 =A2+1"))
	require.NoError(t, s.exec("set C1 =SUMME(A2:A3)"))
	out.Reset()

	require.NoError(t, s.exec("deps A2"))
	assert.Equal(t, "C1 B2\n", out.String())
}

func TestSessionFillAndShow(t *testing.T) {
	s, out := newTestSession(t)
	require.NoError(t, s.exec("set B2 =A2*10"))
	require.NoError(t, s.exec("fill B2 B3"))

	assert.Contains(t, out.String(), "30.00")
	assert.Contains(t, out.String(), "40.00")

	cell, ok := s.grid.Get("B3")
	require.True(t, ok)
	assert.Equal(t, "=A3*10", cell.Formula)
}

func TestSessionRecalcCycle(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.exec("set A1 =B1"))
	require.NoError(t, s.exec("set B1 =A1"))

	err := s.exec("recalc")
	assert.ErrorIs(t, err, spreadsheet.ErrFailedPrecondition)
}

func TestSessionClear(t *testing.T) {
	s, out := newTestSession(t)
	require.NoError(t, s.exec("set B2 =A2*2"))
	require.NoError(t, s.exec("clear"))

	assert.Equal(t, 0, s.grid.Len())
	assert.Contains(t, out.String(), "grid cleared\n")
}

func TestSessionErrors(t *testing.T) {
	s, _ := newTestSession(t)

	assert.ErrorIs(t, s.exec(":quit"), errQuit)
	assert.ErrorIs(t, s.exec("set 1A 5"), spreadsheet.ErrInvalidArgument)
	assert.ErrorIs(t, s.exec("fill Z1 Z1"), spreadsheet.ErrNotFound)
	assert.ErrorIs(t, s.exec("translate =Z1 0 1"), spreadsheet.ErrOutOfRange)
	assert.ErrorIs(t, s.exec("resolve =WENN(A1>1;1;0)"), spreadsheet.ErrUnknownFunction)
	assert.Error(t, s.exec("fill A1"))
	assert.Error(t, s.exec("translate =A1 x 1"))
	assert.Error(t, s.exec("frobnicate"))
}

func TestComplete(t *testing.T) {
	assert.Equal(t, []string{"set A1 =SUMME("}, complete("set A1 =SU"))
	assert.Equal(t, []string{"=1+MIN(", "=1+MAX(", "=1+MITTELWERT("}, complete("=1+M"))
	assert.Nil(t, complete("show A"))
	assert.Nil(t, complete("=1+"))
}
