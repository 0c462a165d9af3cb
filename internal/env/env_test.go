package env

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtrans/internal/diag"
)

func TestLookupFallsThrough(t *testing.T) {
	root := New(nil)
	root.Define("x", Symbol{Type: SymbolVar, Value: "1"})

	child := root.Derive()
	child.Define("y", Symbol{Type: SymbolConst, Value: "2"})

	sym, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "1", sym.Value)

	_, ok = root.Lookup("y")
	assert.False(t, ok)

	child.Define("x", Symbol{Value: "shadow"})
	sym, _ = child.Lookup("x")
	assert.Equal(t, "shadow", sym.Value)
	sym, _ = root.Lookup("x")
	assert.Equal(t, "1", sym.Value)
}

func TestIdentifiers(t *testing.T) {
	e := New(Builtin())
	e.Define("mmHg", Symbol{Type: SymbolUnit})

	ids := e.Identifiers()
	require.NotEmpty(t, ids)
	assert.Contains(t, ids, "mmHg")
	assert.Contains(t, ids, "kg")
	assert.Less(t, slices.Index(ids, "mmHg"), slices.Index(ids, "mm"))
	assert.Less(t, slices.Index(ids, "kHz"), slices.Index(ids, "Hz"))
	assert.Contains(t, ids, "sin")
	assert.NotContains(t, ids, "\\alpha")
	assert.NotContains(t, ids, "e")

	for i := 1; i < len(ids); i++ {
		assert.GreaterOrEqual(t, len(ids[i-1]), len(ids[i]))
	}
}

func TestIdentifiersCached(t *testing.T) {
	e := New(Builtin())
	e.Define("furlong", Symbol{Type: SymbolUnit})

	first := e.Identifiers()
	assert.Equal(t, "furlong", first[0])

	child := e.Derive().Derive()
	again := child.Identifiers()
	assert.Same(t, &first[0], &again[0])

	child.Define("parsec", Symbol{Type: SymbolUnit})
	assert.Contains(t, child.Identifiers(), "parsec")
	assert.NotContains(t, e.Identifiers(), "parsec")
}

func TestEvaluating(t *testing.T) {
	root := New(Builtin())
	a := root.Evaluating("A1")
	b := a.Derive().Evaluating("B1")

	assert.True(t, b.IsEvaluating("A1"))
	assert.True(t, b.IsEvaluating("B1"))
	assert.False(t, a.IsEvaluating("B1"))
	assert.False(t, root.IsEvaluating("A1"))
	assert.False(t, root.IsEvaluating(""))
}

func TestChemistry(t *testing.T) {
	sym, ok := Chemistry().Lookup("Na")
	require.True(t, ok)
	assert.InDelta(t, 22.99, sym.Mass, 0.01)

	_, ok = Builtin().Lookup("Na")
	assert.False(t, ok)
}

func TestParseSymbolType(t *testing.T) {
	for _, s := range []string{"var", "const", "unit", "func"} {
		typ, ok := ParseSymbolType(s)
		assert.True(t, ok)
		assert.Equal(t, s, typ.String())
	}
	_, ok := ParseSymbolType("bogus")
	assert.False(t, ok)
}

func TestStack(t *testing.T) {
	root := New(nil)
	root.Define("A1", Symbol{Value: "3"})
	s := NewStack(root)

	frame := s.Push()
	frame.Define("A1", Symbol{Value: "4"})
	assert.Equal(t, 2, s.Depth())
	sym, _ := s.Top().Lookup("A1")
	assert.Equal(t, "4", sym.Value)

	s.Pop()
	sym, _ = s.Top().Lookup("A1")
	assert.Equal(t, "3", sym.Value)

	underflow := func() (err error) {
		defer diag.Catch(&err)
		s.Pop()
		return nil
	}
	err := underflow()
	require.Error(t, err)
	assert.Equal(t, diag.KindInternal, diag.As(err).Kind)
	assert.Equal(t, diag.CodeStackUnderflow, diag.As(err).Code)
}

func TestStackEnter(t *testing.T) {
	root := New(nil)
	s := NewStack(root)

	child := root.Derive()
	s.Enter(child)
	assert.Same(t, child, s.Top())
	assert.Equal(t, 2, s.Depth())

	s.Pop()
	assert.Same(t, root, s.Top())
}
