package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolIntern(t *testing.T) {
	p := NewPool()

	a := New(OpAdd, Num("1"), Var("x"))
	b := New(OpAdd, Num("1"), Var("x"))
	c := New(OpAdd, Var("x"), Num("1"))

	assert.Equal(t, p.Intern(a), p.Intern(b))
	assert.NotEqual(t, p.Intern(a), p.Intern(c))
	assert.True(t, p.Equal(a, b))

	// attributes other than non-default brackets do not affect identity
	d := New(OpAdd, Num("1"), Var("x"))
	d.IsImplicit = true
	d.IsPolynomial = 3
	assert.Equal(t, p.Intern(a), p.Intern(d))
}

func TestPoolBrackets(t *testing.T) {
	p := NewPool()

	plain := New(OpParen, Var("x"))
	explicit := New(OpParen, Var("x"))
	explicit.Lbrk, explicit.Rbrk = "(", ")"
	other := New(OpParen, Var("x"))
	other.Lbrk = "\\left("

	assert.Equal(t, p.Intern(plain), p.Intern(explicit))
	assert.NotEqual(t, p.Intern(plain), p.Intern(other))
}

func TestPoolLeafValues(t *testing.T) {
	p := NewPool()
	assert.NotEqual(t, p.Intern(Num("12")), p.Intern(Num("1")))
	assert.NotEqual(t, p.Intern(Num("x")), p.Intern(Var("x")))
	assert.Equal(t, p.Intern(None()), p.Intern(None()))
}

func TestPoolNodeRoundTrip(t *testing.T) {
	p := NewPool()
	n := New(OpMul, Num("2"), New(OpPow, Var("x"), Num("3")))
	id := p.Intern(n)

	got := p.Node(id)
	require.NotNil(t, got)
	assert.NotSame(t, n, got)
	assert.Equal(t, id, p.Intern(got))
	assert.Nil(t, p.Node(ID(99)))
}

func TestClone(t *testing.T) {
	n := New(OpAdd, Num("1"), New(OpMinus, Var("y")))
	c := Clone(n)
	c.Args[1].Args[0].Value = "z"
	assert.Equal(t, "y", n.Args[1].Args[0].Value)
	assert.Equal(t, "ADD(NUM(1),MINUS(VAR(y)))", n.String())
}

func TestNumFormat(t *testing.T) {
	assert.Equal(t, FormatInteger, Num("12").NumberFormat)
	assert.Equal(t, FormatDecimal, Num("1.5").NumberFormat)
	assert.True(t, Num("7").IsInteger())
	assert.Equal(t, 0, None().NumArgs())
	assert.Equal(t, 1, Var("x").NumArgs())
}

func TestInverseAndReverse(t *testing.T) {
	inv, ok := OpTan.Inverse()
	assert.True(t, ok)
	assert.Equal(t, OpArctan, inv)

	inv, ok = OpCoth.Inverse()
	assert.True(t, ok)
	assert.Equal(t, OpArccoth, inv)

	_, ok = OpLn.Inverse()
	assert.False(t, ok)

	rev, ok := OpGe.Reverse()
	assert.True(t, ok)
	assert.Equal(t, OpLe, rev)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"sum", New(OpAdd, New(OpMinus, Num("1")), Num("2")), "{-1}+2"},
		{"fraction", New(OpFrac, Num("1"), Num("2")), "\\frac{1}{2}"},
		{"power", New(OpPow, Var("x"), Num("2")), "x^{2}"},
		{"function", New(OpSin, Var("x")), "\\sin{x}"},
		{"greek", New(OpMul, Num("2"), Var("\\pi")), "2*\\pi"},
		{"paren", New(OpParen, New(OpAdd, Var("a"), Var("b"))), "(a+b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.node))
		})
	}
}
