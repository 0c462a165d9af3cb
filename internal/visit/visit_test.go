package visit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/parser"
	"github.com/gnolang/mtrans/internal/types"
)

func TestEveryOperatorHasCategory(t *testing.T) {
	t.Parallel()

	for op := ast.Op(0); int(op) < ast.NumOps; op++ {
		assert.NotEqual(t, CatNone, CategoryOf(op), "operator %s", op)
	}
}

// counter records which method each node reached.
type counter struct{ seen []string }

func (c *counter) rec(cat string) int {
	c.seen = append(c.seen, cat)
	return len(c.seen)
}

func (c *counter) Numeric(*ast.Node) int        { return c.rec("numeric") }
func (c *counter) Unary(*ast.Node) int          { return c.rec("unary") }
func (c *counter) Binary(*ast.Node) int         { return c.rec("binary") }
func (c *counter) Multiplicative(*ast.Node) int { return c.rec("multiplicative") }
func (c *counter) Exponential(*ast.Node) int    { return c.rec("exponential") }
func (c *counter) Variable(*ast.Node) int       { return c.rec("variable") }
func (c *counter) Comma(*ast.Node) int          { return c.rec("comma") }
func (c *counter) Paren(*ast.Node) int          { return c.rec("paren") }
func (c *counter) Equals(*ast.Node) int         { return c.rec("equals") }

func TestVisitDispatch(t *testing.T) {
	t.Parallel()

	c := &counter{}
	nodes := []*ast.Node{
		ast.Num("1"),
		ast.New(ast.OpSin, ast.Var("x")),
		ast.New(ast.OpFrac, ast.Num("1"), ast.Num("2")),
		ast.New(ast.OpCdot, ast.Num("1"), ast.Num("2")),
		ast.New(ast.OpPow, ast.Var("x"), ast.Num("2")),
		ast.Leaf(ast.OpWildcard, "?"),
		ast.New(ast.OpRow),
		ast.New(ast.OpAbs, ast.Var("x")),
		ast.New(ast.OpMapsTo, ast.Var("x"), ast.Var("y")),
	}
	for _, n := range nodes {
		Visit[int](c, n)
	}
	assert.Equal(t, []string{
		"numeric", "unary", "binary", "multiplicative", "exponential",
		"variable", "comma", "paren", "equals",
	}, c.seen)
}

func TestVisitUnknownOperator(t *testing.T) {
	t.Parallel()

	var err error
	func() {
		defer diag.Catch(&err)
		Visit[int](&counter{}, &ast.Node{Op: ast.Op(ast.NumOps + 3)})
	}()
	require.Error(t, err)
	assert.Equal(t, diag.CodeNoCategory, diag.As(err).Code)
	assert.Equal(t, diag.KindInternal, diag.As(err).Kind)
}

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := parser.Parse(src, parser.Config{})
	require.NoError(t, err)
	return n
}

func TestNormalizeLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		opts map[string]any
		want string
	}{
		{"times becomes mul", "2\\times 3", nil, "MUL(NUM(2),NUM(3))"},
		{"nested sums flatten", "(a+b)+c", nil, "ADD(PAREN(ADD(VAR(a),VAR(b))),VAR(c))"},
		{"explicit products flatten", "2\\times 3\\times 4", nil, "MUL(NUM(2),NUM(3),NUM(4))"},
		{"mixed number kept", "3\\frac12+1", nil, "ADD(ADD(NUM(3),FRAC(NUM(1),NUM(2))),NUM(1))"},
		{"reverse comparison", "a>b", map[string]any{"reverseComparisons": true}, "LT(VAR(b),VAR(a))"},
		{"comparison kept", "a>b", nil, "GT(VAR(a),VAR(b))"},
		{"coefficient one", "1\\cdot x", map[string]any{"ignoreCoefficientOne": true}, "CDOT(NUM(1),VAR(x))"},
		{"coefficient one times", "1\\times x", map[string]any{"ignoreCoefficientOne": true}, "VAR(x)"},
		{"trailing zeros", "1.50+2.0", map[string]any{"ignoreTrailingZeros": true}, "ADD(NUM(1.5),NUM(2))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := types.ParseOptions(tt.opts)
			require.NoError(t, err)
			n := NormalizeLiteral(mustParse(t, tt.src), opts)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestNormalizeMinusInheritsFlags(t *testing.T) {
	t.Parallel()

	n := NormalizeLiteral(mustParse(t, "-2.5"), nil)
	assert.Equal(t, ast.FormatDecimal, n.NumberFormat)

	n = NormalizeLiteral(mustParse(t, "-\\frac{1}{2}"), nil)
	assert.True(t, n.IsFraction)
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	opts, err := types.ParseOptions(map[string]any{
		"ignoreCoefficientOne": true,
		"ignoreTrailingZeros":  true,
		"reverseComparisons":   true,
	})
	require.NoError(t, err)

	for _, src := range []string{
		"1\\times 1\\times x",
		"a+b+c-d",
		"2\\times 3\\times 4.10",
		"a>b>c",
		"3x^2+1.0",
		"1.2\\times10^{-3}",
		"\\begin{pmatrix}1 & 2\\end{pmatrix}",
	} {
		t.Run(src, func(t *testing.T) {
			once := NormalizeLiteral(mustParse(t, src), opts)
			twice := NormalizeLiteral(ast.Clone(once), opts)
			assert.Equal(t, once.String(), twice.String())
			pool := ast.NewPool()
			assert.True(t, pool.Equal(once, twice))
		})
	}
}
