package visit

import (
	"strings"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/types"
)

// Normalizer rewrites a tree into the canonical literal form rules are
// matched against. It works in place.
type Normalizer struct {
	opts *types.Options
}

func NewNormalizer(opts *types.Options) *Normalizer {
	if opts == nil {
		opts = types.Default()
	}
	return &Normalizer{opts: opts}
}

// NormalizeLiteral normalizes n with the given options. Applying it twice
// gives the same tree as applying it once.
func NormalizeLiteral(n *ast.Node, opts *types.Options) *ast.Node {
	return Visit[*ast.Node](NewNormalizer(opts), n)
}

func (z *Normalizer) children(n *ast.Node) {
	for i, a := range n.Args {
		n.Args[i] = Visit[*ast.Node](z, a)
	}
}

func (z *Normalizer) Numeric(n *ast.Node) *ast.Node {
	if z.opts.IgnoreTrailingZeros && n.Op == ast.OpNum && n.NumberFormat == ast.FormatDecimal {
		v := strings.TrimRight(n.Value, "0")
		switch {
		case strings.HasSuffix(v, ".") && v != n.Value:
			n.Value = strings.TrimSuffix(v, ".")
			n.NumberFormat = ast.FormatInteger
		case !strings.HasSuffix(v, "."):
			n.Value = v
		}
	}
	return n
}

// Unary lets a sign inherit the literal flags of its operand, so -3 is
// classified like 3.
func (z *Normalizer) Unary(n *ast.Node) *ast.Node {
	z.children(n)
	if n.Op == ast.OpMinus || n.Op == ast.OpPlus {
		a := n.Args[0]
		n.NumberFormat = a.NumberFormat
		n.IsFraction = a.IsFraction
		n.IsRepeating = a.IsRepeating
		n.IsScientific = a.IsScientific
	}
	return n
}

func (z *Normalizer) Binary(n *ast.Node) *ast.Node {
	z.children(n)
	if n.Op == ast.OpAdd && !n.IsMixedNumber {
		n.Args = flatten(n.Op, n.Args, func(a *ast.Node) bool {
			return !a.IsMixedNumber
		})
	}
	return n
}

func (z *Normalizer) Multiplicative(n *ast.Node) *ast.Node {
	z.children(n)
	if n.Op == ast.OpTimes {
		n.Op = ast.OpMul
	}
	if n.Op != ast.OpMul || n.IsLiteralComposite() || n.IsPolynomialTerm {
		return n
	}
	n.Args = flatten(ast.OpMul, n.Args, func(a *ast.Node) bool {
		return !a.IsLiteralComposite() && !a.IsPolynomialTerm
	})
	if z.opts.IgnoreCoefficientOne {
		for len(n.Args) > 1 && n.Args[0].Op == ast.OpNum && n.Args[0].Value == "1" {
			n.Args = n.Args[1:]
		}
		if len(n.Args) == 1 {
			return n.Args[0]
		}
	}
	return n
}

func (z *Normalizer) Exponential(n *ast.Node) *ast.Node {
	z.children(n)
	return n
}

func (z *Normalizer) Variable(n *ast.Node) *ast.Node {
	return n
}

func (z *Normalizer) Comma(n *ast.Node) *ast.Node {
	z.children(n)
	return n
}

func (z *Normalizer) Paren(n *ast.Node) *ast.Node {
	z.children(n)
	return n
}

func (z *Normalizer) Equals(n *ast.Node) *ast.Node {
	z.children(n)
	if z.opts.ReverseComparisons {
		if op, ok := n.Op.Reverse(); ok && len(n.Args) == 2 {
			n.Op = op
			n.Args[0], n.Args[1] = n.Args[1], n.Args[0]
		}
	}
	return n
}

// flatten splices children of the same operator into args when ok allows.
func flatten(op ast.Op, args []*ast.Node, ok func(*ast.Node) bool) []*ast.Node {
	out := make([]*ast.Node, 0, len(args))
	for _, a := range args {
		if a.Op == op && ok(a) {
			out = append(out, a.Args...)
			continue
		}
		out = append(out, a)
	}
	return out
}
