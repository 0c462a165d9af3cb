package ast

import (
	"strings"
)

// NumberFormat records how a numeric literal was written.
type NumberFormat uint8

const (
	FormatNone NumberFormat = iota
	FormatInteger
	FormatDecimal
)

// Attrs carries literal-composition flags and source glyphs. Only Lbrk and
// Rbrk take part in structural identity, and only when they differ from the
// operator's defaults.
type Attrs struct {
	NumberFormat     NumberFormat
	IsRepeating      bool
	IsFraction       bool
	IsMixedNumber    bool
	IsPolynomialTerm bool
	IsScientific     bool
	IsBinomial       bool
	IsImplicit       bool

	// IsPolynomial is the degree of a polynomial term, 0 when unknown.
	IsPolynomial int

	Lbrk string
	Rbrk string

	// M and N are the 1-based row and column of a matrix element, or the
	// dimensions on the MATRIX node itself.
	M int
	N int
}

// IsLiteralComposite reports whether the node stands for a single number
// written in several pieces.
func (a Attrs) IsLiteralComposite() bool {
	return a.IsMixedNumber || a.IsRepeating || a.IsScientific
}

// Node is an expression tree node. Leaves (NUM, VAR, TEXT, TYPE, WILDCARD)
// keep their text in Value and have no Args.
type Node struct {
	Op    Op
	Args  []*Node
	Value string
	Attrs
}

// New builds a compound node.
func New(op Op, args ...*Node) *Node {
	return &Node{Op: op, Args: args}
}

// Leaf builds a leaf node.
func Leaf(op Op, value string) *Node {
	return &Node{Op: op, Value: value}
}

// Num builds an integer or decimal literal.
func Num(value string) *Node {
	n := Leaf(OpNum, value)
	if strings.ContainsRune(value, '.') {
		n.NumberFormat = FormatDecimal
	} else {
		n.NumberFormat = FormatInteger
	}
	return n
}

func Var(name string) *Node {
	return Leaf(OpVar, name)
}

// None returns the placeholder for an elided operand.
func None() *Node {
	return &Node{Op: OpNone}
}

// NumArgs is the argument count seen by templates: one for leaves.
func (n *Node) NumArgs() int {
	if n.Op.IsLeaf() {
		if n.Op == OpNone {
			return 0
		}
		return 1
	}
	return len(n.Args)
}

// IsInteger reports whether n is an integer literal.
func (n *Node) IsInteger() bool {
	return n.Op == OpNum && n.NumberFormat == FormatInteger
}

// Clone returns a deep copy of n.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = Clone(a)
		}
	}
	return &c
}

// String renders the tree in a compact prefix form, e.g. ADD(NUM(1),VAR(x)).
func (n *Node) String() string {
	var sb strings.Builder
	writeDump(&sb, n)
	return sb.String()
}

func writeDump(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	sb.WriteString(n.Op.String())
	if n.Op.IsLeaf() {
		if n.Op != OpNone {
			sb.WriteByte('(')
			sb.WriteString(n.Value)
			sb.WriteByte(')')
		}
		return
	}
	sb.WriteByte('(')
	for i, a := range n.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeDump(sb, a)
	}
	sb.WriteByte(')')
}
