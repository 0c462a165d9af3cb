package rules

import (
	"sort"
	"strings"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/env"
)

// Classifier decides whether a node belongs to a builtin type.
type Classifier func(n *ast.Node, spec TypeSpec, e *env.Env) bool

var builtins = map[string]Classifier{
	"number":           isNumber,
	"integer":          isInteger,
	"decimal":          isDecimal,
	"scientific":       func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.IsScientific },
	"fraction":         func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.Op == ast.OpFrac },
	"simpleFraction":   func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.Op == ast.OpFrac && n.IsFraction },
	"mixedNumber":      func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.IsMixedNumber },
	"repeatingDecimal": func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.IsRepeating },
	"polynomial":       isPolynomial,
	"variable":         isVariable,
	"text":             func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.Op == ast.OpText },
	"matrix":           isMatrix,
	"rowVector":        func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.Op == ast.OpMatrix && n.M == 1 },
	"columnVector":     func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.Op == ast.OpMatrix && n.N == 1 },
	"squareMatrix":     func(n *ast.Node, _ TypeSpec, _ *env.Env) bool { return n.Op == ast.OpMatrix && n.M == n.N },
	"cellName":         isCellName,
}

// Builtin returns the classifier registered under name.
func Builtin(name string) (Classifier, bool) {
	c, ok := builtins[name]
	return c, ok
}

// BuiltinNames lists the builtin type names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isNumber accepts literals and literals written in several pieces.
// A signed literal is not a number; declare a type for that.
func isNumber(n *ast.Node, _ TypeSpec, _ *env.Env) bool {
	return n.Op == ast.OpNum || n.IsLiteralComposite()
}

func isInteger(n *ast.Node, spec TypeSpec, _ *env.Env) bool {
	if !n.IsInteger() {
		return false
	}
	return spec.Cmp.Holds(len(n.Value), spec.N)
}

// isDecimal compares the parameter against the count of fraction digits.
func isDecimal(n *ast.Node, spec TypeSpec, _ *env.Env) bool {
	if n.Op != ast.OpNum || n.NumberFormat != ast.FormatDecimal {
		return false
	}
	_, frac, _ := strings.Cut(n.Value, ".")
	return spec.Cmp.Holds(len(frac), spec.N)
}

func isPolynomial(n *ast.Node, spec TypeSpec, _ *env.Env) bool {
	if !n.IsPolynomialTerm {
		return false
	}
	return spec.Cmp.Holds(n.IsPolynomial, spec.N)
}

// isVariable rejects names the environment knows as constants, units or
// functions.
func isVariable(n *ast.Node, _ TypeSpec, e *env.Env) bool {
	if n.Op != ast.OpVar {
		return false
	}
	if e != nil {
		if sym, ok := e.Lookup(n.Value); ok && sym.Type != env.SymbolVar {
			return false
		}
	}
	return true
}

func isMatrix(n *ast.Node, spec TypeSpec, _ *env.Env) bool {
	if n.Op != ast.OpMatrix {
		return false
	}
	if spec.Rows > 0 && n.M != spec.Rows {
		return false
	}
	if spec.Cols > 0 && n.N != spec.Cols {
		return false
	}
	return true
}

// isCellName accepts spreadsheet references such as A1 or AB12, which
// parse as an implicit product of column letters and a row number.
func isCellName(n *ast.Node, _ TypeSpec, _ *env.Env) bool {
	if n.Op != ast.OpMul || !n.IsImplicit || len(n.Args) < 2 {
		return false
	}
	last := n.Args[len(n.Args)-1]
	if !last.IsInteger() || strings.HasPrefix(last.Value, "0") {
		return false
	}
	for _, a := range n.Args[:len(n.Args)-1] {
		if a.Op != ast.OpVar || len(a.Value) != 1 || a.Value[0] < 'A' || a.Value[0] > 'Z' {
			return false
		}
	}
	return true
}

// CellName splits a cell node into its column letters and row digits.
func CellName(n *ast.Node) (col, row string, ok bool) {
	if !isCellName(n, TypeSpec{}, nil) {
		return "", "", false
	}
	var sb strings.Builder
	for _, a := range n.Args[:len(n.Args)-1] {
		sb.WriteString(a.Value)
	}
	return sb.String(), n.Args[len(n.Args)-1].Value, true
}
