// Package visit dispatches tree walks over the structural category of each
// operator.
package visit

import (
	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
)

// Category is the structural shape of an operator as seen by a walk.
type Category uint8

const (
	CatNone Category = iota
	CatNumeric
	CatUnary
	CatBinary
	CatMultiplicative
	CatExponential
	CatVariable
	CatComma
	CatParen
	CatEquals
)

func (c Category) String() string {
	switch c {
	case CatNumeric:
		return "numeric"
	case CatUnary:
		return "unary"
	case CatBinary:
		return "binary"
	case CatMultiplicative:
		return "multiplicative"
	case CatExponential:
		return "exponential"
	case CatVariable:
		return "variable"
	case CatComma:
		return "comma"
	case CatParen:
		return "paren"
	case CatEquals:
		return "equals"
	}
	return "none"
}

// CategoryOf returns the category of op, or CatNone for an operator the
// table does not know.
func CategoryOf(op ast.Op) Category {
	switch op {
	case ast.OpNum, ast.OpNone:
		return CatNumeric

	case ast.OpVar, ast.OpText, ast.OpType, ast.OpWildcard:
		return CatVariable

	case ast.OpMinus, ast.OpPlus, ast.OpPMSign, ast.OpNot,
		ast.OpSqrt, ast.OpFact, ast.OpPercent, ast.OpPrime, ast.OpDegree,
		ast.OpVec, ast.OpOverline, ast.OpDot, ast.OpHat, ast.OpBold:
		return CatUnary

	case ast.OpAdd, ast.OpSub, ast.OpPM, ast.OpMP,
		ast.OpFrac, ast.OpNthRoot, ast.OpBinom, ast.OpSubscript, ast.OpApply,
		ast.OpOverset, ast.OpUnderset, ast.OpLog,
		ast.OpCup, ast.OpCap, ast.OpSetMinus, ast.OpAnd, ast.OpOr,
		ast.OpIntegral, ast.OpDeriv, ast.OpLim, ast.OpSum, ast.OpProd:
		return CatBinary

	case ast.OpMul, ast.OpTimes, ast.OpCdot, ast.OpDiv:
		return CatMultiplicative

	case ast.OpPow:
		return CatExponential

	case ast.OpComma, ast.OpMatrix, ast.OpRow, ast.OpCol:
		return CatComma

	case ast.OpParen, ast.OpBracket, ast.OpSet, ast.OpAbs,
		ast.OpInterval, ast.OpIntervalOpen, ast.OpIntervalLeftOpen, ast.OpIntervalRightOpen:
		return CatParen

	case ast.OpEql, ast.OpNe, ast.OpApprox, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe,
		ast.OpNgtr, ast.OpNless, ast.OpSubset, ast.OpSubsetEq, ast.OpSupset, ast.OpSupsetEq,
		ast.OpIn, ast.OpNotIn, ast.OpNi, ast.OpSim, ast.OpCong,
		ast.OpParallel, ast.OpNParallel, ast.OpPerp, ast.OpPropto, ast.OpColon,
		ast.OpRightArrow, ast.OpLeftArrow, ast.OpLeftRightArrow,
		ast.OpImplies, ast.OpImpliedBy, ast.OpIff, ast.OpMapsTo:
		return CatEquals
	}
	if op.IsFunction() {
		return CatUnary
	}
	return CatNone
}

// Visitor is one concrete walk. Each method handles every operator of its
// category.
type Visitor[T any] interface {
	Numeric(n *ast.Node) T
	Unary(n *ast.Node) T
	Binary(n *ast.Node) T
	Multiplicative(n *ast.Node) T
	Exponential(n *ast.Node) T
	Variable(n *ast.Node) T
	Comma(n *ast.Node) T
	Paren(n *ast.Node) T
	Equals(n *ast.Node) T
}

// Visit calls the method of v matching the category of n. An operator
// without a category is an internal error.
func Visit[T any](v Visitor[T], n *ast.Node) T {
	switch CategoryOf(n.Op) {
	case CatNumeric:
		return v.Numeric(n)
	case CatUnary:
		return v.Unary(n)
	case CatBinary:
		return v.Binary(n)
	case CatMultiplicative:
		return v.Multiplicative(n)
	case CatExponential:
		return v.Exponential(n)
	case CatVariable:
		return v.Variable(n)
	case CatComma:
		return v.Comma(n)
	case CatParen:
		return v.Paren(n)
	case CatEquals:
		return v.Equals(n)
	}
	diag.Fail(diag.KindInternal, diag.CodeNoCategory, -1, n.Op)
	panic("unreachable")
}
