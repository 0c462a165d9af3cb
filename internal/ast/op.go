package ast

// Op is the operator tag of a Node.
type Op uint8

const (
	OpNone Op = iota

	// leaves
	OpNum
	OpVar
	OpText
	OpType
	OpWildcard

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpTimes
	OpCdot
	OpDiv
	OpFrac
	OpPow
	OpMinus
	OpPlus
	OpPM
	OpMP
	OpPMSign
	OpSqrt
	OpNthRoot
	OpFact
	OpPercent
	OpPrime
	OpDegree
	OpSubscript
	OpBinom
	OpApply

	// decorations
	OpVec
	OpOverline
	OpDot
	OpHat
	OpBold
	OpOverset
	OpUnderset

	// functions
	OpSin
	OpCos
	OpTan
	OpSec
	OpCsc
	OpCot
	OpArcsin
	OpArccos
	OpArctan
	OpArcsec
	OpArccsc
	OpArccot
	OpSinh
	OpCosh
	OpTanh
	OpSech
	OpCsch
	OpCoth
	OpArcsinh
	OpArccosh
	OpArctanh
	OpArcsech
	OpArccsch
	OpArccoth
	OpLn
	OpLog
	OpExp

	// calculus
	OpIntegral
	OpDeriv
	OpLim
	OpSum
	OpProd

	// comparison and relations
	OpEql
	OpNe
	OpApprox
	OpLt
	OpGt
	OpLe
	OpGe
	OpNgtr
	OpNless
	OpSubset
	OpSubsetEq
	OpSupset
	OpSupsetEq
	OpIn
	OpNotIn
	OpNi
	OpSim
	OpCong
	OpParallel
	OpNParallel
	OpPerp
	OpPropto
	OpColon

	// arrows
	OpRightArrow
	OpLeftArrow
	OpLeftRightArrow
	OpImplies
	OpImpliedBy
	OpIff
	OpMapsTo

	// sets and logic
	OpCup
	OpCap
	OpSetMinus
	OpAnd
	OpOr
	OpNot

	// grouping
	OpParen
	OpBracket
	OpSet
	OpAbs
	OpInterval
	OpIntervalOpen
	OpIntervalLeftOpen
	OpIntervalRightOpen

	// lists and matrices
	OpComma
	OpMatrix
	OpRow
	OpCol

	opCount
)

// NumOps is the number of defined operators. Valid operators are
// 0 <= op < NumOps.
const NumOps = int(opCount)

var opNames = [opCount]string{
	OpNone:              "NONE",
	OpNum:               "NUM",
	OpVar:               "VAR",
	OpText:              "TEXT",
	OpType:              "TYPE",
	OpWildcard:          "WILDCARD",
	OpAdd:               "ADD",
	OpSub:               "SUB",
	OpMul:               "MUL",
	OpTimes:             "TIMES",
	OpCdot:              "CDOT",
	OpDiv:               "DIV",
	OpFrac:              "FRAC",
	OpPow:               "POW",
	OpMinus:             "MINUS",
	OpPlus:              "PLUS",
	OpPM:                "PM",
	OpMP:                "MP",
	OpPMSign:            "PMSIGN",
	OpSqrt:              "SQRT",
	OpNthRoot:           "NTHROOT",
	OpFact:              "FACT",
	OpPercent:           "PERCENT",
	OpPrime:             "PRIME",
	OpDegree:            "DEGREE",
	OpSubscript:         "SUBSCRIPT",
	OpBinom:             "BINOM",
	OpApply:             "APPLY",
	OpVec:               "VEC",
	OpOverline:          "OVERLINE",
	OpDot:               "DOT",
	OpHat:               "HAT",
	OpBold:              "MATHBF",
	OpOverset:           "OVERSET",
	OpUnderset:          "UNDERSET",
	OpSin:               "SIN",
	OpCos:               "COS",
	OpTan:               "TAN",
	OpSec:               "SEC",
	OpCsc:               "CSC",
	OpCot:               "COT",
	OpArcsin:            "ARCSIN",
	OpArccos:            "ARCCOS",
	OpArctan:            "ARCTAN",
	OpArcsec:            "ARCSEC",
	OpArccsc:            "ARCCSC",
	OpArccot:            "ARCCOT",
	OpSinh:              "SINH",
	OpCosh:              "COSH",
	OpTanh:              "TANH",
	OpSech:              "SECH",
	OpCsch:              "CSCH",
	OpCoth:              "COTH",
	OpArcsinh:           "ARCSINH",
	OpArccosh:           "ARCCOSH",
	OpArctanh:           "ARCTANH",
	OpArcsech:           "ARCSECH",
	OpArccsch:           "ARCCSCH",
	OpArccoth:           "ARCCOTH",
	OpLn:                "LN",
	OpLog:               "LOG",
	OpExp:               "EXP",
	OpIntegral:          "INTEGRAL",
	OpDeriv:             "DERIV",
	OpLim:               "LIM",
	OpSum:               "SUM",
	OpProd:              "PROD",
	OpEql:               "EQL",
	OpNe:                "NE",
	OpApprox:            "APPROX",
	OpLt:                "LT",
	OpGt:                "GT",
	OpLe:                "LE",
	OpGe:                "GE",
	OpNgtr:              "NGTR",
	OpNless:             "NLESS",
	OpSubset:            "SUBSET",
	OpSubsetEq:          "SUBSETEQ",
	OpSupset:            "SUPSET",
	OpSupsetEq:          "SUPSETEQ",
	OpIn:                "IN",
	OpNotIn:             "NOTIN",
	OpNi:                "NI",
	OpSim:               "SIM",
	OpCong:              "CONG",
	OpParallel:          "PARALLEL",
	OpNParallel:         "NPARALLEL",
	OpPerp:              "PERP",
	OpPropto:            "PROPTO",
	OpColon:             "COLON",
	OpRightArrow:        "RIGHTARROW",
	OpLeftArrow:         "LEFTARROW",
	OpLeftRightArrow:    "LEFTRIGHTARROW",
	OpImplies:           "IMPLIES",
	OpImpliedBy:         "IMPLIEDBY",
	OpIff:               "IFF",
	OpMapsTo:            "MAPSTO",
	OpCup:               "CUP",
	OpCap:               "CAP",
	OpSetMinus:          "SETMINUS",
	OpAnd:               "AND",
	OpOr:                "OR",
	OpNot:               "NOT",
	OpParen:             "PAREN",
	OpBracket:           "BRACKET",
	OpSet:               "SET",
	OpAbs:               "ABS",
	OpInterval:          "INTERVAL",
	OpIntervalOpen:      "INTERVALOPEN",
	OpIntervalLeftOpen:  "INTERVALLEFTOPEN",
	OpIntervalRightOpen: "INTERVALRIGHTOPEN",
	OpComma:             "COMMA",
	OpMatrix:            "MATRIX",
	OpRow:               "ROW",
	OpCol:               "COL",
}

func (o Op) String() string {
	if o < opCount {
		return opNames[o]
	}
	return "UNKNOWN"
}

// IsLeaf reports whether nodes of this operator carry a Value instead of
// child nodes.
func (o Op) IsLeaf() bool {
	switch o {
	case OpNum, OpVar, OpText, OpType, OpWildcard, OpNone:
		return true
	}
	return false
}

// IsFunction reports whether o is a named elementary function.
func (o Op) IsFunction() bool {
	return o >= OpSin && o <= OpExp
}

// Inverse maps a trigonometric or hyperbolic function to its arc variant.
func (o Op) Inverse() (Op, bool) {
	switch {
	case o >= OpSin && o <= OpCot:
		return o + (OpArcsin - OpSin), true
	case o >= OpSinh && o <= OpCoth:
		return o + (OpArcsinh - OpSinh), true
	}
	return o, false
}

// Reverse maps a comparison or arrow to the operator obtained by swapping
// its operands.
func (o Op) Reverse() (Op, bool) {
	switch o {
	case OpGt:
		return OpLt, true
	case OpGe:
		return OpLe, true
	case OpNgtr:
		return OpNless, true
	case OpSupset:
		return OpSubset, true
	case OpSupsetEq:
		return OpSubsetEq, true
	case OpNi:
		return OpIn, true
	case OpImpliedBy:
		return OpImplies, true
	case OpLeftArrow:
		return OpRightArrow, true
	}
	return o, false
}

// DefaultBrackets returns the glyphs a grouping operator renders with when
// the source did not say otherwise.
func (o Op) DefaultBrackets() (string, string) {
	switch o {
	case OpParen:
		return "(", ")"
	case OpBracket, OpInterval:
		return "[", "]"
	case OpSet:
		return "\\{", "\\}"
	case OpAbs:
		return "|", "|"
	case OpIntervalOpen:
		return "(", ")"
	case OpIntervalLeftOpen:
		return "(", "]"
	case OpIntervalRightOpen:
		return "[", ")"
	}
	return "", ""
}
