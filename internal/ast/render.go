package ast

import "strings"

var infix = map[Op]string{
	OpAdd:            "+",
	OpSub:            "-",
	OpMul:            "",
	OpTimes:          "\\times ",
	OpCdot:           "\\cdot ",
	OpDiv:            "\\div ",
	OpPM:             "\\pm ",
	OpMP:             "\\mp ",
	OpEql:            "=",
	OpNe:             "\\ne ",
	OpApprox:         "\\approx ",
	OpLt:             "<",
	OpGt:             ">",
	OpLe:             "\\le ",
	OpGe:             "\\ge ",
	OpNgtr:           "\\ngtr ",
	OpNless:          "\\nless ",
	OpSubset:         "\\subset ",
	OpSubsetEq:       "\\subseteq ",
	OpSupset:         "\\supset ",
	OpSupsetEq:       "\\supseteq ",
	OpIn:             "\\in ",
	OpNotIn:          "\\notin ",
	OpNi:             "\\ni ",
	OpSim:            "\\sim ",
	OpCong:           "\\cong ",
	OpParallel:       "\\parallel ",
	OpNParallel:      "\\nparallel ",
	OpPerp:           "\\perp ",
	OpPropto:         "\\propto ",
	OpColon:          ":",
	OpRightArrow:     "\\rightarrow ",
	OpLeftArrow:      "\\leftarrow ",
	OpLeftRightArrow: "\\leftrightarrow ",
	OpImplies:        "\\Rightarrow ",
	OpImpliedBy:      "\\Leftarrow ",
	OpIff:            "\\Leftrightarrow ",
	OpMapsTo:         "\\mapsto ",
	OpCup:            "\\cup ",
	OpCap:            "\\cap ",
	OpSetMinus:       "\\setminus ",
	OpAnd:            "\\wedge ",
	OpOr:             "\\vee ",
	OpComma:          ",",
}

var prefix = map[Op]string{
	OpMinus:    "-",
	OpPlus:     "+",
	OpPMSign:   "\\pm ",
	OpNot:      "\\neg ",
	OpSqrt:     "\\sqrt",
	OpVec:      "\\vec",
	OpOverline: "\\overline",
	OpDot:      "\\dot",
	OpHat:      "\\hat",
	OpBold:     "\\mathbf",
}

var postfix = map[Op]string{
	OpFact:    "!",
	OpPercent: "\\%",
	OpPrime:   "'",
	OpDegree:  "^\\circ",
}

var functionNames = map[Op]string{
	OpSin: "\\sin", OpCos: "\\cos", OpTan: "\\tan", OpSec: "\\sec", OpCsc: "\\csc", OpCot: "\\cot",
	OpArcsin: "\\arcsin", OpArccos: "\\arccos", OpArctan: "\\arctan",
	OpArcsec: "\\arcsec", OpArccsc: "\\arccsc", OpArccot: "\\arccot",
	OpSinh: "\\sinh", OpCosh: "\\cosh", OpTanh: "\\tanh", OpSech: "\\sech", OpCsch: "\\csch", OpCoth: "\\coth",
	OpArcsinh: "\\arcsinh", OpArccosh: "\\arccosh", OpArctanh: "\\arctanh",
	OpArcsech: "\\arcsech", OpArccsch: "\\arccsch", OpArccoth: "\\arccoth",
	OpLn: "\\ln", OpExp: "\\exp",
}

// FunctionName returns the control word of a named function operator.
func FunctionName(o Op) string {
	return functionNames[o]
}

// Render writes n back as LaTeX. The result re-parses to a tree with the
// same structure, although spelling may differ from the original source.
func Render(n *Node) string {
	var sb strings.Builder
	render(&sb, n)
	return strings.TrimSpace(sb.String())
}

func group(sb *strings.Builder, n *Node) {
	sb.WriteByte('{')
	render(sb, n)
	sb.WriteByte('}')
}

// operand renders a child, bracing it when it is itself an infix chain.
func operand(sb *strings.Builder, n *Node) {
	if _, ok := infix[n.Op]; ok {
		group(sb, n)
		return
	}
	if n.Op == OpPow || n.Op == OpMinus || n.Op == OpPlus {
		group(sb, n)
		return
	}
	render(sb, n)
}

func render(sb *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Op {
	case OpNone:
		return
	case OpNum, OpVar, OpWildcard:
		sb.WriteString(n.Value)
		if strings.HasPrefix(n.Value, "\\") {
			sb.WriteByte(' ')
		}
		return
	case OpText:
		sb.WriteString("\\text{" + n.Value + "}")
		return
	case OpType:
		sb.WriteString("\\type{" + n.Value + "}")
		return
	}

	if n.Op == OpMul {
		sym := "*"
		if n.IsImplicit {
			sym = " "
		}
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(sym)
			}
			operand(sb, a)
		}
		return
	}
	if sym, ok := infix[n.Op]; ok {
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(sym)
			}
			if n.Op == OpComma {
				render(sb, a)
			} else {
				operand(sb, a)
			}
		}
		return
	}
	if sym, ok := prefix[n.Op]; ok {
		sb.WriteString(sym)
		if strings.HasSuffix(sym, " ") || len(sym) == 1 {
			operand(sb, n.Args[0])
		} else {
			group(sb, n.Args[0])
		}
		return
	}
	if sym, ok := postfix[n.Op]; ok {
		operand(sb, n.Args[0])
		sb.WriteString(sym)
		return
	}
	if name, ok := functionNames[n.Op]; ok {
		sb.WriteString(name)
		group(sb, n.Args[0])
		return
	}

	switch n.Op {
	case OpFrac:
		sb.WriteString("\\frac")
		group(sb, n.Args[0])
		group(sb, n.Args[1])
	case OpBinom:
		sb.WriteString("\\binom")
		group(sb, n.Args[0])
		group(sb, n.Args[1])
	case OpNthRoot:
		sb.WriteString("\\sqrt[")
		render(sb, n.Args[0])
		sb.WriteByte(']')
		group(sb, n.Args[1])
	case OpPow:
		operand(sb, n.Args[0])
		sb.WriteByte('^')
		group(sb, n.Args[1])
	case OpSubscript:
		operand(sb, n.Args[0])
		sb.WriteByte('_')
		group(sb, n.Args[1])
	case OpLog:
		sb.WriteString("\\log_")
		group(sb, n.Args[0])
		group(sb, n.Args[1])
	case OpOverset, OpUnderset:
		if n.Op == OpOverset {
			sb.WriteString("\\overset")
		} else {
			sb.WriteString("\\underset")
		}
		group(sb, n.Args[0])
		group(sb, n.Args[1])
	case OpApply:
		render(sb, n.Args[0])
		sb.WriteByte('(')
		render(sb, n.Args[1])
		sb.WriteByte(')')
	case OpParen, OpBracket, OpSet, OpAbs,
		OpInterval, OpIntervalOpen, OpIntervalLeftOpen, OpIntervalRightOpen:
		l, r := n.Op.DefaultBrackets()
		if n.Lbrk != "" {
			l = n.Lbrk
		}
		if n.Rbrk != "" {
			r = n.Rbrk
		}
		sb.WriteString(l)
		for _, a := range n.Args {
			render(sb, a)
		}
		sb.WriteString(r)
	case OpIntegral:
		sb.WriteString("\\int")
		if n.Args[0].Op != OpNone {
			sb.WriteByte('_')
			group(sb, n.Args[0])
		}
		if n.Args[1].Op != OpNone {
			sb.WriteByte('^')
			group(sb, n.Args[1])
		}
		sb.WriteByte(' ')
		render(sb, n.Args[2])
		if n.Args[3].Op != OpNone {
			sb.WriteString("\\,d")
			render(sb, n.Args[3])
		}
	case OpSum, OpProd:
		if n.Op == OpSum {
			sb.WriteString("\\sum")
		} else {
			sb.WriteString("\\prod")
		}
		if n.Args[0].Op != OpNone {
			sb.WriteByte('_')
			group(sb, n.Args[0])
		}
		if n.Args[1].Op != OpNone {
			sb.WriteByte('^')
			group(sb, n.Args[1])
		}
		sb.WriteByte(' ')
		render(sb, n.Args[2])
	case OpLim:
		sb.WriteString("\\lim_")
		group(sb, n.Args[0])
		sb.WriteByte(' ')
		render(sb, n.Args[1])
	case OpDeriv:
		sb.WriteString("\\frac{d}{d")
		render(sb, n.Args[1])
		sb.WriteString("}")
		render(sb, n.Args[0])
	case OpMatrix:
		sb.WriteString("\\begin{matrix}")
		for i, row := range n.Args[0].Args {
			if i > 0 {
				sb.WriteString("\\\\")
			}
			for j, cell := range row.Args {
				if j > 0 {
					sb.WriteByte('&')
				}
				render(sb, cell)
			}
		}
		sb.WriteString("\\end{matrix}")
	case OpRow, OpCol:
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			render(sb, a)
		}
	}
}
