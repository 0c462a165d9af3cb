package parser

import "github.com/gnolang/mtrans/internal/ast"

// Kind is a token tag.
type Kind uint8

const (
	TokEOF Kind = iota
	TokNum
	TokVar
	TokText
	TokType
	TokWildcard

	// punctuation
	TokAdd
	TokSub
	TokMul
	TokSlash
	TokCaret
	TokUnderscore
	TokComma
	TokColon
	TokBang
	TokPercent
	TokPrime
	TokPipe
	TokLeftParen
	TokRightParen
	TokLeftBracket
	TokRightBracket
	TokLeftBrace
	TokRightBrace
	TokLeftSet
	TokRightSet
	TokAmp
	TokNewRow
	TokEql
	TokLt
	TokGt
	TokDot

	// structural commands
	TokFrac
	TokBinom
	TokSqrt
	TokVec
	TokOverline
	TokDotAccent
	TokHat
	TokBold
	TokOverset
	TokUnderset
	TokLeft
	TokRight
	TokBegin
	TokEnd
	TokCirc
	TokDegree

	// operators
	TokTimes
	TokCdot
	TokDiv
	TokPM
	TokMP
	TokNot

	// relations
	TokNe
	TokApprox
	TokLe
	TokGe
	TokNgtr
	TokNless
	TokSubset
	TokSubsetEq
	TokSupset
	TokSupsetEq
	TokIn
	TokNotIn
	TokNi
	TokSim
	TokCong
	TokParallel
	TokNParallel
	TokPerp
	TokPropto

	// arrows
	TokRightArrow
	TokLeftArrow
	TokLeftRightArrow
	TokImplies
	TokImpliedBy
	TokIff
	TokMapsTo

	// set and logic operators
	TokCup
	TokCap
	TokSetMinus
	TokWedge
	TokVee

	// big operators
	TokInt
	TokSum
	TokProd
	TokLim

	// functions
	TokSin
	TokCos
	TokTan
	TokSec
	TokCsc
	TokCot
	TokArcsin
	TokArccos
	TokArctan
	TokArcsec
	TokArccsc
	TokArccot
	TokSinh
	TokCosh
	TokTanh
	TokSech
	TokCsch
	TokCoth
	TokArcsinh
	TokArccosh
	TokArctanh
	TokArcsech
	TokArccsch
	TokArccoth
	TokLn
	TokLog
	TokExp

	kindCount
)

var kindNames = map[Kind]string{
	TokEOF: "end of input", TokNum: "number", TokVar: "variable", TokText: "text",
	TokType: "type", TokWildcard: "?",
	TokAdd: "+", TokSub: "-", TokMul: "*", TokSlash: "/", TokCaret: "^",
	TokUnderscore: "_", TokComma: ",", TokColon: ":", TokBang: "!",
	TokPercent: "%", TokPrime: "'", TokPipe: "|",
	TokLeftParen: "(", TokRightParen: ")", TokLeftBracket: "[", TokRightBracket: "]",
	TokLeftBrace: "{", TokRightBrace: "}", TokLeftSet: "\\{", TokRightSet: "\\}",
	TokAmp: "&", TokNewRow: "\\\\", TokEql: "=", TokLt: "<", TokGt: ">", TokDot: ".",
	TokLeft: "\\left", TokRight: "\\right", TokBegin: "\\begin", TokEnd: "\\end",
}

// keywordNames holds the first spelling, in byte order, of each keyword kind.
var keywordNames = map[Kind]string{}

func init() {
	for word, k := range keywords {
		if cur, ok := keywordNames[k]; !ok || word < cur {
			keywordNames[k] = word
		}
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	if s, ok := keywordNames[k]; ok {
		return s
	}
	return "token"
}

type token struct {
	kind   Kind
	lexeme string
	pos    int // rune offset in the canonicalized input
}

func (t token) String() string {
	switch t.kind {
	case TokNum, TokVar, TokText, TokType:
		return t.lexeme
	}
	return t.kind.String()
}

// keywords maps control words to token kinds. Spellings that only differ
// typographically share a kind.
var keywords = map[string]Kind{
	"\\frac": TokFrac, "\\dfrac": TokFrac, "\\tfrac": TokFrac,
	"\\binom": TokBinom, "\\dbinom": TokBinom, "\\tbinom": TokBinom,
	"\\sqrt":      TokSqrt,
	"\\vec":       TokVec,
	"\\overline":  TokOverline,
	"\\bar":       TokOverline,
	"\\dot":       TokDotAccent,
	"\\hat":       TokHat,
	"\\mathbf":    TokBold,
	"\\boldsymbol": TokBold,
	"\\overset":   TokOverset,
	"\\underset":  TokUnderset,
	"\\left":      TokLeft,
	"\\right":     TokRight,
	"\\begin":     TokBegin,
	"\\end":       TokEnd,
	"\\circ":      TokCirc,
	"\\degree":    TokDegree,

	"\\times": TokTimes,
	"\\cdot":  TokCdot,
	"\\div":   TokDiv,
	"\\pm":    TokPM,
	"\\mp":    TokMP,
	"\\neg":   TokNot,
	"\\lnot":  TokNot,

	"\\ne": TokNe, "\\neq": TokNe,
	"\\approx": TokApprox,
	"\\le": TokLe, "\\leq": TokLe, "\\leqslant": TokLe,
	"\\ge": TokGe, "\\geq": TokGe, "\\geqslant": TokGe,
	"\\lt": TokLt, "\\gt": TokGt,
	"\\ngtr":      TokNgtr,
	"\\nless":     TokNless,
	"\\subset":    TokSubset,
	"\\subseteq":  TokSubsetEq,
	"\\supset":    TokSupset,
	"\\supseteq":  TokSupsetEq,
	"\\in":        TokIn,
	"\\notin":     TokNotIn,
	"\\ni":        TokNi,
	"\\sim":       TokSim,
	"\\cong":      TokCong,
	"\\parallel":  TokParallel,
	"\\nparallel": TokNParallel,
	"\\perp":      TokPerp,
	"\\propto":    TokPropto,

	"\\rightarrow": TokRightArrow, "\\to": TokRightArrow, "\\longrightarrow": TokRightArrow,
	"\\leftarrow": TokLeftArrow, "\\gets": TokLeftArrow, "\\longleftarrow": TokLeftArrow,
	"\\leftrightarrow": TokLeftRightArrow, "\\longleftrightarrow": TokLeftRightArrow,
	"\\Rightarrow": TokImplies, "\\implies": TokImplies, "\\Longrightarrow": TokImplies,
	"\\Leftarrow": TokImpliedBy, "\\impliedby": TokImpliedBy, "\\Longleftarrow": TokImpliedBy,
	"\\Leftrightarrow": TokIff, "\\iff": TokIff, "\\Longleftrightarrow": TokIff,
	"\\mapsto": TokMapsTo,

	"\\cup": TokCup, "\\cap": TokCap, "\\setminus": TokSetMinus, "\\backslash": TokSetMinus,
	"\\wedge": TokWedge, "\\land": TokWedge, "\\vee": TokVee, "\\lor": TokVee,

	"\\int": TokInt, "\\sum": TokSum, "\\prod": TokProd, "\\lim": TokLim,

	"\\sin": TokSin, "\\cos": TokCos, "\\tan": TokTan,
	"\\sec": TokSec, "\\csc": TokCsc, "\\cot": TokCot,
	"\\arcsin": TokArcsin, "\\arccos": TokArccos, "\\arctan": TokArctan,
	"\\arcsec": TokArcsec, "\\arccsc": TokArccsc, "\\arccot": TokArccot,
	"\\sinh": TokSinh, "\\cosh": TokCosh, "\\tanh": TokTanh,
	"\\sech": TokSech, "\\csch": TokCsch, "\\coth": TokCoth,
	"\\arcsinh": TokArcsinh, "\\arccosh": TokArccosh, "\\arctanh": TokArctanh,
	"\\arcsech": TokArcsech, "\\arccsch": TokArccsch, "\\arccoth": TokArccoth,
	"\\ln": TokLn, "\\log": TokLog, "\\exp": TokExp,

	"\\lbrace": TokLeftSet, "\\rbrace": TokRightSet,
	"\\lbrack": TokLeftBracket, "\\rbrack": TokRightBracket,
	"\\vert": TokPipe, "\\lvert": TokPipe, "\\rvert": TokPipe, "\\mid": TokPipe,
	"\\colon": TokColon,
	"\\ast":   TokMul,
}

// spaces are control words that only affect typesetting.
var spaces = map[string]bool{
	"\\,": true, "\\;": true, "\\:": true, "\\!": true, "\\>": true,
	"\\quad": true, "\\qquad": true,
	"\\displaystyle": true, "\\textstyle": true,
	"\\big": true, "\\Big": true, "\\bigg": true, "\\Bigg": true,
	"\\bigl": true, "\\bigr": true, "\\Bigl": true, "\\Bigr": true,
	"\\limits": true, "\\nolimits": true,
}

// rawGroups are control words whose braced argument is read verbatim.
var rawGroups = map[string]Kind{
	"\\text":         TokText,
	"\\textrm":       TokText,
	"\\mbox":         TokText,
	"\\operatorname": TokVar,
	"\\mathrm":       TokVar,
	"\\type":         TokType,
}

// unicodeLatex canonicalizes math code points to LaTeX spellings.
var unicodeLatex = map[rune]string{
	'×': "\\times", '·': "\\cdot", '⋅': "\\cdot", '÷': "\\div",
	'−': "-", '–': "-", '±': "\\pm", '∓': "\\mp",
	'≠': "\\ne", '≈': "\\approx", '≤': "\\le", '≥': "\\ge", '≯': "\\ngtr", '≮': "\\nless",
	'⊂': "\\subset", '⊆': "\\subseteq", '⊃': "\\supset", '⊇': "\\supseteq",
	'∈': "\\in", '∉': "\\notin", '∋': "\\ni", '∼': "\\sim", '≅': "\\cong",
	'∥': "\\parallel", '∦': "\\nparallel", '⊥': "\\perp", '∝': "\\propto",
	'→': "\\rightarrow", '←': "\\leftarrow", '↔': "\\leftrightarrow",
	'⇒': "\\Rightarrow", '⇐': "\\Leftarrow", '⇔': "\\Leftrightarrow", '↦': "\\mapsto",
	'∪': "\\cup", '∩': "\\cap", '∖': "\\setminus", '∧': "\\wedge", '∨': "\\vee", '¬': "\\neg",
	'∫': "\\int", '∑': "\\sum", '∏': "\\prod", '√': "\\sqrt", '∞': "\\infty", '°': "\\degree",
	'π': "\\pi", 'θ': "\\theta", 'α': "\\alpha", 'β': "\\beta", 'γ': "\\gamma",
	'δ': "\\delta", 'Δ': "\\Delta", 'λ': "\\lambda", 'μ': "\\mu", 'σ': "\\sigma",
	'Σ': "\\Sigma", 'φ': "\\phi", 'ω': "\\omega", 'Ω': "\\Omega", 'ε': "\\epsilon",
	'′': "'", '’': "'",
	'²': "^2", '³': "^3",
}

// invisible code points collapse to a single space.
var invisible = map[rune]bool{
	'\u200B': true, '\u2060': true, '\uFEFF': true, '\u00A0': true,
	'\u2061': true, '\u2062': true, '\u2063': true, '\u2064': true,
	'~': true,
}

// functionOps maps function tokens to their operators.
var functionOps = map[Kind]ast.Op{
	TokSin: ast.OpSin, TokCos: ast.OpCos, TokTan: ast.OpTan,
	TokSec: ast.OpSec, TokCsc: ast.OpCsc, TokCot: ast.OpCot,
	TokArcsin: ast.OpArcsin, TokArccos: ast.OpArccos, TokArctan: ast.OpArctan,
	TokArcsec: ast.OpArcsec, TokArccsc: ast.OpArccsc, TokArccot: ast.OpArccot,
	TokSinh: ast.OpSinh, TokCosh: ast.OpCosh, TokTanh: ast.OpTanh,
	TokSech: ast.OpSech, TokCsch: ast.OpCsch, TokCoth: ast.OpCoth,
	TokArcsinh: ast.OpArcsinh, TokArccosh: ast.OpArccosh, TokArctanh: ast.OpArctanh,
	TokArcsech: ast.OpArcsech, TokArccsch: ast.OpArccsch, TokArccoth: ast.OpArccoth,
	TokLn: ast.OpLn, TokExp: ast.OpExp,
}

var implyOps = map[Kind]ast.Op{
	TokRightArrow:     ast.OpRightArrow,
	TokLeftArrow:      ast.OpLeftArrow,
	TokLeftRightArrow: ast.OpLeftRightArrow,
	TokImplies:        ast.OpImplies,
	TokImpliedBy:      ast.OpImpliedBy,
	TokIff:            ast.OpIff,
	TokMapsTo:         ast.OpMapsTo,
}

var equalOps = map[Kind]ast.Op{
	TokEql:    ast.OpEql,
	TokNe:     ast.OpNe,
	TokApprox: ast.OpApprox,
}

var relationalOps = map[Kind]ast.Op{
	TokLt: ast.OpLt, TokGt: ast.OpGt, TokLe: ast.OpLe, TokGe: ast.OpGe,
	TokNgtr: ast.OpNgtr, TokNless: ast.OpNless,
	TokSubset: ast.OpSubset, TokSubsetEq: ast.OpSubsetEq,
	TokSupset: ast.OpSupset, TokSupsetEq: ast.OpSupsetEq,
	TokIn: ast.OpIn, TokNotIn: ast.OpNotIn, TokNi: ast.OpNi,
	TokSim: ast.OpSim, TokCong: ast.OpCong,
	TokParallel: ast.OpParallel, TokNParallel: ast.OpNParallel,
	TokPerp: ast.OpPerp, TokPropto: ast.OpPropto,
	TokColon: ast.OpColon,
}

var additiveOps = map[Kind]ast.Op{
	TokAdd: ast.OpAdd, TokSub: ast.OpSub, TokPM: ast.OpPM, TokMP: ast.OpMP,
	TokCup: ast.OpCup, TokCap: ast.OpCap, TokSetMinus: ast.OpSetMinus,
	TokWedge: ast.OpAnd, TokVee: ast.OpOr,
}

var multiplicativeOps = map[Kind]ast.Op{
	TokMul:   ast.OpMul,
	TokTimes: ast.OpTimes,
	TokCdot:  ast.OpCdot,
	TokDiv:   ast.OpDiv,
}

var decorations = map[Kind]ast.Op{
	TokVec:       ast.OpVec,
	TokOverline:  ast.OpOverline,
	TokDotAccent: ast.OpDot,
	TokHat:       ast.OpHat,
	TokBold:      ast.OpBold,
}
