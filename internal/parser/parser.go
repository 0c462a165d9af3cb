package parser

import (
	"strconv"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/types"
)

// Config controls one parse.
type Config struct {
	Options *types.Options
	Env     *env.Env
	// Patterns enables the wildcard ? and :{N}/:{V} shorthands.
	Patterns bool
	Budget   *diag.Budget
}

// Parser is a recursive-descent parser over the precedence levels
//
//	comma, implies, equal, relational, additive, multiplicative,
//	fraction, subscript, unary, postfix, exponential, primary
//
// from loosest to tightest binding.
type Parser struct {
	sc     *scanner
	tok    token
	buf    []token
	opts   *types.Options
	env    *env.Env
	budget *diag.Budget

	absDepth      int
	bracketDepth  int
	integralDepth int
}

// Parse parses src into a tree, returning a *diag.Error on failure.
func Parse(src string, cfg Config) (n *ast.Node, err error) {
	defer diag.Catch(&err)
	return MustParse(src, cfg), nil
}

// MustParse is Parse for callers that already run under diag.Catch.
func MustParse(src string, cfg Config) *ast.Node {
	p := newParser(src, cfg)
	if p.tok.kind == TokEOF {
		if p.opts.Strict {
			p.fail("expression")
		}
		return ast.None()
	}
	n := p.commaExpr()
	if p.tok.kind != TokEOF {
		diag.Fail(diag.KindSyntax, diag.CodeExtraInput, p.tok.pos, p.tok)
	}
	return n
}

func newParser(src string, cfg Config) *Parser {
	opts := cfg.Options
	if opts == nil {
		opts = types.Default()
	}
	e := cfg.Env
	if e == nil {
		e = env.Builtin()
	}
	p := &Parser{
		opts:   opts,
		env:    e,
		budget: cfg.Budget,
	}
	p.sc = newScanner(src, opts, e.Identifiers(), cfg.Patterns)
	p.tok = p.sc.next()
	return p
}

func (p *Parser) step() {
	p.budget.Step()
}

// advance consumes the current token and returns it.
func (p *Parser) advance() token {
	prev := p.tok
	if n := len(p.buf); n > 0 {
		p.tok = p.buf[n-1]
		p.buf = p.buf[:n-1]
	} else {
		p.tok = p.sc.next()
	}
	return prev
}

// pushBack makes t the current token, keeping the old one queued.
func (p *Parser) pushBack(t token) {
	p.buf = append(p.buf, p.tok)
	p.tok = t
}

func (p *Parser) fail(expected string) {
	diag.Fail(diag.KindSyntax, diag.CodeExpected, p.tok.pos, expected, p.tok)
}

func (p *Parser) expect(k Kind) token {
	if p.tok.kind != k {
		p.fail(k.String())
	}
	return p.advance()
}

func (p *Parser) commaExpr() *ast.Node {
	first := p.impliesExpr()
	if p.tok.kind != TokComma {
		return first
	}
	args := []*ast.Node{first}
	for p.tok.kind == TokComma {
		p.step()
		p.advance()
		args = append(args, p.impliesExpr())
	}
	return ast.New(ast.OpComma, args...)
}

func (p *Parser) impliesExpr() *ast.Node {
	expr := p.equalExpr()
	for {
		op, ok := implyOps[p.tok.kind]
		if !ok {
			return expr
		}
		p.step()
		p.advance()
		expr = ast.New(op, expr, p.equalExpr())
	}
}

func (p *Parser) equalExpr() *ast.Node {
	return p.chain(equalOps, p.relationalExpr)
}

func (p *Parser) relationalExpr() *ast.Node {
	return p.chain(relationalOps, p.additiveExpr)
}

// chain parses a run of comparisons. More than one comparison becomes a
// COMMA of pairwise comparisons, each with its own copy of the shared
// operand.
func (p *Parser) chain(ops map[Kind]ast.Op, operand func() *ast.Node) *ast.Node {
	first := operand()
	lhs := first
	var pairs []*ast.Node
	for {
		op, ok := ops[p.tok.kind]
		if !ok {
			break
		}
		p.step()
		p.advance()
		rhs := operand()
		left := lhs
		if len(pairs) > 0 {
			left = ast.Clone(lhs)
		}
		pairs = append(pairs, ast.New(op, left, rhs))
		lhs = rhs
	}
	switch len(pairs) {
	case 0:
		return first
	case 1:
		return pairs[0]
	}
	return ast.New(ast.OpComma, pairs...)
}

func (p *Parser) additiveExpr() *ast.Node {
	expr := p.multiplicativeExpr()
	for {
		op, ok := additiveOps[p.tok.kind]
		if !ok {
			return expr
		}
		p.step()
		p.advance()
		rhs := p.multiplicativeExpr()
		if op == ast.OpAdd && expr.Op == ast.OpAdd && !expr.IsMixedNumber {
			expr.Args = append(expr.Args, rhs)
			continue
		}
		expr = ast.New(op, expr, rhs)
	}
}

func (p *Parser) multiplicativeExpr() *ast.Node {
	expr := p.fractionExpr()
	for {
		p.step()
		if op, ok := multiplicativeOps[p.tok.kind]; ok {
			p.advance()
			rhs := p.fractionExpr()
			if op == ast.OpTimes || op == ast.OpCdot {
				if isMantissa(expr) && isPowerOfTen(rhs) {
					n := ast.New(op, expr, rhs)
					n.IsScientific = true
					expr = n
					continue
				}
			}
			expr = appendMul(op, expr, rhs, false)
			continue
		}
		if !p.startsImplicit(p.tok.kind) {
			return expr
		}
		before := p.tok.pos
		expr = p.implicitMul(expr)
		diag.Assert(p.tok.pos != before || p.tok.kind == TokEOF, diag.KindInternal, diag.CodeInternal, before, "implicit multiplication did not advance")
	}
}

// startsImplicit reports whether k can begin the right operand of an
// implicit multiplication.
func (p *Parser) startsImplicit(k Kind) bool {
	switch k {
	case TokNum, TokVar, TokText, TokType, TokWildcard,
		TokLeftParen, TokLeftSet, TokLeftBrace, TokLeft, TokBegin,
		TokFrac, TokBinom, TokSqrt, TokOverset, TokUnderset,
		TokInt, TokSum, TokProd, TokLim, TokLog:
		return true
	case TokLeftBracket:
		return p.bracketDepth == 0
	case TokPipe:
		return p.absDepth == 0
	}
	if _, ok := functionOps[k]; ok {
		return true
	}
	_, ok := decorations[k]
	return ok
}

func (p *Parser) implicitMul(lhs *ast.Node) *ast.Node {
	pos := p.tok.pos
	switch {
	case p.tok.kind == TokNum && isNumeral(lhs):
		rhs := p.fractionExpr()
		if isIntegral(lhs) && rhs.Op == ast.OpFrac && rhs.IsFraction {
			return mixedNumber(lhs, rhs)
		}
		diag.Fail(diag.KindSyntax, diag.CodeAdjacentNumbers, pos)

	case p.tok.kind == TokFrac && isIntegral(lhs):
		rhs := p.fractionExpr()
		if rhs.Op == ast.OpFrac && rhs.IsFraction {
			return mixedNumber(lhs, rhs)
		}
		return appendMul(ast.OpMul, lhs, rhs, true)

	case p.tok.kind == TokOverline && isDecimal(lhs):
		rhs := p.fractionExpr()
		if rhs.Op == ast.OpOverline && rhs.Args[0].Op == ast.OpNum {
			n := ast.New(ast.OpMul, lhs, rhs)
			n.IsRepeating = true
			n.IsImplicit = true
			n.NumberFormat = ast.FormatDecimal
			return n
		}
		return appendMul(ast.OpMul, lhs, rhs, true)

	case p.tok.kind == TokLeftParen && p.opts.Chemistry && lhs.Op == ast.OpVar:
		rhs := p.group()
		if rhs.Op == ast.OpParen {
			return ast.New(ast.OpApply, lhs, rhs.Args[0])
		}
		return appendMul(ast.OpMul, lhs, rhs, true)
	}

	rhs := p.fractionExpr()
	if deg, ok := p.polyFactor(rhs); ok {
		if lhs.IsPolynomialTerm {
			lhs.Args = append(lhs.Args, rhs)
			lhs.IsPolynomial += deg
			return lhs
		}
		if isNumeral(lhs) {
			n := ast.New(ast.OpMul, lhs, rhs)
			n.IsImplicit = true
			n.IsPolynomialTerm = true
			n.IsPolynomial = deg
			return n
		}
	}
	return appendMul(ast.OpMul, lhs, rhs, true)
}

func appendMul(op ast.Op, lhs, rhs *ast.Node, implicit bool) *ast.Node {
	if lhs.Op == op && lhs.IsImplicit == implicit &&
		!lhs.IsLiteralComposite() && !lhs.IsPolynomialTerm {
		lhs.Args = append(lhs.Args, rhs)
		return lhs
	}
	n := ast.New(op, lhs, rhs)
	n.IsImplicit = implicit
	return n
}

func mixedNumber(whole, frac *ast.Node) *ast.Node {
	var n *ast.Node
	if whole.Op == ast.OpMinus {
		n = ast.New(ast.OpAdd, whole, ast.New(ast.OpMinus, frac))
	} else {
		n = ast.New(ast.OpAdd, whole, frac)
	}
	n.IsMixedNumber = true
	return n
}

// isNumeral reports a bare or negated numeric literal.
func isNumeral(n *ast.Node) bool {
	if n.Op == ast.OpMinus {
		n = n.Args[0]
	}
	return n.Op == ast.OpNum
}

func isIntegral(n *ast.Node) bool {
	if n.Op == ast.OpMinus {
		n = n.Args[0]
	}
	return n.IsInteger()
}

func isDecimal(n *ast.Node) bool {
	return n.Op == ast.OpNum && n.NumberFormat == ast.FormatDecimal
}

// isMantissa reports a literal with a single non-zero integer digit.
func isMantissa(n *ast.Node) bool {
	if n.Op == ast.OpMinus {
		n = n.Args[0]
	}
	if n.Op != ast.OpNum {
		return false
	}
	v := n.Value
	return len(v) > 0 && v[0] >= '1' && v[0] <= '9' && (len(v) == 1 || v[1] == '.')
}

func isPowerOfTen(n *ast.Node) bool {
	if n.Op != ast.OpPow || n.Args[0].Op != ast.OpNum || n.Args[0].Value != "10" {
		return false
	}
	return isIntegral(n.Args[1])
}

// polyFactor reports whether n is a variable or an integer power of one,
// with its degree.
func (p *Parser) polyFactor(n *ast.Node) (int, bool) {
	switch n.Op {
	case ast.OpVar:
		if p.integralDepth > 0 && n.Value == "d" {
			return 0, false
		}
		if sym, ok := p.env.Lookup(n.Value); ok && sym.Type != env.SymbolVar {
			return 0, false
		}
		return 1, true
	case ast.OpPow:
		if _, ok := p.polyFactor(n.Args[0]); !ok || n.Args[0].Op != ast.OpVar {
			return 0, false
		}
		if !n.Args[1].IsInteger() {
			return 0, false
		}
		d, err := strconv.Atoi(n.Args[1].Value)
		if err != nil {
			return 0, false
		}
		return d, true
	}
	return 0, false
}

func (p *Parser) fractionExpr() *ast.Node {
	expr := p.subscriptExpr()
	for p.tok.kind == TokSlash {
		p.step()
		p.advance()
		rhs := p.subscriptExpr()
		n := ast.New(ast.OpFrac, expr, rhs)
		n.IsFraction = expr.IsInteger() && rhs.IsInteger()
		expr = n
	}
	return expr
}

func (p *Parser) subscriptExpr() *ast.Node {
	expr := p.unaryExpr()
	for p.tok.kind == TokUnderscore {
		p.step()
		p.advance()
		expr = ast.New(ast.OpSubscript, expr, p.scriptArg())
	}
	return expr
}

func (p *Parser) unaryExpr() *ast.Node {
	var op ast.Op
	switch p.tok.kind {
	case TokSub:
		op = ast.OpMinus
	case TokAdd:
		op = ast.OpPlus
	case TokPM:
		op = ast.OpPMSign
	case TokNot:
		op = ast.OpNot
	default:
		return p.postfixExpr()
	}
	p.step()
	p.advance()
	return ast.New(op, p.unaryExpr())
}

func (p *Parser) postfixExpr() *ast.Node {
	expr := p.exponentialExpr()
	for {
		var op ast.Op
		switch p.tok.kind {
		case TokBang:
			op = ast.OpFact
		case TokPercent:
			op = ast.OpPercent
		case TokPrime:
			op = ast.OpPrime
		case TokDegree:
			op = ast.OpDegree
		default:
			return expr
		}
		p.step()
		p.advance()
		expr = ast.New(op, expr)
	}
}

// exponentialExpr parses right-associative powers. An exponent of \circ
// marks degrees.
func (p *Parser) exponentialExpr() *ast.Node {
	base := p.primaryExpr()
	var exps []*ast.Node
	for p.tok.kind == TokCaret {
		p.step()
		p.advance()
		e := p.scriptArg()
		if e.Op == ast.OpVar && e.Value == "\\circ" && len(exps) == 0 {
			base = ast.New(ast.OpDegree, base)
			continue
		}
		exps = append(exps, e)
	}
	if len(exps) == 0 {
		return base
	}
	e := exps[len(exps)-1]
	for i := len(exps) - 2; i >= 0; i-- {
		e = ast.New(ast.OpPow, exps[i], e)
	}
	return ast.New(ast.OpPow, base, e)
}

// scriptArg parses a sub/superscript or command argument: a braced group,
// or a single token. Multi-digit numbers contribute only their first digit.
func (p *Parser) scriptArg() *ast.Node {
	switch p.tok.kind {
	case TokLeftBrace:
		return p.braceGroup()
	case TokNum:
		t := p.advance()
		r := []rune(t.lexeme)
		if len(r) > 1 && isDigit(r[0]) {
			p.pushBack(token{kind: TokNum, lexeme: string(r[1:]), pos: t.pos + 1})
			return ast.Num(string(r[:1]))
		}
		return ast.Num(t.lexeme)
	case TokSub:
		p.step()
		p.advance()
		return ast.New(ast.OpMinus, p.scriptArg())
	}
	return p.primaryExpr()
}

func (p *Parser) primaryExpr() *ast.Node {
	p.step()
	t := p.tok
	var n *ast.Node
	switch t.kind {
	case TokNum:
		p.advance()
		n = ast.Num(t.lexeme)
	case TokVar:
		p.advance()
		n = ast.Var(t.lexeme)
	case TokText:
		p.advance()
		n = ast.Leaf(ast.OpText, t.lexeme)
	case TokType:
		p.advance()
		n = ast.Leaf(ast.OpType, t.lexeme)
	case TokWildcard:
		p.advance()
		n = ast.Leaf(ast.OpWildcard, "?")
	case TokCirc:
		p.advance()
		n = ast.Var("\\circ")
	case TokLeftParen, TokLeftBracket, TokLeftSet:
		n = p.group()
	case TokRightBracket:
		if p.bracketDepth > 0 {
			return p.missing()
		}
		n = p.group()
	case TokLeftBrace:
		n = p.braceGroup()
	case TokPipe:
		if p.absDepth > 0 {
			return p.missing()
		}
		n = p.absGroup()
	case TokLeft:
		n = p.leftRight()
	case TokFrac:
		n = p.frac()
	case TokBinom:
		p.advance()
		n = ast.New(ast.OpBinom, p.scriptArg(), p.scriptArg())
		n.IsBinomial = true
	case TokSqrt:
		n = p.sqrt()
	case TokOverset, TokUnderset:
		p.advance()
		op := ast.OpOverset
		if t.kind == TokUnderset {
			op = ast.OpUnderset
		}
		n = ast.New(op, p.scriptArg(), p.scriptArg())
	case TokInt:
		n = p.integral()
	case TokSum, TokProd:
		n = p.bigOperator()
	case TokLim:
		n = p.limit()
	case TokBegin:
		n = p.matrix()
	default:
		if op, ok := decorations[t.kind]; ok {
			p.advance()
			n = ast.New(op, p.scriptArg())
			break
		}
		if _, ok := functionOps[t.kind]; ok || t.kind == TokLog {
			n = p.function()
			break
		}
		return p.missing()
	}

	for p.tok.kind == TokUnderscore {
		p.step()
		p.advance()
		n = ast.New(ast.OpSubscript, n, p.scriptArg())
	}
	return n
}

// missing handles a token that cannot start an operand: an error in
// strict mode, otherwise an empty placeholder. The token is not consumed.
func (p *Parser) missing() *ast.Node {
	if p.opts.Strict {
		p.fail("expression")
	}
	return ast.None()
}

var closers = map[Kind][]Kind{
	TokLeftParen:    {TokRightParen, TokRightBracket},
	TokLeftBracket:  {TokRightBracket, TokRightParen, TokLeftBracket},
	TokRightBracket: {TokLeftBracket, TokRightBracket},
	TokLeftSet:      {TokRightSet},
}

func isCloser(k Kind) bool {
	switch k {
	case TokRightParen, TokRightBracket, TokRightSet, TokRightBrace, TokRight, TokEOF:
		return true
	}
	return false
}

func (p *Parser) group() *ast.Node {
	open := p.advance()
	p.bracketDepth++
	defer func() { p.bracketDepth-- }()

	inner := ast.None()
	if !isCloser(p.tok.kind) {
		inner = p.commaExpr()
	}
	close := p.tok
	accepted := false
	for _, k := range closers[open.kind] {
		if close.kind == k {
			accepted = true
		}
	}
	if !accepted {
		p.fail(closers[open.kind][0].String())
	}
	p.advance()
	return p.bracketNode(open.kind.String(), close.kind.String(), inner, open.pos)
}

func (p *Parser) braceGroup() *ast.Node {
	p.advance()
	if p.tok.kind == TokRightBrace {
		p.advance()
		return ast.None()
	}
	saved := p.absDepth
	p.absDepth = 0
	inner := p.commaExpr()
	p.absDepth = saved
	p.expect(TokRightBrace)
	return inner
}

func (p *Parser) absGroup() *ast.Node {
	open := p.advance()
	p.absDepth++
	inner := p.commaExpr()
	p.absDepth--
	p.expect(TokPipe)
	return p.bracketNode("|", "|", inner, open.pos)
}

var leftDelims = map[Kind]string{
	TokLeftParen:    "(",
	TokRightParen:   ")",
	TokLeftBracket:  "[",
	TokRightBracket: "]",
	TokLeftSet:      "\\{",
	TokRightSet:     "\\}",
	TokPipe:         "|",
	TokDot:          ".",
}

func (p *Parser) delimiter() string {
	d, ok := leftDelims[p.tok.kind]
	if !ok {
		p.fail("delimiter")
	}
	p.advance()
	return d
}

func (p *Parser) leftRight() *ast.Node {
	open := p.advance()
	l := p.delimiter()

	savedAbs, savedBracket := p.absDepth, p.bracketDepth
	p.absDepth, p.bracketDepth = 0, 0
	inner := ast.None()
	if p.tok.kind != TokRight {
		inner = p.commaExpr()
	}
	p.absDepth, p.bracketDepth = savedAbs, savedBracket

	p.expect(TokRight)
	r := p.delimiter()
	return p.bracketNode(l, r, inner, open.pos)
}

// bracketNode classifies an open/close glyph pair. Reversed French-style
// brackets denote open ends.
func (p *Parser) bracketNode(l, r string, inner *ast.Node, pos int) *ast.Node {
	var op ast.Op
	switch {
	case l == "(" && r == ")":
		op = ast.OpParen
	case l == "\\{" && r == "\\}":
		op = ast.OpSet
	case l == "|" && r == "|":
		op = ast.OpAbs
	case l == "[" && r == "]":
		op = ast.OpBracket
		if p.opts.AllowInterval && isPair(inner) {
			op = ast.OpInterval
		}
	case l == "(" && r == "]", l == "]" && r == "]":
		op = ast.OpIntervalLeftOpen
	case l == "[" && r == ")", l == "[" && r == "[":
		op = ast.OpIntervalRightOpen
	case l == "]" && r == "[":
		op = ast.OpIntervalOpen
	case l == "." || r == ".":
		op = ast.OpParen
	default:
		diag.Fail(diag.KindSyntax, diag.CodeMismatchedBrackets, pos, l, r)
	}

	var n *ast.Node
	switch op {
	case ast.OpInterval, ast.OpIntervalOpen, ast.OpIntervalLeftOpen, ast.OpIntervalRightOpen:
		if !p.opts.AllowInterval || !isPair(inner) {
			diag.Fail(diag.KindSyntax, diag.CodeMismatchedBrackets, pos, l, r)
		}
		n = ast.New(op, inner.Args[0], inner.Args[1])
	default:
		n = ast.New(op, inner)
	}
	n.Lbrk, n.Rbrk = l, r
	return n
}

func isPair(n *ast.Node) bool {
	return n.Op == ast.OpComma && len(n.Args) == 2
}

func (p *Parser) frac() *ast.Node {
	p.advance()
	num := p.scriptArg()
	den := p.scriptArg()

	if v, ok := differential(den); ok {
		switch {
		case num.Op == ast.OpVar && num.Value == "d":
			body := p.multiplicativeExpr()
			return ast.New(ast.OpDeriv, body, v)
		case num.Op == ast.OpMul && len(num.Args) >= 2 && isD(num.Args[0]):
			var body *ast.Node
			if len(num.Args) == 2 {
				body = num.Args[1]
			} else {
				body = ast.New(ast.OpMul, num.Args[1:]...)
				body.IsImplicit = true
			}
			return ast.New(ast.OpDeriv, body, v)
		}
	}

	n := ast.New(ast.OpFrac, num, den)
	n.IsFraction = num.IsInteger() && den.IsInteger()
	return n
}

func isD(n *ast.Node) bool {
	return n.Op == ast.OpVar && n.Value == "d"
}

// differential recognizes "dx" and returns the variable.
func differential(n *ast.Node) (*ast.Node, bool) {
	if n.Op == ast.OpMul && len(n.Args) == 2 && isD(n.Args[0]) && n.Args[1].Op == ast.OpVar {
		return n.Args[1], true
	}
	return nil, false
}

func (p *Parser) sqrt() *ast.Node {
	p.advance()
	if p.tok.kind == TokLeftBracket {
		p.advance()
		p.bracketDepth++
		index := p.commaExpr()
		p.bracketDepth--
		p.expect(TokRightBracket)
		return ast.New(ast.OpNthRoot, index, p.scriptArg())
	}
	return ast.New(ast.OpSqrt, p.scriptArg())
}

func (p *Parser) function() *ast.Node {
	t := p.advance()
	isLog := t.kind == TokLog
	op := functionOps[t.kind]

	var base, exp *ast.Node
	for {
		if p.tok.kind == TokUnderscore && isLog && base == nil {
			p.advance()
			base = p.scriptArg()
			continue
		}
		if p.tok.kind == TokCaret && exp == nil {
			p.advance()
			exp = p.scriptArg()
			continue
		}
		break
	}

	if exp != nil && !isLog && isMinusOne(exp) {
		if inv, ok := op.Inverse(); ok {
			op = inv
			exp = nil
		}
	}

	arg := p.functionArg()
	var n *ast.Node
	if isLog {
		if base == nil {
			base = ast.Num("10")
		}
		n = ast.New(ast.OpLog, base, arg)
	} else {
		n = ast.New(op, arg)
	}
	if exp != nil {
		n = ast.New(ast.OpPow, n, exp)
	}
	return n
}

func isMinusOne(n *ast.Node) bool {
	return n.Op == ast.OpMinus && n.Args[0].Op == ast.OpNum && n.Args[0].Value == "1"
}

// functionArg takes a bracketed group's content, or one multiplicative
// expression.
func (p *Parser) functionArg() *ast.Node {
	switch p.tok.kind {
	case TokLeftParen, TokLeftBracket:
		g := p.group()
		if g.Op == ast.OpParen || g.Op == ast.OpBracket {
			return g.Args[0]
		}
		return g
	case TokLeftBrace:
		return p.braceGroup()
	case TokLeft:
		g := p.leftRight()
		if g.Op == ast.OpParen || g.Op == ast.OpBracket {
			return g.Args[0]
		}
		return g
	}
	return p.multiplicativeExpr()
}

// limits parses optional _lower and ^upper scripts in either order.
func (p *Parser) limits() (lower, upper *ast.Node) {
	lower, upper = ast.None(), ast.None()
	for i := 0; i < 2; i++ {
		switch p.tok.kind {
		case TokUnderscore:
			p.advance()
			lower = p.scriptArg()
		case TokCaret:
			p.advance()
			upper = p.scriptArg()
		default:
			return lower, upper
		}
	}
	return lower, upper
}

func (p *Parser) integral() *ast.Node {
	p.advance()
	lower, upper := p.limits()
	p.integralDepth++
	body := p.additiveExpr()
	p.integralDepth--

	s := stripDifferential(body)
	in := ast.New(ast.OpIntegral, lower, upper, s.body, s.variable)
	if len(s.rest) == 0 {
		return in
	}
	n := ast.New(s.op, append([]*ast.Node{in}, s.rest...)...)
	n.IsImplicit = s.op == ast.OpMul
	return n
}

// stripped is an integrand with its differential removed. Terms that
// followed the differential stay outside the integral, joined by op.
type stripped struct {
	body     *ast.Node
	variable *ast.Node
	op       ast.Op
	rest     []*ast.Node
}

func stripDifferential(n *ast.Node) stripped {
	if s, ok := strip(n); ok {
		return s
	}
	return stripped{body: n, variable: ast.None()}
}

// strip finds the first d<var> pair, looking through products, sums,
// function arguments and fraction numerators.
func strip(n *ast.Node) (stripped, bool) {
	switch {
	case n.Op == ast.OpMul:
		for i := 0; i+1 < len(n.Args); i++ {
			if isD(n.Args[i]) && n.Args[i+1].Op == ast.OpVar {
				return stripped{
					body:     product(n, n.Args[:i]),
					variable: n.Args[i+1],
					op:       ast.OpMul,
					rest:     n.Args[i+2:],
				}, true
			}
		}
		return stripArg(n, 0, len(n.Args))

	case n.Op == ast.OpAdd || n.Op == ast.OpSub:
		for i, a := range n.Args {
			s, ok := strip(a)
			if !ok || len(s.rest) > 0 {
				continue
			}
			args := append(append([]*ast.Node{}, n.Args[:i]...), s.body)
			body := args[0]
			if len(args) > 1 {
				body = ast.New(n.Op, args...)
			}
			return stripped{body: body, variable: s.variable, op: n.Op, rest: n.Args[i+1:]}, true
		}

	case n.Op.IsFunction() || n.Op == ast.OpLog:
		last := len(n.Args) - 1
		return stripArg(n, last, last+1)

	case n.Op == ast.OpFrac:
		s, ok := stripArg(n, 0, 1)
		if ok {
			s.body.IsFraction = s.body.Args[0].IsInteger() && s.body.Args[1].IsInteger()
		}
		return s, ok
	}
	return stripped{}, false
}

// stripArg strips the differential from one of n.Args[from:to] and
// rebuilds n around the result.
func stripArg(n *ast.Node, from, to int) (stripped, bool) {
	for i := from; i < to; i++ {
		s, ok := strip(n.Args[i])
		if !ok || len(s.rest) > 0 {
			continue
		}
		c := *n
		c.Args = append([]*ast.Node{}, n.Args...)
		c.Args[i] = s.body
		return stripped{body: &c, variable: s.variable}, true
	}
	return stripped{}, false
}

func product(n *ast.Node, args []*ast.Node) *ast.Node {
	switch len(args) {
	case 0:
		return ast.Num("1")
	case 1:
		return args[0]
	}
	m := ast.New(ast.OpMul, args...)
	m.IsImplicit = n.IsImplicit
	return m
}

func (p *Parser) bigOperator() *ast.Node {
	t := p.advance()
	op := ast.OpSum
	if t.kind == TokProd {
		op = ast.OpProd
	}
	lower, upper := p.limits()
	return ast.New(op, lower, upper, p.multiplicativeExpr())
}

func (p *Parser) limit() *ast.Node {
	p.advance()
	sub := ast.None()
	if p.tok.kind == TokUnderscore {
		p.advance()
		sub = p.scriptArg()
	}
	return ast.New(ast.OpLim, sub, p.multiplicativeExpr())
}

var matrixDelims = map[string][2]string{
	"matrix":      {"", ""},
	"smallmatrix": {"", ""},
	"array":       {"", ""},
	"pmatrix":     {"(", ")"},
	"bmatrix":     {"[", "]"},
	"Bmatrix":     {"\\{", "\\}"},
	"vmatrix":     {"|", "|"},
	"Vmatrix":     {"\\|", "\\|"},
}

func (p *Parser) matrix() *ast.Node {
	begin := p.advance()
	delims, ok := matrixDelims[begin.lexeme]
	if !ok {
		diag.Fail(diag.KindSyntax, diag.CodeUnknownEnvironment, begin.pos, begin.lexeme)
	}
	if begin.lexeme == "array" && p.tok.kind == TokLeftBrace {
		for p.tok.kind != TokRightBrace && p.tok.kind != TokEOF {
			p.step()
			p.advance()
		}
		p.expect(TokRightBrace)
	}

	savedAbs, savedBracket := p.absDepth, p.bracketDepth
	p.absDepth, p.bracketDepth = 0, 0
	defer func() { p.absDepth, p.bracketDepth = savedAbs, savedBracket }()

	var rows [][]*ast.Node
	for {
		var cells []*ast.Node
		for {
			p.step()
			cell := ast.None()
			switch p.tok.kind {
			case TokAmp, TokNewRow, TokEnd:
			default:
				cell = p.commaExpr()
			}
			cells = append(cells, cell)
			if p.tok.kind != TokAmp {
				break
			}
			p.advance()
		}
		rows = append(rows, cells)
		if p.tok.kind != TokNewRow {
			break
		}
		p.advance()
		if p.tok.kind == TokEnd {
			break
		}
	}

	end := p.expect(TokEnd)
	if end.lexeme != begin.lexeme {
		diag.Fail(diag.KindSyntax, diag.CodeExpected, end.pos, "\\end{"+begin.lexeme+"}", "\\end{"+end.lexeme+"}")
	}

	cols := make([]*ast.Node, len(rows))
	width := 0
	for i, cells := range rows {
		for j, c := range cells {
			c.M, c.N = i+1, j+1
		}
		if len(cells) > width {
			width = len(cells)
		}
		col := ast.New(ast.OpCol, cells...)
		col.M = i + 1
		cols[i] = col
	}
	m := ast.New(ast.OpMatrix, ast.New(ast.OpRow, cols...))
	m.M, m.N = len(rows), width
	m.Lbrk, m.Rbrk = delims[0], delims[1]
	return m
}
