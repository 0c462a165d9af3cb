package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/directive"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/parser"
	"github.com/gnolang/mtrans/internal/rules"
	"github.com/gnolang/mtrans/internal/types"
	"github.com/gnolang/mtrans/internal/visit"
)

type mockExpander struct {
	mock.Mock
}

func (m *mockExpander) Expand(c *directive.Call) (string, error) {
	args := m.Called(c.Name, c.Args, c.Config)
	return args.String(0), args.Error(1)
}

type setup struct {
	opts     *types.Options
	expander Expander
	budget   *diag.Budget
}

func run(t *testing.T, rs *rules.RuleSet, src string, s setup) (string, error) {
	t.Helper()
	if s.opts == nil {
		s.opts = types.Default()
	}
	tbl, err := rules.Compile(rs, rules.Config{Options: s.opts})
	require.NoError(t, err)
	n, err := parser.Parse(src, parser.Config{Options: s.opts})
	require.NoError(t, err, src)
	n = visit.NormalizeLiteral(n, s.opts)
	return New(Config{
		Table:    tbl,
		Options:  s.opts,
		Budget:   s.budget,
		Expander: s.expander,
	}).Translate(n)
}

func translate(t *testing.T, rs *rules.RuleSet, src string) string {
	t.Helper()
	out, err := run(t, rs, src, setup{})
	require.NoError(t, err)
	return out
}

func spokenRules() *rules.RuleSet {
	return rules.New().
		Word("1", "one").
		Word("2", "two").
		Type("numeric", "\\type{number}", "-\\type{number}").
		Add("-?", "(negative %1)").
		Add("\\type{numeric}+\\type{numeric}", "%1 plus %2").
		Add("\\type{numeric}", "(number %1)").
		Add("?", "{no match}")
}

func TestTranslateExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rs   *rules.RuleSet
		src  string
		want string
	}{
		{"spoken sum", spokenRules(), "-1 + 2", "(negative (number one)) plus (number two)"},
		{"currency", rules.New().Add("?", "$fmt{%1,$#,##0.00}"), "1234.56", "$1,234.56"},
		{
			"cell range",
			rules.New().
				Type("cellRange", "\\type{cellName}:\\type{cellName}").
				Add("\\type{cellRange}", "$range").
				Add("\\type{cellName}", "%1%2").
				Add("?", "%1"),
			"A1:A3",
			"A1,A2,A3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(t, tt.rs, tt.src))
		})
	}
}

func TestTranslateDeterministic(t *testing.T) {
	t.Parallel()

	want := translate(t, spokenRules(), "-1 + 2")
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, translate(t, spokenRules(), "-1 + 2"))
	}
}

func TestWildcardMatchesEverything(t *testing.T) {
	t.Parallel()

	rs := rules.New().Add("?", "hit")
	for _, src := range []string{
		"1", "x", "a+b", "\\frac12", "\\sin x", "[1, 2)", "\\int_0^1 x dx",
		"\\begin{matrix}1&2\\end{matrix}", "a<b<c", "{}", "3\\frac12", "\\text{hi}",
	} {
		assert.Equal(t, "hit", translate(t, rs, src), src)
	}
}

func TestNaryCollapse(t *testing.T) {
	t.Parallel()

	rs := rules.New().Add("?+?", "(%1 plus %2)").Add("?", "%1")
	assert.Equal(t, "(a plus (b plus c))", translate(t, rs, "a+b+c"))

	tbl, err := rules.Compile(rs, rules.Config{})
	require.NoError(t, err)
	n := parser.MustParse("a+b+c", parser.Config{})
	m := newMatcher(tbl, env.Builtin(), nil)
	require.True(t, m.match(tbl.Rules[0].Pattern, n))
	assert.Equal(t, "ADD(VAR(b),VAR(c))", m.tail(n).String())
	assert.Same(t, m.tail(n), m.tail(n))
}

func TestVariadic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tmpl string
		want string
	}{
		{"%*, ", "1, 2, 3"},
		{"%1: %*; ", "1: 2; 3"},
		{"%1 %2 %3 %*, ", "1 2 3"},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			rs := rules.New().Add("?,?", tt.tmpl).Add("?", "%1")
			assert.Equal(t, tt.want, translate(t, rs, "1, 2, 3"))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	words := rules.New().Word("3", "three").Word("1", "one").Word("4", "four")
	tests := []struct {
		name string
		rs   *rules.RuleSet
		src  string
		want string
	}{
		{"digit by digit", words.Add("\\type{decimal}", "%IP point %FP0"), "3.14", "three point one four"},
		{"fraction part", rules.New().Add("?", "%IP and %FP"), "3.14", "3 and 14"},
		{"integer parts", rules.New().Add("?", "[%IP|%FP]"), "7", "[7|]"},
		{"whole value", rules.New().Add("?", "<%%>"), "12", "<12>"},
		{"matrix dims", rules.New().Add("\\type{matrix}", "%M by %N"), "\\begin{matrix}1&2\\end{matrix}", "1 by 2"},
		{"literal percent", rules.New().Add("?", "100% sure %q"), "1", "100% sure %q"},
		{"repeated arg", rules.New().Add("?+?", "%1 %1 %2").Add("?", "%1"), "a+b", "a a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(t, tt.rs, tt.src))
		})
	}
}

func TestArgRules(t *testing.T) {
	t.Parallel()

	override := func(pattern, tmpl string) map[int][]rules.RuleDecl {
		return map[int][]rules.RuleDecl{1: {{Pattern: pattern, Templates: []rules.TemplateSpec{rules.T(tmpl)}}}}
	}

	rs := rules.New().
		AddSpec("?+?", rules.TemplateSpec{Str: "%1 plus %2", HasStr: true, ArgRules: override("?", "first(%1)")}).
		Add("?", "%1")
	assert.Equal(t, "first(a) plus b", translate(t, rs, "a+b"))

	rs = rules.New().
		AddSpec("?+?", rules.TemplateSpec{Str: "%1 plus %2", HasStr: true, ArgRules: override("x", "ex")}).
		Add("?", "%1")
	assert.Equal(t, "a plus b", translate(t, rs, "a+b"))
	assert.Equal(t, "ex plus b", translate(t, rs, "x+b"))
}

func TestInheritedString(t *testing.T) {
	t.Parallel()

	rs := rules.New().
		AddSpec("?+?",
			rules.TemplateSpec{ArgRules: map[int][]rules.RuleDecl{1: {{Pattern: "?", Templates: []rules.TemplateSpec{rules.T("one")}}}}},
			rules.T("%1 and %2"),
		).
		Add("?", "%1")
	assert.Equal(t, "one and b", translate(t, rs, "a+b"))
}

func TestContextFlags(t *testing.T) {
	t.Parallel()

	rs := rules.New().AddSpec("?",
		rules.TemplateSpec{Str: "bare", HasStr: true, Context: []string{"NoParens"}},
		rules.TemplateSpec{Str: "not at end", HasStr: true, Context: []string{"!EndRoot"}},
		rules.T("fallback"),
	)

	opts := types.Default()
	opts.NoParens = true
	out, err := run(t, rs, "x", setup{opts: opts})
	require.NoError(t, err)
	assert.Equal(t, "bare", out)

	opts = types.Default()
	out, err = run(t, rs, "x", setup{opts: opts})
	require.NoError(t, err)
	assert.Equal(t, "not at end", out)

	opts = types.Default()
	opts.EndRoot = true
	out, err = run(t, rs, "x", setup{opts: opts})
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
}

func TestNoRuleRendersEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", translate(t, rules.New().Add("x", "ex"), "y"))
	assert.Equal(t, "", translate(t, rules.New(), "1+2"))

	rs := rules.New().Add("?+?", "%1 plus %2 plus %3").Add("\\type{variable}", "%1")
	assert.Equal(t, "", translate(t, rs, "a+b"))
	assert.Equal(t, "a plus b plus d", translate(t, rs, "a+b+d"))
}

func TestDeclaredTypeShadowsBuiltin(t *testing.T) {
	t.Parallel()

	rs := rules.New().Type("number", "x").Add("\\type{number}", "N").Add("?", "%1")
	assert.Equal(t, "N", translate(t, rs, "x"))
	assert.Equal(t, "2", translate(t, rs, "2"))
}

func TestParameterizedTypes(t *testing.T) {
	t.Parallel()

	rs := rules.New().
		Add("\\type{integer,1}", "digit %1").
		Add("\\type{polynomial,>=2}", "higher").
		Add("?", "%1")
	assert.Equal(t, "digit 7", translate(t, rs, "7"))
	assert.Equal(t, "42", translate(t, rs, "42"))
	assert.Equal(t, "higher", translate(t, rs, "3x^2"))
}

func TestDirectiveCalls(t *testing.T) {
	t.Parallel()

	exp := &mockExpander{}
	exp.On("Expand", "add", []string{"1", "2"}, "").Return("3", nil).Once()
	exp.On("Expand", "fmt", []string{"1 and 2"}, "cfg{x}").Return("F", nil).Once()

	rs := rules.New().Add("?+?", "$add").Add("?", "%1")
	out, err := run(t, rs, "1+2", setup{expander: exp})
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	rs = rules.New().Add("?+?", "[$fmt{%1 and %2,cfg{x}}]").Add("?", "%1")
	out, err = run(t, rs, "1+2", setup{expander: exp})
	require.NoError(t, err)
	assert.Equal(t, "[F]", out)

	exp.AssertExpectations(t)
}

func TestUnknownDirectiveIsLiteral(t *testing.T) {
	t.Parallel()

	exp := &mockExpander{}
	out, err := run(t, rules.New().Add("?", "$5 and $foo %1"), "1", setup{expander: exp})
	require.NoError(t, err)
	assert.Equal(t, "$5 and $foo 1", out)
	exp.AssertNotCalled(t, "Expand", mock.Anything, mock.Anything, mock.Anything)
}

func TestDirectiveErrors(t *testing.T) {
	t.Parallel()

	exp := &mockExpander{}
	exp.On("Expand", "add", mock.Anything, "").Return("", errors.New("bad operand"))
	_, err := run(t, rules.New().Add("?", "$add"), "x", setup{expander: exp})
	require.Error(t, err)
	de := diag.As(err)
	assert.Equal(t, diag.KindConfig, de.Kind)
	assert.Equal(t, diag.CodeDirectiveFailed, de.Code)
	assert.Equal(t, "directive $add failed: bad operand", de.Message)

	exp = &mockExpander{}
	exp.On("Expand", "cell", mock.Anything, "").Return("", diag.New(diag.KindBudget, diag.CodeStuck, -1))
	_, err = run(t, rules.New().Add("?", "$cell"), "x", setup{expander: exp})
	require.Error(t, err)
	assert.Equal(t, diag.CodeStuck, diag.As(err).Code)
}

func TestDirectiveReceivesCallContext(t *testing.T) {
	t.Parallel()

	frame := env.Builtin().Derive()
	var got *directive.Call
	reg := directive.NewRegistry()
	require.NoError(t, reg.Register("cell", func(c *directive.Call) (string, error) {
		got = c
		return "ok", nil
	}))

	tbl, err := rules.Compile(rules.New().Add("?", "$cell"), rules.Config{})
	require.NoError(t, err)
	recurse := func(string, *env.Env) (string, error) { return "", nil }
	out, err := New(Config{Table: tbl, Env: frame, Expander: reg, Recurse: recurse}).Translate(ast.Var("x"))
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	require.NotNil(t, got)
	assert.Same(t, frame, got.Env)
	assert.NotNil(t, got.Translate)
	assert.NotNil(t, got.Options)
	assert.Equal(t, []string{"x"}, got.Args)
}

func TestBudget(t *testing.T) {
	t.Parallel()

	_, err := run(t, spokenRules(), "-1 + 2", setup{budget: diag.NewBudget(context.Background(), 5)})
	require.Error(t, err)
	assert.Equal(t, diag.KindBudget, diag.As(err).Kind)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := diag.NewBudget(ctx, 0)
	rs := rules.New().Add("?+?", "%1 %2").Add("?", "%1")
	_, err = run(t, rs, strings.Repeat("1+", 600)+"1", setup{budget: b})
	require.Error(t, err)
	assert.Equal(t, diag.CodeDeadline, diag.As(err).Code)
}

func TestFinish(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b", Finish("  a \n  b \\baseline"))
	assert.Equal(t, "x_{1}", Finish("x_{1}\\baseline"))
	assert.Equal(t, "", Finish(" \t "))
}
