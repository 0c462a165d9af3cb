package mtrans

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtrans/internal/diag"
)

const spokenRules = `
rules:
  "-?": ["(negative %1)"]
  "\\type{numeric}+\\type{numeric}": ["%1 plus %2"]
  "\\type{numeric}": ["(number %1)"]
  "?": ["{no match}"]
`

func spokenOptions() map[string]any {
	return map[string]any{
		"words": map[string]any{"1": "one", "2": "two"},
		"types": map[string]any{"numeric": []any{"\\type{number}", "-\\type{number}"}},
		"rules": spokenRules,
	}
}

func TestTranslateExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts map[string]any
		src  string
		want string
	}{
		{"spoken sum", spokenOptions(), "-1 + 2", "(negative (number one)) plus (number two)"},
		{
			"currency",
			map[string]any{"rules": NewRuleSet().Add("?", "$fmt{%1,$#,##0.00}")},
			"1234.56",
			"$1,234.56",
		},
		{
			"cell range",
			map[string]any{
				"types": map[string]any{"cellRange": []any{"\\type{cellName}:\\type{cellName}"}},
				"rules": NewRuleSet().
					Add("\\type{cellRange}", "$range").
					Add("\\type{cellName}", "%1%2").
					Add("?", "%1"),
			},
			"A1:A3",
			"A1,A2,A3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, out := Translate(tt.opts, tt.src)
			require.NotNil(t, errs)
			require.Empty(t, errs)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    map[string]any
		src     string
		kind    diag.Kind
		code    int
		message string
	}{
		{"adjacent numbers", nil, "1 2", diag.KindSyntax, diag.CodeAdjacentNumbers, "expecting an operator between numbers"},
		{"misplaced separator", nil, "12,34", diag.KindLexical, diag.CodeMisplacedSeparator, "misplaced thousands separator"},
		{"unknown option", map[string]any{"colour": true}, "1", diag.KindOption, diag.CodeUnknownOption, "unknown option colour"},
		{"bad option value", map[string]any{"decimalPlaces": "many"}, "1", diag.KindOption, diag.CodeInvalidOption, ""},
		{"unordered rules", map[string]any{"rules": map[string]any{"?": "%1"}}, "1", diag.KindOption, diag.CodeInvalidOption, ""},
		{"unknown type", map[string]any{"rules": NewRuleSet().Add("\\type{colour}", "%1")}, "1", diag.KindConfig, diag.CodeUnknownType, "unknown type colour"},
		{"budget", map[string]any{"maxSteps": 3}, "1+2+3+4", diag.KindBudget, diag.CodeStuck, "stuck in loop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, out := Translate(tt.opts, tt.src)
			assert.Empty(t, out)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.kind, errs[0].Kind)
			assert.Equal(t, tt.code, errs[0].Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errs[0].Message)
			}
		})
	}
}

func TestTranslateDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := "1"
	for i := 0; i < 800; i++ {
		src += "+1"
	}
	errs, _ := TranslateContext(ctx, map[string]any{"rules": NewRuleSet().Add("?+?", "%1 %2").Add("?", "%1")}, src)
	require.Len(t, errs, 1)
	assert.Equal(t, diag.CodeDeadline, errs[0].Code)
}

func TestTranslateDeterministic(t *testing.T) {
	t.Parallel()

	_, want := Translate(spokenOptions(), "-1 + 2")
	for i := 0; i < 10; i++ {
		_, got := Translate(spokenOptions(), "-1 + 2")
		assert.Equal(t, want, got)
	}
}

func TestTranslateConcurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	outs := make([]string, 16)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, outs[i] = Translate(spokenOptions(), "-1 + 2")
		}(i)
	}
	wg.Wait()
	for _, out := range outs {
		assert.Equal(t, "(negative (number one)) plus (number two)", out)
	}
}

func TestTranslateCellFormula(t *testing.T) {
	t.Parallel()

	opts := map[string]any{
		"env": map[string]any{"A1": "=B1+1", "B1": "41"},
		"rules": NewRuleSet().
			Add("\\type{cellName}", "$cell{%1%2}").
			Add("?+?", "$add").
			Add("?", "%1"),
	}
	errs, out := Translate(opts, "A1")
	require.Empty(t, errs)
	assert.Equal(t, "42", out)

	opts["env"] = map[string]any{"A1": "=1 2"}
	errs, _ = Translate(opts, "A1")
	require.Len(t, errs, 1)
	assert.Equal(t, diag.CodeAdjacentNumbers, errs[0].Code)
}

func TestTranslateCircularCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]any
	}{
		{"self", map[string]any{"A1": "=A1"}},
		{"through another cell", map[string]any{"A1": "=B1+1", "B1": "=A1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := map[string]any{
				"env": tt.env,
				"rules": NewRuleSet().
					Add("\\type{cellName}", "$cell{%1%2}").
					Add("?+?", "$add").
					Add("?", "%1"),
			}
			start := time.Now()
			errs, _ := Translate(opts, "A1")
			assert.Less(t, time.Since(start), 5*time.Second)
			require.Len(t, errs, 1)
			assert.Equal(t, diag.KindConfig, errs[0].Kind)
			assert.Equal(t, diag.CodeDirectiveFailed, errs[0].Code)
			assert.Contains(t, errs[0].Message, "circular reference to cell A1")
		})
	}
}

func TestWithExpander(t *testing.T) {
	t.Parallel()

	dirs := DefaultDirectives()
	require.NoError(t, dirs.Register("fmt", func(c *DirectiveCall) (string, error) {
		return "<" + c.Arg(0) + "|" + c.Config + ">", nil
	}))
	errs, out := TranslateContext(context.Background(),
		map[string]any{"rules": NewRuleSet().Add("?", "$fmt{%1,0.0}")},
		"2.5",
		WithExpander(dirs),
	)
	require.Empty(t, errs)
	assert.Equal(t, "<2.5|0.0>", out)
}

func TestRun(t *testing.T) {
	t.Parallel()

	res := Run(context.Background(), spokenOptions(), "1+2")
	assert.Empty(t, res.Errors)
	assert.Equal(t, "(number one) plus (number two)", res.Output)
}

func TestParse(t *testing.T) {
	t.Parallel()

	n, err := Parse(nil, "1+2*3", false)
	require.NoError(t, err)
	assert.Equal(t, "ADD(NUM(1),MUL(NUM(2),NUM(3)))", n.String())

	n, err = Parse(nil, "2\\times3", true)
	require.NoError(t, err)
	assert.Equal(t, "MUL(NUM(2),NUM(3))", n.String())

	_, err = Parse(map[string]any{"strict": true}, "", false)
	assert.Error(t, err)
}

func TestFormatErrorsWithArrows(t *testing.T) {
	t.Parallel()

	errs, _ := Translate(nil, "1 2")
	require.Len(t, errs, 1)
	out := FormatErrorsWithArrows("1 2", errs)
	assert.Contains(t, out, "error[1102]: syntax")
	assert.Contains(t, out, "  | 1 2\n")
	assert.Contains(t, out, "^ expecting an operator between numbers")

	src := "α+1 2"
	errs, _ = Translate(nil, src)
	require.Len(t, errs, 1)
	out = FormatErrorsWithArrows(src, errs)
	assert.Contains(t, out, " --> 1:5\n")
	assert.Contains(t, out, "  | α+1 2\n  |     ^ expecting an operator between numbers\n")

	src = "1\n+2 3"
	errs, _ = Translate(nil, src)
	require.Len(t, errs, 1)
	out = FormatErrorsWithArrows(src, errs)
	assert.Contains(t, out, " --> 2:4\n")
	assert.Contains(t, out, "  | +2 3\n  |    ^ expecting")
}
