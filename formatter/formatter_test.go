package formatter

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/gnolang/mtrans/internal/diag"
)

func init() {
	color.NoColor = true
}

func TestGenerateFormattedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     Expression
		err      *diag.Error
		expected string
	}{
		{
			name: "syntax error with column",
			expr: Expression{Filename: "a.tex", Line: 3, Source: "1 2"},
			err:  diag.New(diag.KindSyntax, diag.CodeAdjacentNumbers, 2),
			expected: `error[1102]: syntax
 --> a.tex:3:3
  |
3 | 1 2
  |   ^
  = expecting an operator between numbers

`,
		},
		{
			name: "lexical error without column",
			expr: Expression{Filename: "a.tex", Line: 1, Source: "12,34"},
			err:  diag.New(diag.KindLexical, diag.CodeMisplacedSeparator, -1),
			expected: `error[1002]: lexical
 --> a.tex:1
  |
1 | 12,34
  = misplaced thousands separator

`,
		},
		{
			name: "budget error",
			expr: Expression{Source: "1+2"},
			err:  diag.New(diag.KindBudget, diag.CodeStuck, -1),
			expected: `error[4001]: budget
 --> <expr>:1
  |
1 | 1+2
  = stuck in loop
Note: raise the maxSteps option or the --timeout flag

`,
		},
		{
			name: "option error",
			expr: Expression{Source: "1"},
			err:  diag.New(diag.KindOption, diag.CodeUnknownOption, -1, "colour"),
			expected: `error[2001]: option
 --> <expr>:1
  = unknown option colour

`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateFormattedErrors(tt.expr, []*diag.Error{tt.err}))
		})
	}
}

func TestFormatMultipleDigitLineNumbers(t *testing.T) {
	t.Parallel()

	expr := Expression{Filename: "b.math", Line: 12, Source: "\t1 2"}
	got := GenerateFormattedErrors(expr, []*diag.Error{diag.New(diag.KindSyntax, diag.CodeAdjacentNumbers, 3)})

	expected := `error[1102]: syntax
  --> b.math:12:4
   |
12 |         1 2
   |           ^
   = expecting an operator between numbers

`
	assert.Equal(t, expected, got)
}

func TestFormatPointsIntoSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     Expression
		offset   int
		expected string
	}{
		{
			name:   "unicode symbol before the error",
			expr:   Expression{Filename: "c.tex", Line: 1, Source: "α+1 2"},
			offset: 10,
			expected: `error[1102]: syntax
 --> c.tex:1:5
  |
1 | α+1 2
  |     ^
  = expecting an operator between numbers

`,
		},
		{
			name:   "second line of the source",
			expr:   Expression{Filename: "d.tex", Line: 1, Source: "1+2\n3 4"},
			offset: 6,
			expected: `error[1102]: syntax
 --> d.tex:2:3
  |
2 | 3 4
  |   ^
  = expecting an operator between numbers

`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := diag.New(diag.KindSyntax, diag.CodeAdjacentNumbers, tt.offset)
			assert.Equal(t, tt.expected, GenerateFormattedErrors(tt.expr, []*diag.Error{err}))
		})
	}
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 8},
		{"a\tx", 3, 8},
		{"×y", 2, 1},
		{"abc", 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateVisualColumn(tt.line, tt.column), "%q col %d", tt.line, tt.column)
	}
}
