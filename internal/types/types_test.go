package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
)

func TestParseOptionsDefaults(t *testing.T) {
	o, err := ParseOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, FieldReal, o.Field)
	assert.Equal(t, -1, o.DecimalPlaces)
	assert.Equal(t, []rune{','}, o.ThousandsSeparators)
	assert.Equal(t, '.', o.DecimalSeparator)
	assert.True(t, o.AllowThousandsSeparator)
	assert.Equal(t, diag.DefaultMaxSteps, o.MaxSteps)
}

func TestParseOptionsValues(t *testing.T) {
	o, err := ParseOptions(map[string]any{
		"field":                 "rational",
		"decimalPlaces":         2,
		"tolerance":             0.5,
		"setThousandsSeparator": []any{" ", "."},
		"setDecimalSeparator":   ",",
		"strict":                true,
		"NoParens":              true,
		"maxSteps":              float64(50),
		"words":                 map[string]any{"1": "one", "2": 2},
		"types":                 map[string]any{"numeric": []any{"\\type{number}", "-\\type{number}"}},
		"env": map[string]any{
			"A1": "=1+2",
			"Xe": map[string]any{"type": "const", "mass": 131.29},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, FieldRational, o.Field)
	assert.Equal(t, 2, o.DecimalPlaces)
	assert.Equal(t, 0.5, o.Tolerance)
	assert.Equal(t, []rune{' ', '.'}, o.ThousandsSeparators)
	assert.Equal(t, ',', o.DecimalSeparator)
	assert.True(t, o.Strict)
	assert.True(t, o.Flag(FlagNoParens))
	assert.False(t, o.Flag(FlagEndRoot))
	assert.Equal(t, 50, o.MaxSteps)
	assert.Equal(t, map[string]string{"1": "one", "2": "2"}, o.Words)
	assert.Equal(t, []string{"\\type{number}", "-\\type{number}"}, o.Types["numeric"])
	assert.Equal(t, env.Symbol{Type: env.SymbolVar, Value: "=1+2"}, o.Env["A1"])
	assert.Equal(t, env.SymbolConst, o.Env["Xe"].Type)
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		code int
	}{
		{"unknown", map[string]any{"bogus": true}, diag.CodeUnknownOption},
		{"bool type", map[string]any{"strict": "yes"}, diag.CodeInvalidOption},
		{"field", map[string]any{"field": "quaternion"}, diag.CodeInvalidOption},
		{"decimal places range", map[string]any{"decimalPlaces": 21}, diag.CodeInvalidOption},
		{"negative tolerance", map[string]any{"toleranceAbsolute": -1.0}, diag.CodeInvalidOption},
		{"long separator", map[string]any{"setDecimalSeparator": ".."}, diag.CodeInvalidOption},
		{"digit separator", map[string]any{"setDecimalSeparator": "5"}, diag.CodeInvalidOption},
		{"separator clash", map[string]any{"setDecimalSeparator": ","}, diag.CodeInvalidOption},
		{"max steps", map[string]any{"maxSteps": 0}, diag.CodeInvalidOption},
		{"env symbol type", map[string]any{"env": map[string]any{"x": map[string]any{"type": "color"}}}, diag.CodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions(tt.raw)
			require.Error(t, err)
			de := diag.As(err)
			assert.Equal(t, diag.KindOption, de.Kind)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestContextFlags(t *testing.T) {
	f, ok := ParseContextFlag("EndRoot")
	require.True(t, ok)
	assert.Equal(t, FlagEndRoot, f)
	assert.Equal(t, "EndRoot", f.String())
	_, ok = ParseContextFlag("Loud")
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "setThousandsSeparator")
	assert.Contains(t, names, "strict")
	assert.IsIncreasing(t, names)
}
