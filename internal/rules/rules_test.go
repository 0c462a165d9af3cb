package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/types"
)

const sample = `
words:
  1: one
  2: two
types:
  numeric: ["\\type{number}", "-\\type{number}"]
rules:
  "-?": ["(negative %1)"]
  "\\type{numeric}+\\type{numeric}": "%1 plus %2"
  "?":
    - "%": "{%1}"
      context: [NoParens]
    - "%": ["[%1]", "<%1>"]
      "%1":
        "?": "inner %1"
    - context: ["!EndRoot"]
`

func TestParseRuleSet(t *testing.T) {
	t.Parallel()

	rs, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"1": "one", "2": "two"}, rs.Words)
	require.Len(t, rs.Types, 1)
	assert.Equal(t, TypeDecl{Name: "numeric", Patterns: []string{"\\type{number}", "-\\type{number}"}}, rs.Types[0])

	require.Len(t, rs.Rules, 3)
	assert.Equal(t, "-?", rs.Rules[0].Pattern)
	assert.Equal(t, "\\type{numeric}+\\type{numeric}", rs.Rules[1].Pattern)
	assert.Equal(t, "?", rs.Rules[2].Pattern)

	wild := rs.Rules[2].Templates
	require.Len(t, wild, 4)
	assert.Equal(t, []string{"NoParens"}, wild[0].Context)
	assert.Equal(t, "[%1]", wild[1].Str)
	assert.Equal(t, "<%1>", wild[2].Str)
	assert.Equal(t, "?", wild[2].ArgRules[1][0].Pattern)
	assert.False(t, wild[3].HasStr)
	assert.Equal(t, []string{"!EndRoot"}, wild[3].Context)
}

func TestParseRuleSetJSON(t *testing.T) {
	t.Parallel()

	rs, err := Parse([]byte(`{"rules": {"b": "B", "a": "A", "?": ["x", "y"]}}`))
	require.NoError(t, err)
	require.Len(t, rs.Rules, 3)
	assert.Equal(t, "b", rs.Rules[0].Pattern)
	assert.Equal(t, "a", rs.Rules[1].Pattern)
	assert.Len(t, rs.Rules[2].Templates, 2)
}

func TestMarshalRuleSetKeepsOrder(t *testing.T) {
	t.Parallel()

	rs, err := Parse([]byte(sample))
	require.NoError(t, err)

	data, err := yaml.Marshal(rs)
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, rs, back)

	data, err = yaml.Marshal(New())
	require.NoError(t, err)
	assert.Equal(t, "rules: {}\n", string(data))
}

func TestParseRuleSetErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		code int
	}{
		{"not a mapping", `- a`, diag.CodeMalformedRule},
		{"unknown section", `colors: {}`, diag.CodeUnknownKey},
		{"unknown template key", "rules:\n  \"?\": {weight: 3}", diag.CodeUnknownKey},
		{"bad types", "types: [a]", diag.CodeMalformedRule},
		{"bad yaml", "rules: {a: [", diag.CodeMalformedRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			de := diag.As(err)
			assert.Equal(t, diag.KindConfig, de.Kind)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	rs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rs.Rules, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromValue(t *testing.T) {
	t.Parallel()

	rs, err := FromValue(New().Add("?", "%1"))
	require.NoError(t, err)
	assert.Len(t, rs.Rules, 1)

	rs, err = FromValue("rules: {\"?\": \"%1\"}")
	require.NoError(t, err)
	assert.Len(t, rs.Rules, 1)

	rs, err = FromValue(nil)
	require.NoError(t, err)
	assert.Empty(t, rs.Rules)

	_, err = FromValue(map[string]any{"?": "%1"})
	require.Error(t, err)
	assert.Equal(t, diag.CodeInvalidOption, diag.As(err).Code)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	rs, err := Parse([]byte(sample))
	require.NoError(t, err)
	tbl, err := Compile(rs, Config{})
	require.NoError(t, err)

	require.Len(t, tbl.Rules, 3)
	assert.Equal(t, "MINUS(WILDCARD(?))", tbl.Rules[0].Pattern.String())
	assert.Equal(t, "ADD(TYPE(numeric),TYPE(numeric))", tbl.Rules[1].Pattern.String())
	assert.Len(t, tbl.Types["numeric"], 2)
	assert.Equal(t, TypeSpec{Name: "number"}, tbl.Specs["number"])

	tmpl := tbl.Rules[1].Templates[0]
	assert.Equal(t, 2, tmpl.Placeholders)
	assert.True(t, tmpl.Binary())

	wild := tbl.Rules[2].Templates
	assert.Equal(t, []types.ContextFlag{types.FlagNoParens}, wild[0].Require)
	assert.Equal(t, []types.ContextFlag{types.FlagEndRoot}, wild[3].Forbid)
	require.NotNil(t, wild[1].ArgRules[1])
	assert.Len(t, wild[1].ArgRules[1].Rules, 1)
	assert.Same(t, tbl.Pool, wild[1].ArgRules[1].Pool)

	assert.Same(t, tbl.Rules[0], tbl.Rule(tbl.Rules[0].ID))
}

func TestCompileMergesEqualPatterns(t *testing.T) {
	t.Parallel()

	rs := New().Add("x + 1", "first").Add("x+1", "second")
	tbl, err := Compile(rs, Config{})
	require.NoError(t, err)
	require.Len(t, tbl.Rules, 1)
	require.Len(t, tbl.Rules[0].Templates, 2)
	assert.Equal(t, "second", tbl.Rules[0].Templates[1].Str)
}

func TestCompileOptionWordsAndTypes(t *testing.T) {
	t.Parallel()

	opts, err := types.ParseOptions(map[string]any{
		"words": map[string]any{"3": "three"},
		"types": map[string]any{"small": []any{"\\type{integer,1}"}},
	})
	require.NoError(t, err)

	tbl, err := Compile(New().Add("\\type{small}", "%1").Word("4", "four"), Config{Options: opts})
	require.NoError(t, err)
	assert.Equal(t, "three", tbl.Words["3"])
	assert.Equal(t, "four", tbl.Words["4"])
	assert.Equal(t, TypeSpec{Name: "integer", Cmp: CmpEq, N: 1}, tbl.Specs["integer,1"])
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rs   *RuleSet
		code int
	}{
		{"unknown type", New().Add("\\type{colour}", "%1"), diag.CodeUnknownType},
		{"malformed type", New().Add("\\type{integer,abc}", "%1"), diag.CodeMalformedType},
		{"type refers to itself", New().Type("loop", "\\type{loop}").Add("\\type{loop}", "%1"), diag.CodeMalformedType},
		{"types refer to each other", New().Type("odd", "x", "\\type{even}").Type("even", "\\type{odd}").Add("?", "%1"), diag.CodeMalformedType},
		{"shadowed builtin refers to itself", New().Type("number", "\\type{number}").Add("?", "%1"), diag.CodeMalformedType},
		{"malformed pattern", New().Add("(?", "%1"), diag.CodeMalformedRule},
		{"unknown flag", New().AddSpec("?", TemplateSpec{Str: "%1", HasStr: true, Context: []string{"Loud"}}), diag.CodeUnknownFlag},
		{"conflicting flag", New().AddSpec("?", TemplateSpec{Str: "%1", HasStr: true, Context: []string{"NoParens", "!NoParens"}}), diag.CodeConflictingFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.rs, Config{})
			require.Error(t, err)
			de := diag.As(err)
			assert.Equal(t, diag.KindConfig, de.Kind)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestCompileRecursiveTypeThroughStructure(t *testing.T) {
	t.Parallel()

	rs := New().
		Type("digits", "\\type{number}", "-\\type{digits}", "\\type{signed}").
		Type("signed", "+\\type{number}").
		Add("\\type{digits}", "%1")
	table, err := Compile(rs, Config{})
	require.NoError(t, err)
	assert.Len(t, table.Types["digits"], 3)
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s        string
		max      int
		variadic bool
	}{
		{"%1 plus %2", 2, false},
		{"%% of %3", 3, false},
		{"%IP point %FP", 0, false},
		{"%1, %*", 1, true},
		{"100%%1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			n, v := placeholders(tt.s)
			assert.Equal(t, tt.max, n)
			assert.Equal(t, tt.variadic, v)
		})
	}
}

func TestParseTypeSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		want TypeSpec
		err  bool
	}{
		{"number", TypeSpec{Name: "number"}, false},
		{"integer,3", TypeSpec{Name: "integer", Cmp: CmpEq, N: 3}, false},
		{"polynomial,>2", TypeSpec{Name: "polynomial", Cmp: CmpGt, N: 2}, false},
		{"polynomial,<=1", TypeSpec{Name: "polynomial", Cmp: CmpLe, N: 1}, false},
		{"matrix,2x3", TypeSpec{Name: "matrix", Rows: 2, Cols: 3}, false},
		{"matrix,0x3", TypeSpec{}, true},
		{",3", TypeSpec{}, true},
		{"integer,-1", TypeSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			got, err := ParseTypeSpec(tt.body)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.body, got.String())
		})
	}
}
