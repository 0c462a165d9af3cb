// Package rules holds rule sets in their wire form and compiles them into
// tables the translator matches against.
package rules

import (
	"github.com/gnolang/mtrans/internal/diag"
)

// RuleSet is the caller-facing form of words, types and rules. Rules and
// types keep their declaration order, which decides template selection.
type RuleSet struct {
	Words map[string]string
	Types []TypeDecl
	Rules []RuleDecl
}

// TypeDecl names a reusable sub-pattern addressed as \type{Name}.
type TypeDecl struct {
	Name     string
	Patterns []string
}

type RuleDecl struct {
	Pattern   string
	Templates []TemplateSpec
}

// TemplateSpec is one template value. A spec without a string inherits
// the string of the next applicable template.
type TemplateSpec struct {
	Str     string
	HasStr  bool
	Context []string
	// ArgRules overrides the rules used to translate argument i (1-based).
	ArgRules map[int][]RuleDecl
}

// T is shorthand for a plain template string.
func T(s string) TemplateSpec {
	return TemplateSpec{Str: s, HasStr: true}
}

// New returns an empty rule set.
func New() *RuleSet {
	return &RuleSet{Words: map[string]string{}}
}

// Add appends a rule with plain string templates.
func (rs *RuleSet) Add(pattern string, templates ...string) *RuleSet {
	specs := make([]TemplateSpec, len(templates))
	for i, s := range templates {
		specs[i] = T(s)
	}
	rs.Rules = append(rs.Rules, RuleDecl{Pattern: pattern, Templates: specs})
	return rs
}

// AddSpec appends a rule with full template specs.
func (rs *RuleSet) AddSpec(pattern string, specs ...TemplateSpec) *RuleSet {
	rs.Rules = append(rs.Rules, RuleDecl{Pattern: pattern, Templates: specs})
	return rs
}

// Type declares a named type.
func (rs *RuleSet) Type(name string, patterns ...string) *RuleSet {
	rs.Types = append(rs.Types, TypeDecl{Name: name, Patterns: patterns})
	return rs
}

// Word adds a spelling for a literal.
func (rs *RuleSet) Word(literal, word string) *RuleSet {
	if rs.Words == nil {
		rs.Words = map[string]string{}
	}
	rs.Words[literal] = word
	return rs
}

// FromValue converts the caller's "rules" option into a RuleSet. YAML or
// JSON text, RuleSet values and ordered rule lists are accepted. A plain
// Go map is rejected because it cannot carry declaration order.
func FromValue(v any) (*RuleSet, error) {
	switch t := v.(type) {
	case nil:
		return New(), nil
	case string:
		return Parse([]byte(t))
	case []byte:
		return Parse(t)
	case RuleSet:
		return &t, nil
	case *RuleSet:
		if t == nil {
			return New(), nil
		}
		return t, nil
	case []RuleDecl:
		return &RuleSet{Words: map[string]string{}, Rules: t}, nil
	case map[string]any:
		return nil, diag.New(diag.KindOption, diag.CodeInvalidOption, -1,
			"rules", "a map has no declaration order; use YAML text or a RuleSet")
	}
	return nil, diag.New(diag.KindOption, diag.CodeInvalidOption, -1,
		"rules", "unsupported rule set value")
}
