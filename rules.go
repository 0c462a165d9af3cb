package mtrans

import (
	"github.com/gnolang/mtrans/internal/rules"
)

type (
	// RuleSet is the wire form of words, types and rules. Pass it as the
	// "rules" option.
	RuleSet = rules.RuleSet
	// TemplateSpec is one template value of a rule.
	TemplateSpec = rules.TemplateSpec
	// RuleDecl is one pattern with its templates.
	RuleDecl = rules.RuleDecl
)

// NewRuleSet returns an empty rule set for programmatic construction.
func NewRuleSet() *RuleSet {
	return rules.New()
}

// LoadRules reads a YAML or JSON rule file.
func LoadRules(path string) (*RuleSet, error) {
	return rules.Load(path)
}

// ParseRules decodes YAML or JSON rule data.
func ParseRules(data []byte) (*RuleSet, error) {
	return rules.Parse(data)
}

// Template is shorthand for a plain template string.
func Template(s string) TemplateSpec {
	return rules.T(s)
}
