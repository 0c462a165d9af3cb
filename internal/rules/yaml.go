package rules

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/mtrans/internal/diag"
)

// Load reads a rule set from a YAML or JSON file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes YAML (or JSON) rule set text:
//
//	words: {"1": one}
//	types:
//	  numeric: ["\\type{number}", "-\\type{number}"]
//	rules:
//	  "-?": "(negative %1)"
//	  "?":
//	    - "%": "%1"
//	      context: [NoParens]
//	      "%1": {"?": "[%1]"}
func Parse(data []byte) (*RuleSet, error) {
	rs := New()
	if err := yaml.Unmarshal(data, rs); err != nil {
		if de := diag.As(err); de != nil && de.Kind == diag.KindConfig {
			return nil, de
		}
		return nil, diag.New(diag.KindConfig, diag.CodeMalformedRule, -1, "rule set", err)
	}
	return rs, nil
}

// UnmarshalYAML walks the node tree directly so mapping order survives.
func (rs *RuleSet) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return malformed(n, "rule set", "expected a mapping")
	}
	if rs.Words == nil {
		rs.Words = map[string]string{}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "words":
			var words map[string]string
			if err := val.Decode(&words); err != nil {
				return malformed(val, "words", err)
			}
			for k, v := range words {
				rs.Words[k] = v
			}
		case "types":
			if val.Kind != yaml.MappingNode {
				return malformed(val, "types", "expected a mapping")
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				patterns, err := decodeStrings(val.Content[j+1])
				if err != nil {
					return malformed(val.Content[j+1], val.Content[j].Value, err)
				}
				rs.Types = append(rs.Types, TypeDecl{Name: val.Content[j].Value, Patterns: patterns})
			}
		case "rules":
			decls, err := decodeRules(val)
			if err != nil {
				return err
			}
			rs.Rules = append(rs.Rules, decls...)
		default:
			return diag.New(diag.KindConfig, diag.CodeUnknownKey, -1, key.Value)
		}
	}
	return nil
}

// MarshalYAML emits the ordered mapping form UnmarshalYAML reads.
func (rs RuleSet) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	if len(rs.Words) > 0 {
		keys := make([]string, 0, len(rs.Words))
		for k := range rs.Words {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		words := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			words.Content = append(words.Content, scalar(k), scalar(rs.Words[k]))
		}
		root.Content = append(root.Content, scalar("words"), words)
	}
	if len(rs.Types) > 0 {
		types := &yaml.Node{Kind: yaml.MappingNode}
		for _, decl := range rs.Types {
			types.Content = append(types.Content, scalar(decl.Name), sequence(decl.Patterns))
		}
		root.Content = append(root.Content, scalar("types"), types)
	}
	root.Content = append(root.Content, scalar("rules"), encodeRules(rs.Rules))
	return root, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func sequence(ss []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range ss {
		n.Content = append(n.Content, scalar(s))
	}
	return n
}

func encodeRules(decls []RuleDecl) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, decl := range decls {
		var val *yaml.Node
		if len(decl.Templates) == 1 {
			val = encodeTemplate(decl.Templates[0])
		} else {
			val = &yaml.Node{Kind: yaml.SequenceNode}
			for _, spec := range decl.Templates {
				val.Content = append(val.Content, encodeTemplate(spec))
			}
		}
		n.Content = append(n.Content, scalar(decl.Pattern), val)
	}
	return n
}

func encodeTemplate(spec TemplateSpec) *yaml.Node {
	if spec.HasStr && len(spec.Context) == 0 && len(spec.ArgRules) == 0 {
		return scalar(spec.Str)
	}
	obj := &yaml.Node{Kind: yaml.MappingNode}
	if spec.HasStr {
		obj.Content = append(obj.Content, scalar("%"), scalar(spec.Str))
	}
	if len(spec.Context) > 0 {
		obj.Content = append(obj.Content, scalar("context"), sequence(spec.Context))
	}
	for i := 1; i <= 9; i++ {
		if decls, ok := spec.ArgRules[i]; ok {
			obj.Content = append(obj.Content, scalar("%"+strconv.Itoa(i)), encodeRules(decls))
		}
	}
	return obj
}

func malformed(n *yaml.Node, what string, why any) error {
	return diag.New(diag.KindConfig, diag.CodeMalformedRule, -1, what, fmt.Sprintf("line %d: %v", n.Line, why))
}

func decodeStrings(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("expected a string")
			}
			out = append(out, c.Value)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a string or a list of strings")
}

func decodeRules(n *yaml.Node) ([]RuleDecl, error) {
	if n.Kind != yaml.MappingNode {
		return nil, malformed(n, "rules", "expected a mapping")
	}
	decls := make([]RuleDecl, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		pattern := n.Content[i].Value
		specs, err := decodeTemplates(pattern, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		decls = append(decls, RuleDecl{Pattern: pattern, Templates: specs})
	}
	return decls, nil
}

func decodeTemplates(pattern string, n *yaml.Node) ([]TemplateSpec, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return []TemplateSpec{T(n.Value)}, nil
	case yaml.MappingNode:
		return decodeObject(pattern, n)
	case yaml.SequenceNode:
		var specs []TemplateSpec
		for _, c := range n.Content {
			switch c.Kind {
			case yaml.ScalarNode:
				specs = append(specs, T(c.Value))
			case yaml.MappingNode:
				obj, err := decodeObject(pattern, c)
				if err != nil {
					return nil, err
				}
				specs = append(specs, obj...)
			default:
				return nil, malformed(c, pattern, "expected a template string or object")
			}
		}
		return specs, nil
	}
	return nil, malformed(n, pattern, "expected a template string, list or object")
}

// decodeObject reads the object form of a template. A list under "%"
// yields one spec per string, sharing context and argument rules.
func decodeObject(pattern string, n *yaml.Node) ([]TemplateSpec, error) {
	var spec TemplateSpec
	var strs []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch {
		case key == "%":
			ss, err := decodeStrings(val)
			if err != nil {
				return nil, malformed(val, pattern, err)
			}
			strs = ss
			spec.HasStr = true
		case key == "context":
			ss, err := decodeStrings(val)
			if err != nil {
				return nil, malformed(val, pattern, err)
			}
			spec.Context = ss
		case len(key) == 2 && key[0] == '%' && key[1] >= '1' && key[1] <= '9':
			decls, err := decodeRules(val)
			if err != nil {
				return nil, err
			}
			if spec.ArgRules == nil {
				spec.ArgRules = map[int][]RuleDecl{}
			}
			spec.ArgRules[int(key[1]-'0')] = decls
		default:
			return nil, diag.New(diag.KindConfig, diag.CodeUnknownKey, -1, key)
		}
	}
	if !spec.HasStr {
		return []TemplateSpec{spec}, nil
	}
	specs := make([]TemplateSpec, len(strs))
	for i, s := range strs {
		specs[i] = spec
		specs[i].Str = s
	}
	return specs, nil
}
