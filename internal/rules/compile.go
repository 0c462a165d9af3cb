package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/parser"
	"github.com/gnolang/mtrans/internal/types"
	"github.com/gnolang/mtrans/internal/visit"
)

// Config carries what compilation shares with the translation call.
type Config struct {
	Options *types.Options
	Env     *env.Env
	Budget  *diag.Budget
	Pool    *ast.Pool
}

// Table is a compiled rule scope. Argument scopes share the Types, Specs,
// Words and Pool of the table they were compiled with.
type Table struct {
	Rules []*Rule
	Types map[string][]*ast.Node
	Specs map[string]TypeSpec
	Words map[string]string
	Pool  *ast.Pool

	byID map[ast.ID]*Rule
}

// Rule is a pattern with its templates in declaration order.
type Rule struct {
	Source    string
	Pattern   *ast.Node
	ID        ast.ID
	Templates []*Template
}

// Template is a compiled template value.
type Template struct {
	Str    string
	HasStr bool

	Require []types.ContextFlag
	Forbid  []types.ContextFlag

	// ArgRules holds per-argument override scopes, keyed by 1-based index.
	ArgRules map[int]*Table

	// Placeholders is the highest %N the string references.
	Placeholders int
	Variadic     bool
}

// Binary reports whether the template renders two arguments and so
// re-expands the tail of a longer argument list.
func (t *Template) Binary() bool {
	return t.Placeholders == 2 && !t.Variadic
}

// Applies reports whether the active options satisfy the template's
// context flags and whether nargs arguments are enough for it.
func (t *Template) Applies(opts *types.Options, nargs int) bool {
	for _, f := range t.Require {
		if !opts.Flag(f) {
			return false
		}
	}
	for _, f := range t.Forbid {
		if opts.Flag(f) {
			return false
		}
	}
	return t.Placeholders <= nargs
}

// Rule returns the rule whose pattern interns to id.
func (t *Table) Rule(id ast.ID) *Rule {
	return t.byID[id]
}

// Compile turns a rule set into a table. Patterns are parsed with the
// expression grammar in pattern mode and normalized like input.
func Compile(rs *RuleSet, cfg Config) (t *Table, err error) {
	defer diag.Catch(&err)
	return MustCompile(rs, cfg), nil
}

// MustCompile is Compile for callers already running under diag.Catch.
func MustCompile(rs *RuleSet, cfg Config) *Table {
	if cfg.Options == nil {
		cfg.Options = types.Default()
	}
	if cfg.Env == nil {
		cfg.Env = env.Builtin()
	}
	if cfg.Pool == nil {
		cfg.Pool = ast.NewPool()
	}
	if rs == nil {
		rs = New()
	}

	c := &compiler{cfg: cfg}
	root := &Table{
		Types: map[string][]*ast.Node{},
		Specs: map[string]TypeSpec{},
		Words: map[string]string{},
		Pool:  cfg.Pool,
	}
	for k, v := range cfg.Options.Words {
		root.Words[k] = v
	}
	for k, v := range rs.Words {
		root.Words[k] = v
	}

	for _, decl := range c.typeDecls(rs) {
		for _, src := range decl.Patterns {
			root.Types[decl.Name] = append(root.Types[decl.Name], c.pattern(src))
		}
	}
	c.table(root, rs.Rules)
	c.checkTypes(root)
	checkTypeCycles(root)
	return root
}

type compiler struct {
	cfg      Config
	patterns []*ast.Node
}

// typeDecls merges option types after rule set types. Option types are
// keyed by name only, so they are taken in sorted order.
func (c *compiler) typeDecls(rs *RuleSet) []TypeDecl {
	decls := append([]TypeDecl{}, rs.Types...)
	names := make([]string, 0, len(c.cfg.Options.Types))
	for name := range c.cfg.Options.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		decls = append(decls, TypeDecl{Name: name, Patterns: c.cfg.Options.Types[name]})
	}
	return decls
}

func (c *compiler) pattern(src string) *ast.Node {
	n, err := parser.Parse(src, parser.Config{
		Options:  c.cfg.Options,
		Env:      c.cfg.Env,
		Patterns: true,
		Budget:   c.cfg.Budget,
	})
	if err != nil {
		de := diag.As(err)
		if de.Kind == diag.KindBudget {
			diag.Raise(de)
		}
		diag.Fail(diag.KindConfig, diag.CodeMalformedRule, -1, src, de.Message)
	}
	n = visit.NormalizeLiteral(n, c.cfg.Options)
	c.patterns = append(c.patterns, n)
	return n
}

// table fills t from decls. Rules whose patterns intern alike merge
// their templates in declaration order.
func (c *compiler) table(t *Table, decls []RuleDecl) {
	t.byID = map[ast.ID]*Rule{}
	for _, decl := range decls {
		p := c.pattern(decl.Pattern)
		id := t.Pool.Intern(p)
		r, ok := t.byID[id]
		if !ok {
			r = &Rule{Source: decl.Pattern, Pattern: p, ID: id}
			t.byID[id] = r
			t.Rules = append(t.Rules, r)
		}
		for _, spec := range decl.Templates {
			r.Templates = append(r.Templates, c.template(t, decl.Pattern, spec))
		}
	}
}

func (c *compiler) template(parent *Table, pattern string, spec TemplateSpec) *Template {
	tmpl := &Template{Str: spec.Str, HasStr: spec.HasStr}
	tmpl.Placeholders, tmpl.Variadic = placeholders(spec.Str)

	seen := map[types.ContextFlag]bool{}
	for _, name := range spec.Context {
		negated := strings.HasPrefix(name, "!")
		f, ok := types.ParseContextFlag(strings.TrimPrefix(name, "!"))
		if !ok {
			diag.Fail(diag.KindConfig, diag.CodeUnknownFlag, -1, name)
		}
		if prev, dup := seen[f]; dup && prev != negated {
			diag.Fail(diag.KindConfig, diag.CodeConflictingFlag, -1, f)
		}
		seen[f] = negated
		if negated {
			tmpl.Forbid = append(tmpl.Forbid, f)
		} else {
			tmpl.Require = append(tmpl.Require, f)
		}
	}

	if len(spec.ArgRules) > 0 {
		tmpl.ArgRules = map[int]*Table{}
		idx := make([]int, 0, len(spec.ArgRules))
		for i := range spec.ArgRules {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		for _, i := range idx {
			decls := spec.ArgRules[i]
			if i < 1 || i > 9 {
				diag.Fail(diag.KindConfig, diag.CodeUnknownKey, -1, pattern)
			}
			sub := &Table{
				Types: parent.Types,
				Specs: parent.Specs,
				Words: parent.Words,
				Pool:  parent.Pool,
			}
			c.table(sub, decls)
			tmpl.ArgRules[i] = sub
		}
	}
	return tmpl
}

// placeholders returns the highest positional placeholder in s and
// whether s repeats over remaining arguments with %*.
func placeholders(s string) (highest int, variadic bool) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		switch c := s[i+1]; {
		case c == '%':
			i++
		case c == '*':
			variadic = true
			i++
		case c >= '1' && c <= '9':
			if d := int(c - '0'); d > highest {
				highest = d
			}
			i++
		}
	}
	return highest, variadic
}

// checkTypes resolves every \type{...} reference in compiled patterns.
func (c *compiler) checkTypes(t *Table) {
	for _, p := range c.patterns {
		c.walkTypes(t, p)
	}
}

// checkTypeCycles rejects declared types that reach themselves through
// patterns that are nothing but a \type{...} reference. Matching such a
// type never narrows the node, so it could only recurse.
func checkTypeCycles(t *Table) {
	names := make([]string, 0, len(t.Types))
	for name := range t.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(names))
	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		path = append(path[:len(path):len(path)], name)
		switch state[name] {
		case visiting:
			diag.Fail(diag.KindConfig, diag.CodeMalformedType, -1, name,
				fmt.Errorf("refers to itself (%s)", strings.Join(path, " -> ")))
		case done:
			return
		}
		state[name] = visiting
		for _, p := range t.Types[name] {
			if p.Op != ast.OpType {
				continue
			}
			spec, err := ParseTypeSpec(p.Value)
			if err != nil {
				continue
			}
			if _, declared := t.Types[spec.Name]; declared {
				visit(spec.Name, path)
			}
		}
		state[name] = done
	}
	for _, name := range names {
		visit(name, nil)
	}
}

func (c *compiler) walkTypes(t *Table, n *ast.Node) {
	if n.Op == ast.OpType {
		if _, done := t.Specs[n.Value]; done {
			return
		}
		spec, err := ParseTypeSpec(n.Value)
		if err != nil {
			diag.Fail(diag.KindConfig, diag.CodeMalformedType, -1, n.Value, err)
		}
		_, builtin := builtins[spec.Name]
		if _, declared := t.Types[spec.Name]; !builtin && !declared {
			diag.Fail(diag.KindConfig, diag.CodeUnknownType, -1, spec.Name)
		}
		t.Specs[n.Value] = spec
		return
	}
	for _, a := range n.Args {
		c.walkTypes(t, a)
	}
}
