// Package translate renders expression trees into text by matching them
// against a compiled rule table and expanding the chosen templates.
package translate

import (
	"strings"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/directive"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/rules"
	"github.com/gnolang/mtrans/internal/types"
	"github.com/gnolang/mtrans/internal/visit"
)

// baselineMarker may close a template that ends in a subscript. It is
// dropped from the end of the final output.
const baselineMarker = `\baseline`

// Expander renders directive calls.
type Expander interface {
	Expand(c *directive.Call) (string, error)
}

type Config struct {
	Table    *rules.Table
	Options  *types.Options
	Env      *env.Env
	Budget   *diag.Budget
	Expander Expander

	// Recurse translates source text in frame e with the same rules. It
	// backs directives such as $cell.
	Recurse func(src string, e *env.Env) (string, error)
}

// Translator is the translate walk. It is not safe for concurrent use.
type Translator struct {
	cfg    Config
	m      *matcher
	scopes []*rules.Table
}

var _ visit.Visitor[string] = (*Translator)(nil)

func New(cfg Config) *Translator {
	if cfg.Options == nil {
		cfg.Options = types.Default()
	}
	if cfg.Env == nil {
		cfg.Env = env.Builtin()
	}
	if cfg.Table == nil {
		cfg.Table = rules.MustCompile(rules.New(), rules.Config{Options: cfg.Options, Env: cfg.Env})
	}
	if cfg.Expander == nil {
		cfg.Expander = directive.Defaults()
	}
	return &Translator{
		cfg:    cfg,
		m:      newMatcher(cfg.Table, cfg.Env, cfg.Budget),
		scopes: []*rules.Table{cfg.Table},
	}
}

// Translate renders n, returning a *diag.Error on failure.
func (t *Translator) Translate(n *ast.Node) (out string, err error) {
	defer diag.Catch(&err)
	return t.MustTranslate(n), nil
}

// MustTranslate is Translate for callers already running under diag.Catch.
func (t *Translator) MustTranslate(n *ast.Node) string {
	return Finish(t.node(n))
}

// Finish collapses whitespace runs and drops a trailing baseline marker.
func Finish(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(strings.TrimSuffix(s, baselineMarker))
}

func (t *Translator) node(n *ast.Node) string {
	return visit.Visit[string](t, n)
}

func (t *Translator) Numeric(n *ast.Node) string        { return t.render(n, false) }
func (t *Translator) Variable(n *ast.Node) string       { return t.render(n, false) }
func (t *Translator) Unary(n *ast.Node) string          { return t.render(n, false) }
func (t *Translator) Exponential(n *ast.Node) string    { return t.render(n, false) }
func (t *Translator) Paren(n *ast.Node) string          { return t.render(n, false) }
func (t *Translator) Equals(n *ast.Node) string         { return t.render(n, false) }
func (t *Translator) Binary(n *ast.Node) string         { return t.render(n, true) }
func (t *Translator) Multiplicative(n *ast.Node) string { return t.render(n, true) }
func (t *Translator) Comma(n *ast.Node) string          { return t.render(n, true) }

// render expands the template chosen for n. For n-ary operators a binary
// template sees the first argument and the fold of the rest.
func (t *Translator) render(n *ast.Node, nary bool) string {
	t.cfg.Budget.Step()
	tmpl := t.choose(n)
	if tmpl == nil || tmpl.Str == "" {
		return ""
	}
	x := &expansion{t: t, n: n, tmpl: tmpl, args: n.Args}
	if nary && tmpl.Binary() && len(n.Args) > 2 {
		x.args = []*ast.Node{n.Args[0], t.m.tail(n)}
	}
	return x.run(tmpl.Str)
}

// choose selects the first applicable template among the rules matching
// n, innermost scope first. A template without a string borrows it from
// the next applicable one.
func (t *Translator) choose(n *ast.Node) *rules.Template {
	nargs := n.NumArgs()
	var first *rules.Template
	for i := len(t.scopes) - 1; i >= 0; i-- {
		for _, r := range t.scopes[i].Rules {
			if !t.m.match(r.Pattern, n) {
				continue
			}
			for _, tmpl := range r.Templates {
				if !tmpl.Applies(t.cfg.Options, nargs) {
					continue
				}
				switch {
				case tmpl.HasStr && first == nil:
					return tmpl
				case tmpl.HasStr:
					merged := *first
					merged.Str, merged.HasStr = tmpl.Str, true
					merged.Placeholders, merged.Variadic = tmpl.Placeholders, tmpl.Variadic
					if merged.ArgRules == nil {
						merged.ArgRules = tmpl.ArgRules
					}
					return &merged
				case first == nil:
					first = tmpl
				}
			}
		}
	}
	return first
}

// word maps a literal through the words table.
func (t *Translator) word(s string) string {
	if w, ok := t.cfg.Table.Words[s]; ok {
		return w
	}
	return s
}

// within translates n with scope pushed over the current scopes.
func (t *Translator) within(scope *rules.Table, n *ast.Node) string {
	if scope == nil {
		return t.node(n)
	}
	t.scopes = append(t.scopes, scope)
	defer func() { t.scopes = t.scopes[:len(t.scopes)-1] }()
	return t.node(n)
}
