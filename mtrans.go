// Package mtrans translates LaTeX-like math source into text through
// caller-supplied pattern and template rules.
//
// A translation parses the source into an expression tree, normalizes
// literals, then walks the tree matching each node against the rules and
// expanding the first applicable template:
//
//	errs, out := mtrans.Translate(map[string]any{
//		"rules": mtrans.NewRuleSet().Add("?", "$fmt{%1,$#,##0.00}"),
//	}, "1234.56")
//	// out == "$1,234.56"
package mtrans

import (
	"context"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/directive"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/parser"
	"github.com/gnolang/mtrans/internal/rules"
	"github.com/gnolang/mtrans/internal/translate"
	"github.com/gnolang/mtrans/internal/types"
	"github.com/gnolang/mtrans/internal/visit"
)

type (
	// Error is the structured failure of one call.
	Error = diag.Error
	// Node is a parsed expression tree.
	Node = ast.Node
	// Expander renders template directives such as $fmt.
	Expander = translate.Expander
	// DirectiveCall is one directive invocation passed to an Expander.
	DirectiveCall = directive.Call
	// Directives maps directive names to their functions.
	Directives = directive.Registry
)

// Result is the outcome of one translation. Errors is empty on success
// and holds exactly one error otherwise.
type Result struct {
	Errors []*Error `json:"errors"`
	Output string   `json:"output"`
}

// TranslateOption customizes one call.
type TranslateOption func(*session)

// WithExpander replaces the default directive functions.
func WithExpander(e Expander) TranslateOption {
	return func(s *session) {
		s.expander = e
	}
}

// DefaultDirectives returns a fresh registry of the built-in directive
// functions, for callers that want to override a few of them.
func DefaultDirectives() *Directives {
	return directive.Defaults()
}

// Translate renders src with the given options. On success the error list
// is empty; on failure it holds one error and the output is empty.
func Translate(opts map[string]any, src string) ([]*Error, string) {
	return TranslateContext(context.Background(), opts, src)
}

// TranslateContext is Translate bounded by ctx as well as the maxSteps
// option.
func TranslateContext(ctx context.Context, opts map[string]any, src string, options ...TranslateOption) ([]*Error, string) {
	res := Run(ctx, opts, src, options...)
	return res.Errors, res.Output
}

// Run is TranslateContext returning a Result.
func Run(ctx context.Context, opts map[string]any, src string, options ...TranslateOption) Result {
	s := &session{}
	for _, o := range options {
		o(s)
	}
	out, err := s.run(ctx, opts, src)
	if err != nil {
		return Result{Errors: []*Error{diag.As(err)}}
	}
	return Result{Errors: []*Error{}, Output: out}
}

// Parse returns the tree for src under opts, normalized when normalize is
// set. Rules in opts are ignored.
func Parse(opts map[string]any, src string, normalize bool) (n *Node, err error) {
	defer diag.Catch(&err)
	o, err := types.ParseOptions(opts)
	if err != nil {
		return nil, err
	}
	n = parser.MustParse(src, parser.Config{
		Options: o,
		Env:     rootFrame(o),
		Budget:  diag.NewBudget(context.Background(), o.MaxSteps),
	})
	if normalize {
		n = visit.NormalizeLiteral(n, o)
	}
	return n, nil
}

// session holds the per-call state. Nothing in it outlives the call, so
// concurrent calls never share mutable state.
type session struct {
	opts     *types.Options
	budget   *diag.Budget
	stack    *env.Stack
	table    *rules.Table
	expander Expander
}

func rootFrame(o *types.Options) *env.Env {
	base := env.Builtin()
	if o.Chemistry {
		base = env.Chemistry()
	}
	frame := base.Derive()
	for name, sym := range o.Env {
		frame.Define(name, sym)
	}
	return frame
}

func (s *session) run(ctx context.Context, raw map[string]any, src string) (out string, err error) {
	defer diag.Catch(&err)

	o, err := types.ParseOptions(raw)
	if err != nil {
		return "", err
	}
	rs, err := rules.FromValue(o.Rules)
	if err != nil {
		return "", err
	}

	s.opts = o
	s.budget = diag.NewBudget(ctx, o.MaxSteps)
	s.budget.Check()
	s.stack = env.NewStack(rootFrame(o))
	if s.expander == nil {
		s.expander = directive.Defaults()
	}
	s.table = rules.MustCompile(rs, rules.Config{
		Options: o,
		Env:     s.stack.Top(),
		Budget:  s.budget,
		Pool:    ast.NewPool(),
	})
	return s.translate(src, s.stack.Top()), nil
}

func (s *session) translate(src string, e *env.Env) string {
	n := parser.MustParse(src, parser.Config{
		Options: s.opts,
		Env:     e,
		Budget:  s.budget,
	})
	n = visit.NormalizeLiteral(n, s.opts)
	return translate.New(translate.Config{
		Table:    s.table,
		Options:  s.opts,
		Env:      e,
		Budget:   s.budget,
		Expander: s.expander,
		Recurse:  s.recurse,
	}).MustTranslate(n)
}

// recurse translates src in frame e for a directive. The frame is entered
// on the session stack for the duration of the nested call.
func (s *session) recurse(src string, e *env.Env) (out string, err error) {
	defer diag.Catch(&err)
	s.stack.Enter(e)
	defer s.stack.Pop()
	return s.translate(src, e), nil
}
