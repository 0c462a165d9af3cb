package translate

import (
	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/rules"
)

// matcher tests pattern trees against input nodes. Intern ids and
// synthesized tails are memoized per node for the life of one translation.
type matcher struct {
	pool   *ast.Pool
	types  map[string][]*ast.Node
	specs  map[string]rules.TypeSpec
	env    *env.Env
	budget *diag.Budget

	ids   map[*ast.Node]ast.ID
	tails map[*ast.Node]*ast.Node
}

func newMatcher(t *rules.Table, e *env.Env, b *diag.Budget) *matcher {
	return &matcher{
		pool:   t.Pool,
		types:  t.Types,
		specs:  t.Specs,
		env:    e,
		budget: b,
		ids:    make(map[*ast.Node]ast.ID),
		tails:  make(map[*ast.Node]*ast.Node),
	}
}

func (m *matcher) id(n *ast.Node) ast.ID {
	if id, ok := m.ids[n]; ok {
		return id
	}
	id := m.pool.Intern(n)
	m.ids[n] = id
	return id
}

// tail returns a node of n's operator over all arguments but the first.
func (m *matcher) tail(n *ast.Node) *ast.Node {
	if t, ok := m.tails[n]; ok {
		return t
	}
	t := ast.New(n.Op, n.Args[1:]...)
	t.IsImplicit = n.IsImplicit
	m.tails[n] = t
	return t
}

// match reports whether pattern p matches node n. The checks run in a
// fixed order: exact equality, type predicate, wildcard, then structure.
func (m *matcher) match(p, n *ast.Node) bool {
	m.budget.Step()

	if m.id(p) == m.id(n) {
		return true
	}
	switch p.Op {
	case ast.OpType:
		return m.typed(p, n)
	case ast.OpWildcard:
		return true
	}
	if p.Op != n.Op {
		return false
	}
	if p.Op.IsLeaf() {
		return p.Op == ast.OpVar && p.Value == n.Value
	}

	switch {
	case len(p.Args) == len(n.Args):
		for i, pa := range p.Args {
			if !m.match(pa, n.Args[i]) {
				return false
			}
		}
		return true
	case len(p.Args) == 2 && len(n.Args) > 2:
		return m.match(p.Args[0], n.Args[0]) && m.match(p.Args[1], m.tail(n))
	}
	return false
}

// typed checks a \type{...} leaf. Declared types shadow builtins of the
// same name.
func (m *matcher) typed(p, n *ast.Node) bool {
	spec, ok := m.specs[p.Value]
	if !ok {
		var err error
		if spec, err = rules.ParseTypeSpec(p.Value); err != nil {
			return false
		}
	}
	if patterns, declared := m.types[spec.Name]; declared {
		for _, tp := range patterns {
			if m.match(tp, n) {
				return true
			}
		}
		return false
	}
	classify, ok := rules.Builtin(spec.Name)
	return ok && classify(n, spec, m.env)
}
