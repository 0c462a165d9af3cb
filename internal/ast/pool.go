package ast

import (
	"strconv"
	"strings"
)

// ID identifies a structurally unique tree within one Pool.
type ID int32

// Pool interns trees so that structurally identical trees share an ID.
// Identity covers the operator, the argument IDs or leaf value, and
// bracket glyphs that differ from the operator's defaults. All other
// attributes are ignored.
//
// A Pool is scoped to one translation call and is not safe for concurrent
// use.
type Pool struct {
	ids   map[string]ID
	nodes []*Node
	memo  map[*Node]ID
}

func NewPool() *Pool {
	return &Pool{
		ids:  make(map[string]ID),
		memo: make(map[*Node]ID),
	}
}

// Intern returns the ID of n, assigning a new one for unseen shapes.
// Nodes must not be mutated structurally after they are interned.
func (p *Pool) Intern(n *Node) ID {
	if id, ok := p.memo[n]; ok {
		return id
	}
	k := p.key(n)
	id, ok := p.ids[k]
	if !ok {
		id = ID(len(p.nodes))
		p.ids[k] = id
		p.nodes = append(p.nodes, n)
	}
	p.memo[n] = id
	return id
}

// Node returns a fresh copy of the canonical tree for id.
func (p *Pool) Node(id ID) *Node {
	if int(id) < 0 || int(id) >= len(p.nodes) {
		return nil
	}
	return Clone(p.nodes[id])
}

// Len reports how many distinct shapes have been interned.
func (p *Pool) Len() int {
	return len(p.nodes)
}

// Equal reports structural equality under the pool's identity rule.
func (p *Pool) Equal(a, b *Node) bool {
	return p.Intern(a) == p.Intern(b)
}

func (p *Pool) key(n *Node) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(n.Op)))
	if n.Op.IsLeaf() {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(len(n.Value)))
		sb.WriteByte(':')
		sb.WriteString(n.Value)
	} else {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(len(n.Args)))
		for _, a := range n.Args {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(int(p.Intern(a))))
		}
	}
	l, r := n.Op.DefaultBrackets()
	if n.Lbrk != "" && n.Lbrk != l {
		sb.WriteString("|l")
		sb.WriteString(n.Lbrk)
	}
	if n.Rbrk != "" && n.Rbrk != r {
		sb.WriteString("|r")
		sb.WriteString(n.Rbrk)
	}
	return sb.String()
}
