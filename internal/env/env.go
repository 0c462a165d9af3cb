package env

import (
	"sort"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// SymbolType classifies an identifier.
type SymbolType int

const (
	SymbolVar SymbolType = iota
	SymbolConst
	SymbolUnit
	SymbolFunc
)

func (t SymbolType) String() string {
	switch t {
	case SymbolConst:
		return "const"
	case SymbolUnit:
		return "unit"
	case SymbolFunc:
		return "func"
	default:
		return "var"
	}
}

// ParseSymbolType maps the config spelling of a symbol type.
func ParseSymbolType(s string) (SymbolType, bool) {
	switch s {
	case "var", "":
		return SymbolVar, true
	case "const":
		return SymbolConst, true
	case "unit":
		return SymbolUnit, true
	case "func":
		return SymbolFunc, true
	}
	return SymbolVar, false
}

type Symbol struct {
	Type  SymbolType
	Value string
	Mass  float64 // molar mass for element symbols, 0 otherwise
}

// Env is a symbol table with an optional parent. Lookups fall through to
// the parent; definitions never do.
type Env struct {
	parent  *Env
	symbols map[string]Symbol
	mutex   sync.RWMutex

	// evaluating names the cell whose formula is translated in this frame.
	evaluating string

	ids    []string
	idsGen uint64
}

// generation advances on every Define so cached identifier lists can tell
// when a frame they were built from has changed.
var generation atomic.Uint64

func New(parent *Env) *Env {
	return &Env{
		parent:  parent,
		symbols: make(map[string]Symbol),
	}
}

// Derive returns a child frame of e.
func (e *Env) Derive() *Env {
	return New(e)
}

func (e *Env) Parent() *Env {
	return e.parent
}

func (e *Env) Define(name string, sym Symbol) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.symbols[name] = sym
	generation.Add(1)
}

// Evaluating returns a child frame of e marked as evaluating cell name.
func (e *Env) Evaluating(name string) *Env {
	child := New(e)
	child.evaluating = name
	return child
}

// IsEvaluating reports whether e or one of its parents is evaluating cell
// name.
func (e *Env) IsEvaluating(name string) bool {
	if name == "" {
		return false
	}
	for cur := e; cur != nil; cur = cur.parent {
		if cur.evaluating == name {
			return true
		}
	}
	return false
}

func (e *Env) Lookup(name string) (Symbol, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		cur.mutex.RLock()
		sym, ok := cur.symbols[name]
		cur.mutex.RUnlock()
		if ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Names lists every visible name, sorted.
func (e *Env) Names() []string {
	seen := make(map[string]bool)
	for cur := e; cur != nil; cur = cur.parent {
		cur.mutex.RLock()
		for name := range cur.symbols {
			seen[name] = true
		}
		cur.mutex.RUnlock()
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Identifiers lists the visible multi-letter names that the scanner should
// match greedily, longest first. Only purely alphabetic names qualify, so
// control words and cell names such as A1 are excluded. The result is
// shared and must not be modified.
func (e *Env) Identifiers() []string {
	e.mutex.RLock()
	empty := len(e.symbols) == 0
	e.mutex.RUnlock()
	if empty && e.parent != nil {
		return e.parent.Identifiers()
	}

	gen := generation.Load()
	e.mutex.RLock()
	ids, cached := e.ids, e.idsGen == gen && e.ids != nil
	e.mutex.RUnlock()
	if cached {
		return ids
	}

	ids = []string{}
	for _, name := range e.Names() {
		if utf8.RuneCountInString(name) < 2 || !isAlpha(name) {
			continue
		}
		ids = append(ids, name)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return len(ids[i]) > len(ids[j])
	})

	e.mutex.Lock()
	e.ids, e.idsGen = ids, gen
	e.mutex.Unlock()
	return ids
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
