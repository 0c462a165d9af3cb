// Package directive implements the functions behind template directives
// such as $fmt, $cell and $range.
package directive

import (
	"fmt"
	"sort"

	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
	"github.com/gnolang/mtrans/internal/types"
)

// Names lists the directive names a template may invoke. Any other $word
// in a template is literal text.
var Names = []string{
	"fmt", "cell", "range",
	"add", "minus", "multiply", "divide", "percent",
	"fn", "normalize",
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(Names))
	for _, n := range Names {
		m[n] = true
	}
	return m
}()

// Known reports whether name is a directive name.
func Known(name string) bool {
	return known[name]
}

// Call is one directive invocation. Args are already translated.
type Call struct {
	Name    string
	Args    []string
	Config  string
	Env     *env.Env
	Options *types.Options

	// Translate renders source text with the active rules in frame e.
	// It is nil when the caller does not support re-entrant translation.
	Translate func(src string, e *env.Env) (string, error)
}

// Arg returns the i-th argument or "".
func (c *Call) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

func (c *Call) options() *types.Options {
	if c.Options == nil {
		return types.Default()
	}
	return c.Options
}

// Func renders a directive call.
type Func func(c *Call) (string, error)

// Registry maps directive names to their functions.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds f to name. Only the names in Names can be bound.
func (r *Registry) Register(name string, f Func) error {
	if !Known(name) {
		return fmt.Errorf("unknown directive %q", name)
	}
	if f == nil {
		return fmt.Errorf("nil function for directive %q", name)
	}
	r.funcs[name] = f
	return nil
}

// Has reports whether name is bound.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Bound lists the bound names, sorted.
func (r *Registry) Bound() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expand runs the function bound to c.Name.
func (r *Registry) Expand(c *Call) (string, error) {
	f, ok := r.funcs[c.Name]
	if !ok {
		return "", diag.New(diag.KindConfig, diag.CodeUnknownDirective, -1, "$"+c.Name)
	}
	return f(c)
}

// Defaults returns a registry with every directive bound to its default
// implementation.
func Defaults() *Registry {
	r := NewRegistry()
	for name, f := range map[string]Func{
		"fmt":       Format,
		"cell":      Cell,
		"range":     Range,
		"add":       Add,
		"minus":     Minus,
		"multiply":  Multiply,
		"divide":    Divide,
		"percent":   Percent,
		"fn":        Fn,
		"normalize": Normalize,
	} {
		if err := r.Register(name, f); err != nil {
			panic(err)
		}
	}
	return r
}
