package translate

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gnolang/mtrans/internal/ast"
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/directive"
	"github.com/gnolang/mtrans/internal/rules"
)

// expansion is one template being expanded for one node. Translated
// arguments are memoized so a placeholder used twice is rendered once.
type expansion struct {
	t    *Translator
	n    *ast.Node
	tmpl *rules.Template
	args []*ast.Node
	memo map[int]string
}

// run expands the placeholders and directives in s.
func (x *expansion) run(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%':
			if x.variadic(&sb, s, i) {
				return sb.String()
			}
			i += x.placeholder(&sb, s[i+1:])
		case '$':
			out, next, ok := x.directive(s, i)
			if !ok {
				sb.WriteByte('$')
				continue
			}
			sb.WriteString(out)
			i = next - 1
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// placeholder writes the value of the placeholder that follows a '%' and
// returns how many bytes of rest it consumed.
func (x *expansion) placeholder(sb *strings.Builder, rest string) int {
	switch {
	case strings.HasPrefix(rest, "%"):
		sb.WriteString(x.whole())
		return 1
	case strings.HasPrefix(rest, "IP"):
		ip, _ := x.decimalParts()
		sb.WriteString(x.t.word(ip))
		return 2
	case strings.HasPrefix(rest, "FP0"):
		_, fp := x.decimalParts()
		digits := make([]string, 0, len(fp))
		for _, d := range fp {
			digits = append(digits, x.t.word(string(d)))
		}
		sb.WriteString(strings.Join(digits, " "))
		return 3
	case strings.HasPrefix(rest, "FP"):
		_, fp := x.decimalParts()
		if fp != "" {
			sb.WriteString(x.t.word(fp))
		}
		return 2
	case strings.HasPrefix(rest, "M"):
		sb.WriteString(strconv.Itoa(x.n.M))
		return 1
	case strings.HasPrefix(rest, "N"):
		sb.WriteString(strconv.Itoa(x.n.N))
		return 1
	case rest != "" && rest[0] >= '1' && rest[0] <= '9':
		sb.WriteString(x.arg(int(rest[0] - '0')))
		return 1
	}
	sb.WriteByte('%')
	return 0
}

// variadic handles %* at s[i]: every argument past the highest positional
// placeholder is written, separated by the expanded remainder of s.
func (x *expansion) variadic(sb *strings.Builder, s string, i int) bool {
	if !strings.HasPrefix(s[i:], "%*") {
		return false
	}
	sep := s[i+2:]
	first := x.tmpl.Placeholders + 1
	for k := first; k <= len(x.args); k++ {
		if k > first {
			sb.WriteString(x.run(sep))
		}
		sb.WriteString(x.arg(k))
	}
	return true
}

// arg returns the k-th argument, translated. A leaf is its own single
// argument and renders through the words table.
func (x *expansion) arg(k int) string {
	if x.n.Op.IsLeaf() {
		if k == 1 && x.n.Op != ast.OpNone {
			return x.t.word(x.n.Value)
		}
		return ""
	}
	if k < 1 || k > len(x.args) {
		return ""
	}
	if s, ok := x.memo[k]; ok {
		return s
	}
	s := x.t.within(x.tmpl.ArgRules[k], x.args[k-1])
	if x.memo == nil {
		x.memo = make(map[int]string)
	}
	x.memo[k] = s
	return s
}

// allArgs translates every argument in order.
func (x *expansion) allArgs() []string {
	if x.n.Op.IsLeaf() {
		if x.n.Op == ast.OpNone {
			return nil
		}
		return []string{x.arg(1)}
	}
	out := make([]string, len(x.args))
	for k := range x.args {
		out[k] = x.arg(k + 1)
	}
	return out
}

// whole is the node's literal text.
func (x *expansion) whole() string {
	if x.n.Op.IsLeaf() {
		return x.n.Value
	}
	return ast.Render(x.n)
}

// decimalParts splits the literal value at the decimal point.
func (x *expansion) decimalParts() (ip, fp string) {
	ip, fp, _ = strings.Cut(x.whole(), ".")
	return ip, fp
}

// directive expands a $name or $name{body} call at s[i]. It returns the
// output and the index just past the call, or ok false when s[i:] is not
// a directive call.
func (x *expansion) directive(s string, i int) (out string, next int, ok bool) {
	j := i + 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	name := s[i+1 : j]
	if !directive.Known(name) {
		return "", i, false
	}

	call := &directive.Call{
		Name:      name,
		Env:       x.t.cfg.Env,
		Options:   x.t.cfg.Options,
		Translate: x.t.cfg.Recurse,
	}
	if j < len(s) && s[j] == '{' {
		end := closingBrace(s, j)
		if end < 0 {
			return "", i, false
		}
		left, config := splitTopLevel(s[j+1 : end])
		call.Args = []string{x.run(left)}
		call.Config = config
		j = end + 1
	} else {
		call.Args = x.allArgs()
	}

	out, err := x.t.cfg.Expander.Expand(call)
	if err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			diag.Raise(err)
		}
		diag.Fail(diag.KindConfig, diag.CodeDirectiveFailed, -1, "$"+name, err)
	}
	return out, j, true
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// closingBrace returns the index of the brace closing s[open], or -1.
func closingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits body at its first comma outside braces.
func splitTopLevel(body string) (left, right string) {
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				return body[:i], body[i+1:]
			}
		}
	}
	return body, ""
}
