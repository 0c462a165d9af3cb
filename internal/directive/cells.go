package directive

import (
	"fmt"
	"strconv"
	"strings"
)

// cellRef is a parsed spreadsheet reference; col and row are 1-based.
type cellRef struct {
	col, row int
}

func parseCell(s string) (cellRef, error) {
	s = strings.TrimSpace(s)
	i := 0
	col := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(s) || s[i] == '0' {
		return cellRef{}, fmt.Errorf("invalid cell name %q", s)
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return cellRef{}, fmt.Errorf("invalid cell name %q", s)
	}
	return cellRef{col: col, row: row}, nil
}

func columnName(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func (c cellRef) String() string {
	return columnName(c.col) + strconv.Itoa(c.row)
}

// maxRangeCells bounds the size of an expanded range.
const maxRangeCells = 10_000

// Range expands two corner cells into every cell between them in
// row-major order. A single "A1:B2" argument is accepted as well. The
// separator is the config, a comma by default.
func Range(c *Call) (string, error) {
	from, to := c.Arg(0), c.Arg(1)
	if len(c.Args) == 1 {
		var ok bool
		from, to, ok = strings.Cut(from, ":")
		if !ok {
			return "", fmt.Errorf("invalid range %q", c.Arg(0))
		}
	}
	a, err := parseCell(from)
	if err != nil {
		return "", err
	}
	b, err := parseCell(to)
	if err != nil {
		return "", err
	}

	r0, r1 := min(a.row, b.row), max(a.row, b.row)
	c0, c1 := min(a.col, b.col), max(a.col, b.col)
	if (r1-r0+1)*(c1-c0+1) > maxRangeCells {
		return "", fmt.Errorf("range %s:%s is too large", a, b)
	}

	sep := c.Config
	if sep == "" {
		sep = ","
	}
	var cells []string
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			cells = append(cells, cellRef{col: col, row: r}.String())
		}
	}
	return strings.Join(cells, sep), nil
}

// Cell looks a cell name up in the environment. A value starting with '='
// is a formula and is translated in a fresh frame. A formula that reaches
// its own cell again is an error.
func Cell(c *Call) (string, error) {
	name := strings.TrimSpace(c.Arg(0))
	if _, err := parseCell(name); err != nil {
		return "", err
	}
	if c.Env == nil {
		return "", fmt.Errorf("no environment for cell %s", name)
	}
	sym, ok := c.Env.Lookup(name)
	if !ok {
		return "", fmt.Errorf("undefined cell %s", name)
	}
	formula, isFormula := strings.CutPrefix(sym.Value, "=")
	if !isFormula {
		return sym.Value, nil
	}
	if c.Translate == nil {
		return formula, nil
	}
	if c.Env.IsEvaluating(name) {
		return "", fmt.Errorf("circular reference to cell %s", name)
	}
	return c.Translate(formula, c.Env.Evaluating(name))
}
