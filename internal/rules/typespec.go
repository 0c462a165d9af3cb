package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Cmp is the comparison in a numeric type parameter.
type Cmp int

const (
	CmpNone Cmp = iota
	CmpEq
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (c Cmp) String() string {
	switch c {
	case CmpEq:
		return "="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	default:
		return ""
	}
}

// Holds reports whether v satisfies the comparison against n. CmpNone
// always holds.
func (c Cmp) Holds(v, n int) bool {
	switch c {
	case CmpEq:
		return v == n
	case CmpLt:
		return v < n
	case CmpLe:
		return v <= n
	case CmpGt:
		return v > n
	case CmpGe:
		return v >= n
	}
	return true
}

// TypeSpec is a parsed \type{...} body such as "integer,3",
// "polynomial,>2" or "matrix,2x3".
type TypeSpec struct {
	Name string
	Cmp  Cmp
	N    int
	// Rows and Cols are set by an RxC parameter; zero means any.
	Rows, Cols int
}

func (s TypeSpec) String() string {
	switch {
	case s.Rows > 0 || s.Cols > 0:
		return fmt.Sprintf("%s,%dx%d", s.Name, s.Rows, s.Cols)
	case s.Cmp == CmpEq:
		return fmt.Sprintf("%s,%d", s.Name, s.N)
	case s.Cmp != CmpNone:
		return fmt.Sprintf("%s,%s%d", s.Name, s.Cmp, s.N)
	}
	return s.Name
}

// ParseTypeSpec splits a type body into its name and optional parameter.
func ParseTypeSpec(body string) (TypeSpec, error) {
	body = strings.TrimSpace(body)
	name, param, hasParam := strings.Cut(body, ",")
	spec := TypeSpec{Name: strings.TrimSpace(name)}
	if spec.Name == "" {
		return spec, fmt.Errorf("empty type name")
	}
	if !hasParam {
		return spec, nil
	}

	param = strings.TrimSpace(param)
	if r, c, ok := strings.Cut(param, "x"); ok {
		rows, err1 := strconv.Atoi(r)
		cols, err2 := strconv.Atoi(c)
		if err1 != nil || err2 != nil || rows < 1 || cols < 1 {
			return spec, fmt.Errorf("invalid dimensions %q", param)
		}
		spec.Rows, spec.Cols = rows, cols
		return spec, nil
	}

	spec.Cmp = CmpEq
	for _, p := range []struct {
		prefix string
		cmp    Cmp
	}{
		{">=", CmpGe}, {"<=", CmpLe}, {">", CmpGt}, {"<", CmpLt}, {"=", CmpEq},
	} {
		if strings.HasPrefix(param, p.prefix) {
			spec.Cmp = p.cmp
			param = param[len(p.prefix):]
			break
		}
	}
	n, err := strconv.Atoi(param)
	if err != nil || n < 0 {
		return spec, fmt.Errorf("invalid parameter %q", param)
	}
	spec.N = n
	return spec, nil
}
