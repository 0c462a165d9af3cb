package directive

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"

	"github.com/gnolang/mtrans/internal/types"
)

// maxFractionDigits bounds the expansion of non-terminating quotients.
const maxFractionDigits = 20

// fnPrec is the mantissa precision used by $fn.
const fnPrec = 128

var errDivByZero = errors.New("division by zero")

// parseNumber reads s as an exact rational, honoring the configured
// separators. Fractions such as 1/3 are accepted.
func parseNumber(s string, opts *types.Options) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	var sb strings.Builder
	for _, r := range s {
		switch {
		case opts.IsThousandsSeparator(r) && r != opts.DecimalSeparator:
			continue
		case r == opts.DecimalSeparator:
			sb.WriteByte('.')
		default:
			sb.WriteRune(r)
		}
	}
	r, ok := new(big.Rat).SetString(sb.String())
	if !ok {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return r, nil
}

// places returns the decimal places requested by config, falling back to
// the decimalPlaces option. -1 means as many as needed.
func places(config string, opts *types.Options) (int, error) {
	config = strings.TrimSpace(config)
	if config == "" {
		return opts.DecimalPlaces, nil
	}
	n, err := strconv.Atoi(config)
	if err != nil || n < 0 || n > maxFractionDigits {
		return 0, fmt.Errorf("invalid decimal places %q", config)
	}
	return n, nil
}

// formatRat renders r in plain decimal notation. With places < 0 trailing
// zeros are trimmed.
func formatRat(r *big.Rat, places int, opts *types.Options) string {
	var s string
	switch {
	case places >= 0:
		s = r.FloatString(places)
	case r.IsInt():
		s = r.Num().String()
	default:
		s = r.FloatString(maxFractionDigits)
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	if opts.DecimalSeparator != '.' && opts.DecimalSeparator != 0 {
		s = strings.Replace(s, ".", string(opts.DecimalSeparator), 1)
	}
	return s
}

func operands(c *Call) ([]*big.Rat, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("$%s needs an argument", c.Name)
	}
	out := make([]*big.Rat, len(c.Args))
	for i, a := range c.Args {
		r, err := parseNumber(a, c.options())
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// fold applies op left to right over the arguments. A single argument is
// passed to unary when it is not nil.
func fold(c *Call, op func(z, x, y *big.Rat) error, unary func(x *big.Rat) *big.Rat) (string, error) {
	xs, err := operands(c)
	if err != nil {
		return "", err
	}
	dp, err := places(c.Config, c.options())
	if err != nil {
		return "", err
	}
	acc := new(big.Rat).Set(xs[0])
	if len(xs) == 1 && unary != nil {
		acc = unary(acc)
	}
	for _, x := range xs[1:] {
		if err := op(acc, acc, x); err != nil {
			return "", err
		}
	}
	return formatRat(acc, dp, c.options()), nil
}

// Add sums its arguments.
func Add(c *Call) (string, error) {
	return fold(c, func(z, x, y *big.Rat) error {
		z.Add(x, y)
		return nil
	}, nil)
}

// Minus subtracts the remaining arguments from the first, or negates a
// single argument.
func Minus(c *Call) (string, error) {
	return fold(c, func(z, x, y *big.Rat) error {
		z.Sub(x, y)
		return nil
	}, func(x *big.Rat) *big.Rat { return x.Neg(x) })
}

func Multiply(c *Call) (string, error) {
	return fold(c, func(z, x, y *big.Rat) error {
		z.Mul(x, y)
		return nil
	}, nil)
}

func Divide(c *Call) (string, error) {
	return fold(c, func(z, x, y *big.Rat) error {
		if y.Sign() == 0 {
			return errDivByZero
		}
		z.Quo(x, y)
		return nil
	}, nil)
}

// Percent renders x/100, or x percent of y with two arguments.
func Percent(c *Call) (string, error) {
	hundred := big.NewRat(100, 1)
	return fold(c, func(z, x, y *big.Rat) error {
		z.Mul(x, y)
		z.Quo(z, hundred)
		return nil
	}, func(x *big.Rat) *big.Rat { return x.Quo(x, hundred) })
}

// Normalize renders its argument canonically.
func Normalize(c *Call) (string, error) {
	r, err := parseNumber(c.Arg(0), c.options())
	if err != nil {
		return "", err
	}
	dp, err := places(c.Config, c.options())
	if err != nil {
		return "", err
	}
	return formatRat(r, dp, c.options()), nil
}

// Fn applies a named function. The name is the config, or the first
// argument when there is no config.
func Fn(c *Call) (string, error) {
	name, args := strings.TrimSpace(c.Config), c.Args
	if name == "" {
		if len(args) == 0 {
			return "", errors.New("$fn needs a function name")
		}
		name, args = strings.TrimSpace(args[0]), args[1:]
	}

	xs := make([]*big.Float, len(args))
	for i, a := range args {
		r, err := parseNumber(a, c.options())
		if err != nil {
			return "", err
		}
		xs[i] = new(big.Float).SetPrec(fnPrec).SetRat(r)
	}
	arity := map[string]int{"exp": 1, "ln": 1, "log": 1, "sqrt": 1, "pow": 2}
	want, ok := arity[name]
	if !ok {
		return "", fmt.Errorf("unknown function %q", name)
	}
	if len(xs) != want {
		return "", fmt.Errorf("%s takes %d argument(s), got %d", name, want, len(xs))
	}

	z := new(big.Float).SetPrec(fnPrec)
	switch name {
	case "exp":
		bigfloat.Exp(z, xs[0])
	case "ln", "log":
		if xs[0].Sign() <= 0 {
			return "", fmt.Errorf("%s of non-positive number", name)
		}
		bigfloat.Log(z, xs[0])
		if name == "log" {
			ten := new(big.Float).SetPrec(fnPrec).SetInt64(10)
			bigfloat.Log(ten, ten)
			z.Quo(z, ten)
		}
	case "sqrt":
		if xs[0].Sign() < 0 {
			return "", errors.New("sqrt of negative number")
		}
		z.Sqrt(xs[0])
	case "pow":
		switch {
		case xs[0].Sign() < 0:
			return "", errors.New("pow of negative base")
		case xs[0].Sign() == 0 && xs[1].Sign() <= 0:
			return "", errors.New("pow of zero to a non-positive exponent")
		case xs[0].Sign() == 0:
			z.SetInt64(0)
		default:
			bigfloat.Pow(z, xs[0], xs[1])
		}
	}
	if z.IsInf() {
		return "", fmt.Errorf("%s overflows", name)
	}

	r, _ := z.Rat(nil)
	dp := c.options().DecimalPlaces
	if dp < 0 {
		dp = 15
		s := formatRat(r, dp, c.options())
		if strings.ContainsAny(s, ".,") {
			s = strings.TrimRight(s, "0")
			s = strings.TrimRight(s, ".,")
		}
		if s == "-0" {
			s = "0"
		}
		return s, nil
	}
	return formatRat(r, dp, c.options()), nil
}
