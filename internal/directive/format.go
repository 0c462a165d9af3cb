package directive

import (
	"math/big"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/gnolang/mtrans/internal/types"
)

// numberFormat is a parsed spreadsheet number format such as "$#,##0.00"
// or "0.0%".
type numberFormat struct {
	prefix, suffix string

	group   bool
	percent bool

	minInt  int
	minFrac int
	maxFrac int
}

// parseNumberFormat splits a format into its literal affixes and the
// digit section between the first and last '#' or '0'. ok is false when
// the format has no digit section.
func parseNumberFormat(s string) (f numberFormat, ok bool) {
	start := strings.IndexAny(s, "#0")
	if start < 0 {
		return f, false
	}
	end := strings.LastIndexAny(s, "#0")
	f.prefix, f.suffix = s[:start], s[end+1:]
	f.percent = strings.Contains(f.prefix, "%") || strings.Contains(f.suffix, "%")

	digits := s[start : end+1]
	intPart, fracPart, _ := strings.Cut(digits, ".")
	f.group = strings.Contains(intPart, ",")
	f.minInt = strings.Count(intPart, "0")
	f.minFrac = strings.Count(fracPart, "0")
	f.maxFrac = f.minFrac + strings.Count(fracPart, "#")
	return f, true
}

// printerTag picks a locale whose separators match the options.
func printerTag(opts *types.Options) language.Tag {
	if opts.DecimalSeparator == ',' {
		return language.German
	}
	return language.English
}

func (f numberFormat) render(r *big.Rat, opts *types.Options) string {
	if f.percent {
		r = new(big.Rat).Mul(r, big.NewRat(100, 1))
	}
	neg := r.Sign() < 0
	v, _ := new(big.Rat).Abs(r).Float64()

	numOpts := []number.Option{
		number.MinIntegerDigits(f.minInt),
		number.MinFractionDigits(f.minFrac),
		number.MaxFractionDigits(f.maxFrac),
	}
	if !f.group {
		numOpts = append(numOpts, number.NoSeparator())
	}
	body := message.NewPrinter(printerTag(opts)).Sprint(number.Decimal(v, numOpts...))

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(f.prefix)
	sb.WriteString(body)
	sb.WriteString(f.suffix)
	return sb.String()
}

// Format renders its argument with the spreadsheet number format in the
// config. Without a usable format the number is normalized.
func Format(c *Call) (string, error) {
	r, err := parseNumber(c.Arg(0), c.options())
	if err != nil {
		return "", err
	}
	f, ok := parseNumberFormat(c.Config)
	if !ok {
		return formatRat(r, c.options().DecimalPlaces, c.options()), nil
	}
	return f.render(r, c.options()), nil
}
