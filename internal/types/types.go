package types

import (
	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
)

// Field is the number field expressions are interpreted over.
type Field string

const (
	FieldInteger  Field = "integer"
	FieldRational Field = "rational"
	FieldReal     Field = "real"
	FieldComplex  Field = "complex"
)

// ContextFlag is a rendering condition a template may require.
type ContextFlag int

const (
	FlagNoParens ContextFlag = iota + 1
	FlagEndRoot
)

func (f ContextFlag) String() string {
	switch f {
	case FlagNoParens:
		return "NoParens"
	case FlagEndRoot:
		return "EndRoot"
	default:
		return "unknown"
	}
}

func ParseContextFlag(s string) (ContextFlag, bool) {
	switch s {
	case "NoParens":
		return FlagNoParens, true
	case "EndRoot":
		return FlagEndRoot, true
	}
	return 0, false
}

// Options is the validated option record for one translation.
type Options struct {
	Field         Field
	DecimalPlaces int // -1 when unset

	Tolerance         float64
	ToleranceAbsolute float64
	ToleranceRelative float64

	ThousandsSeparators []rune
	DecimalSeparator    rune

	AllowThousandsSeparator bool
	AllowInterval           bool
	AllowDecimal            bool
	AllowEulersNumber       bool

	IgnoreText           bool
	IgnoreTrailingZeros  bool
	IgnoreCoefficientOne bool
	IgnoreOrder          bool

	KeepTextWhitespace     bool
	DontExpandPowers       bool
	DontFactorDenominators bool
	ReverseComparisons     bool
	Normalize              bool
	Chemistry              bool
	Strict                 bool

	NoParens bool
	EndRoot  bool

	MaxSteps int

	Words map[string]string
	Types map[string][]string
	// Rules is kept in caller form; the rule loader validates it.
	Rules any
	Env   map[string]env.Symbol
}

// Default returns the options used when the caller supplies none.
func Default() *Options {
	return &Options{
		Field:                   FieldReal,
		DecimalPlaces:           -1,
		ThousandsSeparators:     []rune{','},
		DecimalSeparator:        '.',
		AllowThousandsSeparator: true,
		AllowInterval:           true,
		AllowDecimal:            true,
		AllowEulersNumber:       true,
		MaxSteps:                diag.DefaultMaxSteps,
		Words:                   map[string]string{},
		Types:                   map[string][]string{},
		Env:                     map[string]env.Symbol{},
	}
}

// Flag reports whether a context flag is active.
func (o *Options) Flag(f ContextFlag) bool {
	switch f {
	case FlagNoParens:
		return o.NoParens
	case FlagEndRoot:
		return o.EndRoot
	}
	return false
}

// IsThousandsSeparator reports whether r groups digits under o.
func (o *Options) IsThousandsSeparator(r rune) bool {
	for _, s := range o.ThousandsSeparators {
		if s == r {
			return true
		}
	}
	return false
}
