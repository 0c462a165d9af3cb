package types

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/gnolang/mtrans/internal/diag"
	"github.com/gnolang/mtrans/internal/env"
)

type setter func(o *Options, v any) error

var boolOptions = map[string]func(o *Options) *bool{
	"allowThousandsSeparator": func(o *Options) *bool { return &o.AllowThousandsSeparator },
	"allowInterval":           func(o *Options) *bool { return &o.AllowInterval },
	"allowDecimal":            func(o *Options) *bool { return &o.AllowDecimal },
	"allowEulersNumber":       func(o *Options) *bool { return &o.AllowEulersNumber },
	"ignoreText":              func(o *Options) *bool { return &o.IgnoreText },
	"ignoreTrailingZeros":     func(o *Options) *bool { return &o.IgnoreTrailingZeros },
	"ignoreCoefficientOne":    func(o *Options) *bool { return &o.IgnoreCoefficientOne },
	"ignoreOrder":             func(o *Options) *bool { return &o.IgnoreOrder },
	"keepTextWhitespace":      func(o *Options) *bool { return &o.KeepTextWhitespace },
	"dontExpandPowers":        func(o *Options) *bool { return &o.DontExpandPowers },
	"dontFactorDenominators":  func(o *Options) *bool { return &o.DontFactorDenominators },
	"reverseComparisons":      func(o *Options) *bool { return &o.ReverseComparisons },
	"normalize":               func(o *Options) *bool { return &o.Normalize },
	"chemistry":               func(o *Options) *bool { return &o.Chemistry },
	"strict":                  func(o *Options) *bool { return &o.Strict },
	"NoParens":                func(o *Options) *bool { return &o.NoParens },
	"EndRoot":                 func(o *Options) *bool { return &o.EndRoot },
}

var tolerances = map[string]func(o *Options) *float64{
	"tolerance":         func(o *Options) *float64 { return &o.Tolerance },
	"toleranceAbsolute": func(o *Options) *float64 { return &o.ToleranceAbsolute },
	"toleranceRelative": func(o *Options) *float64 { return &o.ToleranceRelative },
}

var setters = map[string]setter{
	"field":                 setField,
	"decimalPlaces":         setDecimalPlaces,
	"setThousandsSeparator": setThousandsSeparator,
	"setDecimalSeparator":   setDecimalSeparator,
	"maxSteps":              setMaxSteps,
	"words":                 setWords,
	"types":                 setTypes,
	"rules":                 func(o *Options, v any) error { o.Rules = v; return nil },
	"env":                   setEnv,
}

// Names lists every recognized option name, sorted.
func Names() []string {
	var names []string
	for n := range boolOptions {
		names = append(names, n)
	}
	for n := range tolerances {
		names = append(names, n)
	}
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseOptions validates raw caller options over Default. Unknown names
// yield an option error with code 2001, bad values code 2002. Names are
// checked in sorted order so the reported error is deterministic.
func ParseOptions(raw map[string]any) (*Options, error) {
	o := Default()

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := raw[name]
		var err error
		switch {
		case boolOptions[name] != nil:
			var b bool
			if b, err = asBool(v); err == nil {
				*boolOptions[name](o) = b
			}
		case tolerances[name] != nil:
			var f float64
			if f, err = asFloat(v); err == nil && f < 0 {
				err = fmt.Errorf("must not be negative")
			}
			if err == nil {
				*tolerances[name](o) = f
			}
		case setters[name] != nil:
			err = setters[name](o, v)
		default:
			return nil, diag.New(diag.KindOption, diag.CodeUnknownOption, -1, name)
		}
		if err != nil {
			return nil, diag.New(diag.KindOption, diag.CodeInvalidOption, -1, name, err)
		}
	}

	if o.IsThousandsSeparator(o.DecimalSeparator) {
		return nil, diag.New(diag.KindOption, diag.CodeInvalidOption, -1,
			"setDecimalSeparator", "conflicts with a thousands separator")
	}
	return o, nil
}

func setField(o *Options, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	switch f := Field(s); f {
	case FieldInteger, FieldRational, FieldReal, FieldComplex:
		o.Field = f
		return nil
	}
	return fmt.Errorf("unknown field %q", s)
}

func setDecimalPlaces(o *Options, v any) error {
	n, err := asInt(v)
	if err != nil {
		return err
	}
	if n < 0 || n > 20 {
		return fmt.Errorf("%d out of range 0..20", n)
	}
	o.DecimalPlaces = n
	return nil
}

func setMaxSteps(o *Options, v any) error {
	n, err := asInt(v)
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	o.MaxSteps = n
	return nil
}

func setThousandsSeparator(o *Options, v any) error {
	var seps []string
	switch t := v.(type) {
	case string:
		seps = []string{t}
	case []string:
		seps = t
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", e)
			}
			seps = append(seps, s)
		}
	default:
		return fmt.Errorf("expected string or list, got %T", v)
	}
	runes := make([]rune, 0, len(seps))
	for _, s := range seps {
		r, err := singleRune(s)
		if err != nil {
			return err
		}
		runes = append(runes, r)
	}
	o.ThousandsSeparators = runes
	return nil
}

func setDecimalSeparator(o *Options, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	r, err := singleRune(s)
	if err != nil {
		return err
	}
	if r >= '0' && r <= '9' {
		return fmt.Errorf("digit %q cannot separate decimals", r)
	}
	o.DecimalSeparator = r
	return nil
}

func setWords(o *Options, v any) error {
	m, err := asStringMap(v)
	if err != nil {
		return err
	}
	o.Words = m
	return nil
}

func setTypes(o *Options, v any) error {
	out := make(map[string][]string)
	switch t := v.(type) {
	case map[string][]string:
		for k, ps := range t {
			out[k] = append([]string(nil), ps...)
		}
	case map[string]any:
		for k, e := range t {
			switch ps := e.(type) {
			case string:
				out[k] = []string{ps}
			case []string:
				out[k] = append([]string(nil), ps...)
			case []any:
				for _, p := range ps {
					s, ok := p.(string)
					if !ok {
						return fmt.Errorf("type %s: expected pattern string, got %T", k, p)
					}
					out[k] = append(out[k], s)
				}
			default:
				return fmt.Errorf("type %s: expected list of patterns, got %T", k, e)
			}
		}
	default:
		return fmt.Errorf("expected map, got %T", v)
	}
	o.Types = out
	return nil
}

func setEnv(o *Options, v any) error {
	out := make(map[string]env.Symbol)
	switch t := v.(type) {
	case map[string]string:
		for k, val := range t {
			out[k] = env.Symbol{Type: env.SymbolVar, Value: val}
		}
	case map[string]env.Symbol:
		for k, sym := range t {
			out[k] = sym
		}
	case map[string]any:
		for k, e := range t {
			sym, err := asSymbol(e)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			out[k] = sym
		}
	default:
		return fmt.Errorf("expected map, got %T", v)
	}
	o.Env = out
	return nil
}

func asSymbol(v any) (env.Symbol, error) {
	switch t := v.(type) {
	case string:
		return env.Symbol{Type: env.SymbolVar, Value: t}, nil
	case int, int64, float64:
		s, _ := asString(t)
		return env.Symbol{Type: env.SymbolVar, Value: s}, nil
	case map[string]any:
		var sym env.Symbol
		for k, e := range t {
			switch k {
			case "type":
				s, ok := e.(string)
				if !ok {
					return sym, fmt.Errorf("type: expected string, got %T", e)
				}
				typ, ok := env.ParseSymbolType(s)
				if !ok {
					return sym, fmt.Errorf("unknown symbol type %q", s)
				}
				sym.Type = typ
			case "value":
				s, err := asString(e)
				if err != nil {
					return sym, err
				}
				sym.Value = s
			case "mass":
				f, err := asFloat(e)
				if err != nil {
					return sym, err
				}
				sym.Mass = f
			default:
				return sym, fmt.Errorf("unknown symbol field %q", k)
			}
		}
		return sym, nil
	}
	return env.Symbol{}, fmt.Errorf("expected string or map, got %T", v)
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("expected integer, got %v", t)
		}
		return int(t), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

func asStringMap(v any) (map[string]string, error) {
	out := make(map[string]string)
	switch t := v.(type) {
	case map[string]string:
		for k, s := range t {
			out[k] = s
		}
	case map[string]any:
		for k, e := range t {
			s, err := asString(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = s
		}
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
	return out, nil
}

func singleRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("separator %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
