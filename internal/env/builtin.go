package env

import "sync"

var greek = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "varepsilon", "zeta", "eta",
	"theta", "vartheta", "iota", "kappa", "lambda", "mu", "nu", "xi", "omicron",
	"rho", "varrho", "sigma", "varsigma", "tau", "upsilon", "phi", "varphi",
	"chi", "psi", "omega",
	"Gamma", "Delta", "Theta", "Lambda", "Xi", "Pi", "Sigma", "Upsilon",
	"Phi", "Psi", "Omega",
}

var functions = []string{
	"sin", "cos", "tan", "sec", "csc", "cot",
	"arcsin", "arccos", "arctan", "arcsec", "arccsc", "arccot",
	"sinh", "cosh", "tanh", "sech", "csch", "coth",
	"ln", "log", "exp",
}

var constants = map[string]string{
	"\\pi":    "3.14159265358979323846",
	"e":       "2.71828182845904523536",
	"\\infty": "",
	"c":       "299792458",
	"h":       "6.62607015e-34",
	"G":       "6.67430e-11",
}

var units = []string{
	"kg", "mg", "km", "cm", "mm", "nm", "mL", "ml", "mol", "Hz", "kHz", "MHz",
	"GHz", "Pa", "kPa", "kJ", "kW", "ft", "lb", "oz", "ms", "kN",
}

// Elements lists the chemical element symbols known in chemistry mode with
// their standard atomic weights.
var Elements = map[string]float64{
	"H": 1.008, "He": 4.0026, "Li": 6.94, "Be": 9.0122, "B": 10.81, "C": 12.011,
	"N": 14.007, "O": 15.999, "F": 18.998, "Ne": 20.180, "Na": 22.990,
	"Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974, "S": 32.06,
	"Cl": 35.45, "Ar": 39.948, "K": 39.098, "Ca": 40.078, "Fe": 55.845,
	"Cu": 63.546, "Zn": 65.38, "Br": 79.904, "Ag": 107.87, "I": 126.90,
	"Au": 196.97,
}

var (
	builtinOnce sync.Once
	builtin     *Env
	chemOnce    sync.Once
	chemistry   *Env
)

// Builtin returns the shared root frame with Greek letters, function
// names, physical constants and units. Callers must Derive before defining.
func Builtin() *Env {
	builtinOnce.Do(func() {
		builtin = New(nil)
		for _, g := range greek {
			builtin.Define("\\"+g, Symbol{Type: SymbolVar})
		}
		for _, f := range functions {
			builtin.Define(f, Symbol{Type: SymbolFunc})
		}
		for name, v := range constants {
			builtin.Define(name, Symbol{Type: SymbolConst, Value: v})
		}
		for _, u := range units {
			builtin.Define(u, Symbol{Type: SymbolUnit})
		}
	})
	return builtin
}

// Chemistry returns a shared frame over Builtin that adds element symbols.
func Chemistry() *Env {
	chemOnce.Do(func() {
		chemistry = New(Builtin())
		for sym, mass := range Elements {
			chemistry.Define(sym, Symbol{Type: SymbolConst, Mass: mass})
		}
	})
	return chemistry
}
