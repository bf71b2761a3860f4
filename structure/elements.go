package structure

import (
	"fmt"
	"strings"
)

// symbols indexes element symbols by atomic number (index 0 unused).
var symbols = []string{"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

const maxAtomicNumber = 118

var numbersBySymbol = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for z := 1; z < len(symbols); z++ {
		m[symbols[z]] = z
	}
	return m
}()

// SymbolFor returns the element symbol for an atomic number, or "X" for
// numbers outside the periodic table.
func SymbolFor(z int) string {
	if z <= 0 || z > maxAtomicNumber {
		return "X"
	}
	return symbols[z]
}

// NumberForSymbol resolves an element symbol (case-insensitive) to its atomic
// number.
func NumberForSymbol(symbol string) (int, error) {
	clean := strings.TrimSpace(symbol)
	if clean == "" {
		return 0, fmt.Errorf("empty element symbol")
	}
	// Normalize case: first letter upper, rest lower.
	normalized := strings.ToUpper(clean[:1]) + strings.ToLower(clean[1:])
	z, ok := numbersBySymbol[normalized]
	if !ok {
		return 0, fmt.Errorf("unknown element symbol %q", symbol)
	}
	return z, nil
}
