// Chemistry calculations: monoisotopic masses from molecular formulas.
package core

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
)

// Atomic masses (monoisotopic)
const (
	MassH  = 1.0078250321
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassS  = 31.9720706900
	MassP  = 30.9737615100
	MassF  = 18.9984031630
	MassCl = 34.9688526800
	MassBr = 78.9183376000
	MassI  = 126.904473000
	MassNa = 22.9897692800
	MassK  = 38.9637064900

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688
)

// ElementMasses maps element symbols to monoisotopic masses.
var ElementMasses = map[string]float64{
	"H":  MassH,
	"C":  MassC,
	"N":  MassN,
	"O":  MassO,
	"S":  MassS,
	"P":  MassP,
	"F":  MassF,
	"Cl": MassCl,
	"Br": MassBr,
	"I":  MassI,
	"Na": MassNa,
	"K":  MassK,
}

// ParseFormula computes the neutral monoisotopic mass of a molecular
// formula such as "C6H12O6". Element symbols are one capital letter
// optionally followed by one lowercase letter, each with an optional
// count. Unknown elements and empty formulas are errors so that batch
// callers can skip the offending chemical.
func ParseFormula(formula string) (float64, error) {
	if formula == "" {
		return 0, fmt.Errorf("empty formula")
	}

	mass := 0.0
	runes := []rune(formula)
	i := 0
	for i < len(runes) {
		if !unicode.IsUpper(runes[i]) {
			return 0, fmt.Errorf("malformed formula %q: unexpected character %q", formula, runes[i])
		}

		symbol := string(runes[i])
		i++
		if i < len(runes) && unicode.IsLower(runes[i]) {
			symbol += string(runes[i])
			i++
		}

		elementMass, ok := ElementMasses[symbol]
		if !ok {
			return 0, fmt.Errorf("malformed formula %q: unknown element %q", formula, symbol)
		}

		count := 1
		start := i
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
		if i > start {
			n, err := strconv.Atoi(string(runes[start:i]))
			if err != nil || n == 0 {
				return 0, fmt.Errorf("malformed formula %q: bad count for %s", formula, symbol)
			}
			count = n
		}

		mass += float64(count) * elementMass
	}

	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return 0, fmt.Errorf("malformed formula %q: non-positive mass", formula)
	}

	return mass, nil
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
