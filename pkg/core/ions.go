package core

import "fmt"

// IonMode is the ionization polarity of an LCMS run.
type IonMode string

const (
	IonModePositive IonMode = "pos"
	IonModeNegative IonMode = "neg"
)

// DefaultIon is searched when the caller supplies no include list.
const DefaultIon = "M+H"

// DefaultNegativeIon is the negative-mode counterpart of DefaultIon.
const DefaultNegativeIon = "M-H"

// ionSpecies describes one adduct rule: m/z = (multiplier*M + shift).
// All species here carry a single charge.
type ionSpecies struct {
	Name       string
	Multiplier float64
	Shift      float64
}

// Mass shifts are monoisotopic adduct masses relative to the neutral
// molecule M.
var positiveIons = []ionSpecies{
	{"M+H", 1, ProtonMass},
	{"M+Na", 1, MassNa - (MassH - ProtonMass)},
	{"M+K", 1, MassK - (MassH - ProtonMass)},
	{"M+NH4", 1, MassN + 4*MassH + ProtonMass - MassH},
	{"M+Li", 1, 7.0160034366 - (MassH - ProtonMass)},
	{"M+H-H2O", 1, ProtonMass - (2*MassH + MassO)},
	{"M+ACN+H", 1, 2*MassC + 3*MassH + MassN + ProtonMass},
	{"M+CH3OH+H", 1, MassC + 4*MassH + MassO + ProtonMass},
	{"2M+H", 2, ProtonMass},
}

var negativeIons = []ionSpecies{
	{"M-H", 1, -ProtonMass},
	{"M+Cl", 1, MassCl + (MassH - ProtonMass)},
	{"M-H-H2O", 1, -ProtonMass - (2*MassH + MassO)},
	{"M+FA-H", 1, MassC + 2*MassH + 2*MassO - ProtonMass},
}

// IonCandidate ties a chemical identifier to one ionized form of it.
type IonCandidate struct {
	Chemical string
	Ion      string
}

// EnumerateIonMasses applies the adduct rules of the given polarity to a
// neutral monoisotopic mass and returns ion name -> m/z for the requested
// species. An empty include set defaults to the standard adduct for the
// mode ("M+H" positive, "M-H" negative). Unknown names in the include set
// are ignored, matching the permissive behavior of the batch pipeline.
func EnumerateIonMasses(neutralMass float64, mode IonMode, include map[string]bool) (map[string]float64, error) {
	if neutralMass <= 0 {
		return nil, fmt.Errorf("neutral mass must be positive, got %f", neutralMass)
	}

	var species []ionSpecies
	var defaultIon string
	switch mode {
	case IonModePositive:
		species = positiveIons
		defaultIon = DefaultIon
	case IonModeNegative:
		species = negativeIons
		defaultIon = DefaultNegativeIon
	default:
		return nil, fmt.Errorf("unknown ion mode %q", mode)
	}

	if len(include) == 0 {
		include = map[string]bool{defaultIon: true}
	}

	masses := make(map[string]float64)
	for _, s := range species {
		if !include[s.Name] {
			continue
		}
		masses[s.Name] = s.Multiplier*neutralMass + s.Shift
	}

	return masses, nil
}

// KnownIons returns the ion species names available in a mode, in table
// order.
func KnownIons(mode IonMode) []string {
	var species []ionSpecies
	switch mode {
	case IonModeNegative:
		species = negativeIons
	default:
		species = positiveIons
	}

	names := make([]string, 0, len(species))
	for _, s := range species {
		names = append(names, s.Name)
	}
	return names
}
