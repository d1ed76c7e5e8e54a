package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"iondetect/pkg/core"
	"iondetect/pkg/corpus"
)

func runMasses(cmd *cobra.Command, args []string) error {
	mode, err := parseIonMode(ionModeFlag)
	if err != nil {
		return err
	}

	var chemicals []string
	switch {
	case massesFormula != "" && len(args) > 0:
		return fmt.Errorf("supply either --formula or a corpus file, not both")
	case massesFormula != "":
		chemicals = []string{massesFormula}
	case len(args) == 1:
		chemicals, err = corpus.ReadChemicalList(args[0])
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("supply a --formula or a corpus file")
	}

	include := parseIonNames(ionNames)
	if include == nil {
		include = make(map[string]bool)
		for _, name := range core.KnownIons(mode) {
			include[name] = true
		}
	}

	for _, chemical := range chemicals {
		mass, err := core.ParseFormula(chemical)
		if err != nil {
			fmt.Printf("%s: %v\n", chemical, err)
			continue
		}
		masses, err := core.EnumerateIonMasses(mass, mode, include)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(masses))
		for name := range masses {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return masses[names[i]] < masses[names[j]] })

		fmt.Printf("%s (M = %.6f)\n", chemical, mass)
		for _, name := range names {
			fmt.Printf("  %-10s %.6f\n", name, masses[name])
		}
	}
	return nil
}
