package defect

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ChemPotTable maps a species symbol to a reference chemical potential
// in eV
type ChemPotTable map[string]float64

// fitted elemental-phase reference energies (FERE) from Stevanovic et
// al., Phys. Rev. B 85, 115104 (2012)
var fere = ChemPotTable{
	"Ag": -0.83, "Al": -3.02, "As": -5.06, "Au": -2.23, "Ba": -1.39,
	"Be": -3.4, "Bi": -4.39, "Ca": -1.64, "Cd": -0.56, "Cl": -1.63,
	"Co": -4.75, "Cr": -7.22, "Cu": -1.97, "F": -1.7, "Fe": -6.15,
	"Ga": -2.37, "Ge": -4.14, "Hf": -7.4, "Hg": -0.12, "In": -2.31,
	"Ir": -5.96, "K": -0.8, "La": -3.66, "Li": -1.65, "Mg": -0.99,
	"Mn": -7, "N": -8.51, "Na": -1.06, "Nb": -6.69, "Ni": -3.57,
	"O": -4.73, "P": -5.64, "Pd": -3.12, "Pt": -3.95, "Rb": -0.68,
	"Rh": -4.76, "S": -4, "Sb": -4.29, "Sc": -4.63, "Se": -3.55,
	"Si": -4.99, "Sn": -3.79, "Sr": -1.17, "Ta": -8.82, "Te": -3.25,
	"Ti": -5.52, "V": -6.42, "Y": -4.81, "Zn": -0.84, "Zr": -5.87,
}

// FERE returns a copy of the built-in FERE table
func FERE() ChemPotTable {
	return maps.Clone(fere)
}

// LoadChemPotTable reads a TOML file of species = potential pairs
func LoadChemPotTable(filename string) (ChemPotTable, error) {
	var t ChemPotTable
	if _, err := toml.DecodeFile(filename, &t); err != nil {
		return nil, fmt.Errorf("loading chemical potentials: %w", err)
	}
	return t, nil
}

// Merge returns a new table with the entries of o added to or
// replacing those of t
func (t ChemPotTable) Merge(o ChemPotTable) ChemPotTable {
	ret := maps.Clone(t)
	if ret == nil {
		ret = make(ChemPotTable, len(o))
	}
	maps.Copy(ret, o)
	return ret
}

// Lookup returns the chemical potential of each atom label's species
func (t ChemPotTable) Lookup(atoms []string) ([]float64, error) {
	ret := make([]float64, len(atoms))
	for i, a := range atoms {
		sp, _, err := ParseLabel(a)
		if err != nil {
			return nil, err
		}
		v, ok := t[sp]
		if !ok {
			return nil, fmt.Errorf("%s: %w", sp, ErrNoChemPot)
		}
		ret[i] = v
	}
	return ret, nil
}

// Species returns the symbols in t in sorted order
func (t ChemPotTable) Species() []string {
	keys := maps.Keys(t)
	slices.Sort(keys)
	return keys
}
