// Package defect describes point defects: which atoms a defect removes
// from or adds to a host, and the chemical potentials of the species
// involved.
package defect

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrKind        = errors.New("unknown defect kind")
	ErrAtoms       = errors.New("wrong number of atoms for defect kind")
	ErrChemPots    = errors.New("wrong number of chemical potentials for defect kind")
	ErrLabel       = errors.New("invalid atom label")
	ErrUnknownAtom = errors.New("atom not found in cell")
	ErrNoChemPot   = errors.New("no chemical potential for species")
)

type Kind int

const (
	Vacancy Kind = iota
	Interstitial
	Substitutional
)

func (k Kind) String() string {
	return []string{"Vacancy", "Interstitial", "Substitutional"}[k]
}

// ParseKind converts the name of a kind, ignoring case, to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vacancy":
		return Vacancy, nil
	case "interstitial":
		return Interstitial, nil
	case "substitutional", "substitution":
		return Substitutional, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrKind)
}

// Defect is a single point defect. For substitutions Atoms holds the
// removed host atom followed by the added atom.
type Defect struct {
	Kind     Kind
	Atoms    []string
	ChemPots []float64

	// ChemPot is the chemical potential weighted by N in the
	// formation energy
	ChemPot float64
	// N is the sign of the chemical potential term, +1 when an atom
	// leaves the host and -1 when one is added
	N          int
	Population map[string]int
	Name       string
	ID         string
}

var labelRx = regexp.MustCompile(`^([A-Z][a-z]?)\s*\(?\s*(\d+)\s*\)?$`)

// ParseLabel splits an atom label like Zn3 into its species and index,
// returning the canonical form of the label. The parenthesized form
// "Zn (3)" is also accepted.
func ParseLabel(label string) (species, canonical string, err error) {
	m := labelRx.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return "", "", fmt.Errorf("%q: %w", label, ErrLabel)
	}
	return m[1], m[1] + m[2], nil
}

// New constructs a Defect of kind from atom labels and the chemical
// potentials of their species
func New(kind Kind, atoms []string, chemPots []float64) (Defect, error) {
	want := 1
	if kind == Substitutional {
		want = 2
	}
	switch {
	case kind < Vacancy || kind > Substitutional:
		return Defect{}, ErrKind
	case len(atoms) != want:
		return Defect{}, fmt.Errorf("%v needs %d, got %d: %w",
			kind, want, len(atoms), ErrAtoms)
	case len(chemPots) != want:
		return Defect{}, fmt.Errorf("%v needs %d, got %d: %w",
			kind, want, len(chemPots), ErrChemPots)
	}
	d := Defect{
		Kind:     kind,
		Atoms:    make([]string, len(atoms)),
		ChemPots: append([]float64(nil), chemPots...),
	}
	species := make([]string, len(atoms))
	for i, a := range atoms {
		var err error
		species[i], d.Atoms[i], err = ParseLabel(a)
		if err != nil {
			return Defect{}, err
		}
	}
	switch kind {
	case Vacancy:
		d.Name = "V_{" + species[0] + "}"
		d.ID = "Vac_" + d.Atoms[0]
		d.N = +1
		d.ChemPot = chemPots[0]
		d.Population = map[string]int{species[0]: +1}
	case Interstitial:
		d.Name = species[0] + "_i"
		d.ID = "Inter_" + d.Atoms[0]
		d.N = -1
		d.ChemPot = chemPots[0]
		d.Population = map[string]int{species[0]: -1}
	case Substitutional:
		d.Name = species[1] + "_{" + species[0] + "}"
		d.ID = "Subs(" + d.Atoms[0] + "_by_" + d.Atoms[1] + ")"
		d.N = +1
		d.ChemPot = chemPots[0] - chemPots[1]
		d.Population = map[string]int{species[0]: +1, species[1]: -1}
	}
	return d, nil
}

// Species returns the species of each of d's atoms
func (d Defect) Species() []string {
	ret := make([]string, len(d.Atoms))
	for i, a := range d.Atoms {
		ret[i], _, _ = ParseLabel(a)
	}
	return ret
}

// Position returns the location of d: the removed host atom for a
// vacancy, the inserted atom for an interstitial and the substituting
// atom for a substitution
func (d Defect) Position(host, def map[string][3]float64) ([3]float64, error) {
	var (
		pos [3]float64
		ok  bool
	)
	switch d.Kind {
	case Vacancy:
		pos, ok = host[d.Atoms[0]]
	case Interstitial:
		pos, ok = def[d.Atoms[0]]
	case Substitutional:
		pos, ok = def[d.Atoms[1]]
	}
	if !ok {
		return pos, fmt.Errorf("%s: %w", d.ID, ErrUnknownAtom)
	}
	return pos, nil
}

// HostAtom returns the label of the atom d removes from the host cell,
// if any
func (d Defect) HostAtom() (string, bool) {
	switch d.Kind {
	case Vacancy, Substitutional:
		return d.Atoms[0], true
	}
	return "", false
}

// DefectAtom returns the label of the atom d adds to the defect cell,
// if any
func (d Defect) DefectAtom() (string, bool) {
	switch d.Kind {
	case Interstitial:
		return d.Atoms[0], true
	case Substitutional:
		return d.Atoms[1], true
	}
	return "", false
}
