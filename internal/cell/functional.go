package cell

import (
	"bwestbro.com/pydef/internal/grep"
)

// Functional is the exchange-correlation treatment of a calculation
type Functional int

const (
	Other Functional = iota
	LDA
	GGA
	HSE
	PBE0
	G0W0
	GW0
)

func (f Functional) String() string {
	return []string{
		"other",
		"LDA",
		"GGA",
		"HSE",
		"PBE0",
		"G0W0@GGA",
		"GW0@GGA",
	}[f]
}

// Title returns the name of f with sub-scripts marked up for display
func (f Functional) Title() string {
	switch f {
	case G0W0:
		return "G_0W_0@GGA"
	case GW0:
		return "GW_0@GGA"
	}
	return f.String()
}

// IsGW reports whether f is one of the quasiparticle methods, for
// which the output has no core potentials and a different band table
func (f Functional) IsGW() bool {
	return f == G0W0 || f == GW0
}

const gwMarker = "Response functions by sum over occupied states:"

// detectFunctional applies the LEXCH/LHFCALC/HFSCREEN/GW decision
// table. nelm is only read, and only non-zero, for GW runs.
func detectFunctional(lines []string) (f Functional, nelm int, err error) {
	lexch, err := grep.MustString(lines, grep.Once("LEXCH   =", "internal"))
	if err != nil {
		return
	}
	lhfcalc, err := grep.MustString(lines, grep.Once("LHFCALC =", "Hartree"))
	if err != nil {
		return
	}
	hfscreen, err := grep.MustFloat(lines, grep.Once("HFSCREEN=", "screening"))
	if err != nil {
		return
	}
	switch {
	case lexch == "2" && lhfcalc == "F":
		f = LDA
	case lexch == "8" && lhfcalc == "F":
		f = GGA
	case lexch == "8" && lhfcalc == "T" && hfscreen == 0.2:
		f = HSE
	case lexch == "8" && lhfcalc == "T" && hfscreen == 0.0:
		f = PBE0
	}
	switch n := grep.Count(lines, gwMarker); n {
	case 0:
		return
	case 2:
	default:
		err = &grep.Error{
			Marker: gwMarker, Want: 2, Got: n, Err: grep.ErrOccurrences,
		}
		return
	}
	nelm, err = grep.MustInt(lines, grep.Once("NELM    =", ";"))
	if err != nil {
		return
	}
	switch {
	case nelm == 1:
		f = G0W0
	case nelm > 1:
		f = GW0
	default:
		f = Other
	}
	return
}
