// Package study combines host and defect calculations into corrected
// defect formation energies and charge transition levels.
package study

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"bwestbro.com/pydef/internal/cell"
	"bwestbro.com/pydef/internal/correct"
	"bwestbro.com/pydef/internal/defect"
	"golang.org/x/exp/maps"
)

var (
	ErrInconsistentHost = errors.New("defect cell is inconsistent with host cell")
	ErrNoDefects        = errors.New("study has no defects")
)

// Corrections selects which corrections are applied. A disabled
// correction contributes exactly zero.
type Corrections struct {
	Alignment    bool
	MossBurstein bool
	PHS          bool
	VBM          bool
	MakovPayne   bool
}

func AllCorrections() Corrections {
	return Corrections{
		Alignment:    true,
		MossBurstein: true,
		PHS:          true,
		VBM:          true,
		MakovPayne:   true,
	}
}

// Settings are shared by every charge state of a defect
type Settings struct {
	Geometry     correct.Geometry
	Permittivity float64
	// MakovPayne is the first-order Makov-Payne term for q = 1 and a
	// relative permittivity of 1
	MakovPayne float64
	// DeltaVBM and DeltaCBM are added to the band edge shifts derived
	// from the host cells
	DeltaVBM    float64
	DeltaCBM    float64
	Corrections Corrections
}

// Params are specific to one charge state
type Params struct {
	// Radius of the spheres around the defects excluded from the
	// potential alignment, in Å
	Radius    float64
	Electrons float64
	Holes     float64
}

// CellStudy is one charge state of a defect evaluated against a host
type CellStudy struct {
	Host     *cell.Cell
	Defect   *cell.Cell
	Defects  []defect.Defect
	Params   Params
	Settings Settings

	// Positions of Defects in the defect cell
	Positions [][3]float64
	Charge    float64
	Title     string

	// AlignmentRaw is the potential alignment before multiplication by
	// the charge. It is computed whenever the alignment or
	// Moss-Burstein corrections are enabled.
	AlignmentRaw float64
	Alignment    float64
	MossBurstein [2]float64
	PHS          [2]float64
	VBM          float64
	MakovPayne   float64
	Total        float64
	// EFor0 is the formation energy at a Fermi energy of zero
	EFor0 float64
}

// NewCellStudy applies the corrections enabled in s to the defect cell
// def. dVBM and dCBM are the total band edge shifts.
func NewCellStudy(host, def *cell.Cell, defects []defect.Defect,
	dVBM, dCBM float64, p Params, s Settings) (*CellStudy, error) {
	if !cell.SameLattice(host, def) {
		return nil, fmt.Errorf("%s and %s: %w", host.ID, def.ID, ErrInconsistentHost)
	}
	cs := &CellStudy{
		Host:     host,
		Defect:   def,
		Defects:  defects,
		Params:   p,
		Settings: s,
		Charge:   def.Charge,
	}
	for _, d := range defects {
		pos, err := d.Position(host.Positions, def.Positions)
		if err != nil {
			return nil, err
		}
		cs.Positions = append(cs.Positions, pos)
	}
	checkComposition(host, def, defects)
	cs.Title = defectsTitle(defects, def.Charge)

	c := s.Corrections
	q := def.Charge
	var err error
	if c.Alignment || c.MossBurstein {
		cs.AlignmentRaw, err = correct.PotentialAlignment(host, def, defects, p.Radius)
		if err != nil {
			return nil, err
		}
	}
	if c.Alignment {
		cs.Alignment = cs.AlignmentRaw * q
	}
	if c.MossBurstein {
		cs.MossBurstein, err = correct.MossBurstein(host, def, cs.AlignmentRaw)
		if err != nil {
			return nil, err
		}
	}
	if c.PHS {
		cs.PHS = correct.PHS(p.Holes, p.Electrons, dVBM, dCBM)
	}
	if c.VBM {
		cs.VBM = correct.VBM(q, dVBM)
	}
	if c.MakovPayne {
		cs.MakovPayne = correct.MakovPayne(q, s.Geometry, s.Permittivity, s.MakovPayne)
	}
	cs.Total = cs.Alignment + cs.MossBurstein[0] + cs.MossBurstein[1] +
		cs.PHS[0] + cs.PHS[1] + cs.VBM + cs.MakovPayne

	var mu float64
	for _, d := range defects {
		mu += float64(d.N) * d.ChemPot
	}
	cs.EFor0 = def.Energy - host.Energy + mu + q*host.VBM + cs.Total
	return cs, nil
}

// ID returns the ID of the defect cell
func (cs *CellStudy) ID() string { return cs.Defect.ID }

// FormationEnergy returns the formation energy at Fermi energy ef
// relative to the host VBM
func (cs *CellStudy) FormationEnergy(ef float64) float64 {
	return cs.EFor0 + cs.Charge*ef
}

func defectsTitle(defects []defect.Defect, charge float64) string {
	names := make([]string, len(defects))
	for i, d := range defects {
		names[i] = d.Name
	}
	if len(names) == 1 {
		return fmt.Sprintf("%s^{%d}", names[0], int(charge))
	}
	return fmt.Sprintf("(%s)^{%d}", strings.Join(names, " & "), int(charge))
}

// checkComposition warns when the difference in composition between
// host and def does not match the atoms removed and added by defects
func checkComposition(host, def *cell.Cell, defects []defect.Defect) {
	a := &cell.Cell{Population: maps.Clone(host.Population)}
	b := &cell.Cell{Population: maps.Clone(def.Population)}
	if a.Population == nil || b.Population == nil {
		return
	}
	cell.Normalize(a, b)
	want := make(map[string]int)
	for _, d := range defects {
		for sp, n := range d.Population {
			want[sp] += n
		}
	}
	for sp, n := range a.Population {
		if diff := n - b.Population[sp]; diff != want[sp] {
			log.Printf("%s: %s count differs from %s by %d, defects account for %d",
				def.ID, sp, host.ID, diff, want[sp])
		}
	}
}
