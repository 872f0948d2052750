package study

import (
	"math"
	"strings"

	"bwestbro.com/pydef/internal/cell"
	"bwestbro.com/pydef/internal/correct"
	"bwestbro.com/pydef/internal/defect"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// CalculatedGap is the label of the gap derived from the host band
// edges and the band edge shifts
const CalculatedGap = "Calculated gap"

type Gap struct {
	Label string
	Value float64
}

// Study gathers the charge states of one defect, or one set of defects,
// computed in the same host
type Study struct {
	Host *cell.Cell
	// HostB is the host computed with a functional giving a better gap,
	// used only to shift the band edges. It is Host when no such
	// calculation is available.
	HostB    *cell.Cell
	Defects  []defect.Defect
	Settings Settings

	// DeltaVBM and DeltaCBM are the total band edge shifts, zero unless
	// the VBM or PHS corrections are enabled
	DeltaVBM float64
	DeltaCBM float64
	Gaps     []Gap

	ID    string
	Title string

	cells []*CellStudy
}

// New creates an empty Study. hostB may be nil. gaps are extra
// reference gaps, to which the calculated gap is appended.
func New(host, hostB *cell.Cell, defects []defect.Defect, s Settings, gaps []Gap) (*Study, error) {
	if len(defects) == 0 {
		return nil, ErrNoDefects
	}
	if hostB == nil {
		hostB = host
	}
	st := &Study{
		Host:     host,
		HostB:    hostB,
		Defects:  defects,
		Settings: s,
	}
	bandEdges := s.Corrections.VBM || s.Corrections.PHS
	if bandEdges {
		dv, dc := correct.BandExtrema(host, hostB)
		st.DeltaVBM = dv + s.DeltaVBM
		st.DeltaCBM = dc + s.DeltaCBM
	}
	st.Gaps = append(slices.Clone(gaps), Gap{
		Label: CalculatedGap,
		Value: host.Gap - st.DeltaVBM + st.DeltaCBM,
	})

	ids := make([]string, len(defects))
	names := make([]string, len(defects))
	for i, d := range defects {
		ids[i] = d.ID
		names[i] = d.Name
	}
	title := host.Name(true) + " - " + host.Functional.Title()
	if bandEdges && host != hostB {
		st.ID = host.ID + "_corr_" + hostB.Functional.String() + "_" + strings.Join(ids, "_")
		title += " corrected " + hostB.Functional.Title()
	} else {
		st.ID = host.ID + "_" + strings.Join(ids, "_")
	}
	st.Title = title + " - " + strings.Join(names, " & ")
	return st, nil
}

// Add evaluates the defect cell def against the host and stores the
// result under def's ID, replacing any previous result for that cell
func (st *Study) Add(def *cell.Cell, p Params) (*CellStudy, error) {
	cs, err := NewCellStudy(st.Host, def, st.Defects,
		st.DeltaVBM, st.DeltaCBM, p, st.Settings)
	if err != nil {
		return nil, err
	}
	if i := st.index(def.ID); i >= 0 {
		st.cells[i] = cs
	} else {
		st.cells = append(st.cells, cs)
	}
	return cs, nil
}

func (st *Study) index(id string) int {
	return slices.IndexFunc(st.cells, func(cs *CellStudy) bool {
		return cs.ID() == id
	})
}

// Remove deletes the charge state with the given defect cell ID,
// reporting whether it was present
func (st *Study) Remove(id string) bool {
	i := st.index(id)
	if i < 0 {
		return false
	}
	st.cells = slices.Delete(st.cells, i, i+1)
	return true
}

func (st *Study) Get(id string) (*CellStudy, bool) {
	i := st.index(id)
	if i < 0 {
		return nil, false
	}
	return st.cells[i], true
}

// Cells returns the charge states in the order they were added
func (st *Study) Cells() []*CellStudy {
	return slices.Clone(st.cells)
}

// Gap returns the gap with the given label
func (st *Study) Gap(label string) (float64, bool) {
	for _, g := range st.Gaps {
		if g.Label == label {
			return g.Value, true
		}
	}
	return 0, false
}

// FermiRange returns the default range of Fermi energies to consider,
// from slightly below the VBM to slightly above the largest gap
func (st *Study) FermiRange() (lo, hi float64) {
	top := math.Inf(-1)
	for _, g := range st.Gaps {
		top = math.Max(top, g.Value)
	}
	return -0.5, 1.05 * top
}

// Point is a formation energy at a given Fermi energy
type Point struct {
	Fermi  float64
	Energy float64
	Charge float64
}

// Lowest returns the charge state with the lowest formation energy at
// Fermi energy ef. Of several charge states with the same energy, the
// first added wins. The boolean is false if the study is empty.
func (st *Study) Lowest(ef float64) (Point, bool) {
	i := st.lowest(ef)
	if i < 0 {
		return Point{}, false
	}
	cs := st.cells[i]
	return Point{Fermi: ef, Energy: cs.FormationEnergy(ef), Charge: cs.Charge}, true
}

func (st *Study) lowest(ef float64) int {
	best := -1
	var low float64
	for i, cs := range st.cells {
		if e := cs.FormationEnergy(ef); best < 0 || e < low {
			best, low = i, e
		}
	}
	return best
}

// Curve samples the lowest formation energy at n evenly spaced Fermi
// energies from lo to hi inclusive
func (st *Study) Curve(lo, hi float64, n int) (ef, energy []float64) {
	if n < 2 || len(st.cells) == 0 {
		return nil, nil
	}
	ef = floats.Span(make([]float64, n), lo, hi)
	energy = make([]float64, n)
	for i, x := range ef {
		energy[i] = st.cells[st.lowest(x)].FormationEnergy(x)
	}
	return
}
