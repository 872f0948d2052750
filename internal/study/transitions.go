package study

import (
	"golang.org/x/exp/slices"
)

// Transition is a change in the charge state of lowest formation
// energy
type Transition struct {
	Fermi  float64
	Energy float64
	New    float64
	Old    float64
}

// Transitions returns the transition levels between lo and hi in order
// of increasing Fermi energy. The formation energies are straight lines
// in the Fermi energy, so the lowest one can only change where two of
// them cross. Each interval between consecutive crossings has a single
// lowest charge state, found at the interval's midpoint, and a
// transition is reported at every crossing where that charge changes.
func (st *Study) Transitions(lo, hi float64) []Transition {
	if len(st.cells) < 2 || !(lo < hi) {
		return nil
	}
	xs := []float64{lo, hi}
	for i, a := range st.cells {
		for _, b := range st.cells[i+1:] {
			if a.Charge == b.Charge {
				continue
			}
			x := (b.EFor0 - a.EFor0) / (a.Charge - b.Charge)
			if x > lo && x < hi {
				xs = append(xs, x)
			}
		}
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)

	var ret []Transition
	prev := st.lowest((xs[0] + xs[1]) / 2)
	for k := 1; k < len(xs)-1; k++ {
		cur := st.lowest((xs[k] + xs[k+1]) / 2)
		if st.cells[cur].Charge == st.cells[prev].Charge {
			continue
		}
		ret = append(ret, Transition{
			Fermi:  xs[k],
			Energy: st.cells[cur].FormationEnergy(xs[k]),
			New:    st.cells[cur].Charge,
			Old:    st.cells[prev].Charge,
		})
		prev = cur
	}
	return ret
}
