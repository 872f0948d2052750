package cell

import (
	"fmt"

	"bwestbro.com/pydef/internal/grep"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DOS is the density of states read from a DOSCAR file
type DOS struct {
	Energy []float64
	Total  []float64
	// Up and Down are only set for spin-polarized calculations, in
	// which case Total is their sum
	Up   []float64
	Down []float64

	// maxima excluding the first point
	Max     float64
	MaxUp   float64
	MaxDown float64

	Projected *Projected
}

// Projected is the DOS projected onto the orbital channels of each atom
// and summed over each species. Every matrix has one row per channel
// in Orbitals and one column per energy.
type Projected struct {
	Orbitals []string
	Labels   []string
	Names    []string

	Atoms     []*mat.Dense
	AtomsUp   []*mat.Dense
	AtomsDown []*mat.Dense

	Species     []*mat.Dense
	SpeciesUp   []*mat.Dense
	SpeciesDown []*mat.Dense
}

// Atom returns the projected DOS of the atom with the given label, or
// nil if there is none
func (d *DOS) Atom(label string) *mat.Dense {
	if d.Projected == nil {
		return nil
	}
	i := slices.Index(d.Projected.Labels, label)
	if i < 0 {
		return nil
	}
	return d.Projected.Atoms[i]
}

// Specie returns the projected DOS summed over the atoms of species
// name, or nil if there is none
func (d *DOS) Specie(name string) *mat.Dense {
	if d.Projected == nil {
		return nil
	}
	i := slices.Index(d.Projected.Names, name)
	if i < 0 {
		return nil
	}
	return d.Projected.Species[i]
}

// doscarHeader is the number of lines before the total DOS
const doscarHeader = 6

func parseDOS(lines []string, c *Cell) (*DOS, error) {
	nedos := c.NEDOS
	total := doscarHeader + nedos
	var projected bool
	switch len(lines) {
	case total:
	case total + c.NAtoms*(nedos+1):
		projected = true
	default:
		return nil, fmt.Errorf("%d lines for NEDOS=%d and %d atoms: %w",
			len(lines), nedos, c.NAtoms, ErrDoscarInconsistent)
	}
	cols, err := grep.Columns(lines[doscarHeader:total])
	if err != nil {
		return nil, err
	}
	d := new(DOS)
	switch {
	case c.ISPIN == 2 && len(cols) >= 3:
		d.Energy, d.Up, d.Down = cols[0], cols[1], cols[2]
		d.Total = make([]float64, nedos)
		floats.AddTo(d.Total, d.Up, d.Down)
		d.MaxUp = maxTail(d.Up)
		d.MaxDown = maxTail(d.Down)
	case c.ISPIN == 1 && len(cols) >= 2:
		d.Energy, d.Total = cols[0], cols[1]
	default:
		return nil, fmt.Errorf("%d total DOS columns for ISPIN=%d: %w",
			len(cols), c.ISPIN, ErrDoscarInconsistent)
	}
	d.Max = maxTail(d.Total)
	if projected {
		d.Projected, err = parseProjected(lines[total:], c)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func maxTail(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return floats.Max(x[1:])
}

// channelSizes returns the number of DOSCAR columns making up each
// orbital channel. lm-decomposed output has 1, 3, 5 and 7 columns for s,
// p, d and f; otherwise each channel is a single column.
func channelSizes(orbitals []string, ncols, ispin int) ([]int, error) {
	if len(orbitals) == 0 {
		return nil, fmt.Errorf("no orbitals in OUTCAR: %w", ErrDoscarInconsistent)
	}
	if ncols == len(orbitals)*ispin {
		sizes := make([]int, len(orbitals))
		for i := range sizes {
			sizes[i] = 1
		}
		return sizes, nil
	}
	var sizes []int
	switch len(orbitals) {
	case 3:
		sizes = []int{1, 3, 5}
	case 4:
		sizes = []int{1, 3, 5, 7}
	default:
		return nil, fmt.Errorf("%d orbital channels: %w",
			len(orbitals), ErrDoscarInconsistent)
	}
	var sum int
	for _, s := range sizes {
		sum += s
	}
	if ncols != sum*ispin {
		return nil, fmt.Errorf("%d projected columns for %v: %w",
			ncols, orbitals, ErrDoscarInconsistent)
	}
	return sizes, nil
}

// chunks sums consecutive groups of cols with the given sizes into the
// rows of a matrix
func chunks(cols [][]float64, sizes []int, n int) *mat.Dense {
	ret := mat.NewDense(len(sizes), n, nil)
	row := make([]float64, n)
	var j int
	for i, s := range sizes {
		for k := range row {
			row[k] = 0
		}
		for _, col := range cols[j : j+s] {
			floats.Add(row, col)
		}
		ret.SetRow(i, row)
		j += s
	}
	return ret
}

func parseProjected(lines []string, c *Cell) (*Projected, error) {
	nedos := c.NEDOS
	p := &Projected{
		Orbitals: c.Orbitals,
		Labels:   c.Atoms,
		Names:    c.Species,
	}
	spin := c.ISPIN == 2
	var sizes, doubled []int
	var width int
	for a := 0; a < c.NAtoms; a++ {
		// each atom's block starts with a copy of the header line
		start := a*(nedos+1) + 1
		cols, err := grep.Columns(lines[start : start+nedos])
		if err != nil {
			return nil, err
		}
		if len(cols) < 2 {
			return nil, fmt.Errorf("atom %d: %w", a+1, ErrDoscarInconsistent)
		}
		channels := cols[1:]
		if sizes == nil {
			width = len(channels)
			sizes, err = channelSizes(c.Orbitals, len(channels), c.ISPIN)
			if err != nil {
				return nil, err
			}
			doubled = make([]int, len(sizes))
			for i, s := range sizes {
				doubled[i] = 2 * s
			}
		} else if len(channels) != width {
			return nil, fmt.Errorf("atom %d: %w", a+1, ErrDoscarInconsistent)
		}
		if !spin {
			p.Atoms = append(p.Atoms, chunks(channels, sizes, nedos))
			continue
		}
		up := make([][]float64, 0, len(channels)/2)
		down := make([][]float64, 0, len(channels)/2)
		for i, col := range channels {
			if i%2 == 0 {
				up = append(up, col)
			} else {
				down = append(down, col)
			}
		}
		p.Atoms = append(p.Atoms, chunks(channels, doubled, nedos))
		p.AtomsUp = append(p.AtomsUp, chunks(up, sizes, nedos))
		p.AtomsDown = append(p.AtomsDown, chunks(down, sizes, nedos))
	}
	p.Species = bySpecies(p.Atoms, c.Counts)
	if spin {
		p.SpeciesUp = bySpecies(p.AtomsUp, c.Counts)
		p.SpeciesDown = bySpecies(p.AtomsDown, c.Counts)
	}
	return p, nil
}

// bySpecies sums consecutive runs of atoms with lengths counts
func bySpecies(atoms []*mat.Dense, counts []int) []*mat.Dense {
	ret := make([]*mat.Dense, 0, len(counts))
	var i int
	for _, n := range counts {
		r, c := atoms[i].Dims()
		sum := mat.NewDense(r, c, nil)
		for _, a := range atoms[i : i+n] {
			sum.Add(sum, a)
		}
		ret = append(ret, sum)
		i += n
	}
	return ret
}
