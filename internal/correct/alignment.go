// Package correct computes the finite-size corrections applied to the
// formation energy of a charged defect in a periodic supercell.
package correct

import (
	"errors"
	"fmt"
	"log"
	"math"

	"bwestbro.com/pydef/internal/cell"
	"bwestbro.com/pydef/internal/defect"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoPotentials   = errors.New("cell has no electrostatic potentials")
	ErrAtomMismatch   = errors.New("host and defect cells differ in atom count")
	ErrBandWeights    = errors.New("band tables do not match k-point weights")
	ErrGeometry       = errors.New("unknown geometry")
	ErrEmptyAlignment = errors.New("no atoms outside the potential alignment spheres")
)

// imageShifts are the fractional offsets of the periodic images
// considered around a defect: the defect itself and its six
// face-sharing neighbours
var imageShifts = [7][3]float64{
	{0, 0, 0},
	{0, 0, -1},
	{0, 0, 1},
	{1, 0, 0},
	{-1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
}

// Images returns pos followed by its images translated by ±a1, ±a2 and
// ±a3, where the rows of lattice are the lattice vectors
func Images(lattice mat.Matrix, pos [3]float64) [][3]float64 {
	ret := make([][3]float64, len(imageShifts))
	shift := mat.NewVecDense(3, nil)
	for i, f := range imageShifts {
		shift.MulVec(lattice.T(), mat.NewVecDense(3, f[:]))
		for k := range pos {
			ret[i][k] = pos[k] + shift.AtVec(k)
		}
	}
	return ret
}

// Alignment holds the per-atom data behind the potential alignment
// correction, in the order of the defect cell's atoms with the defect
// atoms removed
type Alignment struct {
	Labels []string
	// Distances are the distances from each atom to the nearest
	// defect or defect image
	Distances []float64
	// Deltas are the defect cell potentials minus the host cell
	// potentials
	Deltas []float64
	Radius float64
	// Mean is the average of Deltas over the atoms farther than Radius
	// from every defect and image. NaN when there are no such atoms.
	Mean float64
}

// Outside returns the indices of the atoms farther than radius from
// every defect image
func (a *Alignment) Outside(radius float64) (ret []int) {
	for i, d := range a.Distances {
		if d > radius {
			ret = append(ret, i)
		}
	}
	return
}

// MeanOutside returns the average potential difference over the atoms
// farther than radius from every defect image
func (a *Alignment) MeanOutside(radius float64) float64 {
	idx := a.Outside(radius)
	if len(idx) == 0 {
		return math.NaN()
	}
	x := make([]float64, len(idx))
	for i, j := range idx {
		x[i] = a.Deltas[j]
	}
	return stat.Mean(x, nil)
}

func remove(labels []string, label string) ([]string, error) {
	i := slices.Index(labels, label)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", label, defect.ErrUnknownAtom)
	}
	return slices.Delete(labels, i, i+1), nil
}

// Align pairs the potentials of host and def after removing the atoms
// belonging to defects and measures each remaining atom's distance to
// the defects and their periodic images
func Align(host, def *cell.Cell, defects []defect.Defect, radius float64) (*Alignment, error) {
	if host.Potentials == nil || def.Potentials == nil {
		return nil, ErrNoPotentials
	}
	var images [][3]float64
	for _, d := range defects {
		pos, err := d.Position(host.Positions, def.Positions)
		if err != nil {
			return nil, err
		}
		images = append(images, Images(def.Lattice, pos)...)
	}

	hostAtoms := slices.Clone(host.Atoms)
	defAtoms := slices.Clone(def.Atoms)
	var err error
	for _, d := range defects {
		if a, ok := d.HostAtom(); ok {
			if hostAtoms, err = remove(hostAtoms, a); err != nil {
				return nil, err
			}
		}
		if a, ok := d.DefectAtom(); ok {
			if defAtoms, err = remove(defAtoms, a); err != nil {
				return nil, err
			}
		}
	}
	if len(hostAtoms) != len(defAtoms) {
		return nil, fmt.Errorf("%d host and %d defect atoms: %w",
			len(hostAtoms), len(defAtoms), ErrAtomMismatch)
	}

	ret := &Alignment{
		Labels:    defAtoms,
		Distances: make([]float64, len(defAtoms)),
		Deltas:    make([]float64, len(defAtoms)),
		Radius:    radius,
	}
	for i, a := range defAtoms {
		pos := def.Positions[a]
		ret.Distances[i] = math.Inf(1)
		for _, img := range images {
			ret.Distances[i] = math.Min(ret.Distances[i],
				floats.Distance(pos[:], img[:], 2))
		}
		ret.Deltas[i] = def.Potentials[a] - host.Potentials[hostAtoms[i]]
	}
	ret.Mean = ret.MeanOutside(radius)
	if math.IsNaN(ret.Mean) {
		log.Printf("no atoms of %s farther than %g Å from the defects, "+
			"potential alignment is undefined", def.ID, radius)
	}
	return ret, nil
}

// PotentialAlignment returns the mean potential difference between def
// and host outside spheres of radius around the defects. Multiply by
// the defect charge to obtain the correction. It fails with
// ErrEmptyAlignment when the spheres contain every atom.
func PotentialAlignment(host, def *cell.Cell, defects []defect.Defect, radius float64) (float64, error) {
	a, err := Align(host, def, defects, radius)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(a.Mean) {
		return 0, fmt.Errorf("%s with radius %g: %w", def.ID, radius, ErrEmptyAlignment)
	}
	return a.Mean, nil
}

// AlignmentScan returns the potential alignment for each of radii
func AlignmentScan(host, def *cell.Cell, defects []defect.Defect, radii []float64) ([]float64, error) {
	a, err := Align(host, def, defects, 0)
	if err != nil {
		return nil, err
	}
	ret := make([]float64, len(radii))
	for i, r := range radii {
		ret[i] = a.MeanOutside(r)
	}
	return ret, nil
}
