// Package cell loads the results of a single VASP calculation from its
// OUTCAR and, optionally, DOSCAR files.
package cell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bwestbro.com/pydef/internal/grep"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotOutcar          = errors.New("not a valid OUTCAR file")
	ErrInconsistentAtoms  = errors.New("numbers of atoms are not consistent")
	ErrDoscarInconsistent = errors.New("DOSCAR is inconsistent with OUTCAR")
	ErrPositions          = errors.New("number of positions does not match number of atoms")
	ErrPotentials         = errors.New("number of potentials does not match number of atoms")
	ErrKPoints            = errors.New("number of k-points does not match NKPTS")
	ErrBands              = errors.New("band occupations are not usable")
)

// Bands holds the band energies and occupations at one k-point for one
// spin channel
type Bands struct {
	Energies    []float64
	Occupations []float64
}

type KPoint struct {
	// Reciprocal are the coordinates in units of the reciprocal
	// lattice vectors
	Reciprocal [3]float64
	// Cartesian are the coordinates in units of 2pi/SCALE
	Cartesian [3]float64
	Weight    float64
}

// Cell is the record of a completed calculation. Fields should be
// treated as read-only once Load returns.
type Cell struct {
	Outcar string
	Doscar string

	Functional Functional

	NEDOS  int
	ENCUT  float64
	EDIFF  float64
	EMIN   float64
	EMAX   float64
	ISMEAR int
	LORBIT int
	ISYM   int
	ISTART int
	ISPIN  int
	ICHARG int
	NELM   int
	NKPTS  int
	NBANDS int

	NAtoms     int
	Species    []string
	Counts     []int
	Valence    []int
	Population map[string]int
	// Atoms are the labels of the individual atoms, the species followed
	// by a 1-based index within it, like Zn1
	Atoms      []string
	NElectrons float64
	Charge     float64
	Orbitals   []string

	ID string

	Lattice   *mat.Dense
	Positions map[string][3]float64

	Iterations int
	Energy     float64
	Fermi      float64
	VBM        float64
	CBM        float64
	Gap        float64
	Bands      []Bands
	KPoints    []KPoint

	// Potentials are the averaged electrostatic potentials at each
	// atom. nil for GW calculations.
	Potentials map[string]float64

	// DOS is nil unless a DOSCAR was loaded
	DOS *DOS
}

// Load parses outcar and, if doscar is not empty, the matching DOSCAR
func Load(outcar, doscar string) (*Cell, error) {
	lines, err := grep.ReadLines(outcar)
	if err != nil {
		return nil, err
	}
	c, err := parse(lines)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", outcar, err)
	}
	c.Outcar = outcar
	c.Doscar = doscar
	if doscar != "" {
		dlines, err := grep.ReadLines(doscar)
		if err != nil {
			return nil, err
		}
		c.DOS, err = parseDOS(dlines, c)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", doscar, err)
		}
	}
	return c, nil
}

func parse(lines []string) (*Cell, error) {
	if len(lines) == 0 || !strings.HasPrefix(lines[0], " vasp.") {
		return nil, ErrNotOutcar
	}
	c := new(Cell)
	var err error
	c.Functional, c.NELM, err = detectFunctional(lines)
	if err != nil {
		return nil, err
	}
	if err := c.parseParams(lines); err != nil {
		return nil, err
	}
	if err := c.parseComposition(lines); err != nil {
		return nil, err
	}
	if c.Functional.IsGW() {
		c.Iterations = c.NELM
	} else {
		c.Iterations = grep.Count(lines, "Iteration")
	}
	if c.Lattice, err = parseLattice(lines); err != nil {
		return nil, err
	}
	if c.Positions, err = parsePositions(lines, c.Atoms); err != nil {
		return nil, err
	}
	c.Energy, err = grep.MustFloat(lines, grep.Query{
		Marker: "free energy    TOTEN  =",
		Index:  -1,
		End:    "eV",
		Count:  c.Iterations,
	})
	if err != nil {
		return nil, err
	}
	if c.Fermi, err = parseFermi(lines, c.ISMEAR); err != nil {
		return nil, err
	}
	if c.KPoints, err = parseKPoints(lines, c.NKPTS); err != nil {
		return nil, err
	}
	if c.Bands, err = parseBands(lines, c.Functional, c.NKPTS*c.ISPIN); err != nil {
		return nil, err
	}
	if c.VBM, c.CBM, err = BandEdges(c.Bands); err != nil {
		return nil, err
	}
	c.Gap = c.CBM - c.VBM
	if !c.Functional.IsGW() {
		c.Potentials, err = parsePotentials(lines, c.Atoms)
		if err != nil {
			return nil, err
		}
	}
	var id strings.Builder
	for i, s := range c.Species {
		fmt.Fprintf(&id, "%s%d", s, c.Counts[i])
	}
	fmt.Fprintf(&id, "_%s_q%d", c.Functional, int(c.Charge))
	c.ID = id.String()
	return c, nil
}

func (c *Cell) parseParams(lines []string) (err error) {
	ints := []struct {
		dst *int
		q   grep.Query
	}{
		{&c.NEDOS, grep.Once("NEDOS =", "number of ions")},
		{&c.ISMEAR, grep.Once("ISMEAR =", ";")},
		{&c.LORBIT, grep.Once("LORBIT =", "0 simple")},
		{&c.ISYM, grep.Once("ISYM   =", "0-nonsym")},
		{&c.ISTART, grep.Once("ISTART =", "job")},
		{&c.ISPIN, grep.Once("ISPIN  =", "spin")},
		{&c.ICHARG, grep.Once("ICHARG =", "charge:")},
		{&c.NKPTS, grep.Once("NKPTS =", "k-points in BZ")},
		{&c.NBANDS, grep.Once("NBANDS=", "")},
	}
	for _, i := range ints {
		if *i.dst, err = grep.MustInt(lines, i.q); err != nil {
			return
		}
	}
	floats := []struct {
		dst *float64
		q   grep.Query
	}{
		{&c.ENCUT, grep.Once("ENCUT  =", "eV")},
		{&c.EDIFF, grep.Once("EDIFF  =", "stopping")},
		{&c.EMIN, grep.Once("EMIN   =", ";")},
		{&c.EMAX, grep.Once("EMAX   =", "energy-range")},
	}
	for _, f := range floats {
		if *f.dst, err = grep.MustFloat(lines, f.q); err != nil {
			return
		}
	}
	return
}

func (c *Cell) parseComposition(lines []string) (err error) {
	if c.NAtoms, err = grep.MustInt(lines, grep.Once("NIONS =", "")); err != nil {
		return
	}
	s, err := grep.MustString(lines, grep.Nth("ions per type =", 0, ""))
	if err != nil {
		return
	}
	for _, f := range strings.Fields(s) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("ions per type %q: %w", s, grep.ErrParse)
		}
		c.Counts = append(c.Counts, n)
	}
	for i := range grep.Find(lines, "VRHFIN =") {
		sp, err := grep.MustString(lines, grep.Nth("VRHFIN =", i, ":"))
		if err != nil {
			return err
		}
		c.Species = append(c.Species, sp)
	}
	s, err = grep.MustString(lines, grep.Nth("ZVAL   =", -1, ""))
	if err != nil {
		return
	}
	zval, err := grep.Floats(s)
	if err != nil {
		return
	}
	for _, z := range zval {
		c.Valence = append(c.Valence, int(z))
	}
	c.NElectrons, err = grep.MustFloat(lines, grep.Once("NELECT =", "total number"))
	if err != nil {
		return
	}
	if s, ok, _ := grep.String(lines, grep.Nth("# of ion", 0, "tot")); ok {
		c.Orbitals = strings.Fields(s)
	}

	var sum int
	for _, n := range c.Counts {
		sum += n
	}
	if sum != c.NAtoms || len(c.Counts) != len(c.Species) ||
		len(c.Counts) != len(c.Valence) {
		return ErrInconsistentAtoms
	}

	c.Population = make(map[string]int, len(c.Species))
	var electrons int
	for i, sp := range c.Species {
		c.Population[sp] = c.Counts[i]
		electrons += c.Counts[i] * c.Valence[i]
		for j := 1; j <= c.Counts[i]; j++ {
			c.Atoms = append(c.Atoms, sp+strconv.Itoa(j))
		}
	}
	c.Charge = float64(electrons) - c.NElectrons
	return nil
}

func parseLattice(lines []string) (*mat.Dense, error) {
	const marker = "direct lattice vectors"
	found := grep.Find(lines, marker)
	if len(found) == 0 {
		return nil, &grep.Error{Marker: marker, Err: grep.ErrMissingMarker}
	}
	start := found[len(found)-1].Line + 1
	if start+3 > len(lines) {
		return nil, fmt.Errorf("truncated lattice vectors: %w", grep.ErrParse)
	}
	data := make([]float64, 0, 9)
	for _, line := range lines[start : start+3] {
		row, err := grep.Floats(line)
		if err != nil {
			return nil, err
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("lattice vector %q: %w", line, grep.ErrParse)
		}
		data = append(data, row[:3]...)
	}
	return mat.NewDense(3, 3, data), nil
}

// section returns the index of the only line containing marker
func section(lines []string, marker string) (int, error) {
	found := grep.Find(lines, marker)
	if len(found) != 1 {
		return 0, &grep.Error{
			Marker: marker, Want: 1, Got: len(found), Err: grep.ErrOccurrences,
		}
	}
	return found[0].Line, nil
}

func parsePositions(lines []string, atoms []string) (map[string][3]float64, error) {
	i, err := section(lines,
		"position of ions in cartesian coordinates  (Angst):")
	if err != nil {
		return nil, err
	}
	block := grep.Block(lines, i+1)
	if len(block) != len(atoms) {
		return nil, fmt.Errorf("found %d for %d atoms: %w",
			len(block), len(atoms), ErrPositions)
	}
	ret := make(map[string][3]float64, len(atoms))
	for j, line := range block {
		row, err := grep.Floats(line)
		if err != nil {
			return nil, err
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("position %q: %w", line, ErrPositions)
		}
		ret[atoms[j]] = [3]float64{row[0], row[1], row[2]}
	}
	return ret, nil
}

func parseFermi(lines []string, ismear int) (float64, error) {
	efermi := grep.Nth("E-fermi :", -1, "XC(G=0)")
	if ismear == 0 {
		return grep.MustFloat(lines, efermi)
	}
	v, ok, err := grep.Float(lines, grep.Nth(" BZINTS: Fermi energy:", -1, ";"))
	if err != nil || ok {
		return v, err
	}
	return grep.MustFloat(lines, efermi)
}

func parseKPoints(lines []string, nkpts int) ([]KPoint, error) {
	i, err := section(lines, "k-points in reciprocal lattice and weights")
	if err != nil {
		return nil, err
	}
	recip, err := grep.Columns(grep.Block(lines, i+1))
	if err != nil {
		return nil, err
	}
	if len(recip) < 4 || len(recip[3]) != nkpts {
		return nil, fmt.Errorf("reciprocal coordinates: %w", ErrKPoints)
	}
	i, err = section(lines, " k-points in units of 2pi/SCALE and weight:")
	if err != nil {
		return nil, err
	}
	cart, err := grep.Columns(grep.Block(lines, i+1))
	if err != nil {
		return nil, err
	}
	if len(cart) < 3 || len(cart[0]) != nkpts {
		return nil, fmt.Errorf("cartesian coordinates: %w", ErrKPoints)
	}
	ret := make([]KPoint, nkpts)
	for k := range ret {
		ret[k] = KPoint{
			Reciprocal: [3]float64{recip[0][k], recip[1][k], recip[2][k]},
			Cartesian:  [3]float64{cart[0][k], cart[1][k], cart[2][k]},
			Weight:     recip[3][k],
		}
	}
	return ret, nil
}
