package cell

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"bwestbro.com/pydef/internal/grep"
)

const (
	gw0Header  = "  band No. old QP-enery  QP-energies   sigma(KS)   T+V_ion+V_H  V^pw_x(r,r')   Z            occupation"
	g0w0Header = "  band No.  KS-energies  QP-energies   sigma(KS)   V_xc(KS)     V^pw_x(r,r')   Z            occupation"
	bandHeader = "  band No.  band energies     occupation"
)

// parseBands reads the last n band tables, one per k-point and spin
// channel
func parseBands(lines []string, f Functional, n int) ([]Bands, error) {
	header, skip, col := bandHeader, 1, 1
	switch f {
	case GW0:
		header, skip, col = gw0Header, 2, 2
	case G0W0:
		header, skip, col = g0w0Header, 2, 2
	}
	found := grep.Find(lines, header)
	if len(found) < n || n == 0 {
		return nil, &grep.Error{
			Marker: header, Want: n, Got: len(found), Err: grep.ErrOccurrences,
		}
	}
	found = found[len(found)-n:]
	ret := make([]Bands, 0, n)
	for _, m := range found {
		cols, err := grep.Columns(grep.Block(lines, m.Line+skip))
		if err != nil {
			return nil, err
		}
		if len(cols) <= col {
			return nil, fmt.Errorf("band table at line %d: %w",
				m.Line+1, ErrBands)
		}
		ret = append(ret, Bands{
			Energies:    cols[col],
			Occupations: cols[len(cols)-1],
		})
	}
	return ret, nil
}

// BandEdges returns the valence band maximum and conduction band
// minimum over all k-points. At each k-point the last band with a
// non-zero occupation is the top of the valence band and the band above
// it the bottom of the conduction band.
func BandEdges(bands []Bands) (vbm, cbm float64, err error) {
	if len(bands) == 0 {
		return 0, 0, ErrBands
	}
	vbm, cbm = math.Inf(-1), math.Inf(1)
	for k, b := range bands {
		top := -1
		for i, occ := range b.Occupations {
			if occ != 0 {
				top = i
			}
		}
		if top < 0 || top+1 >= len(b.Energies) {
			return 0, 0, fmt.Errorf("k-point %d: %w", k+1, ErrBands)
		}
		vbm = math.Max(vbm, b.Energies[top])
		cbm = math.Min(cbm, b.Energies[top+1])
	}
	return
}

// potentials are printed as index value pairs, several to a line, and
// a negative value can run into its index
var potentialRx = regexp.MustCompile(`(\d+)\s*(-?\d+\.\d+)`)

func parsePotentials(lines []string, atoms []string) (map[string]float64, error) {
	i, err := section(lines, "average (electrostatic) potential at core")
	if err != nil {
		return nil, err
	}
	ret := make(map[string]float64, len(atoms))
	for _, line := range grep.Block(lines, i+3) {
		for _, m := range potentialRx.FindAllStringSubmatch(line, -1) {
			idx, _ := strconv.Atoi(m[1])
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, err
			}
			if idx < 1 || idx > len(atoms) {
				return nil, fmt.Errorf("atom index %d: %w", idx, ErrPotentials)
			}
			ret[atoms[idx-1]] = v
		}
	}
	if len(ret) != len(atoms) {
		return nil, fmt.Errorf("found %d for %d atoms: %w",
			len(ret), len(atoms), ErrPotentials)
	}
	return ret, nil
}
