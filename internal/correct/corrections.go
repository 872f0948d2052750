package correct

import (
	"fmt"
	"strings"

	"bwestbro.com/pydef/internal/cell"
)

// Heaviside is the unit step function with H(0) = 0.5
func Heaviside(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 0:
		return 1
	}
	return 0.5
}

// MossBurstein returns the band-filling corrections [acceptor, donor]
// for def. The host band edges are shifted by alignment, the potential
// alignment before multiplication by the charge. The donor term sums
// the occupation of states above the aligned CBM and the acceptor term
// the missing occupation of states below the aligned VBM, each weighted
// by the k-point weights and the distance to the edge.
func MossBurstein(host, def *cell.Cell, alignment float64) ([2]float64, error) {
	var ret [2]float64
	weights := make([]float64, 0, 2*len(def.KPoints))
	maxOcc := 2.0
	for _, k := range def.KPoints {
		weights = append(weights, k.Weight)
	}
	if def.ISPIN == 2 {
		for i := range weights {
			weights[i] /= 2
		}
		weights = append(weights, weights...)
		maxOcc = 1.0
	}
	if len(weights) != len(def.Bands) {
		return ret, fmt.Errorf("%d band tables for %d weights: %w",
			len(def.Bands), len(weights), ErrBandWeights)
	}
	cbm := host.CBM + alignment
	vbm := host.VBM + alignment
	var donor, acceptor float64
	for k, b := range def.Bands {
		var d, a float64
		for i, e := range b.Energies {
			occ := b.Occupations[i]
			d += occ * (e - cbm) * Heaviside(e-cbm)
			a += (maxOcc - occ) * (vbm - e) * Heaviside(vbm-e)
		}
		donor += weights[k] * d
		acceptor += weights[k] * a
	}
	ret[0], ret[1] = -acceptor, -donor
	return ret, nil
}

// BandExtrema returns the shifts of the VBM and CBM of host needed to
// reproduce the band edges of hostB, typically the same cell computed
// with a functional giving a better gap
func BandExtrema(host, hostB *cell.Cell) (dVBM, dCBM float64) {
	return hostB.VBM - host.VBM, hostB.CBM - host.CBM
}

// PHS returns the correction [holes, electrons] for holes and
// electrons trapped in perturbed host states
func PHS(holes, electrons, dVBM, dCBM float64) [2]float64 {
	return [2]float64{-holes * dVBM, electrons * dCBM}
}

// VBM returns the correction for the shift of the reference VBM
func VBM(charge, dVBM float64) float64 {
	return charge * dVBM
}

// Geometry is the lattice type of the host, which determines the
// shape factor of the Makov-Payne correction
type Geometry int

const (
	SC Geometry = iota
	FCC
	BCC
	HCP
	OtherGeometry
)

func (g Geometry) String() string {
	return []string{"sc", "fcc", "bcc", "hcp", "other"}[g]
}

// Shape returns the shape factor of g
func (g Geometry) Shape() float64 {
	return []float64{-0.369, -0.343, -0.342, -0.478, -1. / 3}[g]
}

func ParseGeometry(s string) (Geometry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sc":
		return SC, nil
	case "fcc":
		return FCC, nil
	case "bcc":
		return BCC, nil
	case "hcp":
		return HCP, nil
	case "other":
		return OtherGeometry, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrGeometry)
}

// MakovPayne returns the Makov-Payne correction for a defect of charge
// in a host of geometry g with relative permittivity epsR. ratio is the
// first-order term for q = 1 and epsR = 1.
func MakovPayne(charge float64, g Geometry, epsR, ratio float64) float64 {
	return (1 + g.Shape()*(1-1/epsR)) * charge * charge * ratio / epsR
}
