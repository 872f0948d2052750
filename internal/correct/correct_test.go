package correct

import (
	"math"
	"reflect"
	"testing"

	"bwestbro.com/pydef/internal/cell"
	"bwestbro.com/pydef/internal/defect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func cubic(a float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{a, 0, 0, 0, a, 0, 0, 0, a})
}

func testHost() *cell.Cell {
	return &cell.Cell{
		ID:      "A2B2_GGA_q0",
		Lattice: cubic(10),
		Atoms:   []string{"A1", "A2", "B1", "B2"},
		Positions: map[string][3]float64{
			"A1": {0, 0, 0}, "A2": {5, 5, 5}, "B1": {5, 0, 0}, "B2": {0, 5, 0},
		},
		Potentials: map[string]float64{
			"A1": -10, "A2": -10, "B1": -20, "B2": -20,
		},
		VBM: 0,
		CBM: 2,
	}
}

// testVacancy is testHost with A1 removed and the remaining A atom
// relabelled
func testVacancy() *cell.Cell {
	return &cell.Cell{
		ID:      "A1B2_GGA_q1",
		Lattice: cubic(10),
		Atoms:   []string{"A1", "B1", "B2"},
		Positions: map[string][3]float64{
			"A1": {5, 5, 5}, "B1": {5, 0, 0}, "B2": {0, 5, 0},
		},
		Potentials: map[string]float64{
			"A1": -9.9, "B1": -19.8, "B2": -20.1,
		},
	}
}

func mustDefect(t *testing.T, kind defect.Kind, atoms ...string) []defect.Defect {
	d, err := defect.New(kind, atoms, make([]float64, len(atoms)))
	require.NoError(t, err)
	return []defect.Defect{d}
}

func TestImages(t *testing.T) {
	lattice := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0.5, 1, 0,
		0, 0, 2,
	})
	got := Images(lattice, [3]float64{0.1, 0.2, 0.3})
	want := [][3]float64{
		{0.1, 0.2, 0.3},
		{0.1, 0.2, -1.7},
		{0.1, 0.2, 2.3},
		{1.1, 0.2, 0.3},
		{-0.9, 0.2, 0.3},
		{-0.4, -0.8, 0.3},
		{0.6, 1.2, 0.3},
	}
	require.Len(t, got, len(want))
	for i := range want {
		for k := range want[i] {
			assert.InDelta(t, want[i][k], got[i][k], 1e-12)
		}
	}
}

func TestAlignVacancy(t *testing.T) {
	host, def := testHost(), testVacancy()
	defects := mustDefect(t, defect.Vacancy, "A1")

	a, err := Align(host, def, defects, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B1", "B2"}, a.Labels)
	want := []float64{math.Sqrt(75), 5, 5}
	for i := range want {
		assert.InDelta(t, want[i], a.Distances[i], 1e-12)
	}
	wantDeltas := []float64{0.1, 0.2, -0.1}
	for i := range wantDeltas {
		assert.InDelta(t, wantDeltas[i], a.Deltas[i], 1e-12)
	}
	// every atom is outside a sphere of zero radius
	assert.InDelta(t, 0.2/3, a.Mean, 1e-12)

	got, err := PotentialAlignment(host, def, defects, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, got, 1e-12)

	_, err = PotentialAlignment(host, def, defects, 9)
	assert.ErrorIs(t, err, ErrEmptyAlignment)

	scan, err := AlignmentScan(host, def, defects, []float64{0, 6, 9})
	require.NoError(t, err)
	assert.InDelta(t, 0.2/3, scan[0], 1e-12)
	assert.InDelta(t, 0.1, scan[1], 1e-12)
	assert.True(t, math.IsNaN(scan[2]))

	// host data is not modified
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, host.Atoms)
}

func TestAlignInterstitial(t *testing.T) {
	host := testHost()
	def := testHost()
	def.Atoms = append(def.Atoms, "A3")
	def.Positions["A3"] = [3]float64{2, 2, 2}
	def.Potentials = map[string]float64{
		"A1": -10.5, "A2": -10.5, "B1": -20.5, "B2": -20.5, "A3": -3,
	}
	a, err := Align(host, def, mustDefect(t, defect.Interstitial, "A3"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, a.Labels)
	assert.InDelta(t, -0.5, a.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(12), a.Distances[0], 1e-12)
}

func TestAlignSubstitutional(t *testing.T) {
	host := testHost()
	def := &cell.Cell{
		Lattice: cubic(10),
		Atoms:   []string{"A1", "B1", "B2", "C1"},
		Positions: map[string][3]float64{
			"A1": {5, 5, 5}, "B1": {5, 0, 0}, "B2": {0, 5, 0}, "C1": {0.1, 0, 0},
		},
		Potentials: map[string]float64{
			"A1": -10.3, "B1": -20.3, "B2": -20.3, "C1": -50,
		},
	}
	a, err := Align(host, def, mustDefect(t, defect.Substitutional, "A1", "C1"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B1", "B2"}, a.Labels)
	assert.InDelta(t, -0.3, a.Mean, 1e-12)
	// distances are measured from the substituting atom
	assert.InDelta(t, 4.9, a.Distances[1], 1e-12)
}

func TestAlignErrors(t *testing.T) {
	host, def := testHost(), testVacancy()

	_, err := Align(host, def, mustDefect(t, defect.Vacancy, "A7"), 0)
	assert.ErrorIs(t, err, defect.ErrUnknownAtom)

	_, err = Align(host, testHost(), mustDefect(t, defect.Vacancy, "A1"), 0)
	assert.ErrorIs(t, err, ErrAtomMismatch)

	def.Potentials = nil
	_, err = Align(host, def, mustDefect(t, defect.Vacancy, "A1"), 0)
	assert.ErrorIs(t, err, ErrNoPotentials)
}

func TestHeaviside(t *testing.T) {
	for x, want := range map[float64]float64{-1: 0, 0: 0.5, 1e-9: 1} {
		if got := Heaviside(x); got != want {
			t.Errorf("got %v, wanted %v\n", got, want)
		}
	}
}

func TestMossBurstein(t *testing.T) {
	host := &cell.Cell{VBM: 0, CBM: 2}
	def := &cell.Cell{
		ISPIN:   1,
		KPoints: []cell.KPoint{{Weight: 0.5}, {Weight: 0.5}},
		Bands: []cell.Bands{
			{Energies: []float64{-1, 0.5, 2.5}, Occupations: []float64{2, 1, 0.5}},
			{Energies: []float64{-1, -0.2, 2.5}, Occupations: []float64{2, 1.5, 0}},
		},
	}
	got, err := MossBurstein(host, def, 0)
	require.NoError(t, err)
	assert.InDelta(t, -0.05, got[0], 1e-12)
	assert.InDelta(t, -0.125, got[1], 1e-12)

	got, err = MossBurstein(host, def, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, -0.075, got[0], 1e-12)
	assert.InDelta(t, -0.1, got[1], 1e-12)
}

func TestMossBursteinSpin(t *testing.T) {
	host := &cell.Cell{VBM: 0, CBM: 0.5}
	def := &cell.Cell{
		ISPIN:   2,
		KPoints: []cell.KPoint{{Weight: 1}},
		Bands: []cell.Bands{
			{Energies: []float64{-1, 1}, Occupations: []float64{1, 0}},
			{Energies: []float64{-1, 1}, Occupations: []float64{0.5, 0}},
		},
	}
	got, err := MossBurstein(host, def, 0)
	require.NoError(t, err)
	assert.InDelta(t, -0.25, got[0], 1e-12)
	assert.InDelta(t, 0, got[1], 1e-12)

	def.Bands = def.Bands[:1]
	_, err = MossBurstein(host, def, 0)
	assert.ErrorIs(t, err, ErrBandWeights)
}

func TestBandExtrema(t *testing.T) {
	dv, dc := BandExtrema(&cell.Cell{VBM: 1, CBM: 2}, &cell.Cell{VBM: 0.5, CBM: 3})
	assert.Equal(t, -0.5, dv)
	assert.Equal(t, 1.0, dc)
}

func TestPHS(t *testing.T) {
	got := PHS(2, 1, -0.5, 1)
	want := [2]float64{1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	assert.Equal(t, -1.0, VBM(2, -0.5))
}

func TestMakovPayne(t *testing.T) {
	const r = 1.37
	assert.Equal(t, r, MakovPayne(1, SC, 1, r))
	assert.Equal(t, 4*r, MakovPayne(2, SC, 1, r))
	assert.Equal(t, 4*r, MakovPayne(-2, SC, 1, r))
	assert.InDelta(t, (1-0.343*0.9)*2/10, MakovPayne(1, FCC, 10, 2), 1e-12)
	assert.Equal(t, 0.0, MakovPayne(0, HCP, 10, 2))
}

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		in    string
		want  Geometry
		shape float64
	}{
		{"sc", SC, -0.369},
		{"FCC", FCC, -0.343},
		{"bcc", BCC, -0.342},
		{"hcp", HCP, -0.478},
		{"other", OtherGeometry, -1. / 3},
	}
	for _, test := range tests {
		got, err := ParseGeometry(test.in)
		require.NoError(t, err)
		if got != test.want || got.Shape() != test.shape {
			t.Errorf("got %v, wanted %v\n", got, test.want)
		}
		assert.Equal(t, test.want.String(), got.String())
	}
	_, err := ParseGeometry("triclinic")
	assert.ErrorIs(t, err, ErrGeometry)
}
