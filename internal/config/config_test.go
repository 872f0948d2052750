package config

import (
	"os"
	"path/filepath"
	"testing"

	"bwestbro.com/pydef/internal/correct"
	"bwestbro.com/pydef/internal/defect"
	"bwestbro.com/pydef/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chemPots(t *testing.T) defect.ChemPotTable {
	table, err := defect.LoadChemPotTable("../../testfiles/chempots.toml")
	require.NoError(t, err)
	return table
}

func TestLoadConfig(t *testing.T) {
	got, err := LoadConfig("../../testfiles/vzn.toml", chemPots(t))
	require.NoError(t, err)
	dir := filepath.Join("..", "..", "testfiles")
	assert.Equal(t, filepath.Join(dir, "host", "OUTCAR"), got.Host)
	assert.Equal(t, filepath.Join(dir, "host", "DOSCAR"), got.HostDOS)
	assert.Equal(t, filepath.Join(dir, "host_b", "OUTCAR"), got.HostB)
	want := study.Settings{
		Geometry:     correct.SC,
		Permittivity: 8.9,
		MakovPayne:   1.12,
		Corrections:  study.AllCorrections(),
	}
	if got.Settings != want {
		t.Errorf("got %v, wanted %v\n", got.Settings, want)
	}
	assert.Equal(t, []study.Gap{{Label: "Experimental", Value: 3.7}}, got.Gaps)
	require.Len(t, got.Defects, 1)
	assert.Equal(t, "Vac_Zn1", got.Defects[0].ID)
	assert.Equal(t, -0.84, got.Defects[0].ChemPot)
	require.Len(t, got.Cells, 2)
	assert.Equal(t, CellConf{
		Outcar: filepath.Join(dir, "vzn_q2", "OUTCAR"),
		Params: study.Params{Radius: 2.5},
	}, got.Cells[1])
}

func TestBuild(t *testing.T) {
	conf, err := LoadConfig("../../testfiles/vzn.toml", chemPots(t))
	require.NoError(t, err)
	st, err := conf.Build()
	require.NoError(t, err)
	assert.Equal(t, "Zn2S2_GGA_q0_corr_GGA_Vac_Zn1", st.ID)
	assert.NotNil(t, st.Host.DOS)
	cells := st.Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, "Zn1S2_GGA_q0", cells[0].ID())
	assert.Equal(t, "Zn1S2_GGA_q2", cells[1].ID())
	require.Len(t, st.Gaps, 2)
	assert.Equal(t, study.CalculatedGap, st.Gaps[1].Label)
	assert.InDelta(t, 1.9, st.Gaps[1].Value, 1e-9)
	lo, hi := st.FermiRange()
	assert.Equal(t, -0.5, lo)
	assert.InDelta(t, 1.05*3.7, hi, 1e-12)
}

func writeConf(t *testing.T, body string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "study.toml")
	require.NoError(t, os.WriteFile(name, []byte(body), 0o644))
	return name
}

func TestLoadConfigErrors(t *testing.T) {
	const cells = "\n[[cells]]\noutcar = \"q0/OUTCAR\"\n"
	const vacancy = "\n[[defects]]\nkind = \"vacancy\"\natoms = [\"Zn1\"]\n"
	tests := []struct {
		name  string
		body  string
		table defect.ChemPotTable
		want  error
	}{
		{"no host", vacancy + cells, nil, ErrNoHost},
		{"no cells", "host = \"h/OUTCAR\"\n" + vacancy, nil, ErrNoCells},
		{"geometry", "host = \"h\"\ngeometry = \"tetragonal\"\n" + vacancy + cells,
			nil, correct.ErrGeometry},
		{"permittivity", "host = \"h\"\npermittivity = 0.0\n" + vacancy + cells,
			nil, ErrPermittivity},
		{"kind", "host = \"h\"\n[[defects]]\nkind = \"antisite\"\natoms = [\"Zn1\"]\n" + cells,
			nil, defect.ErrKind},
		{"chem pot", "host = \"h\"\n" + vacancy + cells,
			defect.ChemPotTable{"S": -4.95}, defect.ErrNoChemPot},
		{"atoms", "host = \"h\"\n[[defects]]\nkind = \"substitutional\"\natoms = [\"Zn1\"]\n" + cells,
			defect.FERE(), defect.ErrAtoms},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfig(writeConf(t, test.body), test.table)
			assert.ErrorIs(t, err, test.want)
		})
	}
}

func TestExplicitChemPots(t *testing.T) {
	name := writeConf(t, `
host = "/abs/host/OUTCAR"
permittivity = 0.0

[corrections]
makov_payne = false

[[defects]]
kind = "substitutional"
atoms = ["Zn1", "Cu1"]
chem_pots = [-1.0, -2.5]

[[cells]]
outcar = "cu/OUTCAR"
`)
	got, err := LoadConfig(name, nil)
	require.NoError(t, err)
	assert.Equal(t, "/abs/host/OUTCAR", got.Host)
	assert.Equal(t, "", got.HostB)
	assert.False(t, got.Settings.Corrections.MakovPayne)
	assert.True(t, got.Settings.Corrections.Alignment)
	assert.Equal(t, filepath.Join(filepath.Dir(name), "cu", "OUTCAR"), got.Cells[0].Outcar)
	require.Len(t, got.Defects, 1)
	assert.Equal(t, "Subs(Zn1_by_Cu1)", got.Defects[0].ID)
	assert.Equal(t, 1.5, got.Defects[0].ChemPot)
}
