package study

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteReport writes the host, the band edge shifts, the defects, every
// charge state with its corrections and the transition levels over
// FermiRange to w as tab-separated text
func (st *Study) WriteReport(w io.Writer) error {
	b := bufio.NewWriter(w)
	h := st.Host
	fmt.Fprintf(b, "HOST CELL\n")
	fmt.Fprintf(b, "ID:\t%s\n", h.ID)
	fmt.Fprintf(b, "Method:\t%s\n", h.Functional)
	fmt.Fprintf(b, "Energy:\t%.5f eV\n", h.Energy)
	fmt.Fprintf(b, "VBM:\t%.5f eV\n", h.VBM)
	fmt.Fprintf(b, "CBM:\t%.5f eV\n", h.CBM)
	fmt.Fprintf(b, "Gap:\t%.5f eV\n", h.Gap)

	if hb := st.HostB; hb != h {
		fmt.Fprintf(b, "\nHOST CELL B\n")
		fmt.Fprintf(b, "ID:\t%s\n", hb.ID)
		fmt.Fprintf(b, "Method:\t%s\n", hb.Functional)
		fmt.Fprintf(b, "VBM:\t%.5f eV\n", hb.VBM)
		fmt.Fprintf(b, "CBM:\t%.5f eV\n", hb.CBM)
		fmt.Fprintf(b, "Gap:\t%.5f eV\n", hb.Gap)
	}

	fmt.Fprintf(b, "\nGAP CORRECTION\n")
	fmt.Fprintf(b, "DE_V:\t%.5f eV\n", st.DeltaVBM)
	fmt.Fprintf(b, "DE_C:\t%.5f eV\n", st.DeltaCBM)
	for _, g := range st.Gaps {
		fmt.Fprintf(b, "%s:\t%.5f eV\n", g.Label, g.Value)
	}

	var positions [][3]float64
	if len(st.cells) > 0 {
		positions = st.cells[0].Positions
	}
	fmt.Fprintf(b, "\nDEFECTS\n")
	fmt.Fprintf(b, "Name\tType\tatom(s)\tcoordinates\tchemical potential (eV)\tn\n")
	for i, d := range st.Defects {
		coords := "-"
		if i < len(positions) {
			p := positions[i]
			coords = fmt.Sprintf("[%.5f, %.5f, %.5f]", p[0], p[1], p[2])
		}
		fmt.Fprintf(b, "%s\t%s\t%s\t%s\t%.5f\t%d\n",
			d.ID, d.Kind, strings.Join(d.Atoms, "&"), coords, d.ChemPot, d.N)
	}

	fmt.Fprintf(b, "\nDEFECT CELLS\n")
	fmt.Fprintf(b, "Name\tCharge\tEnergy\tVBM correction"+
		"\tPHS correction (holes)\tPHS correction (electrons)"+
		"\tPotential alignment"+
		"\tMoss-Burstein correction (holes)\tMoss-Burstein correction (electrons)"+
		"\tMakov-Payne correction\tTotal\tE_for(E_F=0)\n")
	for _, cs := range st.cells {
		fmt.Fprintf(b, "%s\t%d\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\n",
			cs.ID(), int(cs.Charge), cs.Defect.Energy, cs.VBM,
			cs.PHS[0], cs.PHS[1], cs.Alignment,
			cs.MossBurstein[0], cs.MossBurstein[1], cs.MakovPayne,
			cs.Total, cs.EFor0)
	}

	fmt.Fprintf(b, "\nCORRECTIONS PARAMETERS\n")
	fmt.Fprintf(b, "Name\tNb of electrons\tSpheres radius\n")
	for _, cs := range st.cells {
		fmt.Fprintf(b, "%s\t%.2f\t%.5f\n",
			cs.ID(), cs.Defect.NElectrons, cs.Params.Radius)
	}

	fmt.Fprintf(b, "\nTRANSITION LEVELS\n")
	for _, t := range st.Transitions(st.FermiRange()) {
		fmt.Fprintf(b, "%.0f/%.0f :\t%.5f eV\n", t.Old, t.New, t.Fermi)
	}
	return b.Flush()
}
