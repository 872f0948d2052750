package main

import (
	"fmt"
	"io"
	"os"

	"bwestbro.com/pydef/internal/config"
	"bwestbro.com/pydef/internal/correct"
	"bwestbro.com/pydef/internal/study"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

var (
	studyReport string
	studyScan   float64
)

var studyCmd = &cobra.Command{
	Use:   "study STUDY.toml",
	Short: "Corrected formation energies and transition levels of a defect",
	Long: `study loads the host and defect calculations described in STUDY.toml,
applies the enabled corrections to every charge state and prints the
formation energies at the VBM together with the transition levels.

Chemical potentials missing from STUDY.toml are taken from the FERE
table, or from --chempots.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := chemPots()
		if err != nil {
			return err
		}
		conf, err := config.LoadConfig(args[0], table)
		if err != nil {
			return err
		}
		st, err := conf.Build()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		writeStudy(w, st)
		if studyScan > 0 {
			if err := writeScan(w, st, studyScan); err != nil {
				return err
			}
		}
		if studyReport != "" {
			f, err := os.Create(studyReport)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := st.WriteReport(f); err != nil {
				return err
			}
			return f.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)
	studyCmd.Flags().StringVarP(&studyReport, "report", "r", "",
		"write the full results report to this file")
	studyCmd.Flags().Float64Var(&studyScan, "scan", 0,
		"print the potential alignment for sphere radii up to this value")
}

func writeStudy(w io.Writer, st *study.Study) {
	fmt.Fprintf(w, "%s\n", st.Title)
	fmt.Fprintf(w, "dVBM = %.4f eV, dCBM = %.4f eV\n", st.DeltaVBM, st.DeltaCBM)
	for _, g := range st.Gaps {
		fmt.Fprintf(w, "%s = %.4f eV\n", g.Label, g.Value)
	}
	fmt.Fprintf(w, "\n%-16s%4s%10s%10s%10s%10s%10s%10s%10s%12s\n",
		"cell", "q", "align", "MB(h)", "MB(e)", "PHS(h)", "PHS(e)", "VBM", "MP", "E_f(0)")
	for _, cs := range st.Cells() {
		fmt.Fprintf(w, "%-16s%4.0f%10.4f%10.4f%10.4f%10.4f%10.4f%10.4f%10.4f%12.4f\n",
			cs.ID(), cs.Charge, cs.Alignment,
			cs.MossBurstein[0], cs.MossBurstein[1], cs.PHS[0], cs.PHS[1],
			cs.VBM, cs.MakovPayne, cs.EFor0)
	}
	lo, hi := st.FermiRange()
	fmt.Fprintf(w, "\ntransition levels from %.3f to %.3f eV\n", lo, hi)
	levels := st.Transitions(lo, hi)
	if len(levels) == 0 {
		fmt.Fprintln(w, "none")
	}
	for _, t := range levels {
		fmt.Fprintf(w, "%+.0f/%+.0f\t%.4f eV\t%.4f eV\n", t.Old, t.New, t.Fermi, t.Energy)
	}
}

const scanPoints = 11

// writeScan prints the potential alignment of every cell for evenly
// spaced radii from zero to top
func writeScan(w io.Writer, st *study.Study, top float64) error {
	radii := floats.Span(make([]float64, scanPoints), 0, top)
	fmt.Fprintf(w, "\npotential alignment scan\n%-16s", "radius")
	for _, r := range radii {
		fmt.Fprintf(w, "%9.2f", r)
	}
	fmt.Fprintln(w)
	for _, cs := range st.Cells() {
		scan, err := correct.AlignmentScan(st.Host, cs.Defect, st.Defects, radii)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-16s", cs.ID())
		for _, v := range scan {
			fmt.Fprintf(w, "%9.4f", v)
		}
		fmt.Fprintln(w)
	}
	return nil
}
