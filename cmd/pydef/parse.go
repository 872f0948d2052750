package main

import (
	"fmt"
	"io"
	"strings"

	"bwestbro.com/pydef/internal/cell"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse OUTCAR [DOSCAR]",
	Short: "Summarize one VASP calculation",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doscar string
		if len(args) == 2 {
			doscar = args[1]
		}
		c, err := cell.Load(args[0], doscar)
		if err != nil {
			return err
		}
		writeCell(cmd.OutOrStdout(), c)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func writeCell(w io.Writer, c *cell.Cell) {
	fmt.Fprintf(w, "ID:\t%s\n", c.ID)
	fmt.Fprintf(w, "Title:\t%s\n", c.Title())
	fmt.Fprintf(w, "Method:\t%s\n", c.Functional)
	fmt.Fprintf(w, "Charge:\t%.0f\n", c.Charge)
	pop := make([]string, len(c.Species))
	for i, sp := range c.Species {
		pop[i] = fmt.Sprintf("%s %d", sp, c.Counts[i])
	}
	fmt.Fprintf(w, "Atoms:\t%s\n", strings.Join(pop, ", "))
	fmt.Fprintf(w, "Electrons:\t%.2f\n", c.NElectrons)
	fmt.Fprintf(w, "Iterations:\t%d\n", c.Iterations)
	fmt.Fprintf(w, "Energy:\t%.5f eV\n", c.Energy)
	fmt.Fprintf(w, "Fermi:\t%.5f eV\n", c.Fermi)
	fmt.Fprintf(w, "VBM:\t%.5f eV\n", c.VBM)
	fmt.Fprintf(w, "CBM:\t%.5f eV\n", c.CBM)
	fmt.Fprintf(w, "Gap:\t%.5f eV\n", c.Gap)
	if c.DOS != nil && len(c.DOS.Energy) > 0 {
		fmt.Fprintf(w, "DOS:\t%d points from %.3f to %.3f eV\n",
			len(c.DOS.Energy), c.DOS.Energy[0], c.DOS.Energy[len(c.DOS.Energy)-1])
	}
}
