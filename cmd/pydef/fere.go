package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fereCmd = &cobra.Command{
	Use:   "fere",
	Short: "Print the chemical potentials in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := chemPots()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, sp := range table.Species() {
			fmt.Fprintf(w, "%-4s%10.4f\n", sp, table[sp])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fereCmd)
}
