package main

import (
	"fmt"
	"log"
	"os"

	"bwestbro.com/pydef/internal/defect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "pydef",
	Short: "Defect formation energies from VASP calculations",
	Long: `pydef reads VASP OUTCAR and DOSCAR files, applies the usual finite-size
and band-edge corrections to defect total energies and reports formation
energies and charge transition levels.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetFlags(log.Ltime | log.Lshortfile)
		} else {
			log.SetFlags(0)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("chempots", "",
		"TOML table of chemical potentials overriding the FERE values")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("chempots", rootCmd.PersistentFlags().Lookup("chempots"))
	viper.SetEnvPrefix("pydef")
	viper.AutomaticEnv()
}

// chemPots returns the FERE table overridden by the --chempots file, if
// any
func chemPots() (defect.ChemPotTable, error) {
	table := defect.FERE()
	name := viper.GetString("chempots")
	if name == "" {
		return table, nil
	}
	extra, err := defect.LoadChemPotTable(name)
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		log.Printf("using chemical potentials from %s", name)
	}
	return table.Merge(extra), nil
}
