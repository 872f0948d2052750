package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bwestbro.com/pydef/internal/cell"
	"github.com/gobwas/glob"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var cellsPattern string

var cellsCmd = &cobra.Command{
	Use:   "cells DIR",
	Short: "Summarize every calculation below DIR",
	Long: `cells walks DIR for OUTCAR files matching --pattern, relative to DIR,
and parses each one together with the DOSCAR next to it, if there is one.
A calculation that fails to parse is reported and skipped.

Examples:
  pydef cells runs
  pydef cells runs --pattern 'ZnS/**/OUTCAR'
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		calcs, err := discover(args[0], cellsPattern)
		if err != nil {
			return err
		}
		bar := progressbar.NewOptions(len(calcs),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Parsing calculations"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(cmd.ErrOrStderr())
			}),
		)
		var cells []*cell.Cell
		var failed []error
		for _, c := range calcs {
			loaded, err := cell.Load(c.Outcar, c.Doscar)
			if err != nil {
				failed = append(failed, err)
			} else {
				cells = append(cells, loaded)
			}
			bar.Add(1)
		}
		bar.Finish()

		w := cmd.OutOrStdout()
		for _, c := range cells {
			dos := "-"
			if c.DOS != nil {
				dos = "DOS"
			}
			fmt.Fprintf(w, "%s\t%s\t%.5f\t%.4f\t%.4f\t%s\t%s\n",
				c.ID, c.Functional, c.Energy, c.VBM, c.CBM, dos, c.Outcar)
		}
		for _, err := range failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cellsCmd)
	cellsCmd.Flags().StringVarP(&cellsPattern, "pattern", "p", "**/OUTCAR",
		"glob selecting OUTCAR files relative to DIR")
}

// calculation is an OUTCAR and its DOSCAR, which may be empty
type calculation struct {
	Outcar string
	Doscar string
}

// discover returns the files below root whose slash-separated path
// relative to root matches pattern, in lexical order. A leading **/
// also matches files directly in root.
func discover(root, pattern string) ([]calculation, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	var top glob.Glob
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		top, err = glob.Compile(rest, '/')
		if err != nil {
			return nil, err
		}
	}
	var ret []calculation
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		match := g.Match(rel)
		if !match && top != nil && !strings.Contains(rel, "/") {
			match = top.Match(rel)
		}
		if !match {
			return nil
		}
		c := calculation{Outcar: path}
		doscar := filepath.Join(filepath.Dir(path), "DOSCAR")
		if _, err := os.Stat(doscar); err == nil {
			c.Doscar = doscar
		}
		ret = append(ret, c)
		return nil
	})
	return ret, err
}
