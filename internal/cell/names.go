package cell

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Name returns the chemical formula of c, like Cd8In16S32. If reduced
// is true the populations are divided by their greatest common divisor,
// giving CdIn2S4. A single-species system is always named by its
// species alone.
func (c *Cell) Name(reduced bool) string {
	counts := c.Counts
	switch {
	case len(c.Species) == 1:
		counts = []int{1}
	case reduced:
		var d int
		for _, n := range counts {
			d = gcd(d, n)
		}
		if d > 1 {
			counts = make([]int, len(c.Counts))
			for i, n := range c.Counts {
				counts[i] = n / d
			}
		}
	}
	var name strings.Builder
	for i, sp := range c.Species {
		name.WriteString(sp)
		if counts[i] != 1 {
			name.WriteString(strconv.Itoa(counts[i]))
		}
	}
	return name.String()
}

func (c *Cell) Title() string {
	return fmt.Sprintf("%s %s q=%.0f", c.Name(false), c.Functional.Title(), c.Charge)
}

// Normalize adds every species present in only one of a and b to the
// population of the other with a count of zero
func Normalize(a, b *Cell) {
	for sp := range a.Population {
		if _, ok := b.Population[sp]; !ok {
			b.Population[sp] = 0
		}
	}
	for sp := range b.Population {
		if _, ok := a.Population[sp]; !ok {
			a.Population[sp] = 0
		}
	}
}

// SameLattice reports whether a and b have identical lattice vectors
func SameLattice(a, b *Cell) bool {
	if a.Lattice == nil || b.Lattice == nil {
		return a.Lattice == b.Lattice
	}
	return mat.Equal(a.Lattice, b.Lattice)
}
