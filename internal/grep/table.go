package grep

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFloat is strconv.ParseFloat with support for Fortran-style D
// exponents
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, "D", "E", -1), 64)
}

// Floats converts the whitespace-separated fields of line to float64
func Floats(line string) ([]float64, error) {
	fields := strings.Fields(line)
	ret := make([]float64, len(fields))
	var err error
	for i, s := range fields {
		ret[i], err = ParseFloat(s)
		if err != nil {
			return nil, fmt.Errorf("field %d of %q: %w", i, line, ErrParse)
		}
	}
	return ret, nil
}

// Block returns the lines from start up to, but not including, the
// next blank line
func Block(lines []string, start int) []string {
	if start < 0 || start > len(lines) {
		return nil
	}
	end := start
	for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
		end++
	}
	return lines[start:end]
}

// Columns parses a whitespace table and returns it column by column.
// Every row must have the same number of fields.
func Columns(lines []string) ([][]float64, error) {
	var cols [][]float64
	for i, line := range lines {
		row, err := Floats(line)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			cols = make([][]float64, len(row))
			for c := range cols {
				cols[c] = make([]float64, 0, len(lines))
			}
		} else if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w",
				i, len(row), len(cols), ErrParse)
		}
		for c, v := range row {
			cols[c] = append(cols[c], v)
		}
	}
	return cols, nil
}
