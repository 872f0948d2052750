// Package grep extracts typed values from the lines of loosely formatted
// program output by locating them relative to marker substrings.
package grep

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingMarker = errors.New("marker not found")
	ErrOccurrences   = errors.New("unexpected number of occurrences")
	ErrParse         = errors.New("failed to parse value")
)

// Error describes a failed extraction. It unwraps to one of
// ErrMissingMarker, ErrOccurrences or ErrParse.
type Error struct {
	Marker string
	Want   int
	Got    int
	Value  string
	Err    error
}

func (e *Error) Error() string {
	switch e.Err {
	case ErrOccurrences:
		return fmt.Sprintf("expected %d occurrences of %q, found %d",
			e.Want, e.Marker, e.Got)
	case ErrParse:
		return fmt.Sprintf("failed to parse %q after %q", e.Value, e.Marker)
	default:
		return fmt.Sprintf("%v: %q", e.Err, e.Marker)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Match is a line containing a marker along with its index in the
// file
type Match struct {
	Line int
	Text string
}

// ReadLines returns the contents of filename split into lines without
// their line endings
func ReadLines(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	// DOSCAR lines for f-orbital projections run past the default
	// token size
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// Find returns every line containing marker in file order
func Find(lines []string, marker string) (ret []Match) {
	for i, line := range lines {
		if strings.Contains(line, marker) {
			ret = append(ret, Match{Line: i, Text: line})
		}
	}
	return
}

// Count returns the number of lines containing marker
func Count(lines []string, marker string) (n int) {
	for _, line := range lines {
		if strings.Contains(line, marker) {
			n++
		}
	}
	return
}

// Query locates a value on a line. The value starts right after Marker
// and runs to End, or to the end of the line if End is empty. Index
// selects which of the matching lines to use, counting from the end
// when negative. A positive Count requires exactly that many matching
// lines.
type Query struct {
	Marker string
	Index  int
	End    string
	Count  int
}

// Nth is a shorthand for a Query without an occurrence requirement
func Nth(marker string, index int, end string) Query {
	return Query{Marker: marker, Index: index, End: end}
}

// Once is a shorthand for the first match of a marker that must occur
// exactly once
func Once(marker, end string) Query {
	return Query{Marker: marker, End: end, Count: 1}
}

// String returns the trimmed text selected by q. The boolean is false
// only when marker does not occur at all and q does not require a
// count.
func String(lines []string, q Query) (string, bool, error) {
	found := Find(lines, q.Marker)
	if q.Count > 0 && len(found) != q.Count {
		return "", false, &Error{
			Marker: q.Marker,
			Want:   q.Count,
			Got:    len(found),
			Err:    ErrOccurrences,
		}
	}
	if len(found) == 0 {
		return "", false, nil
	}
	i := q.Index
	if i < 0 {
		i += len(found)
	}
	if i < 0 || i >= len(found) {
		return "", false, &Error{
			Marker: q.Marker,
			Want:   absIndex(q.Index),
			Got:    len(found),
			Err:    ErrOccurrences,
		}
	}
	line := found[i].Text
	value := line[strings.Index(line, q.Marker)+len(q.Marker):]
	if q.End != "" {
		if j := strings.Index(value, q.End); j >= 0 {
			value = value[:j]
		}
	}
	return strings.TrimSpace(value), true, nil
}

func absIndex(i int) int {
	if i < 0 {
		return -i
	}
	return i + 1
}

// Int is String followed by integer conversion
func Int(lines []string, q Query) (int, bool, error) {
	s, ok, err := String(lines, q)
	if !ok || err != nil {
		return 0, ok, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, &Error{Marker: q.Marker, Value: s, Err: ErrParse}
	}
	return v, true, nil
}

// Float is String followed by float conversion. Fortran D exponents
// are accepted.
func Float(lines []string, q Query) (float64, bool, error) {
	s, ok, err := String(lines, q)
	if !ok || err != nil {
		return 0, ok, err
	}
	v, err := ParseFloat(s)
	if err != nil {
		return 0, true, &Error{Marker: q.Marker, Value: s, Err: ErrParse}
	}
	return v, true, nil
}

// MustString is like String but reports a missing marker as an error
func MustString(lines []string, q Query) (string, error) {
	s, ok, err := String(lines, q)
	if err == nil && !ok {
		err = &Error{Marker: q.Marker, Err: ErrMissingMarker}
	}
	return s, err
}

// MustInt is like Int but reports a missing marker as an error
func MustInt(lines []string, q Query) (int, error) {
	v, ok, err := Int(lines, q)
	if err == nil && !ok {
		err = &Error{Marker: q.Marker, Err: ErrMissingMarker}
	}
	return v, err
}

// MustFloat is like Float but reports a missing marker as an error
func MustFloat(lines []string, q Query) (float64, error) {
	v, ok, err := Float(lines, q)
	if err == nil && !ok {
		err = &Error{Marker: q.Marker, Err: ErrMissingMarker}
	}
	return v, err
}
