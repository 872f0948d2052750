package grep

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lines = []string{
	" vasp.5.4.4.18Apr17-6-g9f103f2a35 (build Jun 20 2019) complex",
	"   number of dos      NEDOS =    301   number of ions     NIONS =      2",
	"   EDIFF  = 0.1D-05   stopping-criterion for ELM",
	"  free energy    TOTEN  =       -10.50000000 eV",
	"  free energy    TOTEN  =       -11.25000000 eV",
	"   VRHFIN =Zn: d s",
	"   VRHFIN =S: s p",
}

func TestString(t *testing.T) {
	tests := []struct {
		q    Query
		want string
		ok   bool
	}{
		{Once("NEDOS =", "number of ions"), "301", true},
		{Nth("NIONS =", 0, ""), "2", true},
		{Nth("VRHFIN =", 1, ":"), "S", true},
		{Nth("VRHFIN =", -2, ":"), "Zn", true},
		{Nth("LORBIT =", 0, ""), "", false},
		// a missing end marker runs to the end of the line
		{Nth("VRHFIN =", 0, "%"), "Zn: d s", true},
	}
	for _, test := range tests {
		got, ok, err := String(lines, test.q)
		require.NoError(t, err)
		if got != test.want || ok != test.ok {
			t.Errorf("%q: got (%q, %v), wanted (%q, %v)\n",
				test.q.Marker, got, ok, test.want, test.ok)
		}
	}
}

func TestCountRequired(t *testing.T) {
	_, _, err := String(lines, Query{
		Marker: "free energy    TOTEN  =", Index: -1, End: "eV", Count: 3,
	})
	require.ErrorIs(t, err, ErrOccurrences)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 3, gerr.Want)
	assert.Equal(t, 2, gerr.Got)
	assert.Equal(t,
		`expected 3 occurrences of "free energy    TOTEN  =", found 2`,
		err.Error())

	// a required count fails even when nothing matches
	_, _, err = String(lines, Once("LORBIT =", ""))
	assert.ErrorIs(t, err, ErrOccurrences)
}

func TestFloat(t *testing.T) {
	got, ok, err := Float(lines, Query{
		Marker: "free energy    TOTEN  =", Index: -1, End: "eV", Count: 2,
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -11.25, got)

	got, err = MustFloat(lines, Once("EDIFF  =", "stopping"))
	require.NoError(t, err)
	assert.InDelta(t, 1e-6, got, 1e-18)

	_, err = MustFloat(lines, Nth("VRHFIN =", 0, ":"))
	assert.ErrorIs(t, err, ErrParse)

	_, err = MustFloat(lines, Nth("ENCUT  =", 0, "eV"))
	assert.ErrorIs(t, err, ErrMissingMarker)
}

func TestInt(t *testing.T) {
	got, err := MustInt(lines, Once("NIONS =", ""))
	require.NoError(t, err)
	if got != 2 {
		t.Errorf("got %v, wanted %v\n", got, 2)
	}
	_, _, err = Int(lines, Nth("VRHFIN =", 5, ":"))
	assert.ErrorIs(t, err, ErrOccurrences)
}

func TestBlock(t *testing.T) {
	in := []string{"header", " 1 2", " 3 4", "", " 5 6"}
	got := Block(in, 1)
	want := []string{" 1 2", " 3 4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	// a single space counts as blank
	in[3] = " "
	got = Block(in, 1)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	if got := Block(in, 4); !reflect.DeepEqual(got, []string{" 5 6"}) {
		t.Errorf("got %v, wanted %v\n", got, []string{" 5 6"})
	}
}

func TestColumns(t *testing.T) {
	got, err := Columns([]string{
		"  1   -5.0000   2.00000",
		"  2    1.5000   0.00000",
	})
	require.NoError(t, err)
	want := [][]float64{{1, 2}, {-5, 1.5}, {2, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	_, err = Columns([]string{"1 2", "3"})
	assert.ErrorIs(t, err, ErrParse)
}

func TestReadLines(t *testing.T) {
	got, err := ReadLines("../../testfiles/host/OUTCAR")
	require.NoError(t, err)
	assert.Equal(t, " vasp.5.4.4.18Apr17-6-g9f103f2a35 (build Jun 20 2019 10:28:43) complex", got[0])
	_, err = ReadLines("../../testfiles/nope")
	assert.Error(t, err)
}
