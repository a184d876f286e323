// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Name,Easting,Northing,Elevation
T01,10,20,5
T02,11,21,6
X01,0,0,0
`

func readSample(t *testing.T, src string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	return tbl
}

func names(tbl *Table) []string {
	out := make([]string, 0, tbl.Len())
	for _, r := range tbl.Rows {
		out = append(out, tbl.Value(r, ColName))
	}
	return out
}

func TestReadCSV(t *testing.T) {
	tbl := readSample(t, sampleCSV)

	assert.Equal(t, []string{"Name", "Easting", "Northing", "Elevation"}, tbl.Header)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"T01", "T02", "X01"}, names(tbl))

	// Line numbers count the header as line 1.
	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, 4, tbl.Rows[2].Line)
}

func TestReadCSV_StripsBOM(t *testing.T) {
	tbl := readSample(t, "\ufeff"+sampleCSV)
	assert.Equal(t, 0, tbl.Index(ColName))
	require.NoError(t, tbl.Require(RequiredColumns...))
}

func TestReadCSV_NoHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSV_RaggedRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Name,Easting,Northing,Elevation\nT01,1,2\n"))
	require.Error(t, err)
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		missing string
	}{
		{"all present", sampleCSV, ""},
		{"extra columns allowed", "Code,Name,Easting,Northing,Elevation,Note\n", ""},
		{"elevation missing", "Name,Easting,Northing\n", "Elevation"},
		{"case sensitive", "name,easting,northing,elevation\n", "Name, Easting, Northing, Elevation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := readSample(t, tt.src)
			err := tbl.Require(RequiredColumns...)
			if tt.missing == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrMissingColumn)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestFilterPrefix(t *testing.T) {
	tbl := readSample(t, sampleCSV+"aT03,1,1,1\nT10,3,4,5\n")

	tests := []struct {
		prefix string
		want   []string
	}{
		{"T", []string{"T01", "T02", "T10"}},
		{"T0", []string{"T01", "T02"}},
		{"t", nil},
		{"Z", nil},
		{"", []string{"T01", "T02", "X01", "aT03", "T10"}},
		{"T01", []string{"T01"}},
	}
	for _, tt := range tests {
		t.Run("prefix="+tt.prefix, func(t *testing.T) {
			got := tbl.FilterPrefix(ColName, tt.prefix)
			if diff := cmp.Diff(tt.want, names(got), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("FilterPrefix(%q) mismatch (-want +got):\n%s", tt.prefix, diff)
			}
			assert.Equal(t, tbl.Header, got.Header)
		})
	}

	// The source table is left untouched.
	assert.Equal(t, 5, tbl.Len())
}

func TestFloat(t *testing.T) {
	tbl := readSample(t, "Name,Easting,Northing,Elevation\nA, 512345.125 ,1e3,abc\nB,NaN,Inf,\n")

	v, err := tbl.Float(tbl.Rows[0], ColEasting)
	require.NoError(t, err)
	assert.InDelta(t, 512345.125, v, 1e-9)

	v, err = tbl.Float(tbl.Rows[0], ColNorthing)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)

	_, err = tbl.Float(tbl.Rows[0], ColElevation)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, ColElevation, pe.Column)
	assert.Equal(t, "abc", pe.Value)
	assert.True(t, errors.Is(err, strconv.ErrSyntax))

	for _, col := range []string{ColEasting, ColNorthing, ColElevation} {
		_, err := tbl.Float(tbl.Rows[1], col)
		assert.ErrorAs(t, err, &pe, "column %s", col)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	src := "Name,Easting,Northing,Elevation,Note\n" +
		"T01,10.500,20,5,\"has, comma\"\n" +
		"T02,11,21,6,\"quoted \"\"x\"\"\"\n" +
		"X01,0,0,0,skip\n"
	tbl := readSample(t, src)
	sub := tbl.FilterPrefix(ColName, "T")

	var buf bytes.Buffer
	require.NoError(t, sub.WriteCSV(&buf))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sub.Header, back.Header)

	fields := func(tb *Table) [][]string {
		var out [][]string
		for _, r := range tb.Rows {
			out = append(out, r.Fields)
		}
		return out
	}
	if diff := cmp.Diff(fields(sub), fields(back)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	// Original text is preserved, not reformatted.
	assert.Equal(t, "10.500", back.Value(back.Rows[0], ColEasting))
}

func TestReadFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteCSVFile(t *testing.T) {
	tbl := readSample(t, sampleCSV)
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, tbl.WriteCSVFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("survey.xlsx"))
	assert.True(t, IsWorkbook("SURVEY.XLSM"))
	assert.False(t, IsWorkbook("survey.csv"))
	assert.False(t, IsWorkbook("survey"))
}
