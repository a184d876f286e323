// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shapefile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/csv2shp/internal/crs"
)

func sampleDataset() Dataset {
	return Dataset{
		Fields: []Field{
			{Name: "Name", Kind: KindString},
			{Name: "Easting", Kind: KindFloat},
			{Name: "Northing", Kind: KindFloat},
			{Name: "Elevation", Kind: KindFloat},
			{Name: "Description", Kind: KindString},
		},
		Features: []Feature{
			{X: 512345.125, Y: 4456789.5, Z: 101.25, Values: []any{"T01", 512345.125, 4456789.5, 101.25, "pillar"}},
			{X: 512346, Y: 4456790, Z: 99.75, Values: []any{"T02", 512346.0, 4456790.0, 99.75, ""}},
		},
		CRS: crs.Default,
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds := sampleDataset()

	paths, err := Write(dir, "86_540_coded_targets_T_B1", ds)
	require.NoError(t, err)
	require.Len(t, paths, len(Extensions))
	for i, p := range paths {
		assert.Equal(t, "86_540_coded_targets_T_B1"+Extensions[i], filepath.Base(p))
		_, err := os.Stat(p)
		assert.NoError(t, err, "component %s should exist", p)
	}

	back, err := Read(paths[0])
	require.NoError(t, err)

	assert.Equal(t, crs.Default, back.CRS)
	require.Len(t, back.Features, 2)
	for i, f := range back.Features {
		want := ds.Features[i]
		assert.InDelta(t, want.X, f.X, 1e-9)
		assert.InDelta(t, want.Y, f.Y, 1e-9)
		assert.InDelta(t, want.Z, f.Z, 1e-9)
	}

	wantNames := []string{"Name", "Easting", "Northing", "Elevation", "Descriptio"}
	var gotNames []string
	for _, f := range back.Fields {
		gotNames = append(gotNames, f.Name)
	}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("field names (-want +got):\n%s", diff)
	}
	assert.Equal(t, KindString, back.Fields[0].Kind)
	assert.Equal(t, KindFloat, back.Fields[1].Kind)

	assert.Equal(t, "T01", back.Features[0].Values[0])
	assert.Equal(t, "pillar", back.Features[0].Values[4])

	e, err := strconv.ParseFloat(back.Features[0].Values[back.FieldIndex("Easting")].(string), 64)
	require.NoError(t, err)
	assert.InDelta(t, 512345.125, e, 1e-6)
}

func TestWrite_ComponentFilesOnly(t *testing.T) {
	for _, base := range []string{"86_540_coded_targets_T_B1", "86_540_coded_targets_T_1.5", "v2.0.final"} {
		t.Run(base, func(t *testing.T) {
			dir := t.TempDir()
			_, err := Write(dir, base, sampleDataset())
			require.NoError(t, err)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			var got []string
			for _, e := range entries {
				got = append(got, e.Name())
			}
			want := []string{base + ".dbf", base + ".prj", base + ".shp", base + ".shx"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("files in %s (-want +got):\n%s", dir, diff)
			}

			back, err := Read(filepath.Join(dir, base+".shp"))
			require.NoError(t, err)
			require.Len(t, back.Fields, 5)
			require.Len(t, back.Features, 2)
			assert.Equal(t, "T02", back.Features[1].Values[back.FieldIndex("Name")])
			assert.Equal(t, "pillar", back.Features[0].Values[back.FieldIndex("Descriptio")])
		})
	}
}

func TestRead_MissingComponent(t *testing.T) {
	for _, ext := range []string{".dbf", ".shx"} {
		t.Run(ext, func(t *testing.T) {
			paths, err := Write(t.TempDir(), "gap", sampleDataset())
			require.NoError(t, err)
			require.NoError(t, os.Remove(strings.TrimSuffix(paths[0], ".shp")+ext))

			_, err = Read(paths[0])
			require.Error(t, err)
			assert.Contains(t, err.Error(), "missing "+ext)
		})
	}
}

func TestWrite_Empty(t *testing.T) {
	ds := sampleDataset()
	ds.Features = nil
	_, err := Write(t.TempDir(), "empty", ds)
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestWrite_SchemaMismatch(t *testing.T) {
	ds := sampleDataset()
	ds.Features[1].Values = ds.Features[1].Values[:2]
	_, err := Write(t.TempDir(), "bad", ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 1")
}

func TestWrite_UnsupportedCRS(t *testing.T) {
	ds := sampleDataset()
	ds.CRS = crs.CRS{Code: 3857}
	dir := t.TempDir()
	_, err := Write(dir, "x", ds)
	assert.ErrorIs(t, err, crs.ErrUnsupported)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing should be written for an unsupported CRS")
}

func TestWrite_PrjContents(t *testing.T) {
	ds := sampleDataset()
	ds.CRS = crs.CRS{Code: 32735}
	paths, err := Write(t.TempDir(), "south", ds)
	require.NoError(t, err)

	data, err := os.ReadFile(paths[3])
	require.NoError(t, err)
	assert.Equal(t, ds.CRS.WKT(), string(data))
}

func TestWrite_LongStringTruncated(t *testing.T) {
	ds := sampleDataset()
	ds.Features[0].Values[4] = strings.Repeat("ü", 200) // 400 bytes
	paths, err := Write(t.TempDir(), "long", ds)
	require.NoError(t, err)

	back, err := Read(paths[0])
	require.NoError(t, err)
	got := back.Features[0].Values[4].(string)
	assert.LessOrEqual(t, len(got), maxCharWidth)
	assert.True(t, strings.HasPrefix(strings.Repeat("ü", 200), got))
}

func TestDBFNames(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{
			name:    "short names unchanged",
			headers: []string{"Name", "Easting", "Northing", "Elevation"},
			want:    []string{"Name", "Easting", "Northing", "Elevation"},
		},
		{
			name:    "truncated to ten bytes",
			headers: []string{"Description", "Measurement"},
			want:    []string{"Descriptio", "Measuremen"},
		},
		{
			name:    "collisions get suffixes",
			headers: []string{"Description1", "Description2", "description3"},
			want:    []string{"Descriptio", "Descript_1", "descript_2"},
		},
		{
			name:    "invalid characters replaced",
			headers: []string{"Point ID", "Höhe", ""},
			want:    []string{"Point_ID", "H_he", "FIELD"},
		},
		{
			name:    "duplicate headers",
			headers: []string{"Code", "Code", "Code"},
			want:    []string{"Code", "Code_1", "Code_2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DBFNames(tt.headers)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DBFNames(%q) (-want +got):\n%s", tt.headers, diff)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	// "ü" is two bytes; cutting at 3 must not split the second one.
	assert.Equal(t, "ü", truncate("üü", 3))
}
