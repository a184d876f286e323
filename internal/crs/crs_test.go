// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantCode int
		wantErr  error
	}{
		{"EPSG:32635", 32635, nil},
		{"epsg:32635", 32635, nil},
		{" 32635 ", 32635, nil},
		{"EPSG:4326", 4326, nil},
		{"EPSG:32601", 32601, nil},
		{"EPSG:32760", 32760, nil},
		{"EPSG:32600", 0, ErrUnsupported},
		{"EPSG:32661", 0, ErrUnsupported},
		{"EPSG:3857", 0, ErrUnsupported},
		{"ESRI:102100", 0, ErrUnsupported},
		{"EPSG:abc", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantCode == 0 {
				require.Error(t, err, "Parse(%q) = %v", tt.input, got)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestNameAndString(t *testing.T) {
	tests := []struct {
		code      int
		name      string
		projected bool
	}{
		{32635, "WGS 84 / UTM zone 35N", true},
		{32735, "WGS 84 / UTM zone 35S", true},
		{4326, "WGS 84", false},
	}
	for _, tt := range tests {
		c := CRS{Code: tt.code}
		assert.Equal(t, tt.name, c.Name(), "CRS{%d}.Name()", tt.code)
		assert.Equal(t, tt.projected, c.Projected(), "CRS{%d}.Projected()", tt.code)
	}
	assert.Equal(t, "EPSG:32635", Default.String())
}

func TestWKT_UTM35N(t *testing.T) {
	wkt := Default.WKT()
	for _, want := range []string{
		`PROJCS["WGS_1984_UTM_Zone_35N"`,
		`PARAMETER["Central_Meridian",27.0]`,
		`PARAMETER["False_Northing",0.0]`,
		`PARAMETER["False_Easting",500000.0]`,
		`UNIT["Meter",1.0]`,
	} {
		assert.Contains(t, wkt, want)
	}
}

func TestWKT_SouthernZone(t *testing.T) {
	wkt := CRS{Code: 32701}.WKT()
	assert.Contains(t, wkt, `PARAMETER["False_Northing",10000000.0]`, "southern zones use a 10,000 km false northing")
	assert.Contains(t, wkt, `PARAMETER["Central_Meridian",-177.0]`, "zone 1 central meridian")
}

func TestIdentify_RoundTrip(t *testing.T) {
	for _, code := range []int{4326, 32601, 32635, 32660, 32701, 32735, 32760} {
		c := CRS{Code: code}
		got, err := Identify(c.WKT())
		if assert.NoError(t, err, "Identify(%s)", c) {
			assert.Equal(t, c, got)
		}
	}
}

func TestIdentify_Unknown(t *testing.T) {
	_, err := Identify(`PROJCS["ETRS_1989_LAEA",GEOGCS["GCS_ETRS_1989"]]`)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Identify(`PROJCS["WGS_1984_UTM_Zone_61N"]`)
	assert.ErrorIs(t, err, ErrUnsupported, "zone 61")
}
