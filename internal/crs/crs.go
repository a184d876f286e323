// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crs names the coordinate reference systems csv2shp can tag output
// with, and renders them as the ESRI WKT stored in a shapefile's .prj file.
//
// Supported codes are EPSG:4326 (WGS 84 geographic) and the WGS 84 / UTM
// zones, EPSG:32601-32660 (north) and EPSG:32701-32760 (south).
package crs

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnsupported is returned for EPSG codes outside the supported set.
var ErrUnsupported = errors.New("unsupported coordinate reference system")

const (
	codeWGS84    = 4326
	utmNorthBase = 32600
	utmSouthBase = 32700
)

const geogcsWGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// CRS identifies a coordinate reference system by EPSG code.
type CRS struct {
	Code int
}

// Default is WGS 84 / UTM zone 35N.
var Default = CRS{Code: 32635}

// Parse reads "EPSG:32635", "epsg:32635" or "32635".
func Parse(id string) (CRS, error) {
	s := strings.TrimSpace(id)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if !strings.EqualFold(s[:i], "EPSG") {
			return CRS{}, fmt.Errorf("%w: %q (only EPSG codes are recognised)", ErrUnsupported, id)
		}
		s = s[i+1:]
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return CRS{}, fmt.Errorf("parsing CRS %q: %w", id, err)
	}
	c := CRS{Code: code}
	if !c.supported() {
		return CRS{}, fmt.Errorf("%w: EPSG:%d", ErrUnsupported, code)
	}
	return c, nil
}

func (c CRS) supported() bool {
	if c.Code == codeWGS84 {
		return true
	}
	_, _, ok := c.utm()
	return ok
}

// utm returns the zone number and hemisphere for a WGS 84 / UTM code.
func (c CRS) utm() (zone int, north bool, ok bool) {
	switch {
	case c.Code > utmNorthBase && c.Code <= utmNorthBase+60:
		return c.Code - utmNorthBase, true, true
	case c.Code > utmSouthBase && c.Code <= utmSouthBase+60:
		return c.Code - utmSouthBase, false, true
	}
	return 0, false, false
}

// String returns the identifier in "EPSG:<code>" form.
func (c CRS) String() string {
	return fmt.Sprintf("EPSG:%d", c.Code)
}

// Name returns the human-readable name, e.g. "WGS 84 / UTM zone 35N".
func (c CRS) Name() string {
	if c.Code == codeWGS84 {
		return "WGS 84"
	}
	zone, north, ok := c.utm()
	if !ok {
		return c.String()
	}
	return fmt.Sprintf("WGS 84 / UTM zone %d%s", zone, hemisphere(north))
}

// Projected reports whether coordinates are in metres on a projected plane.
func (c CRS) Projected() bool {
	_, _, ok := c.utm()
	return ok
}

// WKT returns the ESRI-flavoured WKT written to .prj files.
func (c CRS) WKT() string {
	if c.Code == codeWGS84 {
		return geogcsWGS84
	}
	zone, north, ok := c.utm()
	if !ok {
		return ""
	}
	falseNorthing := 0.0
	if !north {
		falseNorthing = 10000000.0
	}
	return fmt.Sprintf(`PROJCS["WGS_1984_UTM_Zone_%d%s",%s,PROJECTION["Transverse_Mercator"],`+
		`PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",%.1f],`+
		`PARAMETER["Central_Meridian",%.1f],PARAMETER["Scale_Factor",0.9996],`+
		`PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`,
		zone, hemisphere(north), geogcsWGS84, falseNorthing, centralMeridian(zone))
}

func hemisphere(north bool) string {
	if north {
		return "N"
	}
	return "S"
}

// centralMeridian returns the longitude of a UTM zone's central meridian.
func centralMeridian(zone int) float64 {
	return float64(6*zone - 183)
}

var (
	utmNamePattern = regexp.MustCompile(`^PROJCS\["WGS_1984_UTM_Zone_(\d{1,2})([NS])"`)
	geogPattern    = regexp.MustCompile(`^GEOGCS\["GCS_WGS_1984"`)
)

// Identify maps the WKT found in a .prj file back to a CRS. Only the WKT
// produced by CRS.WKT (or the equivalent ESRI names) is recognised.
func Identify(wkt string) (CRS, error) {
	s := strings.TrimSpace(wkt)
	if m := utmNamePattern.FindStringSubmatch(s); m != nil {
		zone, _ := strconv.Atoi(m[1])
		base := utmNorthBase
		if m[2] == "S" {
			base = utmSouthBase
		}
		c := CRS{Code: base + zone}
		if !c.supported() {
			return CRS{}, fmt.Errorf("%w: UTM zone %s%s", ErrUnsupported, m[1], m[2])
		}
		return c, nil
	}
	if geogPattern.MatchString(s) {
		return CRS{Code: codeWGS84}, nil
	}
	return CRS{}, fmt.Errorf("%w: unrecognised projection %.40q", ErrUnsupported, s)
}
