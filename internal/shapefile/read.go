// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shapefile

import (
	"fmt"
	"os"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/pdiddy/csv2shp/internal/crs"
)

// Read loads a PointZ shapefile and its .prj. Attribute values come back as
// trimmed strings; field names are the (possibly shortened) dBase names.
func Read(shpPath string) (*Dataset, error) {
	// go-shp treats a missing .dbf as an empty attribute table.
	stem := strings.TrimSuffix(shpPath, ".shp")
	for _, ext := range []string{".shx", ".dbf"} {
		if _, err := os.Stat(stem + ext); err != nil {
			return nil, fmt.Errorf("%s: missing %s component: %w", shpPath, ext, err)
		}
	}

	r, err := shp.Open(shpPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", shpPath, err)
	}
	defer r.Close()

	if r.GeometryType != shp.POINTZ {
		return nil, fmt.Errorf("%s: geometry type %d, want PointZ", shpPath, r.GeometryType)
	}

	ds := &Dataset{}
	dbf := r.Fields()
	for _, f := range dbf {
		kind := KindString
		if f.Fieldtype == 'N' || f.Fieldtype == 'F' {
			kind = KindFloat
		}
		ds.Fields = append(ds.Fields, Field{Name: f.String(), Kind: kind})
	}

	for r.Next() {
		n, s := r.Shape()
		p, ok := s.(*shp.PointZ)
		if !ok {
			return nil, fmt.Errorf("%s: record %d is %T, want PointZ", shpPath, n, s)
		}
		values := make([]any, len(dbf))
		for k := range dbf {
			values[k] = strings.TrimSpace(r.ReadAttribute(n, k))
		}
		ds.Features = append(ds.Features, Feature{X: p.X, Y: p.Y, Z: p.Z, Values: values})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", shpPath, err)
	}

	prjPath := stem + ".prj"
	wkt, err := os.ReadFile(prjPath)
	if err != nil {
		return nil, fmt.Errorf("reading projection: %w", err)
	}
	ds.CRS, err = crs.Identify(string(wkt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prjPath, err)
	}

	return ds, nil
}

// FieldIndex returns the position of the named field, or -1.
func (ds *Dataset) FieldIndex(name string) int {
	for i, f := range ds.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
