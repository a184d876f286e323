// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shapefile writes and reads PointZ shapefiles: geometry (.shp),
// index (.shx), attribute table (.dbf) and projection (.prj). Geometry and
// attribute I/O is delegated to go-shp; this package adds the .prj file,
// DBF field naming, and field sizing.
package shapefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	shp "github.com/jonas-p/go-shp"

	"github.com/pdiddy/csv2shp/internal/crs"
)

// Extensions lists the component files written for every dataset, in the
// order Write returns them.
var Extensions = []string{".shp", ".shx", ".dbf", ".prj"}

const (
	// dbfNameLen is the longest field name a dBase III header can hold.
	dbfNameLen = 10
	// maxCharWidth is the widest character field dBase allows.
	maxCharWidth = 254

	floatWidth    = 24
	floatDecimals = 11
)

// ErrNoFeatures is returned by Write for an empty dataset.
var ErrNoFeatures = errors.New("dataset has no features")

// FieldKind selects how an attribute column is stored in the .dbf.
type FieldKind int

const (
	// KindString is a character field sized to its longest value.
	KindString FieldKind = iota
	// KindFloat is a numeric field with fixed decimals.
	KindFloat
)

// Field describes one attribute column.
type Field struct {
	Name string
	Kind FieldKind
}

// Feature is one PointZ geometry with its attribute values. Values line up
// with Dataset.Fields: string for KindString, float64 for KindFloat. Values
// read back by Read are always strings.
type Feature struct {
	X, Y, Z float64
	Values  []any
}

// Dataset is a set of point features sharing one attribute schema and one
// coordinate reference system.
type Dataset struct {
	Fields   []Field
	Features []Feature
	CRS      crs.CRS
}

// Write creates dir/base.shp, .shx, .dbf and .prj and returns their paths
// in Extensions order. Field names longer than ten bytes are shortened and
// de-duplicated in the .dbf header.
func Write(dir, base string, ds Dataset) ([]string, error) {
	if len(ds.Features) == 0 {
		return nil, ErrNoFeatures
	}
	for i, f := range ds.Features {
		if len(f.Values) != len(ds.Fields) {
			return nil, fmt.Errorf("feature %d has %d values, schema has %d fields", i, len(f.Values), len(ds.Fields))
		}
	}
	wkt := ds.CRS.WKT()
	if wkt == "" {
		return nil, fmt.Errorf("%w: %s", crs.ErrUnsupported, ds.CRS)
	}

	stem := filepath.Join(dir, base)
	w, err := shp.Create(stem+".shp", shp.POINTZ)
	if err != nil {
		return nil, fmt.Errorf("creating %s.shp: %w", base, err)
	}
	closed := false
	defer func() {
		if !closed {
			w.Close()
		}
	}()

	if err := w.SetFields(dbfFields(ds)); err != nil {
		return nil, fmt.Errorf("writing %s.dbf header: %w", base, err)
	}

	for i, f := range ds.Features {
		row := int(w.Write(&shp.PointZ{X: f.X, Y: f.Y, Z: f.Z}))
		for j, v := range f.Values {
			if s, ok := v.(string); ok {
				v = truncate(s, maxCharWidth)
			}
			if err := w.WriteAttribute(row, j, v); err != nil {
				return nil, fmt.Errorf("writing attributes of feature %d: %w", i, err)
			}
		}
	}
	w.Close()
	closed = true

	if err := placeDBF(stem); err != nil {
		return nil, fmt.Errorf("writing %s.dbf: %w", base, err)
	}
	if err := os.WriteFile(stem+".prj", []byte(wkt), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s.prj: %w", base, err)
	}

	paths := make([]string, len(Extensions))
	for i, ext := range Extensions {
		paths[i] = stem + ext
	}
	return paths, nil
}

// placeDBF moves the attribute table go-shp wrote to stem+"dbf" (it drops
// the dot once ".shp" is stripped) to stem+".dbf".
func placeDBF(stem string) error {
	undotted := stem + "dbf"
	if _, err := os.Stat(undotted); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Stat(stem + ".dbf"); err == nil {
				return nil
			}
		}
		return err
	}
	return os.Rename(undotted, stem+".dbf")
}

// dbfFields builds the go-shp field list, sizing character fields to the
// longest value they will hold.
func dbfFields(ds Dataset) []shp.Field {
	names := make([]string, len(ds.Fields))
	for i, f := range ds.Fields {
		names[i] = f.Name
	}
	names = DBFNames(names)

	fields := make([]shp.Field, len(ds.Fields))
	for i, f := range ds.Fields {
		if f.Kind == KindFloat {
			fields[i] = shp.FloatField(names[i], floatWidth, floatDecimals)
			continue
		}
		width := 1
		for _, feat := range ds.Features {
			if s, ok := feat.Values[i].(string); ok && len(s) > width {
				width = len(s)
			}
		}
		if width > maxCharWidth {
			width = maxCharWidth
		}
		fields[i] = shp.StringField(names[i], uint8(width))
	}
	return fields
}

// DBFNames maps column headers to valid, unique dBase field names: ASCII
// letters, digits and underscores only, at most ten bytes. Collisions get a
// numeric suffix.
func DBFNames(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	for i, h := range headers {
		name := sanitizeName(h)
		if name == "" {
			name = "FIELD"
		}
		if len(name) > dbfNameLen {
			name = name[:dbfNameLen]
		}
		candidate := name
		for n := 1; used[strings.ToUpper(candidate)]; n++ {
			suffix := fmt.Sprintf("_%d", n)
			stem := name
			if len(stem)+len(suffix) > dbfNameLen {
				stem = stem[:dbfNameLen-len(suffix)]
			}
			candidate = stem + suffix
		}
		used[strings.ToUpper(candidate)] = true
		out[i] = candidate
	}
	return out
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
