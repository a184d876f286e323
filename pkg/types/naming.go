// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the csv2shp pipeline:
// configuration, output naming, and conversion status.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsafeName is returned when a naming token would escape the directory
// it is joined into.
var ErrUnsafeName = errors.New("unsafe file name token")

// Naming holds the operator-supplied tokens that make up output file names.
// Tokens are used verbatim; Validate only rejects values that are not a
// single path element.
type Naming struct {
	// Tag is the site tag picked from the configured list (e.g. "86_540").
	Tag string `json:"tag" yaml:"tag"`

	// Batch is the photo batch identifier typed by the operator.
	Batch string `json:"batch" yaml:"batch"`
}

// ShapefileBase returns the base name shared by the shapefile components:
// <tag>_coded_targets_<prefix>_<batch>.
func (n Naming) ShapefileBase(prefix string) string {
	return fmt.Sprintf("%s_coded_targets_%s_%s", n.Tag, prefix, n.Batch)
}

// CSVName returns the file name of the CSV extract:
// <tag>_coded_targets_<batch>.csv.
func (n Naming) CSVName() string {
	return fmt.Sprintf("%s_coded_targets_%s.csv", n.Tag, n.Batch)
}

// ArchiveName returns the suggested archive name:
// <tag>_coded_targets_<batch>.shp.zip.
func (n Naming) ArchiveName() string {
	return fmt.Sprintf("%s_coded_targets_%s.shp.zip", n.Tag, n.Batch)
}

// Validate checks the tag, batch and prefix tokens with ValidateToken.
func (n Naming) Validate(prefix string) error {
	for _, tok := range []struct{ field, value string }{
		{"tag", n.Tag},
		{"batch", n.Batch},
		{"prefix", prefix},
	} {
		if err := ValidateToken(tok.value); err != nil {
			return fmt.Errorf("%s %q: %w", tok.field, tok.value, err)
		}
	}
	return nil
}

// ValidateToken rejects tokens containing a path separator or NUL byte, and
// the special names "." and "..". Empty tokens are allowed.
func ValidateToken(s string) error {
	if s == "." || s == ".." {
		return ErrUnsafeName
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return ErrUnsafeName
	}
	return nil
}
