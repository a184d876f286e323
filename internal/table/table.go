// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table holds the record table read from a survey export: a header
// row plus data rows kept as raw field text. It reads CSV and Excel sources,
// selects rows by name prefix, and writes CSV extracts.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column names every source table must carry.
const (
	ColName      = "Name"
	ColEasting   = "Easting"
	ColNorthing  = "Northing"
	ColElevation = "Elevation"
)

// RequiredColumns lists the columns checked by Require during conversion.
var RequiredColumns = []string{ColName, ColEasting, ColNorthing, ColElevation}

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// ErrNoHeader is returned for a source without a header row.
var ErrNoHeader = errors.New("source has no header row")

const utf8BOM = "\ufeff"

// ParseError reports a field that could not be read as a number.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: cannot parse %q as a number: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Row is one data row. Line is the 1-based line (or sheet row) it came from.
type Row struct {
	Line   int
	Fields []string
}

// Table is an ordered, read-only sequence of rows sharing one header.
type Table struct {
	Header []string
	Rows   []Row

	index map[string]int
}

// New builds a Table from a header and rows. Rows are used as given.
func New(header []string, rows []Row) *Table {
	t := &Table{Header: header, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		// First occurrence wins for duplicated headers.
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of col in the header, or -1.
func (t *Table) Index(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Require checks that every named column is present.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Value returns the text of col in row r. Missing cells read as "".
func (t *Table) Value(r Row, col string) string {
	i := t.Index(col)
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Float parses col in row r as a finite float64.
func (t *Table) Float(r Row, col string) (float64, error) {
	raw := t.Value(r, col)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Line: r.Line, Column: col, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Line: r.Line, Column: col, Value: raw, Err: errors.New("value is not finite")}
	}
	return v, nil
}

// FilterPrefix returns a new Table holding the rows whose col value starts
// with prefix, in their original order. The comparison is case-sensitive;
// an empty prefix keeps every row.
func (t *Table) FilterPrefix(col, prefix string) *Table {
	i := t.Index(col)
	var rows []Row
	for _, r := range t.Rows {
		v := ""
		if i >= 0 && i < len(r.Fields) {
			v = r.Fields[i]
		}
		if strings.HasPrefix(v, prefix) {
			rows = append(rows, r)
		}
	}
	return New(t.Header, rows)
}

// ReadFile loads a table from path. Excel workbooks (.xlsx, .xlsm) are read
// from their first sheet; anything else is parsed as CSV.
func ReadFile(path string) (*Table, error) {
	if IsWorkbook(path) {
		return ReadXLSX(path, "")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// ReadCSV parses comma-separated text with a header row. Every data row
// must have as many fields as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{Line: line, Fields: rec})
	}

	return New(header, rows), nil
}

// WriteCSV writes the header and every row's original field text.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(r.Fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path, replacing any existing file.
func (t *Table) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
