// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads a table from an Excel workbook. An empty sheet name selects
// the first sheet. Rows that are entirely blank are skipped, and short rows
// are padded to the header width because excelize drops trailing empty
// cells. Cells are read raw so a number format cannot round coordinates.
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	headerAt := -1
	for i, r := range cells {
		if !blank(r) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrNoHeader
	}

	header := cells[headerAt]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	var rows []Row
	for i := headerAt + 1; i < len(cells); i++ {
		r := cells[i]
		if blank(r) {
			continue
		}
		if len(r) > len(header) {
			return nil, fmt.Errorf("sheet %q row %d: %d cells, header has %d", sheet, i+1, len(r), len(header))
		}
		fields := make([]string, len(header))
		copy(fields, r)
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}

	return New(header, rows), nil
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
