// =============================================================================
// Payables Dashboard - XLSX Parser Module
// =============================================================================
//
// Some finance teams hand over the workbook itself rather than the published
// CSV. This module reads one sheet of an XLSX workbook into the same Table
// structure the CSV parser produces, so everything downstream is unchanged.
// Legacy .xls workbooks are read through xlsReader (first sheet only).
//
// CELL VALUES:
//   Cells are read raw (unformatted). Dates therefore arrive as spreadsheet
//   serial numbers and amounts without thousands separators; the coercers
//   handle both.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/xuri/excelize/v2"
)

// Parse reads a workbook from r.
//
// PARAMETERS:
//   - r: the workbook bytes.
//   - source: a label for logs and error messages.
//   - sheet: the sheet to read; empty means the first sheet.
//
// RETURNS:
//   - The sheet as a Table.
//   - An error if the workbook cannot be opened or the sheet does not exist.
func Parse(r io.Reader, source, sheet string) (*csvparser.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", source, err)
	}
	defer f.Close()

	return readSheet(f, source, sheet)
}

// ParseFile opens a workbook on disk and reads one sheet.
func ParseFile(path, sheet string) (*csvparser.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, path, sheet)
}

func readSheet(f *excelize.File, source, sheet string) (*csvparser.Table, error) {
	sheetName, err := pickSheet(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet '%s': %w", sheetName, err)
	}

	return csvparser.FromRows(rows, source+"#"+sheetName)
}

// pickSheet resolves the configured sheet name case-insensitively.
func pickSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if strings.TrimSpace(sheet) == "" {
		return sheets[0], nil
	}

	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(sheet)) {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", "))
}
