package xlsxparser

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/shakinm/xlsReader/xls"
)

// ParseXLS reads the first sheet of a legacy BIFF (.xls) workbook. Cells come
// back as their display strings.
func ParseXLS(r io.Reader, source string) (*csvparser.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook %s: %w", source, err)
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", source, err)
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", source)
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read first sheet: %w", source, err)
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}

	return csvparser.FromRows(rows, source)
}

// ParseXLSFile opens a legacy workbook on disk.
func ParseXLSFile(path string) (*csvparser.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ParseXLS(f, path)
}
