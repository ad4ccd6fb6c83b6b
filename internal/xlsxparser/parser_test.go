package xlsxparser

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheet string, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func TestParseFirstSheet(t *testing.T) {
	f := workbook(t, "Payables", [][]interface{}{
		{"القطاع", "المورد", "المبلغ", "تاريخ طلب الصرف"},
		{"Roads", "Acme", 1000, 45658},
		{nil, nil, nil, nil},
		{"Roads", "Beta", 500.5, "10/01/2026"},
	})

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	table, err := Parse(&buf, "upload.xlsx", "")
	require.NoError(t, err)

	assert.Equal(t, "upload.xlsx#Payables", table.Source)
	assert.Equal(t, []string{"القطاع", "المورد", "المبلغ", "تاريخ طلب الصرف"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Roads", "Acme", "1000", "45658"}, table.Rows[0].Cells)
	assert.Equal(t, 3, table.Rows[1].Number)
	assert.Equal(t, "500.5", table.Rows[1].Cells[2])
}

func TestParseFileNamedSheet(t *testing.T) {
	f := workbook(t, "Data", [][]interface{}{{"vendor"}, {"Acme"}})
	_, err := f.NewSheet("Other")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := ParseFile(path, "data")
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor"}, table.Headers)

	_, err = ParseFile(path, "Missing")
	assert.Error(t, err)
}

func TestParseEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	_, err = Parse(&buf, "empty.xlsx", "")
	assert.True(t, errors.Is(err, csvparser.ErrEmpty))
}

func TestParseNotAWorkbook(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("vendor,amount\n")), "bad.xlsx", "")
	assert.Error(t, err)
}

func TestParseXLSRejectsGarbage(t *testing.T) {
	_, err := ParseXLS(bytes.NewReader([]byte("sector,vendor\nRoads,Acme\n")), "fake.xls")
	assert.Error(t, err)

	_, err = ParseXLSFile(filepath.Join(t.TempDir(), "missing.xls"))
	assert.Error(t, err)
}
