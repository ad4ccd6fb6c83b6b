package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{kind}_{date}_{uuid}", map[string]string{"kind": "groups"}, ".csv")

	assert.True(t, strings.HasPrefix(name, "groups_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.NotContains(t, name, "{")

	kept := GenerateOutputFileName("{kind}.XLSX", map[string]string{"kind": "records"}, ".xlsx")
	assert.Equal(t, "records.XLSX", kept)

	bare := GenerateOutputFileName("fixed", nil, "")
	assert.Equal(t, "fixed", bare)

	assert.NotEqual(t,
		GenerateOutputFileName("{uuid}", nil, ""),
		GenerateOutputFileName("{uuid}", nil, ""))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a", "b")

	require.NoError(t, EnsureDirectories(a, ""))
	assert.True(t, FileExists(a))
	assert.False(t, FileExists(filepath.Join(root, "missing")))
}

func TestWriteIssueLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteIssueLog(nil, "sheet.csv", dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteIssueLog([]IssueLogEntry{
		{Severity: "error", Rule: "missing_vendor", Message: "no vendor", RowNumber: 4, Field: "vendor"},
		{Severity: "warning", Rule: "unparseable_date", Message: "bad date", RowNumber: 9, Field: "approval_date", Value: "31-02-2026"},
	}, "sheet.csv", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Source: sheet.csv")
	assert.Contains(t, text, "Total Issues: 2")
	assert.Contains(t, text, "Row Number: 4")
	assert.Contains(t, text, "Value:      31-02-2026")
	assert.Contains(t, text, "End of Issue Log")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(RunSummary{
		RunID:       "run-1",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Second),
		Source:      "sheet.csv",
		Filter:      "all data",
		TotalRows:   3,
		Submissions: 2,
		OutputFiles: []string{"groups.csv"},
	}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run ID:         run-1")
	assert.Contains(t, string(data), "Duration:       2s")
	assert.Contains(t, string(data), "  groups.csv")
}

func TestFormatMoney(t *testing.T) {
	tests := map[float64]string{
		0:          "0.00",
		5:          "5.00",
		999.999:    "1,000.00",
		1234.5:     "1,234.50",
		1234567.25: "1,234,567.25",
		-98765.4:   "-98,765.40",
		100000:     "100,000.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMoney(in), "%v", in)
	}
	assert.Equal(t, "47.5%", FormatPercent(0.475))
}
