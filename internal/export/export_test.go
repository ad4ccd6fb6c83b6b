package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/ginjaninja78/payables-dashboard/internal/grouping"
	"github.com/ginjaninja78/payables-dashboard/internal/normalizer"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixture(t *testing.T) Data {
	t.Helper()
	n := normalizer.New(normalizer.Options{})
	rows := []map[types.Field]string{
		{types.FieldSector: "Roads", types.FieldProject: "P1, North", types.FieldVendor: `Acme "Intl"`,
			types.FieldCode: "A-1", types.FieldAmountTotal: "1,000", types.FieldAmountPaid: "400",
			types.FieldAmountCanceled: "0", types.FieldTimeCode: "09:00", types.FieldPaymentRequestDate: "2026-01-10"},
		{types.FieldSector: "Roads", types.FieldProject: "P1, North", types.FieldVendor: "Beta",
			types.FieldAmountTotal: "500", types.FieldAmountPaid: "500",
			types.FieldTimeCode: "09:00", types.FieldPaymentRequestDate: "2026-01-10"},
	}
	var records []types.Record
	for i, r := range rows {
		rec, _ := n.NormalizeRow(r, i+1)
		records = append(records, rec)
	}
	return Data{Records: records, Groups: grouping.Group(records, types.LabelIndex{})}
}

func TestParseFormatAndKind(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, ".csv", f.Extension())

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	k, err := ParseKind("records")
	require.NoError(t, err)
	assert.Equal(t, KindRecords, k)

	_, err = ParseKind("vendors")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.ErrorIs(t, Write(&bytes.Buffer{}, Format("pdf"), KindGroups, Data{}), ErrUnknownFormat)
}

func TestGroupsCSVIsRFC4180(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, KindGroups, fixture(t)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, strings.Join(GroupColumns, ",")+"\r\n"))
	assert.Contains(t, out, `"P1, North"`)
	assert.Contains(t, out, `"Acme ""Intl""; Beta"`)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"2026-01-10", "Roads", "P1, North", "09:00", "1", "2", `Acme "Intl"; Beta`,
		"1500.00", "900.00", "600.00",
	}, rows[1])
}

func TestRecordsCSVColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, KindRecords, fixture(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Len(t, header, len(types.CanonicalFields)+2)
	assert.Equal(t, "sector", header[0])
	assert.Equal(t, "effective_total", header[len(header)-2])
	assert.Equal(t, "remaining", header[len(header)-1])

	first := rows[1]
	idx := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}
	assert.Equal(t, `Acme "Intl"`, first[idx("vendor")])
	assert.Equal(t, "1000.00", first[idx("amount_total")])
	assert.Equal(t, "2026-01-10", first[idx("payment_request_date")])
	assert.Equal(t, "1000.00", first[idx("effective_total")])
	assert.Equal(t, "600.00", first[idx("remaining")])
}

func TestRecordsExportSkipsExcludedRows(t *testing.T) {
	data := fixture(t)
	n := normalizer.New(normalizer.Options{})
	orphan, _ := n.NormalizeRow(map[types.Field]string{
		types.FieldProject: "P1", types.FieldAmountTotal: "999", types.FieldTimeCode: "09:00",
		types.FieldPaymentRequestDate: "2026-01-10",
	}, 3)
	require.True(t, orphan.Excluded)
	data.Records = append(data.Records, orphan)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, KindRecords, data))
	out := buf.String()
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.NotContains(t, out, "999.00")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatXML, KindRecords, data))
	assert.NotContains(t, buf.String(), "999.00")
	assert.Len(t, data.Records, 3)
}

func TestGroupsXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXML, KindGroups, fixture(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "<submissions>\n")
	assert.Contains(t, out, `<submission n="1" key="roads||p1, north||09:00||2026-01-10">`)
	assert.Contains(t, out, "<effectiveTotal>1500.00</effectiveTotal>")
	assert.Contains(t, out, `<lineItem n="2" row="2">`)
	assert.Contains(t, out, "<vendor>Acme &quot;Intl&quot;</vendor>")
	assert.Contains(t, out, "<approvalDate/>")
	assert.True(t, strings.HasSuffix(out, "</submissions>\n"))
}

func TestRecordsXMLNumbering(t *testing.T) {
	data := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteRecordsXML(&buf, data.Records, GenerateOptions{Indent: "\t", IndexAttribute: "idx"}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<records>"))
	assert.Contains(t, out, "\t<record idx=\"2\" row=\"2\">")

	buf.Reset()
	opts := DefaultGenerateOptions()
	opts.LineItemNumberingGlobal = false
	require.NoError(t, WriteGroupsXML(&buf, append(data.Groups, data.Groups...), opts))
	assert.Equal(t, 2, strings.Count(buf.String(), `<lineItem n="1" `))
}

func TestXLSXExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, KindGroups, fixture(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"groups"}, f.GetSheetList())
	rows, err := f.GetRows("groups")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, GroupColumns, rows[0])
	assert.Equal(t, "P1, North", rows[1][2])
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "paymentRequestDate", tagName("payment_request_date"))
	assert.Equal(t, "vendor", tagName("vendor"))
}
