// =============================================================================
// Payables Dashboard - Export Module
// =============================================================================
//
// This module flattens the currently filtered view into a file. Two kinds
// of data can be exported, each in three formats:
//
//   kind     | rows                         | columns
//   ---------|------------------------------|-----------------------------------
//   groups   | one per submission           | GroupColumns
//   records  | one per line item            | the canonical fields in alias
//            |                              | table order + effective_total,
//            |                              | remaining
//
//   format   | writer
//   ---------|---------------------------------------------------------------
//   csv      | RFC 4180 (quote on comma/quote/newline, double inner quotes)
//   xlsx     | one worksheet, header row + data rows
//   xml      | <submissions><submission><lineItem/></submission></submissions>
//
// Amounts are written with two decimals and no thousands separators so the
// files round-trip through the dashboard's own number parser.
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownFormat is returned for a format other than csv, xlsx or xml.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrUnknownKind is returned for a kind other than groups or records.
	ErrUnknownKind = errors.New("unknown export kind")
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXML  Format = "xml"
)

// Kind selects what is exported.
type Kind string

const (
	KindGroups  Kind = "groups"
	KindRecords Kind = "records"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatXML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindGroups, KindRecords:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Extension returns the file extension of a format, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Data is the filtered view to export.
type Data struct {
	Groups  []types.SubmissionGroup
	Records []types.Record
}

// Write exports one kind of data in one format. Excluded records (no vendor)
// are never written.
func Write(w io.Writer, format Format, kind Kind, data Data) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	data.Records = includedRecords(data.Records)

	switch format {
	case FormatCSV:
		return writeCSV(w, tableFor(kind, data))
	case FormatXLSX:
		return writeXLSX(w, string(kind), tableFor(kind, data))
	case FormatXML:
		if kind == KindGroups {
			return WriteGroupsXML(w, data.Groups, DefaultGenerateOptions())
		}
		return WriteRecordsXML(w, data.Records, DefaultGenerateOptions())
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func includedRecords(records []types.Record) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if !r.Excluded {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// TABLES
// =============================================================================

// Table is a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

func tableFor(kind Kind, data Data) Table {
	if kind == KindGroups {
		return GroupTable(data.Groups)
	}
	return RecordTable(data.Records)
}

// GroupColumns are the columns of a group export.
var GroupColumns = []string{
	"day",
	"sector",
	"project",
	"submission_time",
	"status",
	"line_items",
	"vendors",
	"effective_total",
	"paid",
	"remaining",
}

// RecordColumns are the columns of a record export.
func RecordColumns() []string {
	cols := make([]string, 0, len(types.CanonicalFields)+2)
	for _, f := range types.CanonicalFields {
		cols = append(cols, string(f))
	}
	return append(cols, "effective_total", "remaining")
}

// GroupTable flattens groups.
func GroupTable(groups []types.SubmissionGroup) Table {
	t := Table{Headers: GroupColumns}
	for _, g := range groups {
		t.Rows = append(t.Rows, []string{
			g.Day,
			g.Sector,
			g.Project,
			g.SubmissionTime,
			string(g.Status),
			strconv.Itoa(g.LineItems()),
			strings.Join(g.Vendors, "; "),
			Amount(g.Total),
			Amount(g.Paid),
			Amount(g.Remaining),
		})
	}
	return t
}

// RecordTable flattens records.
func RecordTable(records []types.Record) Table {
	t := Table{Headers: RecordColumns()}
	for _, r := range records {
		row := make([]string, 0, len(t.Headers))
		for _, f := range types.CanonicalFields {
			row = append(row, recordCell(r, f))
		}
		row = append(row, Amount(r.EffectiveTotal), Amount(r.Remaining))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func recordCell(r types.Record, f types.Field) string {
	switch f {
	case types.FieldAmountTotal:
		return Amount(r.AmountTotal)
	case types.FieldAmountPaid:
		return Amount(r.AmountPaid)
	case types.FieldAmountCanceled:
		return Amount(r.AmountCanceled)
	case types.FieldAmountRemaining:
		return Amount(r.AmountRemainingSheet)
	}
	return r.Raw(f)
}

// Amount renders an amount with two decimals.
func Amount(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}
