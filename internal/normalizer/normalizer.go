// =============================================================================
// Payables Dashboard - Row Normalizer
// =============================================================================
//
// The row normalizer turns one raw spreadsheet row into a canonical Record.
// It is the only place where cell text is interpreted: labels are cleaned and
// folded into identity keys, amounts are parsed and clamped, the four
// lifecycle dates are parsed, the anchor date and submission time are chosen,
// and the status is classified.
//
// EXCLUSION POLICY:
//   A row without a usable vendor (empty or a placeholder token) becomes an
//   excluded Record. Excluded records never reach grouping or any financial
//   figure, but they are still counted by the data-quality metrics.
//
// LABEL INDEX:
//   Each call also returns the row's LabelDelta. Ingest folds the deltas of
//   one pass into an immutable LabelIndex; nothing is accumulated globally.
//
// =============================================================================

package normalizer

import (
	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/ginjaninja78/payables-dashboard/internal/schema"
	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExcludeMissingVendor is the exclusion reason for rows without a vendor.
const ExcludeMissingVendor = "missing_vendor"

// Options configures a Normalizer.
type Options struct {
	// AnchorField and FallbackAnchorField must be date fields.
	AnchorField         types.Field
	FallbackAnchorField types.Field

	// Cleaner is optional.
	Cleaner *Cleaner
}

// Normalizer builds Records from canonical rows.
type Normalizer struct {
	anchor   types.Field
	fallback types.Field
	cleaner  *Cleaner
}

// New returns a Normalizer. Empty anchor fields default to the payment
// request date with the source request date as fallback.
func New(opts Options) *Normalizer {
	n := &Normalizer{
		anchor:   opts.AnchorField,
		fallback: opts.FallbackAnchorField,
		cleaner:  opts.Cleaner,
	}
	if n.anchor == "" {
		n.anchor = types.FieldPaymentRequestDate
	}
	if n.fallback == "" {
		n.fallback = types.FieldSourceRequestDate
	}
	return n
}

// NormalizeRow builds the Record for one canonical row.
//
// PARAMETERS:
//   - row: canonical field -> raw cell text. Missing fields read as "".
//   - rowNumber: the 1-based data row number, kept for issue reports.
//
// RETURNS:
//   - The Record, possibly flagged Excluded.
//   - The label-index contribution of the row.
func (n *Normalizer) NormalizeRow(row map[types.Field]string, rowNumber int) (types.Record, types.LabelDelta) {
	row = n.cleaner.Apply(row)

	rec := types.Record{
		RowNumber:   rowNumber,
		Sector:      textnorm.NormalizeText(row[types.FieldSector]),
		Project:     textnorm.NormalizeText(row[types.FieldProject]),
		AccountItem: textnorm.NormalizeText(row[types.FieldAccountItem]),
		RawStatus:   textnorm.NormalizeText(row[types.FieldStatus]),
		Vendor:      textnorm.CleanIdentifier(row[types.FieldVendor]),
		Code:        textnorm.NormalizeText(row[types.FieldCode]),
		RequestID:   textnorm.NormalizeText(row[types.FieldRequestID]),
		Description: textnorm.NormalizeText(row[types.FieldDescription]),
		Serial:      textnorm.NormalizeText(row[types.FieldSerial]),
		TimeCode:    textnorm.NormalizeText(row[types.FieldTimeCode]),
		ExactTime:   textnorm.NormalizeText(row[types.FieldExactTime]),
	}

	if rec.Sector == "" {
		rec.Sector = types.NoSectorLabel
	}
	rec.SectorKey = textnorm.FoldKey(rec.Sector)
	rec.ProjectKey = textnorm.FoldKey(rec.Project)

	applyAmounts(&rec, row)

	rec.SourceRequestDate = parseDate(row[types.FieldSourceRequestDate])
	rec.PaymentRequestDate = parseDate(row[types.FieldPaymentRequestDate])
	rec.ApprovalDate = parseDate(row[types.FieldApprovalDate])
	rec.PaymentDate = parseDate(row[types.FieldPaymentDate])

	rec.AnchorDate = rec.DateField(n.anchor)
	if !rec.AnchorDate.Valid {
		rec.AnchorDate = rec.DateField(n.fallback)
	}

	rec.SubmissionTime = rec.ExactTime
	if rec.SubmissionTime == "" {
		rec.SubmissionTime = rec.TimeCode
	}

	rec.Status, rec.StatusAnomaly = ClassifyStatus(
		rec.PaymentRequestDate.Valid,
		rec.ApprovalDate.Valid,
		rec.PaymentDate.Valid,
	)

	if rec.Vendor == "" {
		rec.Excluded = true
		rec.ExcludeReason = ExcludeMissingVendor
	}

	delta := types.LabelDelta{
		SectorKey:    rec.SectorKey,
		SectorLabel:  rec.Sector,
		ProjectKey:   rec.ProjectKey,
		ProjectLabel: rec.Project,
	}
	return rec, delta
}

// applyAmounts parses the three amounts, clamps them at zero and derives the
// effective total and remaining balance on exact decimals.
func applyAmounts(rec *types.Record, row map[types.Field]string) {
	total := nonNegative(coerce.ToDecimal(row[types.FieldAmountTotal]))
	paid := nonNegative(coerce.ToDecimal(row[types.FieldAmountPaid]))
	canceled := nonNegative(coerce.ToDecimal(row[types.FieldAmountCanceled]))

	effective := nonNegative(total.Sub(canceled))
	remaining := nonNegative(effective.Sub(paid))

	rec.AmountTotal = total.InexactFloat64()
	rec.AmountPaid = paid.InexactFloat64()
	rec.AmountCanceled = canceled.InexactFloat64()
	rec.AmountRemainingSheet = coerce.ToNumber(row[types.FieldAmountRemaining])
	rec.EffectiveTotal = effective.InexactFloat64()
	rec.Remaining = remaining.InexactFloat64()
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// parseDate treats placeholder cells ("-", "0") as empty.
func parseDate(raw string) types.Date {
	d := types.Date{Raw: textnorm.CleanIdentifier(raw)}
	d.Time, d.Valid = coerce.ParseDateSmart(d.Raw)
	return d
}

// =============================================================================
// INGEST PASS
// =============================================================================

// Snapshot is the result of one ingest pass.
type Snapshot struct {
	// Records holds every data row, excluded ones included, in sheet order.
	Records []types.Record

	// Labels maps sector and project keys of included records to labels.
	Labels types.LabelIndex

	// UnknownHeaders lists header cells that matched no alias.
	UnknownHeaders []string

	// MissingColumns lists canonical fields no header resolved to.
	MissingColumns []types.Field
}

// Ingest normalizes every row of a parsed table.
func Ingest(table *csvparser.Table, sch *schema.Schema, n *Normalizer, logger *zap.Logger) *Snapshot {
	columns := sch.MapHeaders(table.Headers)

	snap := &Snapshot{
		Records:        make([]types.Record, 0, len(table.Rows)),
		UnknownHeaders: columns.Unknown,
	}
	for _, f := range types.CanonicalFields {
		if !columns.Has(f) {
			snap.MissingColumns = append(snap.MissingColumns, f)
		}
	}

	deltas := make([]types.LabelDelta, 0, len(table.Rows))
	excluded := 0

	for _, raw := range table.Rows {
		rec, delta := n.NormalizeRow(columns.Row(raw.Cells), raw.Number)
		snap.Records = append(snap.Records, rec)
		if rec.Excluded {
			excluded++
			continue
		}
		deltas = append(deltas, delta)
	}

	snap.Labels = types.NewLabelIndex(deltas)

	logger.Debug("rows normalized",
		zap.String("source", table.Source),
		zap.Int("rows", len(table.Rows)),
		zap.Int("records", len(snap.Records)-excluded),
		zap.Int("excluded", excluded),
		zap.Strings("unknown_headers", columns.Unknown),
	)
	if len(snap.MissingColumns) > 0 {
		missing := make([]string, len(snap.MissingColumns))
		for i, f := range snap.MissingColumns {
			missing[i] = string(f)
		}
		logger.Warn("snapshot is missing canonical columns", zap.Strings("fields", missing))
	}

	return snap
}
