// =============================================================================
// Payables Dashboard - Data Quality Engine
// =============================================================================
//
// This module measures how dirty the snapshot is. It never rejects data: a
// finding is counted and reported, and the row keeps flowing (or stays
// excluded, for rows without a vendor).
//
// DENOMINATORS:
//   Metrics are always computed over ALL records, excluded ones included,
//   regardless of the user's filter. The same metrics are computed a second
//   time over the record-level filter result, so a view can show both
//   "in this selection" and "in the whole sheet".
//
// ISSUES:
//   Every finding also yields an Issue carrying the sheet row number, so the
//   validate command can write an issue log users can fix the sheet from.
//
// CUSTOMIZATION:
//   Options.CustomChecks adds per-field checks on top of the built-in ones.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/payables-dashboard/internal/filter"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleMissingVendor         = "missing_vendor"
	RuleMissingProject        = "missing_project"
	RuleUnparseableDate       = "unparseable_date"
	RuleMissingRequestDate    = "missing_payment_request_date"
	RuleStatusAnomaly         = "status_anomaly"
	RuleMissingSubmissionTime = "missing_submission_time"
	RuleCustom                = "custom"
)

// =============================================================================
// ISSUE
// =============================================================================

// Issue is a single data-quality finding.
type Issue struct {
	// Severity is "error" for rows excluded from financial views and
	// "warning" for everything else.
	Severity string

	// Field is the canonical field the finding is about.
	Field types.Field

	// Value is the raw cell text.
	Value string

	// Rule is the check that fired.
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-based data row in the snapshot.
	RowNumber int
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(i.Severity),
		i.RowNumber,
		i.Field,
		i.Message,
		i.Value,
	)
}

// =============================================================================
// METRICS
// =============================================================================

// Metrics are the data-quality counts of one record set.
type Metrics struct {
	TotalRows             int
	Included              int
	MissingVendor         int
	MissingProject        int
	UnparseableDates      int
	MissingRequestDate    int
	Indeterminate         int
	StatusAnomalies       int
	MissingSubmissionTime int
}

// Report is the result of a validation pass.
type Report struct {
	// All is computed over every record.
	All Metrics

	// Filtered is computed over the record-level filter result.
	Filtered Metrics

	// Issues lists the findings over every record, in row order.
	Issues []*Issue

	ErrorCount   int
	WarningCount int

	// IsValid is true when there are no error-severity issues.
	IsValid bool
}

// =============================================================================
// VALIDATOR
// =============================================================================

// CustomCheckFunc inspects one field of one record and returns a message when
// the check fails, or "".
type CustomCheckFunc func(value string, rec types.Record) string

// Options configures a Validator.
type Options struct {
	// TreatWarningsAsErrors promotes every warning to an error.
	TreatWarningsAsErrors bool

	// CustomChecks maps a canonical field to an extra check.
	CustomChecks map[types.Field]CustomCheckFunc
}

// checkOrder fixes the order custom checks run in.
var checkOrder = append(append([]types.Field{}, types.CanonicalFields...), types.ExtraFields...)

// Validator computes data-quality metrics and issues.
type Validator struct {
	options Options
}

// NewValidator creates a Validator.
func NewValidator(options Options) *Validator {
	return &Validator{options: options}
}

// Validate measures the records.
//
// PARAMETERS:
//   - records: every record of the snapshot, excluded ones included.
//   - criteria: the user's filter, used for the Filtered metrics only.
//
// RETURNS:
//   - The report. All and Issues never depend on criteria.
func (v *Validator) Validate(records []types.Record, criteria filter.Criteria) *Report {
	report := &Report{}

	for _, rec := range records {
		findings := v.checkRecord(rec)
		report.All.add(rec, findings)
		report.Issues = append(report.Issues, findings...)
	}

	for _, rec := range filter.Records(records, criteria) {
		report.Filtered.add(rec, v.checkRecord(rec))
	}

	for _, issue := range report.Issues {
		if issue.Severity == SeverityError {
			report.ErrorCount++
		} else {
			report.WarningCount++
		}
	}
	report.IsValid = report.ErrorCount == 0

	return report
}

// checkRecord runs every check against one record.
func (v *Validator) checkRecord(rec types.Record) []*Issue {
	var issues []*Issue
	add := func(severity string, field types.Field, value, rule, message string) {
		if v.options.TreatWarningsAsErrors {
			severity = SeverityError
		}
		issues = append(issues, &Issue{
			Severity:  severity,
			Field:     field,
			Value:     value,
			Rule:      rule,
			Message:   message,
			RowNumber: rec.RowNumber,
		})
	}

	if rec.Excluded {
		add(SeverityError, types.FieldVendor, rec.Vendor, RuleMissingVendor,
			"row has no vendor and is excluded from financial views")
	}

	if rec.Project == "" {
		add(SeverityWarning, types.FieldProject, "", RuleMissingProject, "project is empty")
	}

	for _, f := range []types.Field{
		types.FieldSourceRequestDate,
		types.FieldPaymentRequestDate,
		types.FieldApprovalDate,
		types.FieldPaymentDate,
	} {
		d := rec.DateField(f)
		if d.Unparseable() {
			add(SeverityWarning, f, d.Raw, RuleUnparseableDate, "date could not be parsed")
		}
	}

	if !rec.PaymentRequestDate.Valid && !rec.PaymentRequestDate.Unparseable() {
		add(SeverityWarning, types.FieldPaymentRequestDate, "", RuleMissingRequestDate,
			"payment request date is empty; status is indeterminate")
	}

	if rec.StatusAnomaly {
		add(SeverityWarning, types.FieldApprovalDate, rec.ApprovalDate.Raw, RuleStatusAnomaly,
			"payment date present without approval date")
	}

	if !rec.Excluded && rec.SubmissionTime == "" {
		add(SeverityWarning, types.FieldTimeCode, "", RuleMissingSubmissionTime,
			"no submission time; row cannot be grouped")
	}

	for _, field := range checkOrder {
		check, ok := v.options.CustomChecks[field]
		if !ok {
			continue
		}
		value := rec.Raw(field)
		if msg := check(value, rec); msg != "" {
			add(SeverityWarning, field, value, RuleCustom, msg)
		}
	}

	return issues
}

// add folds one record and its findings into the metrics.
func (m *Metrics) add(rec types.Record, findings []*Issue) {
	m.TotalRows++
	if !rec.Excluded {
		m.Included++
	}
	if rec.Status == types.StatusIndeterminate {
		m.Indeterminate++
	}

	for _, f := range findings {
		switch f.Rule {
		case RuleMissingVendor:
			m.MissingVendor++
		case RuleMissingProject:
			m.MissingProject++
		case RuleUnparseableDate:
			m.UnparseableDates++
		case RuleMissingRequestDate:
			m.MissingRequestDate++
		case RuleStatusAnomaly:
			m.StatusAnomalies++
		case RuleMissingSubmissionTime:
			m.MissingSubmissionTime++
		}
	}
}

// Summary renders the metrics as one line.
func (m Metrics) Summary() string {
	return fmt.Sprintf(
		"rows=%d included=%d missing_vendor=%d missing_project=%d unparseable_dates=%d "+
			"missing_request_date=%d indeterminate=%d anomalies=%d missing_time=%d",
		m.TotalRows, m.Included, m.MissingVendor, m.MissingProject, m.UnparseableDates,
		m.MissingRequestDate, m.Indeterminate, m.StatusAnomalies, m.MissingSubmissionTime,
	)
}
