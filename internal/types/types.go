// =============================================================================
// Payables Dashboard - Shared Types
// =============================================================================
//
// This package contains the types shared by the ingest, grouping, filter,
// analytics, navigator and export packages. Keeping them here avoids import
// cycles between the pipeline stages.
//
// LIFECYCLE:
//   Records are built once per ingest pass over a freshly loaded snapshot and
//   are never mutated afterwards. Groups and every aggregate are recomputed
//   from the records on each pipeline run.
//
// =============================================================================

package types

import (
	"sort"
	"time"
)

// DayLayout is the canonical calendar-day format used for keys and labels.
const DayLayout = "2006-01-02"

// NoSectorLabel is the display label given to rows with an empty sector.
const NoSectorLabel = "(no sector)"

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field is a canonical column name that raw spreadsheet headers resolve to.
type Field string

const (
	FieldSector             Field = "sector"
	FieldProject            Field = "project"
	FieldAccountItem        Field = "account_item"
	FieldStatus             Field = "status"
	FieldRequestID          Field = "request_id"
	FieldCode               Field = "code"
	FieldVendor             Field = "vendor"
	FieldAmountTotal        Field = "amount_total"
	FieldAmountPaid         Field = "amount_paid"
	FieldAmountCanceled     Field = "amount_canceled"
	FieldAmountRemaining    Field = "amount_remaining"
	FieldSourceRequestDate  Field = "source_request_date"
	FieldPaymentRequestDate Field = "payment_request_date"
	FieldApprovalDate       Field = "approval_date"
	FieldPaymentDate        Field = "payment_date"
	FieldTimeCode           Field = "time_code"
	FieldExactTime          Field = "exact_time"

	// Columns found in some sheet revisions only.
	FieldDescription Field = "description"
	FieldSerial      Field = "serial"
)

// CanonicalFields lists the fields of the header alias vocabulary in their
// export order.
var CanonicalFields = []Field{
	FieldSector,
	FieldProject,
	FieldAccountItem,
	FieldStatus,
	FieldRequestID,
	FieldCode,
	FieldVendor,
	FieldAmountTotal,
	FieldAmountPaid,
	FieldAmountCanceled,
	FieldAmountRemaining,
	FieldSourceRequestDate,
	FieldPaymentRequestDate,
	FieldApprovalDate,
	FieldPaymentDate,
	FieldTimeCode,
	FieldExactTime,
}

// ExtraFields are recognized but not part of the exported column set.
var ExtraFields = []Field{FieldDescription, FieldSerial}

// IsKnown reports whether f is a canonical or extra field.
func (f Field) IsKnown() bool {
	for _, c := range CanonicalFields {
		if c == f {
			return true
		}
	}
	for _, c := range ExtraFields {
		if c == f {
			return true
		}
	}
	return false
}

// IsDate reports whether f holds one of the four lifecycle dates.
func (f Field) IsDate() bool {
	switch f {
	case FieldSourceRequestDate, FieldPaymentRequestDate, FieldApprovalDate, FieldPaymentDate:
		return true
	}
	return false
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the payment lifecycle state derived from which dates are present.
type Status string

const (
	// StatusIndeterminate means no payment-request date, or an inconsistent
	// combination of dates.
	StatusIndeterminate Status = ""

	// StatusRequested means requested, not yet approved or paid.
	StatusRequested Status = "1"

	// StatusApproved means approved, not yet paid.
	StatusApproved Status = "2"

	// StatusPaid means approved and paid.
	StatusPaid Status = "3"
)

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case StatusRequested:
		return "requested"
	case StatusApproved:
		return "approved"
	case StatusPaid:
		return "paid"
	}
	return "indeterminate"
}

// ParseStatus accepts "1", "2", "3" or their labels. The empty string means
// "no status filter" and returns ok=false.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "1", "requested":
		return StatusRequested, true
	case "2", "approved":
		return StatusApproved, true
	case "3", "paid":
		return StatusPaid, true
	}
	return StatusIndeterminate, false
}

// =============================================================================
// DATES
// =============================================================================

// Date is a raw cell value plus its optional parsed calendar date.
// Time is always UTC midnight when Valid is true.
type Date struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// Day returns the YYYY-MM-DD label of the date, or "" if it did not parse.
func (d Date) Day() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DayLayout)
}

// Unparseable reports whether the cell had content that failed to parse.
func (d Date) Unparseable() bool {
	return d.Raw != "" && !d.Valid
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the canonical form of one spreadsheet data row.
type Record struct {
	// RowNumber is the 1-based data row in the source snapshot.
	RowNumber int

	Sector     string
	Project    string
	SectorKey  string
	ProjectKey string

	AccountItem string

	// RawStatus is the sheet's own status column, kept for display only.
	RawStatus string

	Vendor      string
	Code        string
	RequestID   string
	Description string
	Serial      string

	AmountTotal    float64
	AmountPaid     float64
	AmountCanceled float64

	// AmountRemainingSheet is the sheet's remaining column. The dashboard
	// never uses it for math; Remaining is always recomputed.
	AmountRemainingSheet float64

	// EffectiveTotal = max(0, AmountTotal - AmountCanceled).
	EffectiveTotal float64

	// Remaining = max(0, EffectiveTotal - AmountPaid).
	Remaining float64

	SourceRequestDate  Date
	PaymentRequestDate Date
	ApprovalDate       Date
	PaymentDate        Date

	// AnchorDate is the view's grouping reference: the configured anchor
	// field, falling back to the configured fallback field.
	AnchorDate Date

	// SubmissionTime is the free-text time label identifying one submission.
	SubmissionTime string

	// TimeCode and ExactTime are the raw time columns.
	TimeCode  string
	ExactTime string

	Status Status

	// StatusAnomaly is set for the payment-request + payment without
	// approval combination.
	StatusAnomaly bool

	// Excluded rows are kept for data-quality metrics only.
	Excluded      bool
	ExcludeReason string
}

// DateField returns the lifecycle date stored under f.
func (r Record) DateField(f Field) Date {
	switch f {
	case FieldSourceRequestDate:
		return r.SourceRequestDate
	case FieldPaymentRequestDate:
		return r.PaymentRequestDate
	case FieldApprovalDate:
		return r.ApprovalDate
	case FieldPaymentDate:
		return r.PaymentDate
	}
	return Date{}
}

// Raw returns the record's value for a canonical field as export text.
func (r Record) Raw(f Field) string {
	switch f {
	case FieldSector:
		return r.Sector
	case FieldProject:
		return r.Project
	case FieldAccountItem:
		return r.AccountItem
	case FieldStatus:
		return r.RawStatus
	case FieldRequestID:
		return r.RequestID
	case FieldCode:
		return r.Code
	case FieldVendor:
		return r.Vendor
	case FieldSourceRequestDate:
		return r.SourceRequestDate.Raw
	case FieldPaymentRequestDate:
		return r.PaymentRequestDate.Raw
	case FieldApprovalDate:
		return r.ApprovalDate.Raw
	case FieldPaymentDate:
		return r.PaymentDate.Raw
	case FieldTimeCode:
		return r.TimeCode
	case FieldExactTime:
		return r.ExactTime
	case FieldDescription:
		return r.Description
	case FieldSerial:
		return r.Serial
	}
	return ""
}

// =============================================================================
// SUBMISSION GROUP
// =============================================================================

// SubmissionGroup aggregates every record sharing
// (sectorKey, projectKey, submissionTime, day).
type SubmissionGroup struct {
	// Key is the stable handle "sectorKey||projectKey||time||day".
	Key string

	SectorKey      string
	ProjectKey     string
	Sector         string
	Project        string
	SubmissionTime string

	// Day is the YYYY-MM-DD anchor day; AnchorDate is the same day as a time.
	Day        string
	AnchorDate time.Time

	// PaidDate is the latest member payment date, if any member was paid.
	PaidDate    time.Time
	HasPaidDate bool

	Status Status

	Total     float64
	Paid      float64
	Remaining float64

	// Vendors holds the distinct member vendors in first-seen order.
	Vendors []string

	Members []Record
}

// LineItems returns the number of member records.
func (g SubmissionGroup) LineItems() int {
	return len(g.Members)
}

// =============================================================================
// LABEL INDEX
// =============================================================================

// LabelDelta is what normalizing one row contributes to the label index.
type LabelDelta struct {
	SectorKey    string
	SectorLabel  string
	ProjectKey   string
	ProjectLabel string
}

// LabelIndex maps opaque identity keys back to display labels. It is built
// once per ingest pass and never modified afterwards.
type LabelIndex struct {
	sectors          map[string]string
	projects         map[string]string
	projectsBySector map[string][]string
}

// NewLabelIndex folds row deltas into an index. The first label seen for a
// key wins.
func NewLabelIndex(deltas []LabelDelta) LabelIndex {
	ix := LabelIndex{
		sectors:          make(map[string]string),
		projects:         make(map[string]string),
		projectsBySector: make(map[string][]string),
	}
	seenPair := make(map[string]bool)

	for _, d := range deltas {
		if d.SectorKey != "" {
			if _, ok := ix.sectors[d.SectorKey]; !ok {
				ix.sectors[d.SectorKey] = d.SectorLabel
			}
		}
		if d.ProjectKey == "" {
			continue
		}
		if _, ok := ix.projects[d.ProjectKey]; !ok {
			ix.projects[d.ProjectKey] = d.ProjectLabel
		}
		pair := d.SectorKey + "||" + d.ProjectKey
		if !seenPair[pair] {
			seenPair[pair] = true
			ix.projectsBySector[d.SectorKey] = append(ix.projectsBySector[d.SectorKey], d.ProjectKey)
		}
	}

	return ix
}

// Sector returns the display label for a sector key, or the key itself.
func (ix LabelIndex) Sector(key string) string {
	if label, ok := ix.sectors[key]; ok {
		return label
	}
	return key
}

// Project returns the display label for a project key, or the key itself.
func (ix LabelIndex) Project(key string) string {
	if label, ok := ix.projects[key]; ok {
		return label
	}
	return key
}

// SectorKeys returns all sector keys sorted by key.
func (ix LabelIndex) SectorKeys() []string {
	return sortedKeys(ix.sectors)
}

// ProjectKeys returns the project keys seen under sectorKey, or every
// project key when sectorKey is empty. The result is sorted.
func (ix LabelIndex) ProjectKeys(sectorKey string) []string {
	if sectorKey == "" {
		return sortedKeys(ix.projects)
	}
	keys := append([]string(nil), ix.projectsBySector[sectorKey]...)
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
