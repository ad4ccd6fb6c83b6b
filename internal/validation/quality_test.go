package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/payables-dashboard/internal/filter"
	"github.com/ginjaninja78/payables-dashboard/internal/normalizer"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []types.Record {
	n := normalizer.New(normalizer.Options{})
	rows := []map[types.Field]string{
		{
			types.FieldProject: "P1", types.FieldVendor: "Acme", types.FieldTimeCode: "09:00",
			types.FieldPaymentRequestDate: "2026-01-10", types.FieldApprovalDate: "2026-01-11",
		},
		{
			types.FieldProject: "P1", types.FieldVendor: "Beta", types.FieldTimeCode: "09:00",
			types.FieldPaymentRequestDate: "2026-01-10",
		},
		{
			types.FieldProject: "", types.FieldVendor: "-", types.FieldTimeCode: "09:00",
			types.FieldPaymentRequestDate: "2026-01-10",
		},
		{
			types.FieldProject: "P2", types.FieldVendor: "Gamma",
			types.FieldPaymentRequestDate: "2026-01-12", types.FieldPaymentDate: "2026-01-14",
		},
		{
			types.FieldProject: "P2", types.FieldVendor: "Delta", types.FieldTimeCode: "10:00",
			types.FieldPaymentRequestDate: "31-02-2026",
		},
	}
	out := make([]types.Record, len(rows))
	for i, r := range rows {
		out[i], _ = n.NormalizeRow(r, i+1)
	}
	return out
}

func TestValidateAllRecords(t *testing.T) {
	report := NewValidator(Options{}).Validate(fixture(), filter.Criteria{})

	m := report.All
	assert.Equal(t, 5, m.TotalRows)
	assert.Equal(t, 4, m.Included)
	assert.Equal(t, 1, m.MissingVendor)
	assert.Equal(t, 1, m.MissingProject)
	assert.Equal(t, 1, m.UnparseableDates)
	assert.Equal(t, 0, m.MissingRequestDate)
	assert.Equal(t, 2, m.Indeterminate)
	assert.Equal(t, 1, m.StatusAnomalies)
	assert.Equal(t, 1, m.MissingSubmissionTime)
	assert.Equal(t, m, report.Filtered)

	assert.False(t, report.IsValid)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Equal(t, len(report.Issues)-1, report.WarningCount)

	first := report.Issues[0]
	assert.Equal(t, 3, first.RowNumber)
	assert.Equal(t, RuleMissingVendor, first.Rule)
	assert.True(t, strings.HasPrefix(first.Error(), "[ERROR] Row 3"))
}

func TestStatusFilterLeavesAllMetricsUnchanged(t *testing.T) {
	records := fixture()
	v := NewValidator(Options{})

	unfiltered := v.Validate(records, filter.Criteria{})
	filtered := v.Validate(records, filter.Criteria{Status: types.StatusApproved})

	assert.Equal(t, unfiltered.All, filtered.All)
	assert.Equal(t, unfiltered.Issues, filtered.Issues)

	assert.Equal(t, 1, filtered.Filtered.TotalRows)
	assert.Equal(t, 0, filtered.Filtered.MissingVendor)
}

func TestTreatWarningsAsErrorsAndCustomChecks(t *testing.T) {
	v := NewValidator(Options{
		TreatWarningsAsErrors: true,
		CustomChecks: map[types.Field]CustomCheckFunc{
			types.FieldVendor: func(value string, _ types.Record) string {
				if value == "Beta" {
					return "vendor is blocked"
				}
				return ""
			},
		},
	})

	report := v.Validate(fixture(), filter.Criteria{})
	assert.Equal(t, 0, report.WarningCount)

	var custom []*Issue
	for _, issue := range report.Issues {
		if issue.Rule == RuleCustom {
			custom = append(custom, issue)
		}
	}
	require.Len(t, custom, 1)
	assert.Equal(t, 2, custom[0].RowNumber)
	assert.Equal(t, SeverityError, custom[0].Severity)
	assert.Equal(t, "vendor is blocked", custom[0].Message)
}

func TestMetricsSummary(t *testing.T) {
	s := Metrics{TotalRows: 3, MissingVendor: 1}.Summary()
	assert.Contains(t, s, "rows=3")
	assert.Contains(t, s, "missing_vendor=1")
}

func TestPlaceholderDatesCountAsMissing(t *testing.T) {
	n := normalizer.New(normalizer.Options{})
	rec, _ := n.NormalizeRow(map[types.Field]string{
		types.FieldProject: "P1", types.FieldVendor: "Acme", types.FieldTimeCode: "09:00",
		types.FieldPaymentRequestDate: "-", types.FieldApprovalDate: "-", types.FieldPaymentDate: "0",
	}, 1)

	assert.False(t, rec.PaymentRequestDate.Unparseable())
	assert.Empty(t, rec.PaymentDate.Raw)

	report := NewValidator(Options{}).Validate([]types.Record{rec}, filter.Criteria{})
	assert.Equal(t, 0, report.All.UnparseableDates)
	assert.Equal(t, 1, report.All.MissingRequestDate)
	assert.Equal(t, 1, report.All.Indeterminate)
}
