package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/dashboard"
	"github.com/ginjaninja78/payables-dashboard/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() *dashboard.View {
	today := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	return &dashboard.View{
		Meta: dashboard.Meta{
			Filter:  "sector=Roads",
			Source:  "snapshot.csv",
			Today:   today,
			AsOf:    today.AddDate(0, 0, -2),
			HasAsOf: true,
		},
		KPIs: analytics.KPIs{
			Gross:             1234567.5,
			Paid:              1000,
			Remaining:         1233567.5,
			UniqueSubmissions: 3,
			LineItems:         7,
		},
		Exposure: analytics.Exposure{Requested: 500, Total: 500},
		Aging: analytics.Aging{
			Buckets: []analytics.AgingBucket{{Label: "0-7", Count: 1, Amount: 500}},
			Overdue: analytics.AgingBucket{Label: "overdue"},
		},
		SLA: analytics.SLA{Days: 5, Groups: 2, OnTime: 1, OnTimePaid: 475, TotalPaid: 1000, Ratio: 0.475, Valid: true},
		Rankings: dashboard.Rankings{
			VendorsByOutstanding: []analytics.RankEntry{{Label: "Acme", Outstanding: 900}},
			VendorsBySubmissions: []analytics.RankEntry{{Label: "Beta", Submissions: 4}},
		},
		Chart: []analytics.ChartPoint{
			{Day: "2026-01-17", Submissions: 2, Total: 100},
			{Day: "2026-01-18", Submissions: 1, Total: 50},
		},
		Quality: &validation.Report{
			All:        validation.Metrics{TotalRows: 10, MissingVendor: 2},
			Filtered:   validation.Metrics{TotalRows: 4},
			ErrorCount: 2,
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleView()))
	out := buf.String()

	assert.Contains(t, out, "=== Payables Dashboard ===")
	assert.Contains(t, out, "Filter:  sector=Roads")
	assert.Contains(t, out, "As of:   2026-01-18")
	assert.Contains(t, out, "1,234,567.50")
	assert.Contains(t, out, "Paid within 5 days: 47.5%")
	assert.Contains(t, out, "1.  Acme  900.00")
	assert.Contains(t, out, "1.  Beta  4")
	assert.Contains(t, out, "No payments in view.")
	assert.Contains(t, out, strings.Repeat("#", barWidth))
	assert.Contains(t, out, "Issues: 2 errors, 0 warnings")
	assert.NotContains(t, out, "Scheduled Payables")
}

func TestRenderQuality(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderQuality(&buf, sampleView()))
	out := buf.String()

	assert.Contains(t, out, "--- Data Quality ---")
	assert.NotContains(t, out, "--- Key Figures ---")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "#", bar(1, 100))
	assert.Len(t, bar(5, 10), barWidth/2)
}
