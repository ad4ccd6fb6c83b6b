package analytics

import (
	"testing"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/grouping"
	"github.com/ginjaninja78/payables-dashboard/internal/normalizer"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(types.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

type row struct {
	sector, project, vendor, code string
	total, paid                   string
	requested, approved, payment  string
	time                          string
	requestID                     string
	source                        string
}

func buildGroups(t *testing.T, rows ...row) ([]types.Record, []types.SubmissionGroup) {
	t.Helper()
	n := normalizer.New(normalizer.Options{})
	records := make([]types.Record, 0, len(rows))
	for i, r := range rows {
		rec, _ := n.NormalizeRow(map[types.Field]string{
			types.FieldSector:             r.sector,
			types.FieldProject:            r.project,
			types.FieldVendor:             r.vendor,
			types.FieldCode:               r.code,
			types.FieldAmountTotal:        r.total,
			types.FieldAmountPaid:         r.paid,
			types.FieldPaymentRequestDate: r.requested,
			types.FieldApprovalDate:       r.approved,
			types.FieldPaymentDate:        r.payment,
			types.FieldTimeCode:           r.time,
			types.FieldRequestID:          r.requestID,
			types.FieldSourceRequestDate:  r.source,
		}, i+1)
		records = append(records, rec)
	}
	return records, grouping.Group(records, types.LabelIndex{})
}

func scenario(t *testing.T) []types.SubmissionGroup {
	_, groups := buildGroups(t,
		row{sector: "Roads", project: "P1", vendor: "Acme", total: "1000", paid: "400", requested: "2026-01-10", time: "09:00"},
		row{sector: "Roads", project: "P1", vendor: "Beta", total: "500", paid: "500", requested: "2026-01-10", time: "09:00"},
		row{sector: "Roads", project: "P2", vendor: "Acme", total: "200", paid: "0", requested: "2026-01-10", time: "10:00"},
	)
	return groups
}

func TestComputeKPIsScenario(t *testing.T) {
	k := ComputeKPIs(scenario(t), day("2026-01-05"))

	assert.Equal(t, 2, k.UniqueSubmissions)
	assert.Equal(t, 3, k.LineItems)
	assert.InDelta(t, 1700, k.Gross, 1e-9)
	assert.InDelta(t, 900, k.Paid, 1e-9)
	assert.InDelta(t, 800, k.Remaining, 1e-9)
	assert.Equal(t, 1, k.ActiveDays)
	assert.InDelta(t, 2.0, k.AvgSubmissionsPerDay, 1e-9)
	assert.Equal(t, 2, k.OutstandingGroups)
	assert.Equal(t, 0, k.OverdueCount)
	require.True(t, k.HasAsOf)
	assert.Equal(t, day("2026-01-10"), k.AsOf)

	late := ComputeKPIs(scenario(t), day("2026-01-11"))
	assert.Equal(t, 2, late.OverdueCount)
	assert.InDelta(t, 800, late.OverdueAmount, 1e-9)
}

func TestComputeExposure(t *testing.T) {
	groups := []types.SubmissionGroup{
		{Status: types.StatusRequested, Remaining: 100},
		{Status: types.StatusApproved, Remaining: 50},
		{Status: types.StatusApproved, Remaining: 25},
		{Status: types.StatusPaid, Remaining: 0},
		{Status: types.StatusIndeterminate, Remaining: 10},
	}
	e := ComputeExposure(groups)
	assert.InDelta(t, 100, e.Requested, 1e-9)
	assert.InDelta(t, 75, e.ByStatus(types.StatusApproved), 1e-9)
	assert.InDelta(t, 0, e.Paid, 1e-9)
	assert.InDelta(t, 10, e.Indeterminate, 1e-9)
	assert.InDelta(t, 185, e.Total, 1e-9)
}

func TestComputeAging(t *testing.T) {
	today := day("2026-01-10")
	groups := []types.SubmissionGroup{
		{AnchorDate: day("2026-01-10"), Remaining: 1},
		{AnchorDate: day("2026-01-17"), Remaining: 2},
		{AnchorDate: day("2026-01-18"), Remaining: 4},
		{AnchorDate: day("2026-01-24"), Remaining: 8},
		{AnchorDate: day("2026-01-25"), Remaining: 16},
		{AnchorDate: day("2026-02-09"), Remaining: 32},
		{AnchorDate: day("2026-02-10"), Remaining: 64},
		{AnchorDate: day("2026-01-09"), Remaining: 128},
		{AnchorDate: day("2026-01-20"), Remaining: 0},
		{Remaining: 256},
	}

	a := ComputeAging(groups, today.Add(15*time.Hour))
	require.Len(t, a.Buckets, 4)

	assert.Equal(t, "0-7", a.Buckets[0].Label)
	assert.Equal(t, 2, a.Buckets[0].Count)
	assert.InDelta(t, 3, a.Buckets[0].Amount, 1e-9)

	assert.Equal(t, 2, a.Buckets[1].Count)
	assert.InDelta(t, 12, a.Buckets[1].Amount, 1e-9)

	assert.Equal(t, 2, a.Buckets[2].Count)
	assert.InDelta(t, 48, a.Buckets[2].Amount, 1e-9)

	assert.Equal(t, 1, a.Buckets[3].Count)
	assert.InDelta(t, 64, a.Buckets[3].Amount, 1e-9)

	assert.Equal(t, 1, a.Overdue.Count)
	assert.InDelta(t, 128, a.Overdue.Amount, 1e-9)
}

func TestComputeSLAWeightsByPaid(t *testing.T) {
	groups := []types.SubmissionGroup{
		{AnchorDate: day("2026-01-01"), PaidDate: day("2026-01-03"), HasPaidDate: true, Paid: 900},
		{AnchorDate: day("2026-01-01"), PaidDate: day("2026-01-06"), HasPaidDate: true, Paid: 50},
		{AnchorDate: day("2026-01-01"), PaidDate: day("2026-01-10"), HasPaidDate: true, Paid: 100},
		{AnchorDate: day("2026-01-05"), PaidDate: day("2026-01-04"), HasPaidDate: true, Paid: 950},
		{AnchorDate: day("2026-01-01"), Paid: 500},
	}

	s := ComputeSLA(groups, 5)
	assert.Equal(t, 4, s.Groups)
	assert.Equal(t, 2, s.OnTime)
	assert.InDelta(t, 950, s.OnTimePaid, 1e-9)
	assert.InDelta(t, 2000, s.TotalPaid, 1e-9)
	require.True(t, s.Valid)
	assert.InDelta(t, 0.475, s.Ratio, 1e-9)

	empty := ComputeSLA(nil, 5)
	assert.False(t, empty.Valid)
}

func TestTopNIsStable(t *testing.T) {
	groups := []types.SubmissionGroup{
		{Key: "g1", ProjectKey: "p1", Project: "P1", Remaining: 100, Members: []types.Record{
			{Vendor: "Zeta", Remaining: 50}, {Vendor: "Alpha", Remaining: 50},
		}},
		{Key: "g2", ProjectKey: "p2", Project: "P2", Remaining: 100, Members: []types.Record{
			{Vendor: "alpha", Remaining: 0}, {Vendor: "Mid", Remaining: 80},
		}},
		{Key: "g3", ProjectKey: "p3", Project: "P3", Remaining: 300, Members: []types.Record{
			{Vendor: "Paid", Remaining: 0},
		}},
	}

	vendors := TopVendors(groups, ByOutstanding, 5)
	require.Len(t, vendors, 3)
	assert.Equal(t, "Mid", vendors[0].Label)
	assert.Equal(t, "Zeta", vendors[1].Label)
	assert.Equal(t, "Alpha", vendors[2].Label)

	byCount := TopVendors(groups, BySubmissions, 2)
	require.Len(t, byCount, 2)
	assert.Equal(t, "Alpha", byCount[0].Label)
	assert.Equal(t, 2, byCount[0].Submissions)
	assert.Equal(t, "Zeta", byCount[1].Label)

	projects := TopProjects(groups, ByOutstanding, 2)
	require.Len(t, projects, 2)
	assert.Equal(t, "P3", projects[0].Label)
	assert.Equal(t, "P1", projects[1].Label)
}

func TestWeekdayPatternAndForecast(t *testing.T) {
	_, groups := buildGroups(t,
		// 2026-01-30 is a Friday and the most recent payment.
		row{vendor: "A", total: "300", paid: "300", requested: "2026-01-20", approved: "2026-01-21", payment: "2026-01-30", time: "1"},
		// 2026-01-01 is a Thursday, inside the 30-day window.
		row{vendor: "B", total: "300", paid: "300", requested: "2025-12-20", approved: "2025-12-21", payment: "2026-01-01", time: "2"},
		// 2025-12-31 is outside the window.
		row{vendor: "C", total: "999", paid: "999", requested: "2025-12-20", approved: "2025-12-21", payment: "2025-12-31", time: "3"},
	)

	p := ComputeWeekdayPattern(groups, 30)
	require.True(t, p.Valid)
	assert.Equal(t, day("2026-01-30"), p.WindowEnd)
	assert.Equal(t, day("2026-01-01"), p.WindowStart)
	assert.InDelta(t, 300, p.Amounts[time.Friday], 1e-9)
	assert.InDelta(t, 300, p.Amounts[time.Thursday], 1e-9)
	assert.Equal(t, 1, p.Counts[time.Friday])
	assert.InDelta(t, 600, p.Total, 1e-9)

	f := ComputeForecast(p, []int{7, 14})
	require.Len(t, f, 2)
	assert.Equal(t, 7, f[0].Days)
	assert.InDelta(t, 140, f[0].Amount, 1e-9)
	assert.InDelta(t, 280, f[1].Amount, 1e-9)

	none := ComputeWeekdayPattern(scenario(t), 30)
	assert.False(t, none.Valid)
	assert.Empty(t, ComputeForecast(none, []int{7}))
}

func TestComputeChart(t *testing.T) {
	groups := []types.SubmissionGroup{
		{Day: "2026-01-10", AnchorDate: day("2026-01-10"), Total: 100},
		{Day: "2026-01-10", AnchorDate: day("2026-01-10"), Total: 50},
		{Day: "2026-01-08", AnchorDate: day("2026-01-08"), Total: 10},
		{Day: "2025-12-01", AnchorDate: day("2025-12-01"), Total: 999},
	}

	points := ComputeChart(groups, 3)
	require.Len(t, points, 3)
	assert.Equal(t, "2026-01-08", points[0].Day)
	assert.Equal(t, 1, points[0].Submissions)
	assert.Equal(t, "2026-01-09", points[1].Day)
	assert.Equal(t, 0, points[1].Submissions)
	assert.Equal(t, "2026-01-10", points[2].Day)
	assert.Equal(t, 2, points[2].Submissions)
	assert.InDelta(t, 150, points[2].Total, 1e-9)

	assert.Nil(t, ComputeChart(nil, 15))
	assert.Len(t, GroupsOnDay(groups, "2026-01-10"), 2)
}

func TestComputeBottlenecks(t *testing.T) {
	asOf := day("2026-01-20")
	groups := []types.SubmissionGroup{
		{ProjectKey: "p1", Project: "P1", AnchorDate: day("2026-01-10"), Remaining: 100},
		{ProjectKey: "p1", Project: "P1", AnchorDate: day("2026-01-16"), Remaining: 100},
		{ProjectKey: "p2", Project: "P2", AnchorDate: day("2026-01-19"), Remaining: 500},
		{ProjectKey: "p3", Project: "P3", AnchorDate: day("2026-01-01"), Remaining: 0},
		{ProjectKey: "p4", Project: "P4", AnchorDate: day("2026-01-25"), Remaining: 200},
	}

	b := ComputeBottlenecks(groups, asOf, 2)
	require.Len(t, b, 2)
	assert.Equal(t, "P2", b[0].Project)
	assert.Equal(t, "P1", b[1].Project)
	assert.Equal(t, 2, b[1].Outstanding)
	assert.InDelta(t, 200, b[1].Remaining, 1e-9)
	assert.InDelta(t, 7, b[1].AvgAgeDays, 1e-9)

	all := ComputeBottlenecks(groups, asOf, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "P4", all[2].Project)
	assert.InDelta(t, 0, all[2].AvgAgeDays, 1e-9)
}

func TestVendorSummarySearchAndPage(t *testing.T) {
	_, groups := buildGroups(t,
		row{project: "P1", vendor: "Acme", code: "", total: "100", paid: "0", requested: "2026-01-10", time: "1"},
		row{project: "P1", vendor: "ACME", code: "V-1", total: "50", paid: "50", requested: "2026-01-12", time: "2"},
		row{project: "P2", vendor: "Beta", code: "B-7", total: "500", paid: "100", requested: "2026-01-11", time: "1"},
	)

	rows := ComputeVendorSummary(groups)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beta", rows[0].Vendor)
	assert.InDelta(t, 400, rows[0].Remaining, 1e-9)

	acme := rows[1]
	assert.Equal(t, "Acme", acme.Vendor)
	assert.Equal(t, "V-1", acme.Code)
	assert.Equal(t, 2, acme.Submissions)
	assert.Equal(t, 2, acme.LineItems)
	assert.InDelta(t, 150, acme.Gross, 1e-9)
	assert.InDelta(t, 50, acme.Paid, 1e-9)
	assert.Equal(t, day("2026-01-10"), acme.FirstDate)
	assert.Equal(t, day("2026-01-12"), acme.LastDate)

	assert.Len(t, SearchVendors(rows, "acm"), 1)
	assert.Len(t, SearchVendors(rows, "b-7"), 1)
	assert.Len(t, SearchVendors(rows, ""), 2)
	assert.Empty(t, SearchVendors(rows, "zzz"))

	many := make([]VendorRow, 60)
	page, pages := Page(many, 3, 25)
	assert.Equal(t, 3, pages)
	assert.Len(t, page, 10)
	page, _ = Page(many, 99, 25)
	assert.Len(t, page, 10)
	page, pages = Page(nil, 1, 25)
	assert.Empty(t, page)
	assert.Equal(t, 1, pages)
}

func TestComputeDayTable(t *testing.T) {
	rows := ComputeDayTable(scenario(t))
	require.Len(t, rows, 2)
	assert.Equal(t, "P1", rows[0].Project)
	assert.Equal(t, 1, rows[0].Submissions)
	assert.Equal(t, 2, rows[0].LineItems)
	assert.InDelta(t, 1500, rows[0].Total, 1e-9)
	assert.Len(t, ProjectsOnDay(rows, "2026-01-10"), 2)
	assert.Empty(t, ProjectsOnDay(rows, "2026-01-11"))
}

func TestComputeScheduled(t *testing.T) {
	records, _ := buildGroups(t,
		row{vendor: "Acme", total: "100", paid: "100", requestID: "مستحقات 1", source: "2026-01-05"},
		row{vendor: "acme", total: "50", paid: "0", requestID: "مستحقات 2", source: "2026-01-05"},
		row{vendor: "Beta", total: "70", paid: "0", requestID: "مستحقات", source: "2026-01-20"},
		row{vendor: "Gamma", total: "10", paid: "10", requestID: "مستحقات", source: "2026-01-01"},
		row{vendor: "Other", total: "999", paid: "0", requestID: "REQ-1", source: "2026-01-05"},
		row{vendor: "NoDate", total: "5", paid: "0", requestID: "مستحقات"},
	)

	sched := ComputeScheduled(records, day("2026-01-10"))
	require.Len(t, sched, 3)

	assert.Equal(t, "Acme", sched[0].Vendor)
	assert.Len(t, sched[0].Lines, 2)
	assert.InDelta(t, 150, sched[0].Gross, 1e-9)
	assert.InDelta(t, 50, sched[0].Remaining, 1e-9)
	assert.Equal(t, ScheduleOverdue, sched[0].State)

	assert.Equal(t, ScheduleUpcoming, sched[1].State)
	assert.Equal(t, ScheduleSettled, sched[2].State)
}
