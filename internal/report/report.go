// =============================================================================
// Payables Dashboard - Text Report
// =============================================================================
//
// This module renders a dashboard View as a plain-text report. It only reads
// the view model; every figure was computed by the dashboard package.
//
// LAYOUT:
//   === Payables Dashboard ===
//   Filter / source / as-of lines
//   --- Key Figures ---          KPIs
//   --- Exposure ---             remaining by status
//   --- Aging ---                buckets + overdue
//   --- SLA ---                  on-time ratio
//   --- Top Vendors / Projects ---
//   --- Weekday Pattern ---      + forecast
//   --- Daily Submissions ---    chart series as text bars
//   --- Bottlenecks ---
//   --- Scheduled Payables ---
//   --- Data Quality ---
//
// =============================================================================

package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/dashboard"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/ginjaninja78/payables-dashboard/internal/validation"
	"github.com/ginjaninja78/payables-dashboard/pkg/utils"
)

// barWidth is the width of the longest chart bar.
const barWidth = 30

// Render writes the full report.
func Render(w io.Writer, v *dashboard.View) error {
	bw := bufio.NewWriter(w)

	writeHeader(bw, v)
	writeKPIs(bw, v.KPIs)
	writeExposure(bw, v.Exposure)
	writeAging(bw, v.Aging)
	writeSLA(bw, v.SLA)
	writeRanking(bw, "Top Vendors (outstanding)", v.Rankings.VendorsByOutstanding, analytics.ByOutstanding)
	writeRanking(bw, "Top Vendors (submissions)", v.Rankings.VendorsBySubmissions, analytics.BySubmissions)
	writeRanking(bw, "Top Projects (outstanding)", v.Rankings.ProjectsByOutstanding, analytics.ByOutstanding)
	writeRanking(bw, "Top Projects (submissions)", v.Rankings.ProjectsBySubmissions, analytics.BySubmissions)
	writePattern(bw, v.Pattern, v.Forecasts)
	writeChart(bw, v.Chart)
	writeBottlenecks(bw, v.Bottlenecks)
	writeScheduled(bw, v.Scheduled)
	if v.Quality != nil {
		writeQuality(bw, v.Quality)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RenderQuality writes only the header and the data-quality section.
func RenderQuality(w io.Writer, v *dashboard.View) error {
	bw := bufio.NewWriter(w)
	writeHeader(bw, v)
	if v.Quality != nil {
		writeQuality(bw, v.Quality)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// =============================================================================
// SECTIONS
// =============================================================================

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n--- %s ---\n", title)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(types.DayLayout)
}

func writeHeader(w io.Writer, v *dashboard.View) {
	fmt.Fprintln(w, "=== Payables Dashboard ===")
	fmt.Fprintf(w, "Filter:  %s\n", v.Meta.Filter)
	if v.Meta.Source != "" {
		fmt.Fprintf(w, "Source:  %s\n", v.Meta.Source)
	}
	fmt.Fprintf(w, "Today:   %s\n", day(v.Meta.Today))
	if v.Meta.HasAsOf {
		fmt.Fprintf(w, "As of:   %s\n", day(v.Meta.AsOf))
	}
}

func writeKPIs(w io.Writer, k analytics.KPIs) {
	section(w, "Key Figures")
	tw := table(w)
	fmt.Fprintf(tw, "Gross\t%s\n", utils.FormatMoney(k.Gross))
	fmt.Fprintf(tw, "Paid\t%s\n", utils.FormatMoney(k.Paid))
	fmt.Fprintf(tw, "Remaining\t%s\n", utils.FormatMoney(k.Remaining))
	fmt.Fprintf(tw, "Unique submissions\t%d\n", k.UniqueSubmissions)
	fmt.Fprintf(tw, "Line items\t%d\n", k.LineItems)
	fmt.Fprintf(tw, "Active days\t%d\n", k.ActiveDays)
	fmt.Fprintf(tw, "Submissions per day\t%.1f\n", k.AvgSubmissionsPerDay)
	fmt.Fprintf(tw, "Paid submissions\t%d\n", k.PaidGroups)
	fmt.Fprintf(tw, "Outstanding submissions\t%d\n", k.OutstandingGroups)
	fmt.Fprintf(tw, "Overdue\t%s (%d)\n", utils.FormatMoney(k.OverdueAmount), k.OverdueCount)
	tw.Flush()
}

func writeExposure(w io.Writer, e analytics.Exposure) {
	section(w, "Exposure")
	tw := table(w)
	for _, s := range []types.Status{types.StatusRequested, types.StatusApproved, types.StatusPaid} {
		fmt.Fprintf(tw, "%s\t%s\n", s.Label(), utils.FormatMoney(e.ByStatus(s)))
	}
	if e.Indeterminate > 0 {
		fmt.Fprintf(tw, "indeterminate\t%s\n", utils.FormatMoney(e.Indeterminate))
	}
	fmt.Fprintf(tw, "total\t%s\n", utils.FormatMoney(e.Total))
	tw.Flush()
}

func writeAging(w io.Writer, a analytics.Aging) {
	section(w, "Aging")
	tw := table(w)
	fmt.Fprintln(tw, "Days\tCount\tAmount")
	for _, b := range a.Buckets {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Label, b.Count, utils.FormatMoney(b.Amount))
	}
	fmt.Fprintf(tw, "%s\t%d\t%s\n", a.Overdue.Label, a.Overdue.Count, utils.FormatMoney(a.Overdue.Amount))
	tw.Flush()
}

func writeSLA(w io.Writer, s analytics.SLA) {
	section(w, "SLA")
	if !s.Valid {
		fmt.Fprintln(w, "No paid submissions in view.")
		return
	}
	fmt.Fprintf(w, "Paid within %d days: %s (%d of %d submissions, %s of %s)\n",
		s.Days, utils.FormatPercent(s.Ratio), s.OnTime, s.Groups,
		utils.FormatMoney(s.OnTimePaid), utils.FormatMoney(s.TotalPaid))
}

func writeRanking(w io.Writer, title string, entries []analytics.RankEntry, by analytics.RankBy) {
	section(w, title)
	if len(entries) == 0 {
		fmt.Fprintln(w, "None.")
		return
	}
	tw := table(w)
	for i, e := range entries {
		measure := utils.FormatMoney(e.Outstanding)
		if by == analytics.BySubmissions {
			measure = fmt.Sprintf("%d", e.Submissions)
		}
		fmt.Fprintf(tw, "%d.\t%s\t%s\n", i+1, e.Label, measure)
	}
	tw.Flush()
}

func writePattern(w io.Writer, p analytics.WeekdayPattern, forecasts []analytics.Forecast) {
	section(w, "Weekday Pattern")
	if !p.Valid {
		fmt.Fprintln(w, "No payments in view.")
		return
	}
	fmt.Fprintf(w, "Window: %s to %s (%d days)\n", day(p.WindowStart), day(p.WindowEnd), p.WindowDays)
	tw := table(w)
	for d := time.Sunday; d <= time.Saturday; d++ {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.String()[:3], p.Counts[d], utils.FormatMoney(p.Amounts[d]))
	}
	tw.Flush()
	for _, f := range forecasts {
		fmt.Fprintf(w, "Forecast next %d days: %s\n", f.Days, utils.FormatMoney(f.Amount))
	}
}

func writeChart(w io.Writer, points []analytics.ChartPoint) {
	section(w, "Daily Submissions")
	if len(points) == 0 {
		fmt.Fprintln(w, "No submissions in view.")
		return
	}

	maxCount := 0
	for _, p := range points {
		if p.Submissions > maxCount {
			maxCount = p.Submissions
		}
	}

	tw := table(w)
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.Day, p.Submissions, utils.FormatMoney(p.Total), bar(p.Submissions, maxCount))
	}
	tw.Flush()
}

// bar scales n against max into at most barWidth cells.
func bar(n, max int) string {
	if n <= 0 || max <= 0 {
		return ""
	}
	width := n * barWidth / max
	if width == 0 {
		width = 1
	}
	return strings.Repeat("#", width)
}

func writeBottlenecks(w io.Writer, bs []analytics.Bottleneck) {
	section(w, "Bottlenecks")
	if len(bs) == 0 {
		fmt.Fprintln(w, "None.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "Project\tSector\tOpen\tRemaining\tAvg age")
	for _, b := range bs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.1f\n", b.Project, b.Sector, b.Outstanding, utils.FormatMoney(b.Remaining), b.AvgAgeDays)
	}
	tw.Flush()
}

func writeScheduled(w io.Writer, groups []analytics.ScheduledGroup) {
	if len(groups) == 0 {
		return
	}
	section(w, "Scheduled Payables")
	tw := table(w)
	fmt.Fprintln(tw, "Due\tVendor\tState\tGross\tRemaining")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.Day, g.Vendor, g.State, utils.FormatMoney(g.Gross), utils.FormatMoney(g.Remaining))
	}
	tw.Flush()
}

func writeQuality(w io.Writer, r *validation.Report) {
	section(w, "Data Quality")
	tw := table(w)
	fmt.Fprintln(tw, "\tAll\tFiltered")
	row := func(label string, all, filtered int) {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", label, all, filtered)
	}
	a, f := r.All, r.Filtered
	row("Rows", a.TotalRows, f.TotalRows)
	row("Included", a.Included, f.Included)
	row("Missing vendor", a.MissingVendor, f.MissingVendor)
	row("Missing project", a.MissingProject, f.MissingProject)
	row("Unparseable dates", a.UnparseableDates, f.UnparseableDates)
	row("Missing request date", a.MissingRequestDate, f.MissingRequestDate)
	row("Indeterminate status", a.Indeterminate, f.Indeterminate)
	row("Status anomalies", a.StatusAnomalies, f.StatusAnomalies)
	row("Missing submission time", a.MissingSubmissionTime, f.MissingSubmissionTime)
	tw.Flush()
	fmt.Fprintf(w, "Issues: %d errors, %d warnings\n", r.ErrorCount, r.WarningCount)
}
