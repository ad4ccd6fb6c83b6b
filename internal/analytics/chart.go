package analytics

import (
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// ChartPoint is one bar of the daily chart.
type ChartPoint struct {
	Day         string
	Date        time.Time
	Submissions int
	Total       float64
}

// ComputeChart returns one point per calendar day for the last `days` days
// ending at the latest anchor day in view. Days without submissions are
// present with zero values.
func ComputeChart(groups []types.SubmissionGroup, days int) []ChartPoint {
	if days <= 0 {
		return nil
	}

	var latest time.Time
	for _, g := range groups {
		if g.AnchorDate.After(latest) {
			latest = g.AnchorDate
		}
	}
	if latest.IsZero() {
		return nil
	}

	start := latest.AddDate(0, 0, -(days - 1))
	points := make([]ChartPoint, days)
	totals := make([]sum, days)
	index := make(map[string]int, days)
	for i := range points {
		d := start.AddDate(0, 0, i)
		points[i] = ChartPoint{Day: d.Format(types.DayLayout), Date: d}
		index[points[i].Day] = i
	}

	for _, g := range groups {
		i, ok := index[g.Day]
		if !ok {
			continue
		}
		points[i].Submissions++
		totals[i].add(g.Total)
	}
	for i := range points {
		points[i].Total = totals[i].value()
	}
	return points
}

// GroupsOnDay returns the groups anchored on day, in input order.
func GroupsOnDay(groups []types.SubmissionGroup, day string) []types.SubmissionGroup {
	out := []types.SubmissionGroup{}
	for _, g := range groups {
		if g.Day == day {
			out = append(out, g)
		}
	}
	return out
}
