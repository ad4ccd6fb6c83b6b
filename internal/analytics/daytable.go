package analytics

import (
	"sort"

	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// DayRow is one (day, sector, project) line of the summary table.
type DayRow struct {
	Day        string
	SectorKey  string
	ProjectKey string
	Sector     string
	Project    string

	Submissions int
	LineItems   int
	Total       float64
	Paid        float64
	Remaining   float64
}

// ComputeDayTable summarizes groups per day, sector and project, newest day
// first, then by sector and project label.
func ComputeDayTable(groups []types.SubmissionGroup) []DayRow {
	type acc struct {
		row                    DayRow
		total, paid, remaining sum
	}
	accs := make(map[string]*acc)
	order := []string{}

	for _, g := range groups {
		key := g.Day + "||" + g.SectorKey + "||" + g.ProjectKey
		a, ok := accs[key]
		if !ok {
			a = &acc{row: DayRow{
				Day:        g.Day,
				SectorKey:  g.SectorKey,
				ProjectKey: g.ProjectKey,
				Sector:     g.Sector,
				Project:    g.Project,
			}}
			accs[key] = a
			order = append(order, key)
		}
		a.row.Submissions++
		a.row.LineItems += g.LineItems()
		a.total.add(g.Total)
		a.paid.add(g.Paid)
		a.remaining.add(g.Remaining)
	}

	out := make([]DayRow, 0, len(order))
	for _, key := range order {
		a := accs[key]
		a.row.Total = a.total.value()
		a.row.Paid = a.paid.value()
		a.row.Remaining = a.remaining.value()
		out = append(out, a.row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day > out[j].Day
		}
		if out[i].Sector != out[j].Sector {
			return out[i].Sector < out[j].Sector
		}
		return out[i].Project < out[j].Project
	})
	return out
}

// ProjectsOnDay returns the (sector, project) rows of one day.
func ProjectsOnDay(rows []DayRow, day string) []DayRow {
	out := []DayRow{}
	for _, r := range rows {
		if r.Day == day {
			out = append(out, r)
		}
	}
	return out
}
