package analytics

import (
	"sort"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// Bottleneck summarizes the outstanding submissions of one project.
type Bottleneck struct {
	ProjectKey string
	Project    string
	Sector     string

	Outstanding int
	Remaining   float64

	// AvgAgeDays is the mean of (asOf - anchor) in days over the outstanding
	// groups, floored at zero per group.
	AvgAgeDays float64
}

// ComputeBottlenecks ranks projects by remaining balance of their
// outstanding groups. Ties keep first-encountered order.
func ComputeBottlenecks(groups []types.SubmissionGroup, asOf time.Time, limit int) []Bottleneck {
	type acc struct {
		b         Bottleneck
		remaining sum
		ageDays   int
	}
	accs := make(map[string]*acc)
	order := []string{}
	asOf = coerce.Day(asOf)

	for _, g := range groups {
		if g.Remaining <= 0 {
			continue
		}
		a, ok := accs[g.ProjectKey]
		if !ok {
			a = &acc{b: Bottleneck{ProjectKey: g.ProjectKey, Project: g.Project, Sector: g.Sector}}
			accs[g.ProjectKey] = a
			order = append(order, g.ProjectKey)
		}
		a.b.Outstanding++
		a.remaining.add(g.Remaining)
		if age := coerce.DaysUntil(g.AnchorDate, asOf); age > 0 && !g.AnchorDate.IsZero() {
			a.ageDays += age
		}
	}

	out := make([]Bottleneck, 0, len(order))
	for _, key := range order {
		a := accs[key]
		a.b.Remaining = a.remaining.value()
		a.b.AvgAgeDays = float64(a.ageDays) / float64(a.b.Outstanding)
		out = append(out, a.b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Remaining > out[j].Remaining
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
