// =============================================================================
// Payables Dashboard - Filter Engine
// =============================================================================
//
// One predicate vocabulary, two granularities:
//
//   Records(...) - record-level pass, used for data-quality counts
//   Groups(...)  - group-level pass, used for every KPI and detail table
//
// A group is judged on its own sector, project, status and anchor day, never
// on an individual member. An empty facet is not a predicate at all: it does
// not match against the empty string, it is skipped.
//
// DATE RANGE:
//   From and To are inclusive calendar days. To is widened to the end of its
//   day before comparing.
//
// =============================================================================

package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// Criteria is a set of user-selected predicates. Zero fields are no-ops.
type Criteria struct {
	SectorKey  string
	ProjectKey string

	// Status is one of the determinate statuses. StatusIndeterminate means
	// "any status".
	Status types.Status

	From time.Time
	To   time.Time
}

// New builds Criteria from user text: sector and project labels or keys are
// folded into keys, status accepts "1".."3" or its label and dates accept the
// formats of coerce.ParseUserDate.
func New(sector, project, status, from, to string) (Criteria, error) {
	c := Criteria{
		SectorKey:  textnorm.FoldKey(sector),
		ProjectKey: textnorm.FoldKey(project),
	}

	if s := strings.TrimSpace(status); s != "" {
		parsed, ok := types.ParseStatus(strings.ToLower(s))
		if !ok {
			return Criteria{}, fmt.Errorf("invalid status %q: expected 1, 2, 3, requested, approved or paid", status)
		}
		c.Status = parsed
	}

	if s := strings.TrimSpace(from); s != "" {
		t, ok := coerce.ParseUserDate(s)
		if !ok {
			return Criteria{}, fmt.Errorf("invalid from date %q", from)
		}
		c.From = t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, ok := coerce.ParseUserDate(s)
		if !ok {
			return Criteria{}, fmt.Errorf("invalid to date %q", to)
		}
		c.To = t
	}

	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return Criteria{}, fmt.Errorf("date range is inverted: %s > %s",
			c.From.Format(types.DayLayout), c.To.Format(types.DayLayout))
	}

	return c, nil
}

// IsZero reports whether no facet is selected.
func (c Criteria) IsZero() bool {
	return c.SectorKey == "" && c.ProjectKey == "" && c.Status == types.StatusIndeterminate &&
		c.From.IsZero() && c.To.IsZero()
}

// HasDateRange reports whether either bound is set.
func (c Criteria) HasDateRange() bool {
	return !c.From.IsZero() || !c.To.IsZero()
}

// Describe renders the active facets for headings, using display labels.
func (c Criteria) Describe(labels types.LabelIndex) string {
	if c.IsZero() {
		return "all data"
	}

	parts := []string{}
	if c.SectorKey != "" {
		parts = append(parts, "sector="+labels.Sector(c.SectorKey))
	}
	if c.ProjectKey != "" {
		parts = append(parts, "project="+labels.Project(c.ProjectKey))
	}
	if c.Status != types.StatusIndeterminate {
		parts = append(parts, "status="+c.Status.Label())
	}
	if !c.From.IsZero() {
		parts = append(parts, "from="+c.From.Format(types.DayLayout))
	}
	if !c.To.IsZero() {
		parts = append(parts, "to="+c.To.Format(types.DayLayout))
	}
	return strings.Join(parts, ", ")
}

// match applies the predicate vocabulary to one subject.
func (c Criteria) match(sectorKey, projectKey string, status types.Status, anchor time.Time, hasAnchor bool) bool {
	if c.SectorKey != "" && sectorKey != c.SectorKey {
		return false
	}
	if c.ProjectKey != "" && projectKey != c.ProjectKey {
		return false
	}
	if c.Status != types.StatusIndeterminate && status != c.Status {
		return false
	}
	if c.HasDateRange() {
		if !hasAnchor {
			return false
		}
		if !c.From.IsZero() && anchor.Before(coerce.Day(c.From)) {
			return false
		}
		if !c.To.IsZero() && anchor.After(coerce.EndOfDay(c.To)) {
			return false
		}
	}
	return true
}

// MatchRecord reports whether a record satisfies the criteria.
func (c Criteria) MatchRecord(r types.Record) bool {
	return c.match(r.SectorKey, r.ProjectKey, r.Status, r.AnchorDate.Time, r.AnchorDate.Valid)
}

// MatchGroup reports whether a group satisfies the criteria.
func (c Criteria) MatchGroup(g types.SubmissionGroup) bool {
	return c.match(g.SectorKey, g.ProjectKey, g.Status, g.AnchorDate, !g.AnchorDate.IsZero())
}

// Records returns the records that satisfy the criteria, in input order.
// Excluded records are kept: the record pass feeds data-quality counts.
func Records(records []types.Record, c Criteria) []types.Record {
	if c.IsZero() {
		return records
	}
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if c.MatchRecord(r) {
			out = append(out, r)
		}
	}
	return out
}

// Groups returns the groups that satisfy the criteria, in input order.
func Groups(groups []types.SubmissionGroup, c Criteria) []types.SubmissionGroup {
	if c.IsZero() {
		return groups
	}
	out := make([]types.SubmissionGroup, 0, len(groups))
	for _, g := range groups {
		if c.MatchGroup(g) {
			out = append(out, g)
		}
	}
	return out
}
