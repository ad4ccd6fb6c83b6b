package analytics

import (
	"sort"

	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// RankBy selects the ranking measure.
type RankBy int

const (
	// ByOutstanding ranks by remaining balance.
	ByOutstanding RankBy = iota

	// BySubmissions ranks by the number of distinct submissions.
	BySubmissions
)

// RankEntry is one row of a Top-N list.
type RankEntry struct {
	Key         string
	Label       string
	Outstanding float64
	Submissions int
}

type rankAcc struct {
	key, label  string
	outstanding sum
	groups      map[string]bool
}

// tally collects entries in first-encountered order.
type tally struct {
	entries map[string]*rankAcc
	order   []string
}

func newTally() *tally {
	return &tally{entries: make(map[string]*rankAcc)}
}

func (t *tally) get(key, label string) *rankAcc {
	e, ok := t.entries[key]
	if !ok {
		e = &rankAcc{key: key, label: label, groups: make(map[string]bool)}
		t.entries[key] = e
		t.order = append(t.order, key)
	}
	return e
}

// rank finalizes entries, drops entries with a zero measure and sorts
// descending. The sort is stable: ties keep first-encountered order.
func (t *tally) rank(by RankBy, n int) []RankEntry {
	out := make([]RankEntry, 0, len(t.order))
	for _, key := range t.order {
		acc := t.entries[key]
		e := RankEntry{
			Key:         acc.key,
			Label:       acc.label,
			Outstanding: acc.outstanding.value(),
			Submissions: len(acc.groups),
		}
		if by == ByOutstanding && e.Outstanding <= 0 {
			continue
		}
		if by == BySubmissions && e.Submissions == 0 {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if by == BySubmissions {
			return out[i].Submissions > out[j].Submissions
		}
		return out[i].Outstanding > out[j].Outstanding
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopVendors ranks vendors over the member line items of groups. A vendor's
// submission count is the number of distinct groups it appears in.
func TopVendors(groups []types.SubmissionGroup, by RankBy, n int) []RankEntry {
	t := newTally()
	for _, g := range groups {
		for _, m := range g.Members {
			if m.Vendor == "" {
				continue
			}
			e := t.get(textnorm.FoldKey(m.Vendor), m.Vendor)
			e.outstanding.add(m.Remaining)
			e.groups[g.Key] = true
		}
	}
	return t.rank(by, n)
}

// TopProjects ranks projects by their groups.
func TopProjects(groups []types.SubmissionGroup, by RankBy, n int) []RankEntry {
	t := newTally()
	for _, g := range groups {
		e := t.get(g.ProjectKey, g.Project)
		e.outstanding.add(g.Remaining)
		e.groups[g.Key] = true
	}
	return t.rank(by, n)
}
