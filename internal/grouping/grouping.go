// =============================================================================
// Payables Dashboard - Grouping Engine
// =============================================================================
//
// Collapses line-item Records into submissions ("emails"). A submission is
// every record sharing (sectorKey, projectKey, submissionTime, day), where day
// is the record's anchor date. Records of the same vendor with different
// codes or amounts are separate line items of the same submission and are
// summed, never deduplicated.
//
// ELIGIBILITY:
//   Excluded records, records without a submission time and records without
//   a parseable anchor date cannot belong to any submission and are skipped.
//
// COUNTING:
//   The unique submission count is the number of groups, not the number of
//   records.
//
// =============================================================================

package grouping

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

// KeySeparator joins the components of a group key.
const KeySeparator = "||"

// Key builds the stable handle of a submission.
func Key(sectorKey, projectKey, submissionTime, day string) string {
	return strings.Join([]string{sectorKey, projectKey, TimeKey(submissionTime), day}, KeySeparator)
}

// TimeKey folds a submission time label for identity ("11:18 am" and
// "11:18 AM" are the same submission).
func TimeKey(submissionTime string) string {
	return textnorm.FoldKey(submissionTime)
}

// RecordKey returns the group key of a record, or "" if it is not eligible.
func RecordKey(r types.Record) string {
	if !Eligible(r) {
		return ""
	}
	return Key(r.SectorKey, r.ProjectKey, r.SubmissionTime, r.AnchorDate.Day())
}

// Eligible reports whether a record can belong to a submission.
func Eligible(r types.Record) bool {
	return !r.Excluded && r.SubmissionTime != "" && r.AnchorDate.Valid
}

// accumulator holds exact running sums for one group.
type accumulator struct {
	group     types.SubmissionGroup
	total     decimal.Decimal
	paid      decimal.Decimal
	remaining decimal.Decimal
	vendors   map[string]bool
}

// Group partitions records into submissions.
//
// PARAMETERS:
//   - records: normalized records in sheet order.
//   - labels: display labels for the sector and project keys.
//
// RETURNS:
//   - One group per distinct key, in order of first occurrence. Members keep
//     their input order. Totals are exact sums of member fields, so the
//     result does not depend on record order.
func Group(records []types.Record, labels types.LabelIndex) []types.SubmissionGroup {
	accs := make(map[string]*accumulator)
	order := []string{}

	for _, r := range records {
		key := RecordKey(r)
		if key == "" {
			continue
		}

		acc, exists := accs[key]
		if !exists {
			acc = &accumulator{
				group: types.SubmissionGroup{
					Key:            key,
					SectorKey:      r.SectorKey,
					ProjectKey:     r.ProjectKey,
					Sector:         labelOr(labels.Sector(r.SectorKey), r.SectorKey, r.Sector),
					Project:        labelOr(labels.Project(r.ProjectKey), r.ProjectKey, r.Project),
					SubmissionTime: r.SubmissionTime,
					Day:            r.AnchorDate.Day(),
					AnchorDate:     r.AnchorDate.Time,
				},
				vendors: make(map[string]bool),
			}
			accs[key] = acc
			order = append(order, key)
		}

		acc.add(r)
	}

	groups := make([]types.SubmissionGroup, len(order))
	for i, key := range order {
		groups[i] = accs[key].finish()
	}
	return groups
}

// labelOr prefers the label index entry; an unknown key comes back from the
// index unchanged, in which case the member's own label is used.
func labelOr(indexed, key, own string) string {
	if indexed != key || own == "" {
		return indexed
	}
	return own
}

func (a *accumulator) add(r types.Record) {
	a.group.Members = append(a.group.Members, r)

	a.total = a.total.Add(decimal.NewFromFloat(r.EffectiveTotal))
	a.paid = a.paid.Add(decimal.NewFromFloat(r.AmountPaid))
	a.remaining = a.remaining.Add(decimal.NewFromFloat(r.Remaining))

	if r.Vendor != "" {
		vk := textnorm.FoldKey(r.Vendor)
		if !a.vendors[vk] {
			a.vendors[vk] = true
			a.group.Vendors = append(a.group.Vendors, r.Vendor)
		}
	}

	if r.PaymentDate.Valid && (!a.group.HasPaidDate || r.PaymentDate.Time.After(a.group.PaidDate)) {
		a.group.PaidDate = r.PaymentDate.Time
		a.group.HasPaidDate = true
	}
}

func (a *accumulator) finish() types.SubmissionGroup {
	g := a.group
	g.Total = a.total.InexactFloat64()
	g.Paid = a.paid.InexactFloat64()
	g.Remaining = a.remaining.InexactFloat64()
	g.Status = GroupStatus(g.Members)
	return g
}

// statusRank orders determinate statuses by lifecycle progress.
var statusRank = map[types.Status]int{
	types.StatusRequested: 1,
	types.StatusApproved:  2,
	types.StatusPaid:      3,
}

// GroupStatus returns the least advanced determinate status among members: a
// submission is paid only when every determinate line is paid. Members with
// an indeterminate status are ignored; if all are indeterminate the group is
// too.
func GroupStatus(members []types.Record) types.Status {
	best := types.StatusIndeterminate
	for _, m := range members {
		rank, ok := statusRank[m.Status]
		if !ok {
			continue
		}
		if best == types.StatusIndeterminate || rank < statusRank[best] {
			best = m.Status
		}
	}
	return best
}

// UniqueCount returns the number of distinct submissions.
func UniqueCount(groups []types.SubmissionGroup) int {
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		seen[g.Key] = true
	}
	return len(seen)
}

// LineItemCount returns the number of member records across groups.
func LineItemCount(groups []types.SubmissionGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Members)
	}
	return n
}

// Sort orders groups by day, then sector, project and submission time. The
// sort is stable so equal groups keep their first-occurrence order.
func Sort(groups []types.SubmissionGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Sector != b.Sector {
			return a.Sector < b.Sector
		}
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		return a.SubmissionTime < b.SubmissionTime
	})
}

// Find returns the group with the given key.
func Find(groups []types.SubmissionGroup, key string) (types.SubmissionGroup, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return types.SubmissionGroup{}, false
}
