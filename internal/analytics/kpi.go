// =============================================================================
// Payables Dashboard - Aggregation & Classification
// =============================================================================
//
// Every figure in this package is computed from a filtered slice of
// SubmissionGroups. Nothing is cached: a filter change recomputes everything
// from scratch.
//
// MONEY:
//   Sums are accumulated in decimal.Decimal and converted to float64 once,
//   so a figure does not depend on the order of its inputs.
//
// TIME:
//   Functions that need "today" take it as a parameter. The forecast does
//   not use today at all; it is anchored at the data's latest payment.
//
// =============================================================================

package analytics

import (
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/grouping"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

// Options holds the thresholds of the analytics computations.
type Options struct {
	TopN               int
	SLADays            int
	ChartDays          int
	ForecastWindowDays int
	ForecastHorizons   []int
	BottleneckLimit    int
	VendorPageSize     int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		TopN:               5,
		SLADays:            5,
		ChartDays:          15,
		ForecastWindowDays: 30,
		ForecastHorizons:   []int{7, 14},
		BottleneckLimit:    10,
		VendorPageSize:     25,
	}
}

// sum accumulates money exactly.
type sum struct {
	d decimal.Decimal
}

func (s *sum) add(f float64) {
	s.d = s.d.Add(decimal.NewFromFloat(f))
}

func (s sum) value() float64 {
	return s.d.InexactFloat64()
}

// =============================================================================
// EXECUTIVE KPIS
// =============================================================================

// KPIs are the headline tiles of the dashboard.
type KPIs struct {
	Gross     float64
	Paid      float64
	Remaining float64

	// UniqueSubmissions counts groups, never records.
	UniqueSubmissions int
	LineItems         int

	ActiveDays           int
	AvgSubmissionsPerDay float64

	PaidGroups        int
	OutstandingGroups int

	OverdueAmount float64
	OverdueCount  int

	// AsOf is the latest payment date in view, or the latest anchor day
	// when nothing was paid.
	AsOf    time.Time
	HasAsOf bool
}

// ComputeKPIs computes the headline tiles.
func ComputeKPIs(groups []types.SubmissionGroup, today time.Time) KPIs {
	var gross, paid, remaining, overdue sum
	days := make(map[string]bool)
	today = coerce.Day(today)

	k := KPIs{
		UniqueSubmissions: grouping.UniqueCount(groups),
		LineItems:         grouping.LineItemCount(groups),
	}

	for _, g := range groups {
		gross.add(g.Total)
		paid.add(g.Paid)
		remaining.add(g.Remaining)
		days[g.Day] = true

		if g.Status == types.StatusPaid {
			k.PaidGroups++
		}
		if g.Remaining > 0 {
			k.OutstandingGroups++
			if g.AnchorDate.Before(today) {
				k.OverdueCount++
				overdue.add(g.Remaining)
			}
		}
	}

	k.Gross = gross.value()
	k.Paid = paid.value()
	k.Remaining = remaining.value()
	k.OverdueAmount = overdue.value()
	k.ActiveDays = len(days)
	if k.ActiveDays > 0 {
		k.AvgSubmissionsPerDay = float64(k.UniqueSubmissions) / float64(k.ActiveDays)
	}
	k.AsOf, k.HasAsOf = AsOf(groups)

	return k
}

// AsOf returns the latest payment date among groups, falling back to the
// latest anchor day.
func AsOf(groups []types.SubmissionGroup) (time.Time, bool) {
	var latestPaid, latestAnchor time.Time
	for _, g := range groups {
		if g.HasPaidDate && g.PaidDate.After(latestPaid) {
			latestPaid = g.PaidDate
		}
		if g.AnchorDate.After(latestAnchor) {
			latestAnchor = g.AnchorDate
		}
	}
	if !latestPaid.IsZero() {
		return latestPaid, true
	}
	if !latestAnchor.IsZero() {
		return latestAnchor, true
	}
	return time.Time{}, false
}

// =============================================================================
// EXPOSURE
// =============================================================================

// Exposure is the outstanding amount segmented by group status.
type Exposure struct {
	Requested     float64
	Approved      float64
	Paid          float64
	Indeterminate float64
	Total         float64
}

// ComputeExposure sums remaining balances by status.
func ComputeExposure(groups []types.SubmissionGroup) Exposure {
	var req, appr, paid, ind, total sum
	for _, g := range groups {
		if g.Remaining <= 0 {
			continue
		}
		total.add(g.Remaining)
		switch g.Status {
		case types.StatusRequested:
			req.add(g.Remaining)
		case types.StatusApproved:
			appr.add(g.Remaining)
		case types.StatusPaid:
			paid.add(g.Remaining)
		default:
			ind.add(g.Remaining)
		}
	}
	return Exposure{
		Requested:     req.value(),
		Approved:      appr.value(),
		Paid:          paid.value(),
		Indeterminate: ind.value(),
		Total:         total.value(),
	}
}

// ByStatus returns the exposure of one status.
func (e Exposure) ByStatus(s types.Status) float64 {
	switch s {
	case types.StatusRequested:
		return e.Requested
	case types.StatusApproved:
		return e.Approved
	case types.StatusPaid:
		return e.Paid
	}
	return e.Indeterminate
}
