package analytics

import (
	"math"

	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// SLA is the on-time payment ratio weighted by paid amount.
type SLA struct {
	Days int

	// Groups counts groups with both an anchor and a paid date.
	Groups int
	OnTime int

	OnTimePaid float64
	TotalPaid  float64

	// Ratio is OnTimePaid / TotalPaid; Valid is false when TotalPaid is 0.
	Ratio float64
	Valid bool
}

// ComputeSLA measures, among groups with both an anchor date and a paid
// date, the share of paid amount whose payment landed within [0, days] days
// of the anchor.
func ComputeSLA(groups []types.SubmissionGroup, days int) SLA {
	s := SLA{Days: days}
	var onTime, total sum

	for _, g := range groups {
		if g.AnchorDate.IsZero() || !g.HasPaidDate {
			continue
		}
		s.Groups++
		total.add(g.Paid)

		elapsed := int(math.Round(g.PaidDate.Sub(g.AnchorDate).Hours() / 24))
		if elapsed >= 0 && elapsed <= days {
			s.OnTime++
			onTime.add(g.Paid)
		}
	}

	s.OnTimePaid = onTime.value()
	s.TotalPaid = total.value()
	if !total.d.IsZero() {
		s.Ratio = onTime.d.Div(total.d).InexactFloat64()
		s.Valid = true
	}
	return s
}
