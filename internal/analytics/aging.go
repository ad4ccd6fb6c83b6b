package analytics

import (
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// AgingBucket is one band of days until due.
type AgingBucket struct {
	Label string

	// MinDays and MaxDays are inclusive. MaxDays < 0 means unbounded.
	MinDays int
	MaxDays int

	Count  int
	Amount float64
}

// Aging holds the pending buckets plus the overdue total, which is never
// folded into a bucket.
type Aging struct {
	Buckets []AgingBucket
	Overdue AgingBucket
}

func newBuckets() []AgingBucket {
	return []AgingBucket{
		{Label: "0-7", MinDays: 0, MaxDays: 7},
		{Label: "8-14", MinDays: 8, MaxDays: 14},
		{Label: "15-30", MinDays: 15, MaxDays: 30},
		{Label: ">30", MinDays: 31, MaxDays: -1},
	}
}

// ComputeAging buckets groups with an outstanding balance by days until
// their anchor date, ceil((anchor - today) / 1 day). Groups whose anchor date
// is before today are overdue.
func ComputeAging(groups []types.SubmissionGroup, today time.Time) Aging {
	a := Aging{
		Buckets: newBuckets(),
		Overdue: AgingBucket{Label: "overdue", MinDays: -1, MaxDays: -1},
	}
	amounts := make([]sum, len(a.Buckets))
	var overdue sum
	today = coerce.Day(today)

	for _, g := range groups {
		if g.Remaining <= 0 || g.AnchorDate.IsZero() {
			continue
		}
		if g.AnchorDate.Before(today) {
			a.Overdue.Count++
			overdue.add(g.Remaining)
			continue
		}

		days := coerce.DaysUntil(today, g.AnchorDate)
		for i := range a.Buckets {
			b := &a.Buckets[i]
			if days >= b.MinDays && (b.MaxDays < 0 || days <= b.MaxDays) {
				b.Count++
				amounts[i].add(g.Remaining)
				break
			}
		}
	}

	for i := range a.Buckets {
		a.Buckets[i].Amount = amounts[i].value()
	}
	a.Overdue.Amount = overdue.value()
	return a
}
