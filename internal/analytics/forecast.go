package analytics

import (
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/shopspring/decimal"
)

// WeekdayPattern buckets paid amounts by weekday of payment over a trailing
// window that ends at the most recent payment date in view.
type WeekdayPattern struct {
	// Amounts is indexed by time.Weekday.
	Amounts [7]float64
	Counts  [7]int

	WindowDays  int
	WindowStart time.Time
	WindowEnd   time.Time

	Total float64

	// Valid is false when no member in view has a payment date.
	Valid bool
}

// ComputeWeekdayPattern collects member payments within the window
// [latest - (windowDays-1), latest].
func ComputeWeekdayPattern(groups []types.SubmissionGroup, windowDays int) WeekdayPattern {
	p := WeekdayPattern{WindowDays: windowDays}
	if windowDays <= 0 {
		return p
	}

	var latest time.Time
	for _, g := range groups {
		for _, m := range g.Members {
			if m.PaymentDate.Valid && m.PaymentDate.Time.After(latest) {
				latest = m.PaymentDate.Time
			}
		}
	}
	if latest.IsZero() {
		return p
	}

	p.Valid = true
	p.WindowEnd = coerce.Day(latest)
	p.WindowStart = p.WindowEnd.AddDate(0, 0, -(windowDays - 1))

	var amounts [7]sum
	var total sum
	for _, g := range groups {
		for _, m := range g.Members {
			if !m.PaymentDate.Valid || m.AmountPaid <= 0 {
				continue
			}
			d := m.PaymentDate.Time
			if d.Before(p.WindowStart) || d.After(p.WindowEnd) {
				continue
			}
			wd := d.Weekday()
			amounts[wd].add(m.AmountPaid)
			p.Counts[wd]++
			total.add(m.AmountPaid)
		}
	}

	for i := range amounts {
		p.Amounts[i] = amounts[i].value()
	}
	p.Total = total.value()
	return p
}

// Forecast is a moving-average projection for the next Days days.
type Forecast struct {
	Days   int
	Amount float64
}

// ComputeForecast projects (window sum / window days) x N for each horizon.
// This is a flat moving average; it has no seasonality.
func ComputeForecast(p WeekdayPattern, horizons []int) []Forecast {
	out := make([]Forecast, 0, len(horizons))
	if !p.Valid || p.WindowDays <= 0 {
		return out
	}

	daily := decimal.NewFromFloat(p.Total).Div(decimal.NewFromInt(int64(p.WindowDays)))
	for _, n := range horizons {
		out = append(out, Forecast{
			Days:   n,
			Amount: daily.Mul(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64(),
		})
	}
	return out
}
