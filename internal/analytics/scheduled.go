package analytics

import (
	"strings"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// scheduledMarker identifies scheduled payables in the request id column.
const scheduledMarker = "مستحقات"

// ScheduleState classifies a scheduled payable against today.
type ScheduleState string

const (
	ScheduleSettled  ScheduleState = "settled"
	ScheduleOverdue  ScheduleState = "overdue"
	ScheduleUpcoming ScheduleState = "upcoming"
)

// IsScheduled reports whether a record is a scheduled payable.
func IsScheduled(r types.Record) bool {
	return strings.Contains(textnorm.FoldKey(r.RequestID), textnorm.FoldKey(scheduledMarker))
}

// ScheduledGroup is every scheduled line of one vendor due on one day.
type ScheduledGroup struct {
	Key       string
	Vendor    string
	Due       time.Time
	Day       string
	Gross     float64
	Paid      float64
	Remaining float64
	State     ScheduleState
	Lines     []types.Record
}

// ComputeScheduled groups scheduled payables by vendor and due date, the
// due date being the source request date. Records without a vendor or a due
// date are skipped. Groups come out in first-occurrence order.
func ComputeScheduled(records []types.Record, today time.Time) []ScheduledGroup {
	type acc struct {
		g                      ScheduledGroup
		gross, paid, remaining sum
	}
	accs := make(map[string]*acc)
	order := []string{}
	today = coerce.Day(today)

	for _, r := range records {
		if r.Excluded || !IsScheduled(r) || !r.SourceRequestDate.Valid {
			continue
		}
		day := r.SourceRequestDate.Day()
		key := textnorm.FoldKey(r.Vendor) + "||" + day
		a, ok := accs[key]
		if !ok {
			a = &acc{g: ScheduledGroup{Key: key, Vendor: r.Vendor, Due: r.SourceRequestDate.Time, Day: day}}
			accs[key] = a
			order = append(order, key)
		}
		a.g.Lines = append(a.g.Lines, r)
		a.gross.add(r.EffectiveTotal)
		a.paid.add(r.AmountPaid)
		a.remaining.add(r.Remaining)
	}

	out := make([]ScheduledGroup, 0, len(order))
	for _, key := range order {
		a := accs[key]
		a.g.Gross = a.gross.value()
		a.g.Paid = a.paid.value()
		a.g.Remaining = a.remaining.value()
		a.g.State = scheduleState(a.g.Remaining, a.g.Due, today)
		out = append(out, a.g)
	}
	return out
}

func scheduleState(remaining float64, due, today time.Time) ScheduleState {
	if remaining <= 0 {
		return ScheduleSettled
	}
	if due.Before(today) {
		return ScheduleOverdue
	}
	return ScheduleUpcoming
}
