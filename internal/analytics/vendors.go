package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/textnorm"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// VendorRow is one line of the all-vendors summary.
type VendorRow struct {
	Key    string
	Vendor string
	Code   string
	Serial string

	Submissions int
	LineItems   int

	Gross     float64
	Paid      float64
	Remaining float64

	FirstDate time.Time
	LastDate  time.Time
}

// ComputeVendorSummary aggregates member line items per vendor. Code and
// serial come from the first member that has one. Rows are sorted by
// remaining balance, descending, ties in first-encountered order.
func ComputeVendorSummary(groups []types.SubmissionGroup) []VendorRow {
	type acc struct {
		row                    VendorRow
		gross, paid, remaining sum
		groups                 map[string]bool
	}
	accs := make(map[string]*acc)
	order := []string{}

	for _, g := range groups {
		for _, m := range g.Members {
			if m.Vendor == "" {
				continue
			}
			key := textnorm.FoldKey(m.Vendor)
			a, ok := accs[key]
			if !ok {
				a = &acc{row: VendorRow{Key: key, Vendor: m.Vendor}, groups: make(map[string]bool)}
				accs[key] = a
				order = append(order, key)
			}

			a.row.LineItems++
			a.groups[g.Key] = true
			a.gross.add(m.EffectiveTotal)
			a.paid.add(m.AmountPaid)
			a.remaining.add(m.Remaining)
			if a.row.Code == "" {
				a.row.Code = m.Code
			}
			if a.row.Serial == "" {
				a.row.Serial = m.Serial
			}

			if a.row.FirstDate.IsZero() || g.AnchorDate.Before(a.row.FirstDate) {
				a.row.FirstDate = g.AnchorDate
			}
			if g.AnchorDate.After(a.row.LastDate) {
				a.row.LastDate = g.AnchorDate
			}
		}
	}

	out := make([]VendorRow, 0, len(order))
	for _, key := range order {
		a := accs[key]
		a.row.Submissions = len(a.groups)
		a.row.Gross = a.gross.value()
		a.row.Paid = a.paid.value()
		a.row.Remaining = a.remaining.value()
		out = append(out, a.row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Remaining > out[j].Remaining
	})
	return out
}

// SearchVendors keeps rows whose vendor, code or serial contains query after
// folding. An empty query returns rows unchanged.
func SearchVendors(rows []VendorRow, query string) []VendorRow {
	q := textnorm.FoldKey(query)
	if q == "" {
		return rows
	}
	out := []VendorRow{}
	for _, r := range rows {
		if strings.Contains(r.Key, q) ||
			strings.Contains(textnorm.FoldKey(r.Code), q) ||
			strings.Contains(textnorm.FoldKey(r.Serial), q) {
			out = append(out, r)
		}
	}
	return out
}

// Page returns the 1-based page of rows and the number of pages. Out of range
// pages are clamped.
func Page(rows []VendorRow, page, size int) ([]VendorRow, int) {
	if size <= 0 {
		return rows, 1
	}
	pages := (len(rows) + size - 1) / size
	if pages == 0 {
		return rows, 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], pages
}
