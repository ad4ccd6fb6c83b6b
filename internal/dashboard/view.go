package dashboard

import (
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/filter"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/ginjaninja78/payables-dashboard/internal/validation"
)

// =============================================================================
// VIEW MODEL
// =============================================================================

// Meta describes the view itself.
type Meta struct {
	RunID  string
	Source string

	// Filter is the human-readable description of the criteria.
	Filter string

	Today time.Time

	// AsOf is the latest payment date in view, else the latest anchor date.
	AsOf    time.Time
	HasAsOf bool
}

// Rankings are the Top-N lists.
type Rankings struct {
	VendorsByOutstanding  []analytics.RankEntry
	VendorsBySubmissions  []analytics.RankEntry
	ProjectsByOutstanding []analytics.RankEntry
	ProjectsBySubmissions []analytics.RankEntry
}

// View is the plain-data view model of one filtered dashboard state.
type View struct {
	Meta Meta

	KPIs     analytics.KPIs
	Exposure analytics.Exposure
	Aging    analytics.Aging
	SLA      analytics.SLA
	Rankings Rankings

	Pattern   analytics.WeekdayPattern
	Forecasts []analytics.Forecast
	Chart     []analytics.ChartPoint

	Bottlenecks []analytics.Bottleneck
	Vendors     []analytics.VendorRow
	DayTable    []analytics.DayRow
	Scheduled   []analytics.ScheduledGroup

	Quality *validation.Report

	// Groups and Records are the filtered data the figures were computed
	// from. Records keeps excluded rows.
	Groups  []types.SubmissionGroup
	Records []types.Record
}

// Build filters the dataset and computes every figure of the view.
//
// PARAMETERS:
//   - ds: the loaded dataset. It is not modified.
//   - criteria: the user's filter. The zero value shows everything.
//   - today: the reference day for aging and overdue.
//   - opts: analytics thresholds.
//
// RETURNS:
//   - The view. Build never fails; empty data yields zero figures.
func Build(ds *Dataset, criteria filter.Criteria, today time.Time, opts analytics.Options) *View {
	today = coerce.Day(today)

	records := filter.Records(ds.Records, criteria)
	groups := filter.Groups(ds.Groups, criteria)

	v := &View{
		Meta: Meta{
			RunID:  ds.RunID,
			Source: ds.Source,
			Filter: criteria.Describe(ds.Labels),
			Today:  today,
		},
		Groups:  groups,
		Records: records,
	}
	v.Meta.AsOf, v.Meta.HasAsOf = analytics.AsOf(groups)

	v.KPIs = analytics.ComputeKPIs(groups, today)
	v.Exposure = analytics.ComputeExposure(groups)
	v.Aging = analytics.ComputeAging(groups, today)
	v.SLA = analytics.ComputeSLA(groups, opts.SLADays)

	v.Rankings = Rankings{
		VendorsByOutstanding:  analytics.TopVendors(groups, analytics.ByOutstanding, opts.TopN),
		VendorsBySubmissions:  analytics.TopVendors(groups, analytics.BySubmissions, opts.TopN),
		ProjectsByOutstanding: analytics.TopProjects(groups, analytics.ByOutstanding, opts.TopN),
		ProjectsBySubmissions: analytics.TopProjects(groups, analytics.BySubmissions, opts.TopN),
	}

	v.Pattern = analytics.ComputeWeekdayPattern(groups, opts.ForecastWindowDays)
	v.Forecasts = analytics.ComputeForecast(v.Pattern, opts.ForecastHorizons)
	v.Chart = analytics.ComputeChart(groups, opts.ChartDays)

	asOf := today
	if v.Meta.HasAsOf {
		asOf = v.Meta.AsOf
	}
	v.Bottlenecks = analytics.ComputeBottlenecks(groups, asOf, opts.BottleneckLimit)
	v.Vendors = analytics.ComputeVendorSummary(groups)
	v.DayTable = analytics.ComputeDayTable(groups)
	v.Scheduled = analytics.ComputeScheduled(v.IncludedRecords(), today)

	v.Quality = validation.NewValidator(validation.Options{}).Validate(ds.Records, criteria)

	return v
}

// IncludedRecords returns the filtered records that feed financial figures,
// without the excluded rows Records keeps for quality counts.
func (v *View) IncludedRecords() []types.Record {
	out := make([]types.Record, 0, len(v.Records))
	for _, r := range v.Records {
		if !r.Excluded {
			out = append(out, r)
		}
	}
	return out
}
