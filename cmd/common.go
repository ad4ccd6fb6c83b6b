package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/coerce"
	"github.com/ginjaninja78/payables-dashboard/internal/dashboard"
	"github.com/ginjaninja78/payables-dashboard/internal/filter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// SHARED FLAGS
// =============================================================================

// viewFlags are the source overrides, filter facets and reference day shared
// by every command that builds a dashboard view.
type viewFlags struct {
	url  string
	file string

	sector  string
	project string
	status  string
	from    string
	to      string

	today string
}

// addViewFlags registers the shared flags on cmd.
func addViewFlags(cmd *cobra.Command, f *viewFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.url, "url", "", "Published CSV URL (overrides source.url)")
	flags.StringVar(&f.file, "file", "", "Local .csv or .xlsx snapshot (overrides source.file)")
	flags.StringVar(&f.sector, "sector", "", "Only this sector")
	flags.StringVar(&f.project, "project", "", "Only this project")
	flags.StringVar(&f.status, "status", "", "Only this status: 1|requested, 2|approved, 3|paid")
	flags.StringVar(&f.from, "from", "", "First anchor day, D/M/YYYY or YYYY-MM-DD")
	flags.StringVar(&f.to, "to", "", "Last anchor day, inclusive")
	flags.StringVar(&f.today, "today", "", "Reference day for aging and overdue (default: today)")
}

// criteria parses the filter facets.
func (f *viewFlags) criteria() (filter.Criteria, error) {
	c, err := filter.New(f.sector, f.project, f.status, f.from, f.to)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("invalid filter: %w", err)
	}
	return c, nil
}

// referenceDay parses --today, defaulting to the local calendar day.
func (f *viewFlags) referenceDay() (time.Time, error) {
	if f.today == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, ok := coerce.ParseUserDate(f.today)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --today %q", f.today)
	}
	return t, nil
}

// =============================================================================
// PIPELINE
// =============================================================================

// loadView runs the pipeline and builds the filtered view.
//
// RETURNS:
//   - The loaded dataset and the view built from it.
//   - An error for bad flags or a failed fetch. Malformed data never fails.
func loadView(ctx context.Context, f *viewFlags) (*dashboard.Dataset, *dashboard.View, error) {
	criteria, err := f.criteria()
	if err != nil {
		return nil, nil, err
	}
	today, err := f.referenceDay()
	if err != nil {
		return nil, nil, err
	}

	if f.url != "" {
		mainConfig.Source.URL = f.url
	}
	if f.file != "" {
		mainConfig.Source.URL = ""
		mainConfig.Source.File = f.file
	}

	pipeline, err := dashboard.New(mainConfig, logger)
	if err != nil {
		return nil, nil, err
	}

	ds, err := pipeline.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	view := dashboard.Build(ds, criteria, today, pipeline.AnalyticsOptions())
	logger.Debug("view built",
		zap.String("filter", view.Meta.Filter),
		zap.Int("groups", len(view.Groups)),
		zap.Int("records", len(view.Records)),
	)
	return ds, view, nil
}
