// =============================================================================
// Payables Dashboard - Pipeline Module
// =============================================================================
//
// This module orchestrates one dashboard run, from the published snapshot to
// the plain-data view model every presentation layer (report, export, TUI)
// reads.
//
// PIPELINE:
//   1. Load the snapshot (URL or local file)
//   2. Resolve headers against the alias table
//   3. Normalize every row into a Record (excluded rows kept for metrics)
//   4. Fold label deltas into the LabelIndex
//   5. Group included records into submissions
//   --- Load stops here; the result is a Dataset ---
//   6. Filter records and groups with the user's criteria
//   7. Measure data quality over all records and the filtered records
//   8. Compute every aggregate from the filtered groups
//   --- Build stops here; the result is a View ---
//
// A filter change only repeats steps 6-8 on the same Dataset. Loading again
// replaces the Dataset wholesale; nothing carries over between loads.
//
// =============================================================================

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/config"
	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/ginjaninja78/payables-dashboard/internal/grouping"
	"github.com/ginjaninja78/payables-dashboard/internal/normalizer"
	"github.com/ginjaninja78/payables-dashboard/internal/schema"
	"github.com/ginjaninja78/payables-dashboard/internal/source"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// DATASET
// =============================================================================

// Dataset is the immutable result of one load.
type Dataset struct {
	// RunID identifies the load in logs and summary files.
	RunID string

	// Source is the URL or path the snapshot came from.
	Source string

	LoadedAt time.Time

	// Records holds every data row, excluded ones included, in sheet order.
	Records []types.Record

	// Groups holds the submissions of the included records, sorted by day,
	// sector, project and submission time.
	Groups []types.SubmissionGroup

	Labels types.LabelIndex

	UnknownHeaders []string
	MissingColumns []types.Field
}

// Excluded returns the number of excluded records.
func (d *Dataset) Excluded() int {
	n := 0
	for _, r := range d.Records {
		if r.Excluded {
			n++
		}
	}
	return n
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline loads snapshots with one configuration.
type Pipeline struct {
	config     *config.MainConfig
	schema     *schema.Schema
	normalizer *normalizer.Normalizer
	logger     *zap.Logger
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - cfg: the validated configuration.
//   - logger: receives stage logs. Nil means no logging.
//
// RETURNS:
//   - The pipeline, or an error if the alias overrides or field rules are
//     invalid.
func New(cfg *config.MainConfig, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sch, err := schema.New(cfg.HeaderAliases, cfg.FuzzyHeaders)
	if err != nil {
		return nil, fmt.Errorf("failed to build header schema: %w", err)
	}

	cleaner, err := normalizer.NewCleaner(cfg.FieldRules)
	if err != nil {
		return nil, fmt.Errorf("failed to build field rules: %w", err)
	}

	return &Pipeline{
		config: cfg,
		schema: sch,
		normalizer: normalizer.New(normalizer.Options{
			AnchorField:         types.Field(cfg.AnchorField),
			FallbackAnchorField: types.Field(cfg.FallbackAnchorField),
			Cleaner:             cleaner,
		}),
		logger: logger,
	}, nil
}

// Load fetches the configured snapshot and runs it through ingest and
// grouping. A transport failure is the only error.
func (p *Pipeline) Load(ctx context.Context) (*Dataset, error) {
	src := p.config.Source

	table, err := source.Load(ctx, source.Options{
		URL:       src.URL,
		File:      src.File,
		Encoding:  src.Encoding,
		Delimiter: src.Delimiter,
		Sheet:     src.Sheet,
		Timeout:   src.FetchTimeout,
	}, p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return p.FromTable(table), nil
}

// FromTable runs an already parsed table through ingest and grouping.
func (p *Pipeline) FromTable(table *csvparser.Table) *Dataset {
	start := time.Now()

	// =========================================================================
	// STEP 1: NORMALIZE ROWS
	// =========================================================================

	snap := normalizer.Ingest(table, p.schema, p.normalizer, p.logger)

	// =========================================================================
	// STEP 2: GROUP SUBMISSIONS
	// =========================================================================

	groups := grouping.Group(snap.Records, snap.Labels)
	grouping.Sort(groups)

	ds := &Dataset{
		RunID:          uuid.New().String(),
		Source:         table.Source,
		LoadedAt:       time.Now(),
		Records:        snap.Records,
		Groups:         groups,
		Labels:         snap.Labels,
		UnknownHeaders: snap.UnknownHeaders,
		MissingColumns: snap.MissingColumns,
	}

	p.logger.Info("dataset ready",
		zap.String("run_id", ds.RunID),
		zap.Int("rows", len(table.Rows)),
		zap.Int("records", len(ds.Records)),
		zap.Int("excluded", ds.Excluded()),
		zap.Int("groups", len(ds.Groups)),
		zap.Duration("duration", time.Since(start)),
	)

	return ds
}

// AnalyticsOptions maps the configured thresholds.
func (p *Pipeline) AnalyticsOptions() analytics.Options {
	return AnalyticsOptions(p.config)
}

// AnalyticsOptions maps the configured thresholds of cfg.
func AnalyticsOptions(cfg *config.MainConfig) analytics.Options {
	a := cfg.Analytics
	return analytics.Options{
		TopN:               a.TopN,
		SLADays:            a.SLADays,
		ChartDays:          a.ChartDays,
		ForecastWindowDays: a.ForecastWindowDays,
		ForecastHorizons:   a.ForecastHorizons,
		BottleneckLimit:    a.BottleneckLimit,
		VendorPageSize:     a.VendorPageSize,
	}
}

