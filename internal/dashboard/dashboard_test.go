package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/analytics"
	"github.com/ginjaninja78/payables-dashboard/internal/config"
	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/ginjaninja78/payables-dashboard/internal/filter"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sheet = [][]string{
	{"Sector", "Project", "Vendor", "Amount", "Paid", "Canceled", "Payment Request Date", "Approval Date", "Payment Date", "Time"},
	{"Roads", "P1", "Acme", "1,000", "400", "0", "2026-01-10", "2026-01-11", "2026-01-12", "09:00"},
	{"Roads", "P1", "Beta", "500", "500", "", "2026-01-10", "", "", "09:00"},
	{"Water", "P2", "Gamma", "200", "0", "0", "2026-01-11", "", "", "10:00"},
	{"Roads", "P1", "-", "300", "0", "0", "2026-01-10", "", "", "09:00"},
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(config.Default(), zap.NewNop())
	require.NoError(t, err)
	return p
}

func loadSheet(t *testing.T) *Dataset {
	t.Helper()
	table, err := csvparser.FromRows(sheet, "test.csv")
	require.NoError(t, err)
	return newPipeline(t).FromTable(table)
}

func TestFromTable(t *testing.T) {
	ds := loadSheet(t)

	assert.NotEmpty(t, ds.RunID)
	assert.Equal(t, "test.csv", ds.Source)
	assert.Len(t, ds.Records, 4)
	assert.Equal(t, 1, ds.Excluded())
	require.Len(t, ds.Groups, 2)

	first := ds.Groups[0]
	assert.Equal(t, "2026-01-10", first.Day)
	assert.Equal(t, 2, first.LineItems())
	assert.Equal(t, types.StatusRequested, first.Status)
	assert.Equal(t, "Water", ds.Labels.Sector("water"))
}

func TestBuildAllData(t *testing.T) {
	ds := loadSheet(t)
	today := time.Date(2026, 1, 20, 15, 30, 0, 0, time.UTC)

	v := Build(ds, filter.Criteria{}, today, analytics.DefaultOptions())

	assert.Equal(t, "all data", v.Meta.Filter)
	assert.Equal(t, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), v.Meta.Today)
	assert.True(t, v.Meta.HasAsOf)
	assert.Equal(t, "2026-01-12", v.Meta.AsOf.Format(types.DayLayout))

	assert.InDelta(t, 1700, v.KPIs.Gross, 0.001)
	assert.InDelta(t, 900, v.KPIs.Paid, 0.001)
	assert.InDelta(t, 800, v.KPIs.Remaining, 0.001)
	assert.Equal(t, 2, v.KPIs.UniqueSubmissions)
	assert.Equal(t, 3, v.KPIs.LineItems)

	assert.Len(t, v.Groups, 2)
	assert.Len(t, v.Records, 4)
	included := v.IncludedRecords()
	assert.Len(t, included, 3)
	for _, r := range included {
		assert.False(t, r.Excluded)
	}
	require.NotNil(t, v.Quality)
	assert.Equal(t, 4, v.Quality.All.TotalRows)
	assert.Equal(t, 1, v.Quality.All.MissingVendor)
	assert.NotEmpty(t, v.Vendors)
}

func TestBuildFiltered(t *testing.T) {
	ds := loadSheet(t)
	c, err := filter.New("water", "", "", "", "")
	require.NoError(t, err)

	v := Build(ds, c, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), analytics.DefaultOptions())

	assert.Equal(t, "sector=Water", v.Meta.Filter)
	require.Len(t, v.Groups, 1)
	assert.InDelta(t, 200, v.KPIs.Gross, 0.001)
	assert.Equal(t, 1, v.KPIs.UniqueSubmissions)

	// Quality over all rows ignores the filter.
	assert.Equal(t, 4, v.Quality.All.TotalRows)
	assert.Equal(t, 1, v.Quality.Filtered.TotalRows)
}

func TestBuildDoesNotMutateDataset(t *testing.T) {
	ds := loadSheet(t)
	before := len(ds.Groups)

	c, err := filter.New("", "", "paid", "", "")
	require.NoError(t, err)
	_ = Build(ds, c, time.Now(), analytics.DefaultOptions())

	assert.Len(t, ds.Groups, before)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.csv")
	content := "\ufeffSector,Project,Vendor,Amount,Payment Request Date,Time\r\n" +
		"Roads,P1,Acme,100,2026-01-10,09:00\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := config.Default()
	cfg.Source.File = path
	p, err := New(cfg, nil)
	require.NoError(t, err)

	ds, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Groups, 1)
	assert.InDelta(t, 100, ds.Groups[0].Total, 0.001)
}

func TestLoadWithoutSource(t *testing.T) {
	_, err := newPipeline(t).Load(context.Background())
	assert.Error(t, err)
}

func TestAnalyticsOptions(t *testing.T) {
	assert.Equal(t, analytics.DefaultOptions(), AnalyticsOptions(config.Default()))
}
