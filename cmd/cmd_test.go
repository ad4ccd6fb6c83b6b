package cmd

import (
	"bytes"
	"runtime"
	"testing"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewFlagsCriteria(t *testing.T) {
	f := viewFlags{sector: " Roads ", status: "approved", from: "01/01/2026", to: "2026-01-31"}
	c, err := f.criteria()
	require.NoError(t, err)
	assert.Equal(t, "roads", c.SectorKey)
	assert.Equal(t, types.StatusApproved, c.Status)
	assert.True(t, c.HasDateRange())

	f = viewFlags{from: "2026-02-01", to: "2026-01-01"}
	_, err = f.criteria()
	assert.Error(t, err)
}

func TestViewFlagsReferenceDay(t *testing.T) {
	f := viewFlags{today: "2026-01-20"}
	d, err := f.referenceDay()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), d)

	f = viewFlags{today: "not a day"}
	_, err = f.referenceDay()
	assert.Error(t, err)

	f = viewFlags{}
	d, err = f.referenceDay()
	require.NoError(t, err)
	assert.Equal(t, 0, d.Hour())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "export", "validate", "browse", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)
	assert.Equal(t, "dashboard dev (none) "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n", buf.String())
}
