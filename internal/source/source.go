// Package source loads one snapshot of the payment-request sheet, either
// from the published CSV URL or from a local CSV, XLSX or legacy XLS file.
//
// A snapshot is all or nothing: any transport failure is returned as an
// error wrapping ErrFetch and nothing downstream runs.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/ginjaninja78/payables-dashboard/internal/xlsxparser"
	"go.uber.org/zap"
)

var (
	// ErrFetch wraps every transport failure: network errors and non-2xx
	// responses.
	ErrFetch = errors.New("failed to fetch snapshot")

	// ErrNoSource is returned when neither a URL nor a file is configured.
	ErrNoSource = errors.New("no snapshot source configured")
)

// Options selects and decodes the snapshot.
type Options struct {
	URL       string
	File      string
	Encoding  string
	Delimiter string
	Sheet     string

	// Timeout bounds the HTTP fetch. Zero means no timeout.
	Timeout time.Duration

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Load fetches and parses the snapshot. The URL wins when both a URL and a
// file are set.
func Load(ctx context.Context, opts Options, logger *zap.Logger) (*csvparser.Table, error) {
	start := time.Now()
	settings := csvparser.Settings{Delimiter: opts.Delimiter, Encoding: opts.Encoding}

	var (
		table *csvparser.Table
		err   error
	)

	switch {
	case strings.TrimSpace(opts.URL) != "":
		table, err = loadURL(ctx, opts, settings)
	case strings.TrimSpace(opts.File) != "":
		table, err = loadFile(opts, settings)
	default:
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, err
	}

	logger.Info("snapshot loaded",
		zap.String("source", table.Source),
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(table.Headers)),
		zap.Duration("duration", time.Since(start)),
	)
	return table, nil
}

func loadURL(ctx context.Context, opts Options, settings csvparser.Settings) (*csvparser.Table, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, redact(opts.URL), resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}

	label := redact(opts.URL)
	if isLegacyWorkbookURL(opts.URL) {
		return xlsxparser.ParseXLS(bytes.NewReader(body), label)
	}
	if isWorkbookURL(opts.URL) || strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
		return xlsxparser.Parse(bytes.NewReader(body), label, opts.Sheet)
	}
	return csvparser.Parse(bytes.NewReader(body), label, settings)
}

func loadFile(opts Options, settings csvparser.Settings) (*csvparser.Table, error) {
	switch strings.ToLower(filepath.Ext(opts.File)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseFile(opts.File, opts.Sheet)
	case ".xls":
		return xlsxparser.ParseXLSFile(opts.File)
	default:
		return csvparser.ParseFile(opts.File, settings)
	}
}

func isWorkbookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return ext == ".xlsx" || ext == ".xlsm" || u.Query().Get("output") == "xlsx"
}

func isLegacyWorkbookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.ToLower(path.Ext(u.Path)) == ".xls"
}

// redact drops the query string, which for published sheets can carry
// access tokens, from URLs that end up in logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
