// =============================================================================
// Payables Dashboard - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   dashboard export [filter flags] [--kind groups|records] [--format csv|xlsx|xml] [--out F]
//
// FLAGS:
//   --kind    : groups (one row per submission) or records (one per line item)
//   --format  : csv, xlsx or xml
//   --out     : output path; "-" writes to stdout. Default: a generated name
//               in output_dir, plus a run summary next to it.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/dashboard"
	"github.com/ginjaninja78/payables-dashboard/internal/export"
	"github.com/ginjaninja78/payables-dashboard/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportFlags  viewFlags
	exportKind   string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered view as CSV, XLSX or XML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addViewFlags(exportCmd, &exportFlags)

	exportCmd.Flags().StringVar(&exportKind, "kind", string(export.KindGroups), "What to export: groups or records")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatCSV), "Output format: csv, xlsx or xml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", `Output file ("-" for stdout)`)
}

// runExport writes one export file.
func runExport(cmd *cobra.Command) error {
	startTime := time.Now()

	kind, err := export.ParseKind(exportKind)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	ds, view, err := loadView(cmd.Context(), &exportFlags)
	if err != nil {
		return err
	}
	data := export.Data{Groups: view.Groups, Records: view.IncludedRecords()}

	if exportOut == "-" {
		return export.Write(cmd.OutOrStdout(), format, kind, data)
	}

	outPath := exportOut
	if outPath == "" {
		if err := utils.EnsureDirectories(mainConfig.OutputDir); err != nil {
			return err
		}
		name := utils.GenerateOutputFileName(mainConfig.OutputNameFormat, map[string]string{
			"kind":   string(kind),
			"format": string(format),
		}, format.Extension())
		outPath = filepath.Join(mainConfig.OutputDir, name)
	}

	if err := writeFile(outPath, func(w io.Writer) error {
		return export.Write(w, format, kind, data)
	}); err != nil {
		return err
	}

	logger.Info("export written",
		zap.String("path", outPath),
		zap.String("kind", string(kind)),
		zap.String("format", string(format)),
		zap.Int("groups", len(data.Groups)),
		zap.Int("records", len(data.Records)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)

	if exportOut == "" {
		summaryPath, err := utils.WriteSummaryLog(runSummary(ds, view, startTime, outPath), mainConfig.OutputDir)
		if err != nil {
			logger.Warn("failed to write run summary", zap.Error(err))
		} else {
			logger.Debug("run summary written", zap.String("path", summaryPath))
		}
	}
	return nil
}

// writeFile creates path and streams into it.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func runSummary(ds *dashboard.Dataset, view *dashboard.View, start time.Time, outputs ...string) utils.RunSummary {
	issues := 0
	if view.Quality != nil {
		issues = len(view.Quality.Issues)
	}
	return utils.RunSummary{
		RunID:       ds.RunID,
		StartTime:   start,
		EndTime:     time.Now(),
		Source:      ds.Source,
		Filter:      view.Meta.Filter,
		TotalRows:   len(ds.Records),
		Excluded:    ds.Excluded(),
		Submissions: view.KPIs.UniqueSubmissions,
		LineItems:   view.KPIs.LineItems,
		Issues:      issues,
		OutputFiles: outputs,
	}
}
