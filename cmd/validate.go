// =============================================================================
// Payables Dashboard - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   dashboard validate [filter flags] [--strict]
//
// Prints the data-quality section (all rows and the filtered rows) and writes
// every per-row issue to an issue log in output_dir.
//
// EXIT STATUS:
//   Malformed rows never fail the command. With --strict, any error-severity
//   issue (an excluded row) makes it exit 1 after the log is written.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/payables-dashboard/internal/report"
	"github.com/ginjaninja78/payables-dashboard/internal/validation"
	"github.com/ginjaninja78/payables-dashboard/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	validateFlags  viewFlags
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report data quality and write the issue log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, view, err := loadView(cmd.Context(), &validateFlags)
		if err != nil {
			return err
		}

		if err := report.RenderQuality(cmd.OutOrStdout(), view); err != nil {
			return err
		}

		if err := utils.EnsureDirectories(mainConfig.OutputDir); err != nil {
			return err
		}
		logPath, err := utils.WriteIssueLog(issueLogEntries(view.Quality.Issues), ds.Source, mainConfig.OutputDir)
		if err != nil {
			return err
		}
		if logPath != "" {
			logger.Info("issue log written", zap.String("path", logPath), zap.Int("issues", len(view.Quality.Issues)))
			fmt.Fprintf(cmd.OutOrStdout(), "Issue log: %s\n", logPath)
		}

		if validateStrict && !view.Quality.IsValid {
			return fmt.Errorf("data quality check failed with %d errors", view.Quality.ErrorCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addViewFlags(validateCmd, &validateFlags)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit 1 when any row is excluded")
}

func issueLogEntries(issues []*validation.Issue) []utils.IssueLogEntry {
	entries := make([]utils.IssueLogEntry, len(issues))
	for i, issue := range issues {
		entries[i] = utils.IssueLogEntry{
			Severity:  issue.Severity,
			Rule:      issue.Rule,
			Message:   issue.Message,
			RowNumber: issue.RowNumber,
			Field:     string(issue.Field),
			Value:     issue.Value,
		}
	}
	return entries
}
