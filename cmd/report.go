// =============================================================================
// Payables Dashboard - Report Command
// =============================================================================
//
// COMMAND USAGE:
//   dashboard report [filter flags] [--today D]
//
// Loads the snapshot, applies the filter and prints every dashboard figure:
// KPIs, exposure, aging, SLA, Top-N, weekday pattern and forecast, the daily
// chart series, bottlenecks, scheduled payables and data quality.
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/payables-dashboard/internal/report"
	"github.com/spf13/cobra"
)

var reportFlags viewFlags

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard for the filtered view",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, view, err := loadView(cmd.Context(), &reportFlags)
		if err != nil {
			return err
		}
		return report.Render(cmd.OutOrStdout(), view)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addViewFlags(reportCmd, &reportFlags)
}
