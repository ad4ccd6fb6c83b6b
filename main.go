// =============================================================================
// Payables Dashboard - Main Entry Point
// =============================================================================
//
// USAGE:
//   dashboard report      - Print KPIs, aging, SLA, rankings and data quality
//   dashboard export      - Export the filtered view as CSV, XLSX or XML
//   dashboard validate    - Report data quality and write the issue log
//   dashboard browse      - Drill down into days, projects and submissions
//   dashboard version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : ingest, grouping, filter, analytics, navigator, export
//   - pkg/       : shared output helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payables-dashboard/cmd"
)

func main() {
	cmd.Execute()
}
