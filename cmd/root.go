// =============================================================================
// Payables Dashboard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the configuration and logger set up here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (dashboard)
//   ├── reportCmd   (dashboard report)
//   ├── exportCmd   (dashboard export)
//   ├── validateCmd (dashboard validate)
//   ├── browseCmd   (dashboard browse)
//   └── versionCmd  (dashboard version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading config.yaml, .env and environment overrides
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ginjaninja78/payables-dashboard/internal/config"
	"github.com/ginjaninja78/payables-dashboard/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig and logger are set by PersistentPreRunE before any subcommand
// runs.
var (
	mainConfig *config.MainConfig
	logger     *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Payables Dashboard - payment-request analytics over a published spreadsheet",
	Long: `Payables Dashboard loads the published payment-request spreadsheet,
normalizes its rows, groups them into submissions and reports on them.

Key Features:
  - Arabic and English header aliases, BOM and code-page tolerant input
  - Submission grouping by sector, project, submission time and day
  - KPIs, exposure, aging, SLA, rankings and a payment forecast
  - Data-quality metrics with a per-row issue log
  - CSV, XLSX and XML export of the filtered view
  - Interactive drill-down browser

Example Usage:
  dashboard report --sector Roads --from 01/01/2026
  dashboard export --kind records --format xlsx
  dashboard validate
  dashboard browse --status approved`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		log, err := logging.New(cfg.LogLevel, verbose, cfg.LogFile)
		if err != nil {
			return err
		}

		mainConfig, logger = cfg, log
		logger.Debug("configuration loaded", zap.String("path", cfgFile))
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: a missing file means defaults only.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --verbose flag: forces debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
