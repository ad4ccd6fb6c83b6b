// =============================================================================
// Payables Dashboard - Browse Command
// =============================================================================
//
// COMMAND USAGE:
//   dashboard browse [filter flags]
//
// Opens the interactive drill-down over the filtered submissions:
//   day list -> day summary -> project submissions -> submission detail
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/payables-dashboard/internal/tui"
	"github.com/spf13/cobra"
)

var browseFlags viewFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse submissions interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, view, err := loadView(cmd.Context(), &browseFlags)
		if err != nil {
			return err
		}
		return tui.Run(view.Groups, ds.Labels)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addViewFlags(browseCmd, &browseFlags)
}
