package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered supply points.",
	Example: `
  carbonreport cups list
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cupsStore()
		if err != nil {
			return err
		}

		entries, stats, err := store.LoadWithStats()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if stats.Missing {
			fmt.Fprintf(out, "No CUPS registry at %s\n", store.Path)
			return nil
		}
		for _, entry := range entries {
			fmt.Fprintf(out, "%d. %s -> %s", entry.ID, entry.CUPS, entry.CenterName)
			if entry.EnergyType != "" {
				fmt.Fprintf(out, " (%s)", entry.EnergyType)
			}
			if entry.Marketer != "" {
				fmt.Fprintf(out, " [%s]", entry.Marketer)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Supply points: %d, File: %s\n", stats.Loaded, store.Path)
		if len(stats.SkippedLines) > 0 {
			fmt.Fprintf(out, "Warning: skipped malformed lines: %s\n", formatLines(stats.SkippedLines))
		}
		return nil
	},
}

func init() {
	cupsCmd.AddCommand(cupsListCmd)
}
