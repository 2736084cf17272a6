package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cupsImportInput string

var cupsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge supply points from a CSV file.",
	Long: `Read a CSV file with the registry header names (id, cups, marketer,
centerName, acronym, energyType, street, postalCode, city, province; any
order, id optional) and upsert every valid row into the registry.`,
	Example: `
  carbonreport cups import -i ./cups_2024.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cupsStore()
		if err != nil {
			return err
		}

		added, updated, skipped, err := store.ImportCSV(cupsImportInput)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Import completed. Added: %d, Updated: %d, Skipped: %d, File: %s\n", added, updated, len(skipped), store.Path)
		if len(skipped) > 0 {
			fmt.Fprintf(out, "Skipped lines: %s\n", formatLines(skipped))
		}
		return nil
	},
}

func init() {
	cupsCmd.AddCommand(cupsImportCmd)

	cupsImportCmd.Flags().StringVarP(&cupsImportInput, "input", "i", "", "CSV file to import")

	_ = cupsImportCmd.MarkFlagRequired("input")
}
