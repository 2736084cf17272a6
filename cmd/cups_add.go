package cmd

import (
	"fmt"

	"carbonreport/cups"

	"github.com/spf13/cobra"
)

var cupsAddEntry cups.Entry

var cupsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update one supply point.",
	Long: `Register a CUPS code for a center. An existing entry with the same CUPS
(ignoring case, spaces and the border point suffix) is replaced.`,
	Example: `
  carbonreport cups add --cups ES0021000000000001AB --center "Centro Norte" --type electricity --marketer Iberdrola
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cupsStore()
		if err != nil {
			return err
		}

		replaced, err := store.Upsert(cupsAddEntry)
		if err != nil {
			return err
		}
		action := "added"
		if replaced {
			action = "updated"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Supply point %s. CUPS: %s, Center: %s, File: %s\n", action, cupsAddEntry.CUPS, cupsAddEntry.CenterName, store.Path)
		return nil
	},
}

func init() {
	cupsCmd.AddCommand(cupsAddCmd)

	flags := cupsAddCmd.Flags()
	flags.StringVar(&cupsAddEntry.CUPS, "cups", "", "CUPS code")
	flags.StringVar(&cupsAddEntry.CenterName, "center", "", "Center name")
	flags.StringVar(&cupsAddEntry.Marketer, "marketer", "", "Trading company")
	flags.StringVar(&cupsAddEntry.Acronym, "acronym", "", "Center acronym")
	flags.StringVarP(&cupsAddEntry.EnergyType, "type", "t", "", "Energy type: electricity|gas")
	flags.StringVar(&cupsAddEntry.Street, "street", "", "Street address")
	flags.StringVar(&cupsAddEntry.PostalCode, "postal-code", "", "Postal code")
	flags.StringVar(&cupsAddEntry.City, "city", "", "City")
	flags.StringVar(&cupsAddEntry.Province, "province", "", "Province")

	_ = cupsAddCmd.MarkFlagRequired("cups")
	_ = cupsAddCmd.MarkFlagRequired("center")
}
