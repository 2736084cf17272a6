package cmd

import (
	"carbonreport/config"
	"carbonreport/cups"

	"github.com/spf13/cobra"
)

var cupsCmd = &cobra.Command{
	Use:   "cups",
	Short: "Manage the supply point (CUPS) to center registry.",
	Long: `List, add, delete and import supply points.

Electricity and gas rows without a mapped center column take the center
registered for their CUPS code. The registry lives in <data.dir>/cups_centers.csv.`,
}

func cupsStore() (*cups.Store, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	return cups.NewStore(cfg.Data.Dir), nil
}

func init() {
	rootCmd.AddCommand(cupsCmd)
}
