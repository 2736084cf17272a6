package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	factorsDeleteType    string
	factorsDeleteYear    int
	factorsDeleteEntity  string
	factorsDeleteVehicle string
)

var factorsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the factors of one entity.",
	Long: `Remove an entity from the year file of its energy type. For fuel, --vehicle
removes a single vehicle type; without it every row of the fuel is removed.`,
	Example: `
  carbonreport factors delete --type gas --year 2024 --entity Naturgy
  carbonreport factors delete --type fuel --entity "Gasóleo A" --vehicle Turismo
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, typ, year, err := factorsContext(factorsDeleteType, factorsDeleteYear)
		if err != nil {
			return err
		}

		removed, err := store.Delete(typ, year, factorsDeleteEntity, factorsDeleteVehicle)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Factors deleted. Type: %s, Year: %d, Entity: %s, Rows removed: %d\n", typ, year, factorsDeleteEntity, removed)
		return nil
	},
}

func init() {
	factorsCmd.AddCommand(factorsDeleteCmd)

	factorsDeleteCmd.Flags().StringVarP(&factorsDeleteType, "type", "t", "", "Energy type: electricity|gas|fuel|refrigerant")
	factorsDeleteCmd.Flags().IntVar(&factorsDeleteYear, "year", 0, "Year (default: report.year from config)")
	factorsDeleteCmd.Flags().StringVar(&factorsDeleteEntity, "entity", "", "Entity to remove")
	factorsDeleteCmd.Flags().StringVar(&factorsDeleteVehicle, "vehicle", "", "Vehicle type (fuel only)")

	_ = factorsDeleteCmd.MarkFlagRequired("type")
	_ = factorsDeleteCmd.MarkFlagRequired("entity")
}
