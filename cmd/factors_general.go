package cmd

import (
	"fmt"

	"carbonreport/energy"
	"carbonreport/factors"

	"github.com/spf13/cobra"
)

var (
	factorsGeneralYear            int
	factorsGeneralMix             string
	factorsGeneralLocation        string
	factorsGeneralGdORenewable    string
	factorsGeneralGdOCogeneration string
	factorsGeneralRemove          []string
)

var factorsGeneralCmd = &cobra.Command{
	Use:   "general",
	Short: "Show or update the year-wide electricity factors.",
	Long: `Without value flags, print the electricity factors that apply to every
trading company of the year: the residual mix without GdO, the location-based
grid factor and the factors for GdO-covered supply. With value flags, update
the given values and keep the others. --remove-company drops a trading company
from the year's list.`,
	Example: `
  # Show the general electricity factors of the configured year
  carbonreport factors general

  # Set the 2024 values
  carbonreport factors general --year 2024 --mix 0.283 --location 0.108 --gdo-renewable 0 --gdo-cogeneration 0.358

  # Drop a trading company that no longer supplies any center
  carbonreport factors general --year 2024 --remove-company "Holaluz"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, year, err := factorsContext(string(energy.Electricity), factorsGeneralYear)
		if err != nil {
			return err
		}

		general, _, err := store.LoadElectricityGeneral(year)
		if err != nil {
			return err
		}

		updates := []struct {
			flag  string
			value string
			dest  *float64
		}{
			{flag: "mix", value: factorsGeneralMix, dest: &general.MixWithoutGdO},
			{flag: "location", value: factorsGeneralLocation, dest: &general.LocationFactor},
			{flag: "gdo-renewable", value: factorsGeneralGdORenewable, dest: &general.GdORenewable},
			{flag: "gdo-cogeneration", value: factorsGeneralGdOCogeneration, dest: &general.GdOCogeneration},
		}
		changed := false
		for _, update := range updates {
			if !cmd.Flags().Changed(update.flag) {
				continue
			}
			value, err := parseFactorFlag(update.flag, update.value)
			if err != nil {
				return err
			}
			*update.dest = value
			changed = true
		}
		if len(factorsGeneralRemove) > 0 {
			if err := removeCompanies(&general, factorsGeneralRemove); err != nil {
				return err
			}
			changed = true
		}

		out := cmd.OutOrStdout()
		if changed {
			if err := store.SaveElectricityGeneral(general); err != nil {
				return err
			}
			fmt.Fprintf(out, "General electricity factors saved for %d.\n", year)
		}

		fmt.Fprintf(out, "Year: %d\n", year)
		fmt.Fprintf(out, "Residual mix without GdO: %g\n", general.MixWithoutGdO)
		fmt.Fprintf(out, "Location factor: %g\n", general.LocationFactor)
		fmt.Fprintf(out, "GdO renewable: %g\n", general.GdORenewable)
		fmt.Fprintf(out, "GdO cogeneration: %g\n", general.GdOCogeneration)
		fmt.Fprintf(out, "Trading companies: %d\n", len(general.Companies))
		for _, company := range general.Companies {
			gdo := ""
			if company.GdOType != "" {
				gdo = " [GdO " + company.GdOType + "]"
			}
			fmt.Fprintf(out, "  %s: %g%s\n", company.Name, general.MarketFactor(company), gdo)
		}
		return nil
	},
}

// removeCompanies drops every named company and fails on the first name
// that is not in the list.
func removeCompanies(general *factors.ElectricityGeneral, names []string) error {
	for _, name := range names {
		if !general.RemoveCompany(name) {
			return fmt.Errorf("%w: trading company %s in %d", factors.ErrNotFound, name, general.Year)
		}
	}
	return nil
}

func init() {
	factorsCmd.AddCommand(factorsGeneralCmd)

	factorsGeneralCmd.Flags().IntVar(&factorsGeneralYear, "year", 0, "Year (default: report.year from config)")
	factorsGeneralCmd.Flags().StringVar(&factorsGeneralMix, "mix", "", "Residual mix without GdO (kgCO2e/kWh)")
	factorsGeneralCmd.Flags().StringVar(&factorsGeneralLocation, "location", "", "Location-based grid factor (kgCO2e/kWh)")
	factorsGeneralCmd.Flags().StringVar(&factorsGeneralGdORenewable, "gdo-renewable", "", "Factor for renewable GdO supply (kgCO2e/kWh)")
	factorsGeneralCmd.Flags().StringVar(&factorsGeneralGdOCogeneration, "gdo-cogeneration", "", "Factor for cogeneration GdO supply (kgCO2e/kWh)")
	factorsGeneralCmd.Flags().StringArrayVar(&factorsGeneralRemove, "remove-company", nil, "Trading company to remove (repeatable)")
}
