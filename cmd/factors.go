package cmd

import (
	"carbonreport/config"
	"carbonreport/energy"
	"carbonreport/factors"

	"github.com/spf13/cobra"
)

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Manage the emission factors stored per year.",
	Long: `List, add, update and delete emission factors.

Factors live in one CSV file per energy type and year below data.dir:
- <dir>/<year>/electricity_factors.csv   trading companies (entity,market_factor,gdo_type)
- <dir>/<year>/electricity_general.csv   residual mix, location factor and GdO factors
- <dir>/<year>/gas_factors.csv           entity,market_factor,location_factor,unit
- <dir>/<year>/fuel_factors.csv          entity,vehicle_type,factor,unit
- <dir>/<year>/refrigerant_factors.csv   entity,gwp,unit`,
}

// factorsContext resolves the store, energy type and year shared by the
// factor commands. A zero year means report.year from config.
func factorsContext(energyType string, year int) (*factors.Store, energy.Type, int, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, "", 0, err
	}
	typ, err := energy.ParseType(energyType)
	if err != nil {
		return nil, "", 0, err
	}
	if year == 0 {
		year = cfg.Report.Year
	}
	return factors.NewStore(cfg.Data.Dir), typ, year, nil
}

func init() {
	rootCmd.AddCommand(factorsCmd)
}
