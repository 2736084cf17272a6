package cmd

import (
	"fmt"
	"strings"

	"carbonreport/energy"
	"carbonreport/factors"

	"github.com/spf13/cobra"
)

var (
	factorsSetType     string
	factorsSetYear     int
	factorsSetEntity   string
	factorsSetVehicle  string
	factorsSetMarket   string
	factorsSetLocation string
	factorsSetUnit     string
	factorsSetGdO      string
)

var factorsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Add or update one emission factor.",
	Long: `Upsert one factor into the year file of its energy type. Entities match
case-, accent- and whitespace-insensitively, so an existing row is replaced
instead of duplicated. Factor values accept comma or dot decimals.

Per type:
- electricity: --entity is the trading company, --market its factor (0 uses
  the residual mix), --gdo renewable|cogeneration marks GdO coverage
- gas: --market and --location
- fuel: --market is the factor, --vehicle narrows it to a vehicle type
- refrigerant: --market is the GWP`,
	Example: `
  carbonreport factors set --type gas --year 2024 --entity Naturgy --market 0,182 --location 0,202
  carbonreport factors set --type fuel --entity "Gasóleo A" --vehicle Turismo --market 2.52
  carbonreport factors set --type electricity --entity "Som Energia" --market 0 --gdo renewable
  carbonreport factors set --type refrigerant --entity R-410A --market 2088
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, typ, year, err := factorsContext(factorsSetType, factorsSetYear)
		if err != nil {
			return err
		}

		entry, err := buildFactorEntry(typ, year, factorsSetEntity, factorsSetVehicle, factorsSetMarket, factorsSetLocation, factorsSetUnit, factorsSetGdO)
		if err != nil {
			return err
		}
		if err := store.Save(typ, entry); err != nil {
			return err
		}

		path, _ := store.Path(typ, year)
		fmt.Fprintf(cmd.OutOrStdout(), "Factor saved. Type: %s, Year: %d, Entity: %s, File: %s\n", typ, year, entry.Entity, path)
		return nil
	},
}

func buildFactorEntry(typ energy.Type, year int, entity, vehicle, market, location, unit, gdo string) (factors.Entry, error) {
	marketValue, err := parseFactorFlag("market", market)
	if err != nil {
		return factors.Entry{}, err
	}
	locationValue := marketValue
	if typ == energy.Gas {
		if strings.TrimSpace(location) == "" {
			return factors.Entry{}, fmt.Errorf("--location is required for gas")
		}
		if locationValue, err = parseFactorFlag("location", location); err != nil {
			return factors.Entry{}, err
		}
	}
	if vehicle != "" && typ != energy.Fuel {
		return factors.Entry{}, fmt.Errorf("--vehicle only applies to fuel")
	}
	if gdo != "" && typ != energy.Electricity {
		return factors.Entry{}, fmt.Errorf("--gdo only applies to electricity")
	}

	return factors.Entry{
		Entity:    entity,
		Qualifier: vehicle,
		Year:      year,
		Market:    marketValue,
		Location:  locationValue,
		Unit:      unit,
		GdOType:   gdo,
	}, nil
}

func init() {
	factorsCmd.AddCommand(factorsSetCmd)

	factorsSetCmd.Flags().StringVarP(&factorsSetType, "type", "t", "", "Energy type: electricity|gas|fuel|refrigerant")
	factorsSetCmd.Flags().IntVar(&factorsSetYear, "year", 0, "Year (default: report.year from config)")
	factorsSetCmd.Flags().StringVar(&factorsSetEntity, "entity", "", "Trading company, provider, fuel or refrigerant name")
	factorsSetCmd.Flags().StringVar(&factorsSetVehicle, "vehicle", "", "Vehicle type (fuel only)")
	factorsSetCmd.Flags().StringVar(&factorsSetMarket, "market", "", "Market-based factor, fuel factor or GWP")
	factorsSetCmd.Flags().StringVar(&factorsSetLocation, "location", "", "Location-based factor (gas only)")
	factorsSetCmd.Flags().StringVar(&factorsSetUnit, "unit", "", "Factor unit (default: unit of the energy type)")
	factorsSetCmd.Flags().StringVar(&factorsSetGdO, "gdo", "", "Guarantee of origin: renewable|cogeneration (electricity only)")

	_ = factorsSetCmd.MarkFlagRequired("type")
	_ = factorsSetCmd.MarkFlagRequired("entity")
	_ = factorsSetCmd.MarkFlagRequired("market")
}
