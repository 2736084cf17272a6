package cmd

import (
	"fmt"
	"text/tabwriter"

	"carbonreport/energy"

	"github.com/spf13/cobra"
)

var (
	factorsListType string
	factorsListYear int
)

var factorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the factors of one energy type and year.",
	Long: `Print the factors that export would apply. Electricity factors are shown
resolved: GdO-covered companies carry the GdO factor and companies without
their own factor carry the residual mix.`,
	Example: `
  # Gas factors of the configured year
  carbonreport factors list --type gas

  # Refrigerant GWP values of 2023
  carbonreport factors list --type refrigerant --year 2023
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, typ, year, err := factorsContext(factorsListType, factorsListYear)
		if err != nil {
			return err
		}

		table, stats, err := store.LoadWithStats(typ, year)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if stats.Missing {
			fmt.Fprintf(out, "No factor file for %s %d (%s)\n", typ, year, stats.Path)
			return nil
		}

		writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		schema := energy.MustSchema(typ)
		switch {
		case typ == energy.Fuel:
			fmt.Fprintln(writer, "ENTITY\tVEHICLE TYPE\tFACTOR\tUNIT")
		case schema.DualFactor:
			fmt.Fprintln(writer, "ENTITY\tMARKET\tLOCATION\tUNIT\tGDO")
		default:
			fmt.Fprintln(writer, "ENTITY\tFACTOR\tUNIT")
		}
		for _, entry := range table.Entries() {
			unit := entry.Unit
			if unit == "" {
				unit = schema.FactorUnit
			}
			switch {
			case typ == energy.Fuel:
				fmt.Fprintf(writer, "%s\t%s\t%g\t%s\n", entry.Entity, entry.Qualifier, entry.Market, unit)
			case schema.DualFactor:
				fmt.Fprintf(writer, "%s\t%g\t%g\t%s\t%s\n", entry.Entity, entry.Market, entry.Location, unit, entry.GdOType)
			default:
				fmt.Fprintf(writer, "%s\t%g\t%s\n", entry.Entity, entry.Market, unit)
			}
		}
		if err := writer.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "Factors: %d, Year: %d, File: %s\n", stats.Loaded, year, stats.Path)
		if stats.Skipped() > 0 {
			fmt.Fprintf(out, "Warning: skipped malformed lines: %s\n", formatLines(stats.SkippedLines))
		}
		return nil
	},
}

func init() {
	factorsCmd.AddCommand(factorsListCmd)

	factorsListCmd.Flags().StringVarP(&factorsListType, "type", "t", "", "Energy type: electricity|gas|fuel|refrigerant")
	factorsListCmd.Flags().IntVar(&factorsListYear, "year", 0, "Year (default: report.year from config)")

	_ = factorsListCmd.MarkFlagRequired("type")
}
