package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var factorsYearsType string

var factorsYearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years that have factors for an energy type.",
	Example: `
  carbonreport factors years --type electricity
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, typ, _, err := factorsContext(factorsYearsType, 0)
		if err != nil {
			return err
		}

		years, err := store.Years(typ)
		if err != nil {
			return err
		}
		if len(years) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No factor files for %s below %s\n", typ, store.BaseDir)
			return nil
		}
		values := make([]string, len(years))
		for i, year := range years {
			values[i] = strconv.Itoa(year)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Years with %s factors: %s\n", typ, strings.Join(values, ", "))
		return nil
	},
}

func init() {
	factorsCmd.AddCommand(factorsYearsCmd)

	factorsYearsCmd.Flags().StringVarP(&factorsYearsType, "type", "t", "", "Energy type: electricity|gas|fuel|refrigerant")

	_ = factorsYearsCmd.MarkFlagRequired("type")
}
