package cmd

import (
	"fmt"
	"strings"

	"carbonreport/energy"
	"carbonreport/importer"

	"github.com/spf13/cobra"
)

var (
	inspectInput  string
	inspectFormat string
	inspectSheet  string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the sheets, header row and guessed column mappings of a source file",
	Long: `Read a supplier file the way export does and print:
- the sheet names,
- the detected header row with column letters,
- for every energy type, the mapping guessed from the header labels and the
  required fields it could not find.

Use the output to build --map flags or a saved mapping.`,
	Example: `
  carbonreport inspect -i Iberdrola_2024.xlsx
  carbonreport inspect -i flota.csv
  carbonreport inspect -i consumos.xls --sheet "Gas 2024"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		sheets, err := importer.Sheets(inspectInput, inspectFormat)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "File: %s\n", inspectInput)
		fmt.Fprintf(out, "Sheets: %s\n", strings.Join(sheets, ", "))

		table, err := importer.Load(inspectInput, inspectFormat, inspectSheet)
		if err != nil {
			return err
		}
		if len(table.Headers) == 0 {
			fmt.Fprintf(out, "Sheet %q is empty.\n", table.Sheet)
			return nil
		}

		fmt.Fprintf(out, "Sheet: %s, Header row: %d, Data rows: %d, Columns: %d\n", table.Sheet, table.HeaderRow, len(table.Rows), table.Width())
		for i := 0; i < table.Width(); i++ {
			letter, _ := columnLetter(i)
			header := ""
			if i < len(table.Headers) {
				header = table.Headers[i]
			}
			if header == "" {
				header = "(no header)"
			}
			fmt.Fprintf(out, "  %-3s %s\n", letter, header)
		}

		fmt.Fprintln(out, "Guessed mappings:")
		for _, typ := range energy.Types() {
			mapping := energy.GuessMapping(typ, table.Headers)
			fmt.Fprintf(out, "  %s: %s\n", typ, mapping)
			if missing := mapping.Missing(); len(missing) > 0 {
				fmt.Fprintf(out, "    missing: %s\n", joinFields(missing))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectInput, "input", "i", "", "Input file path (.xlsx, .xlsm, .xls or .csv)")
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "", "Input format: csv|excel|xls (optional, inferred from extension when omitted)")
	inspectCmd.Flags().StringVar(&inspectSheet, "sheet", "", "Sheet to inspect (default: first sheet)")

	_ = inspectCmd.MarkFlagRequired("input")
}
