package cmd

import (
	"fmt"
	"strings"

	"carbonreport/config"
	"carbonreport/energy"
	"carbonreport/report"

	"github.com/spf13/cobra"
)

var (
	generalSources  []string
	generalSheets   []string
	generalOutput   string
	generalLanguage string
)

var generalCmd = &cobra.Command{
	Use:   "general",
	Short: "Merge module workbooks into the general report",
	Long: `Copy the sheets of several module workbooks into one workbook and add a
summary sheet with the market and location emissions of every module.

Copied sheets keep their formulas; sheet names get the module prefix when
they do not have it yet, and references are rewritten to the new names. The
summary cells are SUM formulas over each module's per-center sheet, so the
general report stays consistent with the copied data.

Every module workbook contributes all its sheets unless --sheet narrows the
selection. The per-center sheet is always copied.`,
	Example: `
  # Merge two modules
  carbonreport general --source electricity=./electricidad_2024.xlsx --source gas=./gas_2024.xlsx --output ./general_2024.xlsx

  # Only the total sheet of the fuel workbook (plus its per-center sheet)
  carbonreport general --source fuel=./combustibles.xlsx --sheet "fuel=Combustibles - Total" --output ./general.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		language := cfg.Report.Language
		if strings.TrimSpace(generalLanguage) != "" {
			language = generalLanguage
		}

		sources, err := parseGeneralSources(generalSources, generalSheets)
		if err != nil {
			return err
		}

		result, err := report.BuildGeneral(report.GeneralRequest{
			Sources:    sources,
			OutputPath: generalOutput,
			Labels:     report.LabelsFor(language),
			Logger:     newLogger(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "General report completed. Modules: %d, Sheets: %d, File: %s\n", len(sources), len(result.Sheets), result.OutputPath)
		for _, sheet := range result.Sheets {
			fmt.Fprintf(out, "  %s\n", sheet)
		}
		if result.Converted {
			fmt.Fprintf(out, "Note: .xls cannot be written, the workbook was saved as %s\n", result.OutputPath)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "Warning: %s\n", warning)
		}
		return nil
	},
}

// parseGeneralSources reads type=path sources and type=sheet selections.
// Sources keep the order they were given in.
func parseGeneralSources(rawSources, rawSheets []string) ([]report.GeneralSource, error) {
	if len(rawSources) == 0 {
		return nil, fmt.Errorf("at least one --source is required")
	}

	sources := make([]report.GeneralSource, 0, len(rawSources))
	index := make(map[energy.Type]int, len(rawSources))
	for _, raw := range rawSources {
		name, path, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid source %q (expected type=path)", raw)
		}
		typ, err := energy.ParseType(name)
		if err != nil {
			return nil, err
		}
		if _, exists := index[typ]; exists {
			return nil, fmt.Errorf("source for %s given twice", typ)
		}
		index[typ] = len(sources)
		sources = append(sources, report.GeneralSource{Type: typ, Path: strings.TrimSpace(path)})
	}

	for _, raw := range rawSheets {
		name, sheet, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(sheet) == "" {
			return nil, fmt.Errorf("invalid sheet selection %q (expected type=sheet)", raw)
		}
		typ, err := energy.ParseType(name)
		if err != nil {
			return nil, err
		}
		i, exists := index[typ]
		if !exists {
			return nil, fmt.Errorf("sheet selection for %s without a --source", typ)
		}
		sources[i].Sheets = append(sources[i].Sheets, strings.TrimSpace(sheet))
	}
	return sources, nil
}

func init() {
	rootCmd.AddCommand(generalCmd)

	generalCmd.Flags().StringArrayVar(&generalSources, "source", nil, "Module workbook type=path (repeatable)")
	generalCmd.Flags().StringArrayVar(&generalSheets, "sheet", nil, "Sheet to copy from a module workbook type=sheet (repeatable, default: all sheets)")
	generalCmd.Flags().StringVarP(&generalOutput, "output", "o", "", "Output workbook path")
	generalCmd.Flags().StringVar(&generalLanguage, "lang", "", "Summary language: es|en (default: report.language from config)")

	_ = generalCmd.MarkFlagRequired("source")
	_ = generalCmd.MarkFlagRequired("output")
}
