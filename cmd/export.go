package cmd

import (
	"fmt"
	"strings"

	"carbonreport/config"
	"carbonreport/cups"
	"carbonreport/energy"
	"carbonreport/factors"
	"carbonreport/importer"
	"carbonreport/report"

	"github.com/spf13/cobra"
)

var (
	exportInput    string
	exportFormat   string
	exportSheet    string
	exportType     string
	exportColumns  []string
	exportPreset   string
	exportYear     int
	exportOutput   string
	exportInvoices string
	exportLanguage string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one energy module to an Excel workbook with emission formulas",
	Long: `Read a supplier spreadsheet, pro-rate every row into the reporting year and
write an Excel workbook with three sheets:
- Extended: one row per invoice with applicable amount, factors and emissions
- Per center: SUMIF formulas over the extended sheet, one row per center
- Total: SUM formulas over the per-center sheet

The column mapping comes from, in this order:
- the preset given with --preset,
- a saved mapping whose file_template matches the input file name,
- header auto-detection,
and --map flags override single fields of any of them.

When the input cannot be read the workbook is still written with empty sheets
and the read error is reported.`,
	Example: `
  # Explicit mapping
  carbonreport export -i Iberdrola_2024.xlsx --type electricity \
    --map center=A --map invoice=C --map provider=D --map start=E --map end=F --map consumption=G \
    --output ./electricidad_2024.xlsx

  # Saved preset, year 2023, English labels
  carbonreport export -i Iberdrola_2023.xlsx --preset iberdrola --year 2023 --lang en --output ./electricity_2023.xlsx

  # Keep only the invoices listed in a file
  carbonreport export -i flota.csv --type fuel --invoices ./facturas_validas.txt --output ./combustibles.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		year := cfg.Report.Year
		if exportYear != 0 {
			year = exportYear
		}
		language := cfg.Report.Language
		if strings.TrimSpace(exportLanguage) != "" {
			language = exportLanguage
		}

		preset, hasPreset, err := resolveExportPreset(*cfg, exportInput, exportPreset, exportType)
		if err != nil {
			return err
		}
		sheet := exportSheet
		if sheet == "" && hasPreset {
			sheet = preset.Sheet
		}

		table, sourceErr := importer.Load(exportInput, exportFormat, sheet)

		mapping, origin, err := resolveExportMapping(preset, hasPreset, exportType, exportColumns, table)
		if err != nil {
			return err
		}
		if err := checkExportMapping(mapping, origin, sourceErr); err != nil {
			return err
		}
		energyType := mapping.Type()

		factorStore := factors.NewStore(cfg.Data.Dir)
		factorTable, factorStats, err := factorStore.LoadWithStats(energyType, year)
		if err != nil {
			return err
		}
		locationFallback, _, err := factorStore.LocationFactor(energyType, year)
		if err != nil {
			return err
		}

		var centers map[string]cups.Entry
		if energy.MustSchema(energyType).HasField(energy.FieldCUPS) {
			centers, err = cups.NewStore(cfg.Data.Dir).Index()
			if err != nil {
				return err
			}
		}

		var invoices []string
		if exportInvoices != "" {
			invoices, err = readInvoiceList(exportInvoices)
			if err != nil {
				return err
			}
		}

		result, err := report.Export(report.Request{
			Mapping:          mapping,
			Year:             year,
			Table:            table,
			SourceErr:        sourceErr,
			OutputPath:       exportOutput,
			Factors:          factorTable,
			LocationFallback: locationFallback,
			Centers:          centers,
			ValidInvoices:    invoices,
			Labels:           report.LabelsFor(language),
			NoCenterLabel:    cfg.Report.NoCenterLabel,
			Logger:           newLogger(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Export completed. Type: %s, Year: %d, Rows read: %d, Rows written: %d, Rows skipped: %d, Rows filtered: %d, Centers: %d, File: %s\n",
			energyType,
			year,
			result.RowsRead,
			result.RowsWritten,
			result.RowsSkipped,
			result.RowsFiltered,
			len(result.Centers),
			result.OutputPath,
		)
		fmt.Fprintf(out, "Mapping (%s): %s\n", origin, mapping)
		if result.Converted {
			fmt.Fprintf(out, "Note: .xls cannot be written, the workbook was saved as %s\n", result.OutputPath)
		}
		if result.SourceErr != nil {
			fmt.Fprintf(out, "Warning: source could not be read, sheets are empty: %v\n", result.SourceErr)
		}
		if factorStats.Missing {
			fmt.Fprintf(out, "Warning: no factor file for %s %d (%s)\n", energyType, year, factorStats.Path)
		}
		if factorStats.Skipped() > 0 {
			fmt.Fprintf(out, "Warning: skipped malformed factor lines in %s: %s\n", factorStats.Path, formatLines(factorStats.SkippedLines))
		}
		if result.InvalidDates > 0 || result.InvalidAmounts > 0 {
			fmt.Fprintf(out, "Warning: rows with unreadable dates: %d, unreadable amounts: %d (applicable amount set to 0)\n", result.InvalidDates, result.InvalidAmounts)
		}
		if len(result.UnmatchedEntities) > 0 {
			fmt.Fprintf(out, "Warning: no emission factor for %d entities, emissions set to 0: %s\n", len(result.UnmatchedEntities), strings.Join(result.UnmatchedEntities, "; "))
		}
		return nil
	},
}

// resolveExportPreset picks the saved mapping for the input: the named one,
// or the first whose file template matches.
func resolveExportPreset(cfg config.Config, input, presetName, energyType string) (config.MappingPreset, bool, error) {
	if strings.TrimSpace(presetName) != "" {
		preset, ok := cfg.FindMapping(presetName)
		if !ok {
			return config.MappingPreset{}, false, fmt.Errorf("mapping preset %q not found in config", presetName)
		}
		return preset, true, nil
	}

	typeFilter := ""
	if strings.TrimSpace(energyType) != "" {
		typ, err := energy.ParseType(energyType)
		if err != nil {
			return config.MappingPreset{}, false, err
		}
		typeFilter = string(typ)
	}
	preset, ok := importer.MatchPresetByTemplate(input, typeFilter, cfg.Mappings)
	return preset, ok, nil
}

// resolveExportMapping combines the preset (or the guessed mapping) with
// the explicit field=column flags. origin describes where the base mapping
// came from.
func resolveExportMapping(preset config.MappingPreset, hasPreset bool, energyType string, assignments []string, table *importer.Table) (energy.ColumnMapping, string, error) {
	var (
		mapping energy.ColumnMapping
		origin  string
	)
	switch {
	case hasPreset:
		presetMapping, err := preset.ColumnMapping()
		if err != nil {
			return energy.ColumnMapping{}, "", err
		}
		if strings.TrimSpace(energyType) != "" {
			typ, err := energy.ParseType(energyType)
			if err != nil {
				return energy.ColumnMapping{}, "", err
			}
			if typ != presetMapping.Type() {
				return energy.ColumnMapping{}, "", fmt.Errorf("mapping preset %q is for %s, not %s", preset.Name, presetMapping.Type(), typ)
			}
		}
		mapping, origin = presetMapping, "preset "+preset.Name
	case strings.TrimSpace(energyType) != "":
		typ, err := energy.ParseType(energyType)
		if err != nil {
			return energy.ColumnMapping{}, "", err
		}
		mapping, origin = energy.NewColumnMapping(typ, nil), "flags"
		if table != nil && len(assignments) == 0 {
			mapping, origin = energy.GuessMapping(typ, table.Headers), "detected headers"
		}
	default:
		return energy.ColumnMapping{}, "", fmt.Errorf("no mapping preset matches the input; pass --type or --preset")
	}

	for _, raw := range assignments {
		field, index, err := energy.ParseAssignment(mapping.Type(), raw)
		if err != nil {
			return energy.ColumnMapping{}, "", err
		}
		mapping = mapping.With(field, index)
	}
	return mapping, origin, nil
}

// checkExportMapping requires a complete mapping unless the source could not
// be read, in which case the header-only workbook needs just the energy type.
func checkExportMapping(mapping energy.ColumnMapping, origin string, sourceErr error) error {
	if sourceErr != nil {
		if _, err := energy.SchemaFor(mapping.Type()); err != nil {
			return err
		}
		return nil
	}
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("%w (mapping from %s: %s)", err, origin, mapping)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Input file path (.xlsx, .xlsm, .xls or .csv)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Input format: csv|excel|xls (optional, inferred from extension when omitted)")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", "", "Sheet to read (default: preset sheet or first sheet)")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "Energy type: electricity|gas|fuel|refrigerant")
	exportCmd.Flags().StringArrayVar(&exportColumns, "map", nil, "Field to column assignment field=column, letter or zero-based index (repeatable)")
	exportCmd.Flags().StringVar(&exportPreset, "preset", "", "Saved mapping name from config")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "Reporting year (default: report.year from config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output workbook path (.xlsx, .xlsm; .xls is written as .xlsx)")
	exportCmd.Flags().StringVar(&exportInvoices, "invoices", "", "File with the invoice numbers to keep, one per line")
	exportCmd.Flags().StringVar(&exportLanguage, "lang", "", "Sheet and column language: es|en (default: report.language from config)")

	_ = exportCmd.MarkFlagRequired("input")
	_ = exportCmd.MarkFlagRequired("output")
}
