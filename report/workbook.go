// Package report builds the carbon emission workbooks: one extended sheet
// with a row per invoice, a per-center sheet of SUMIF formulas over it and
// a total sheet of SUM formulas over the per-center sheet.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"carbonreport/cups"
	"carbonreport/energy"
	"carbonreport/factors"
	"carbonreport/importer"
	"carbonreport/output"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheet = errors.New("sheet not found in workbook")

// Request is everything one module export needs.
type Request struct {
	Mapping energy.ColumnMapping
	Year    int

	// Table is the source sheet. When it is nil, SourceErr explains why and
	// the export still produces the sheets with headers only.
	Table     *importer.Table
	SourceErr error

	OutputPath string

	Factors factors.Table
	// LocationFallback is the location factor used for entities without
	// their own entry (the electricity grid factor of the year).
	LocationFallback float64
	// Centers maps cups.Key codes to registered centers.
	Centers map[string]cups.Entry
	// ValidInvoices, when not empty, keeps only rows with these invoices.
	ValidInvoices []string

	Labels        Labels
	NoCenterLabel string
	Logger        *slog.Logger
}

func (r Request) noCenterLabel() string {
	if r.NoCenterLabel == "" {
		return "NO_CENTER"
	}
	return r.NoCenterLabel
}

func (r Request) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r Request) labels() Labels {
	if r.Labels.Language == "" {
		return LabelsFor("")
	}
	return r.Labels
}

type Result struct {
	OutputPath string
	Converted  bool
	Sheets     []string
	Stats
	SourceErr error
}

// Export writes the module workbook described by req. An incomplete
// mapping or a write failure is an error; a missing source only degrades
// the output. With SourceErr set no row is read, so only the mapping's
// energy type has to be known.
func Export(req Request) (*Result, error) {
	if req.SourceErr == nil {
		if err := req.Mapping.Validate(); err != nil {
			return nil, err
		}
	}
	schema, err := energy.SchemaFor(req.Mapping.Type())
	if err != nil {
		return nil, err
	}
	if err := output.ValidateFormat(req.OutputPath); err != nil {
		return nil, err
	}

	table := req.Table
	if req.SourceErr != nil {
		req.logger().Warn("source could not be read, writing empty report", "error", req.SourceErr)
		table = nil
	}

	rows, stats, err := Transform(req, table)
	if err != nil {
		return nil, err
	}

	labels := req.labels()
	file := excelize.NewFile()
	defer file.Close()

	sheets, err := writeModuleSheets(file, schema, labels, rows, stats.Centers)
	if err != nil {
		return nil, err
	}

	path, err := output.Save(file, req.OutputPath)
	if err != nil {
		return nil, err
	}
	_, converted := output.ResolvePath(req.OutputPath)

	return &Result{
		OutputPath: path,
		Converted:  converted,
		Sheets:     sheets,
		Stats:      stats,
		SourceErr:  req.SourceErr,
	}, nil
}

// writeModuleSheets fills a fresh workbook with the three module sheets and
// returns their names.
func writeModuleSheets(file *excelize.File, schema energy.Schema, labels Labels, rows []DetailRow, centers []string) ([]string, error) {
	detailedName := labels.SheetName(schema.Type, SheetExtended)
	perCenterName := labels.SheetName(schema.Type, SheetPerCenter)
	totalName := labels.SheetName(schema.Type, SheetTotal)

	if err := file.SetSheetName(file.GetSheetName(0), detailedName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{perCenterName, totalName} {
		if _, err := file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	styles, err := output.NewStyles(file)
	if err != nil {
		return nil, err
	}

	detailedHeaders, err := writeDetailed(file, detailedName, schema, labels, styles, rows)
	if err != nil {
		return nil, err
	}
	perCenterHeaders, err := writePerCenter(file, perCenterName, detailedName, detailedHeaders, schema, labels, styles, centers)
	if err != nil {
		return nil, err
	}
	if err := writeTotal(file, totalName, perCenterName, perCenterHeaders, len(centers), schema, labels, styles); err != nil {
		return nil, err
	}

	fullCalc := true
	if err := file.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return nil, fmt.Errorf("set calculation properties: %w", err)
	}
	if index, err := file.GetSheetIndex(totalName); err == nil && index >= 0 {
		file.SetActiveSheet(index)
	}
	return []string{detailedName, perCenterName, totalName}, nil
}

func writeDetailed(file *excelize.File, sheet string, schema energy.Schema, labels Labels, styles output.Styles, rows []DetailRow) ([]string, error) {
	columns := DetailColumns(schema)
	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = labels.Title(schema, column)
	}
	if err := output.WriteHeader(file, sheet, headers, styles.Header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := make([]any, len(columns))
		for j, column := range columns {
			values[j] = detailValue(i+1, row, column, schema)
		}
		if err := output.WriteRow(file, sheet, i+2, values); err != nil {
			return nil, err
		}
	}

	last := len(rows) + 1
	for i, column := range columns {
		letter, _ := excelize.ColumnNumberToName(i + 1)
		style := 0
		switch {
		case isDateColumn(column):
			style = styles.Date
		case column == ColAmount || column == ColApplicable:
			style = styles.Quantity
		case isFactorColumn(column):
			style = styles.Factor
		case isEmissionColumn(column):
			style = styles.Emission
		}
		if style == 0 {
			continue
		}
		if err := output.StyleColumn(file, sheet, letter, 2, last, style); err != nil {
			return nil, fmt.Errorf("style column %s: %w", letter, err)
		}
	}
	return headers, nil
}

func detailValue(sequence int, row DetailRow, column Column, schema energy.Schema) any {
	switch column {
	case ColID:
		return sequence
	case ColCenter:
		return row.Center
	case ColInvoiceDate:
		return dateOrText(row.InvoiceDate, row.Values[energy.FieldInvoiceDate])
	case ColStart:
		return dateOrText(row.Start, row.Values[energy.FieldStart])
	case ColEnd:
		return dateOrText(row.End, row.Values[energy.FieldEnd])
	case ColAmount:
		if !row.AmountOK {
			return textOrNil(row.Values[schema.Amount])
		}
		return row.Amount
	case ColApplicable:
		return row.Applicable
	case ColFactorMarket, ColFactor:
		return row.Factor.Market
	case ColFactorLocation:
		return row.Factor.Location
	case ColEmissionsMarket, ColEmissions:
		return row.Market
	case ColEmissionsLocation:
		return row.Location
	}
	for field, mapped := range fieldColumns {
		if mapped == column {
			return textOrNil(row.Values[field])
		}
	}
	return nil
}

func writePerCenter(file *excelize.File, sheet, detailedSheet string, detailedHeaders []string, schema energy.Schema, labels Labels, styles output.Styles, centers []string) ([]string, error) {
	metrics := MetricColumns(schema)
	headers := []string{labels.Title(schema, ColCenter)}
	for _, metric := range metrics {
		headers = append(headers, labels.Title(schema, metric))
	}
	if err := output.WriteHeader(file, sheet, headers, styles.Header); err != nil {
		return nil, err
	}

	centerColumn, ok := ResolveColumn(detailedHeaders, labels.Title(schema, ColCenter))
	if !ok {
		return nil, fmt.Errorf("resolve center column in %s", detailedSheet)
	}
	valueColumns := make([]string, len(metrics))
	for i, metric := range metrics {
		letter, ok := ResolveColumn(detailedHeaders, labels.Title(schema, metric))
		if !ok {
			return nil, fmt.Errorf("resolve column %q in %s", labels.Title(schema, metric), detailedSheet)
		}
		valueColumns[i] = letter
	}

	for i, center := range centers {
		row := i + 2
		if err := file.SetCellValue(sheet, fmt.Sprintf("A%d", row), center); err != nil {
			return nil, fmt.Errorf("set center A%d: %w", row, err)
		}
		for j, valueColumn := range valueColumns {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			formula := SumIfFormula(detailedSheet, centerColumn, fmt.Sprintf("$A%d", row), valueColumn)
			if err := file.SetCellFormula(sheet, cell, formula); err != nil {
				return nil, fmt.Errorf("set formula %s: %w", cell, err)
			}
		}
	}

	last := len(centers) + 1
	for j, metric := range metrics {
		letter, _ := excelize.ColumnNumberToName(j + 2)
		style := styles.Emission
		if metric == ColApplicable {
			style = styles.Quantity
		}
		if err := output.StyleColumn(file, sheet, letter, 2, last, style); err != nil {
			return nil, fmt.Errorf("style column %s: %w", letter, err)
		}
	}
	return headers, nil
}

func writeTotal(file *excelize.File, sheet, perCenterSheet string, perCenterHeaders []string, centerCount int, schema energy.Schema, labels Labels, styles output.Styles) error {
	metrics := MetricColumns(schema)
	headers := make([]string, len(metrics))
	for i, metric := range metrics {
		headers[i] = labels.Title(schema, metric)
	}
	if err := output.WriteHeader(file, sheet, headers, styles.Header); err != nil {
		return err
	}

	for i, header := range headers {
		sourceColumn, ok := ResolveColumn(perCenterHeaders, header)
		if !ok {
			return fmt.Errorf("resolve column %q in %s", header, perCenterSheet)
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := file.SetCellFormula(sheet, cell, SumFormula(perCenterSheet, sourceColumn, 2, centerCount+1)); err != nil {
			return fmt.Errorf("set formula %s: %w", cell, err)
		}
		if err := file.SetCellStyle(sheet, cell, cell, styles.Total); err != nil {
			return fmt.Errorf("style %s: %w", cell, err)
		}
	}
	return nil
}

func dateOrText(value time.Time, raw string) any {
	if !value.IsZero() {
		return value
	}
	return textOrNil(raw)
}

func textOrNil(value string) any {
	if value == "" {
		return nil
	}
	return value
}
