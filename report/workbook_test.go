package report

import (
	"errors"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"carbonreport/cups"
	"carbonreport/energy"
	"carbonreport/factors"

	"github.com/xuri/excelize/v2"
)

func electricityRequest(t *testing.T, output string) Request {
	t.Helper()

	return Request{
		Mapping: schemaOrderMapping(energy.Electricity),
		Year:    2024,
		Table: schemaOrderTable(energy.Electricity,
			[]string{"Centro Norte", "", "F-1", "Iberdrola", "", "01/01/2024", "31/12/2024", "1000"},
			[]string{"", "ES0021000000000001AB", "F-2", "Endesa", "", "01/07/2024", "31/12/2024", "500"},
			[]string{"Centro Norte", "", "F-3", "Iberdrola", "", "01/01/2024", "30/06/2024", "300"},
		),
		OutputPath: output,
		Factors: factors.Table{
			factors.Key("Iberdrola", ""): {Entity: "Iberdrola", Year: 2024, Market: 0.2, Location: 0.25},
			factors.Key("Endesa", ""):    {Entity: "Endesa", Year: 2024, Market: 0.3, Location: 0.25},
		},
		Centers: map[string]cups.Entry{
			cups.Key("ES0021000000000001AB"): {CUPS: "ES0021000000000001AB", CenterName: "Centro Sur"},
		},
	}
}

func TestExport_WritesFormulaSheets(t *testing.T) {
	t.Parallel()

	req := electricityRequest(t, filepath.Join(t.TempDir(), "electricidad.xlsx"))
	result, err := Export(req)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	wantSheets := []string{"Electricidad - Extendido", "Electricidad - Por centro", "Electricidad - Total"}
	if !reflect.DeepEqual(result.Sheets, wantSheets) {
		t.Fatalf("unexpected sheets: %#v", result.Sheets)
	}
	if result.RowsWritten != 3 || !reflect.DeepEqual(result.Centers, []string{"Centro Norte", "Centro Sur"}) {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}

	file := openWorkbook(t, result.OutputPath)
	if got := file.GetSheetList(); !reflect.DeepEqual(got, wantSheets) {
		t.Fatalf("unexpected workbook sheets: %#v", got)
	}

	detailed, perCenter, total := wantSheets[0], wantSheets[1], wantSheets[2]
	assertCell(t, file, detailed, "B1", "Centro")
	assertCell(t, file, detailed, "J1", "Consumo aplicable (kWh)")
	assertCell(t, file, detailed, "M1", "Emisiones mercado (tCO2e)")
	assertCell(t, file, detailed, "B3", "Centro Sur")

	assertCell(t, file, perCenter, "A2", "Centro Norte")
	assertCell(t, file, perCenter, "A3", "Centro Sur")
	assertFormula(t, file, perCenter, "B2", SumIfFormula("Electricidad - Extendido", "B", "$A2", "J"))
	assertFormula(t, file, perCenter, "C3", SumIfFormula("Electricidad - Extendido", "B", "$A3", "M"))
	assertFormula(t, file, perCenter, "D2", SumIfFormula("Electricidad - Extendido", "B", "$A2", "N"))

	assertCell(t, file, total, "B1", "Emisiones mercado (tCO2e)")
	assertFormula(t, file, total, "A2", "SUM('Electricidad - Por centro'!B2:B3)")
	assertFormula(t, file, total, "C2", "SUM('Electricidad - Por centro'!D2:D3)")

	// Totals must follow the formulas, not copies of computed values.
	value, err := file.CalcCellValue(total, "B2", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("CalcCellValue: %v", err)
	}
	market, err := strconv.ParseFloat(value, 64)
	if err != nil {
		t.Fatalf("parse total %q: %v", value, err)
	}
	assertClose(t, "market total", market, 0.2+0.15+0.06)
}

func TestExport_SingleFactorModuleEnglish(t *testing.T) {
	t.Parallel()

	req := Request{
		Mapping: schemaOrderMapping(energy.Refrigerant),
		Year:    2024,
		Table: schemaOrderTable(energy.Refrigerant,
			[]string{"HQ", "R-1", "Cool Ltd", "01/06/2024", "", "", "R-410A", "3"},
		),
		Factors: factors.Table{
			factors.Key("R-410A", ""): {Entity: "R-410A", Market: 2088, Location: 2088},
		},
		Labels:     LabelsFor("en"),
		OutputPath: filepath.Join(t.TempDir(), "refrigerants.xlsx"),
	}

	result, err := Export(req)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	file := openWorkbook(t, result.OutputPath)
	perCenter := "Refrigerants - Per center"
	assertCell(t, file, perCenter, "B1", "Applicable quantity (kg)")
	assertCell(t, file, perCenter, "C1", "Emissions (tCO2e)")
	// Extended layout: No., Center, Invoice, Provider, Invoice date, Start,
	// End, Refrigerant type, Quantity, Applicable, Factor, Emissions.
	assertFormula(t, file, perCenter, "C2", SumIfFormula("Refrigerants - Extended", "B", "$A2", "L"))
	assertFormula(t, file, "Refrigerants - Total", "B2", "SUM('Refrigerants - Per center'!C2:C2)")
}

func TestExport_SourceErrorStillWritesWorkbook(t *testing.T) {
	t.Parallel()

	req := electricityRequest(t, filepath.Join(t.TempDir(), "legacy.xls"))
	req.Table = nil
	req.SourceErr = errors.New("open excel file: no such file")

	result, err := Export(req)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.SourceErr == nil {
		t.Fatalf("expected source error to be reported")
	}
	if !result.Converted || filepath.Ext(result.OutputPath) != ".xlsx" {
		t.Fatalf("expected .xls output converted to .xlsx, got %s", result.OutputPath)
	}
	if result.RowsWritten != 0 {
		t.Fatalf("expected no rows, got %d", result.RowsWritten)
	}

	file := openWorkbook(t, result.OutputPath)
	assertCell(t, file, "Electricidad - Extendido", "A1", "Nº")
	assertCell(t, file, "Electricidad - Por centro", "A2", "")
	assertFormula(t, file, "Electricidad - Total", "A2", "SUM('Electricidad - Por centro'!B2:B2)")
}

func TestExport_PerCenterSumsMatchDetail(t *testing.T) {
	t.Parallel()

	req := Request{
		Mapping: schemaOrderMapping(energy.Electricity),
		Year:    2024,
		Table: schemaOrderTable(energy.Electricity,
			[]string{"Edificio*", "", "F-1", "Iberdrola", "", "01/01/2024", "31/12/2024", "100"},
			[]string{"Edificio Norte", "", "F-2", "Iberdrola", "", "01/01/2024", "31/12/2024", "50"},
			[]string{"Centro A", "", "F-3", "Iberdrola", "", "01/01/2024", "31/12/2024", "10"},
			[]string{"CENTRO A", "", "F-4", "Iberdrola", "", "01/01/2024", "31/12/2024", "20"},
			[]string{">5", "", "F-5", "Iberdrola", "", "01/01/2024", "31/12/2024", "7"},
		),
		OutputPath: filepath.Join(t.TempDir(), "centros.xlsx"),
	}

	result, err := Export(req)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if want := []string{"Edificio*", "Edificio Norte", "Centro A", ">5"}; !reflect.DeepEqual(result.Centers, want) {
		t.Fatalf("unexpected centers: %#v", result.Centers)
	}

	file := openWorkbook(t, result.OutputPath)
	detailed, perCenter := "Electricidad - Extendido", "Electricidad - Por centro"
	assertCell(t, file, detailed, "B5", "Centro A")
	assertCell(t, file, perCenter, "A2", "Edificio*")
	assertFormula(t, file, perCenter, "B2", SumIfFormula(detailed, "B", "$A2", "J"))

	for cell, want := range map[string]float64{"B3": 50, "B4": 30} {
		value, err := file.CalcCellValue(perCenter, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("CalcCellValue(%s): %v", cell, err)
		}
		got, err := strconv.ParseFloat(value, 64)
		if err != nil {
			t.Fatalf("parse %s value %q: %v", cell, value, err)
		}
		assertClose(t, cell, got, want)
	}
}

func TestExport_RejectsIncompleteMapping(t *testing.T) {
	t.Parallel()

	req := electricityRequest(t, filepath.Join(t.TempDir(), "out.xlsx"))
	req.Mapping = req.Mapping.With(energy.FieldConsumption, -1)

	if _, err := Export(req); !errors.Is(err, energy.ErrIncompleteMapping) {
		t.Fatalf("expected incomplete mapping error, got %v", err)
	}
}

func TestExport_SourceErrorWithTypeOnlyMapping(t *testing.T) {
	t.Parallel()

	req := electricityRequest(t, filepath.Join(t.TempDir(), "gas.xlsx"))
	req.Mapping = energy.NewColumnMapping(energy.Gas, nil)
	req.Table = nil
	req.SourceErr = errors.New("open excel file: no such file")

	result, err := Export(req)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantSheets := []string{"Gas - Extendido", "Gas - Por centro", "Gas - Total"}
	if !reflect.DeepEqual(result.Sheets, wantSheets) {
		t.Fatalf("unexpected sheets: %#v", result.Sheets)
	}
	file := openWorkbook(t, result.OutputPath)
	assertCell(t, file, "Gas - Extendido", "A1", "Nº")
	assertCell(t, file, "Gas - Extendido", "A2", "")
}

func TestExport_RejectsUnsupportedOutput(t *testing.T) {
	t.Parallel()

	req := electricityRequest(t, filepath.Join(t.TempDir(), "out.csv"))
	if _, err := Export(req); err == nil {
		t.Fatalf("expected csv output to be rejected")
	}
}
