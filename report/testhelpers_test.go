package report

import (
	"testing"

	"carbonreport/energy"
	"carbonreport/importer"

	"github.com/xuri/excelize/v2"
)

// schemaOrderMapping maps every field of t to its position in the schema,
// matching tables built with schemaOrderTable.
func schemaOrderMapping(t energy.Type) energy.ColumnMapping {
	schema := energy.MustSchema(t)
	columns := make(map[energy.Field]int, len(schema.Fields))
	for i, field := range schema.Fields {
		columns[field] = i
	}
	return energy.NewColumnMapping(t, columns)
}

func schemaOrderTable(t energy.Type, rows ...[]string) *importer.Table {
	schema := energy.MustSchema(t)
	header := make([]string, len(schema.Fields))
	for i, field := range schema.Fields {
		header[i] = string(field)
	}
	return importer.NewTable("source.xlsx", "Hoja1", append([][]string{header}, rows...))
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { _ = file.Close() })
	return file
}

func assertFormula(t *testing.T, file *excelize.File, sheet, cell, want string) {
	t.Helper()

	got, err := file.GetCellFormula(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellFormula(%s!%s): %v", sheet, cell, err)
	}
	if got != want {
		t.Fatalf("unexpected formula in %s!%s:\n got %s\nwant %s", sheet, cell, got, want)
	}
}

func assertCell(t *testing.T, file *excelize.File, sheet, cell, want string) {
	t.Helper()

	got, err := file.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s): %v", sheet, cell, err)
	}
	if got != want {
		t.Fatalf("unexpected value in %s!%s: got %q, want %q", sheet, cell, got, want)
	}
}
