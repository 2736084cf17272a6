package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads .xlsx/.xlsm workbooks. Cells are read unformatted so
// dates arrive as serial numbers and amounts without display grouping.
// Formula cells without a cached result are evaluated.
type ExcelReader struct{}

func (r *ExcelReader) Sheets(path string) ([]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	return file.GetSheetList(), nil
}

func (r *ExcelReader) Read(path, sheet string) (*Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName, err := pickSheet(path, sheet, file.GetSheetList())
	if err != nil {
		return nil, err
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for rowIndex := range rows {
		rows[rowIndex] = evaluateFormulas(file, sheetName, rowIndex, rows[rowIndex], width)
	}

	return NewTable(path, sheetName, rows), nil
}

func evaluateFormulas(file *excelize.File, sheet string, rowIndex int, row []string, width int) []string {
	for col := 0; col < width; col++ {
		if col < len(row) && row[col] != "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+1)
		if err != nil {
			continue
		}
		formula, err := file.GetCellFormula(sheet, cell)
		if err != nil || formula == "" {
			continue
		}
		value, err := file.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = value
	}
	return row
}
