package importer

import (
	"errors"
	"fmt"
	"os"

	"github.com/extrame/xls"
)

// XLSReader reads legacy BIFF .xls workbooks. Formula cells carry the value
// cached by the program that saved the file.
type XLSReader struct{}

func (r *XLSReader) Sheets(path string) ([]string, error) {
	file, workbook, err := openXLS(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return sheetNames(workbook), nil
}

func (r *XLSReader) Read(path, sheet string) (*Table, error) {
	file, workbook, err := openXLS(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sheetName, err := pickSheet(path, sheet, sheetNames(workbook))
	if err != nil {
		return nil, err
	}

	var worksheet *xls.WorkSheet
	for i := 0; i < workbook.NumSheets(); i++ {
		if candidate := workbook.GetSheet(i); candidate != nil && candidate.Name == sheetName {
			worksheet = candidate
			break
		}
	}
	if worksheet == nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, ErrSheetNotFound)
	}

	rows := make([][]string, 0, int(worksheet.MaxRow)+1)
	for i := 0; i <= int(worksheet.MaxRow); i++ {
		row := worksheet.Row(i)
		if row == nil || row.LastCol() < 0 {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol()+1)
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}

	return NewTable(path, sheetName, rows), nil
}

// openXLS opens path and parses the workbook stream. Sheets are decoded
// lazily from the file, so it must stay open while they are read.
func openXLS(path string) (*os.File, *xls.WorkBook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xls file %s: %w", path, err)
	}
	workbook, err := xls.OpenReader(file, "utf-8")
	if err == nil && workbook == nil {
		err = errors.New("no workbook stream")
	}
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("open xls file %s: %w", path, err)
	}
	return file, workbook, nil
}

func sheetNames(workbook *xls.WorkBook) []string {
	names := make([]string, 0, workbook.NumSheets())
	for i := 0; i < workbook.NumSheets(); i++ {
		if sheet := workbook.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	return names
}
