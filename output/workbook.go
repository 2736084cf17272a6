// Package output holds the excelize plumbing shared by the generated
// workbooks: output path handling, cell styles and row writing.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ResolvePath returns the path the workbook is actually written to. Legacy
// .xls cannot be produced, so it becomes .xlsx next to it; a path without
// extension gets .xlsx. converted reports the .xls case.
func ResolvePath(path string) (resolved string, converted bool) {
	extension := strings.ToLower(filepath.Ext(path))
	switch extension {
	case ".xlsx", ".xlsm":
		return path, false
	case ".xls":
		return strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx", true
	case "":
		return path + ".xlsx", false
	default:
		return path, false
	}
}

// ValidateFormat rejects output extensions excelize cannot write.
func ValidateFormat(path string) error {
	resolved, _ := ResolvePath(path)
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".xlsx", ".xlsm":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (use .xlsx, .xlsm or .xls)", filepath.Ext(path))
	}
}

// Save writes file to the resolved form of path, creating the directory.
func Save(file *excelize.File, path string) (string, error) {
	if err := ValidateFormat(path); err != nil {
		return "", err
	}
	resolved, _ := ResolvePath(path)
	if dir := filepath.Dir(resolved); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	if err := file.SaveAs(resolved); err != nil {
		return "", fmt.Errorf("save excel output %s: %w", resolved, err)
	}
	return resolved, nil
}

// Styles are the style ids registered in one workbook.
type Styles struct {
	Header   int
	Date     int
	Quantity int
	Factor   int
	Emission int
	Total    int
}

func NewStyles(file *excelize.File) (Styles, error) {
	var styles Styles
	var err error

	styles.Header, err = file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#8EA9DB", Style: 1},
		},
	})
	if err != nil {
		return styles, fmt.Errorf("create header style: %w", err)
	}

	dateFormat := "dd/mm/yyyy"
	if styles.Date, err = file.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat}); err != nil {
		return styles, fmt.Errorf("create date style: %w", err)
	}
	if styles.Quantity, err = file.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return styles, fmt.Errorf("create quantity style: %w", err)
	}
	factorFormat := "0.000000"
	if styles.Factor, err = file.NewStyle(&excelize.Style{CustomNumFmt: &factorFormat}); err != nil {
		return styles, fmt.Errorf("create factor style: %w", err)
	}
	emissionFormat := "#,##0.0000"
	if styles.Emission, err = file.NewStyle(&excelize.Style{CustomNumFmt: &emissionFormat}); err != nil {
		return styles, fmt.Errorf("create emission style: %w", err)
	}
	styles.Total, err = file.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &emissionFormat,
	})
	if err != nil {
		return styles, fmt.Errorf("create total style: %w", err)
	}
	return styles, nil
}

// WriteRow sets values on one row starting at column A. Nil values leave
// the cell empty.
func WriteRow(file *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}
	return nil
}

// WriteHeader writes a styled header on row 1 and sizes the columns.
func WriteHeader(file *excelize.File, sheet string, headers []string, style int) error {
	values := make([]any, len(headers))
	for i, header := range headers {
		values[i] = header
	}
	if err := WriteRow(file, sheet, 1, values); err != nil {
		return fmt.Errorf("set excel header: %w", err)
	}
	if len(headers) == 0 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style excel header: %w", err)
	}
	for i, header := range headers {
		column, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len([]rune(header))) + 4
		if width < 10 {
			width = 10
		}
		if width > 40 {
			width = 40
		}
		if err := file.SetColWidth(sheet, column, column, width); err != nil {
			return fmt.Errorf("size column %s: %w", column, err)
		}
	}
	return file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// StyleColumn applies style to rows first..last of column.
func StyleColumn(file *excelize.File, sheet, column string, first, last, style int) error {
	if last < first {
		return nil
	}
	return file.SetCellStyle(sheet, fmt.Sprintf("%s%d", column, first), fmt.Sprintf("%s%d", column, last), style)
}
