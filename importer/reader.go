package importer

import (
	"errors"
	"fmt"
	"strings"
)

var ErrSheetNotFound = errors.New("sheet not found")

// Reader loads one sheet of a source file. An empty sheet name selects the
// first sheet.
type Reader interface {
	Sheets(path string) ([]string, error)
	Read(path, sheet string) (*Table, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelReader{}, nil
	case "xls":
		return &XLSReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

func pickSheet(path, sheet string, available []string) (string, error) {
	if len(available) == 0 {
		return "", fmt.Errorf("%s has no sheets", path)
	}
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return available[0], nil
	}
	for _, name := range available {
		if name == sheet {
			return name, nil
		}
	}
	for _, name := range available {
		if strings.EqualFold(name, sheet) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s (available: %s)", ErrSheetNotFound, sheet, path, strings.Join(available, ", "))
}
