package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader reads delimited text exports. UTF-8 and UTF-16 (with BOM) are
// decoded as-is; anything else that is not valid UTF-8 is read as
// Windows-1252, the usual encoding of Spanish utility portals. The
// delimiter is ';' when the first line has more semicolons than commas.
type CSVReader struct{}

func (r *CSVReader) Sheets(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	return []string{csvSheetName(path)}, nil
}

func (r *CSVReader) Read(path, sheet string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}

	name := csvSheetName(path)
	if _, err := pickSheet(path, sheet, []string{name}); err != nil {
		return nil, err
	}

	content, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("decode csv file %s: %w", path, err)
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := make([][]string, 0, 128)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}

	return NewTable(path, name, rows), nil
}

func decodeText(raw []byte) (string, error) {
	hasUTF16BOM := bytes.HasPrefix(raw, []byte{0xff, 0xfe}) || bytes.HasPrefix(raw, []byte{0xfe, 0xff})
	if hasUTF16BOM || utf8.Valid(raw) {
		decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		decoded, _, err := transform.Bytes(decoder, raw)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func detectDelimiter(content string) rune {
	firstLine, _, _ := strings.Cut(content, "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

func csvSheetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
