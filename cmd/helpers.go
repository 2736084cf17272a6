package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"carbonreport/energy"
	"carbonreport/internal/parse"

	"github.com/xuri/excelize/v2"
)

func columnLetter(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("column index must not be negative: %d", index)
	}
	return excelize.ColumnNumberToName(index + 1)
}

func joinFields(fields []energy.Field) string {
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = string(field)
	}
	return strings.Join(names, ", ")
}

// readInvoiceList reads one invoice number per line. Lines may be CSV rows;
// only the first field counts. Empty lines and lines starting with # are
// ignored.
func readInvoiceList(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read invoice list %s: %w", path, err)
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	invoices := make([]string, 0, 64)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if invoice := strings.TrimSpace(parse.CSVLine(line)[0]); invoice != "" {
			invoices = append(invoices, invoice)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read invoice list %s: %w", path, err)
	}
	return invoices, nil
}

// formatLines renders skipped line numbers for summaries.
func formatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprintf("%d", line)
	}
	return strings.Join(parts, ", ")
}

// parseFactorFlag reads a factor given on the command line, accepting comma
// or dot decimals.
func parseFactorFlag(name, raw string) (float64, error) {
	value, ok := parse.Number(raw)
	if !ok {
		return 0, fmt.Errorf("invalid --%s value %q", name, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("--%s must not be negative", name)
	}
	return value, nil
}
