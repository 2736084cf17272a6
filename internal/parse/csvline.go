package parse

import "strings"

// CSVLine splits one comma-separated line. Double quotes wrap fields that
// contain commas and "" inside quotes is a literal quote. An unterminated
// quote swallows the rest of the line instead of failing.
func CSVLine(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	fields := make([]string, 0, 8)

	var current strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, current.String())
}

// FormatCSVLine is the inverse of CSVLine. Line breaks inside values are
// flattened to spaces so every record stays on one line.
func FormatCSVLine(fields []string) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		field = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(field)
		if strings.ContainsAny(field, ",\"") || strings.TrimSpace(field) != field {
			field = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		parts[i] = field
	}
	return strings.Join(parts, ",")
}
