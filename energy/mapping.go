package energy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"carbonreport/internal/textnorm"

	"github.com/xuri/excelize/v2"
)

var ErrIncompleteMapping = errors.New("column mapping is incomplete")

// ColumnMapping holds the zero-based source column of every logical field.
// Unmapped fields report -1. The value is immutable; With returns a copy.
type ColumnMapping struct {
	typ     Type
	columns map[Field]int
}

func NewColumnMapping(t Type, columns map[Field]int) ColumnMapping {
	copied := make(map[Field]int, len(columns))
	for field, index := range columns {
		if index >= 0 {
			copied[field] = index
		}
	}
	return ColumnMapping{typ: t, columns: copied}
}

func (m ColumnMapping) Type() Type {
	return m.typ
}

func (m ColumnMapping) Index(field Field) int {
	if index, ok := m.columns[field]; ok {
		return index
	}
	return -1
}

func (m ColumnMapping) With(field Field, index int) ColumnMapping {
	next := NewColumnMapping(m.typ, m.columns)
	if index < 0 {
		delete(next.columns, field)
		return next
	}
	next.columns[field] = index
	return next
}

// Missing lists the required fields without a column, in schema order.
func (m ColumnMapping) Missing() []Field {
	schema, err := SchemaFor(m.typ)
	if err != nil {
		return nil
	}
	missing := make([]Field, 0)
	for _, field := range schema.Required {
		if m.Index(field) < 0 {
			missing = append(missing, field)
		}
	}
	return missing
}

func (m ColumnMapping) IsComplete() bool {
	if _, err := SchemaFor(m.typ); err != nil {
		return false
	}
	return len(m.Missing()) == 0
}

// Validate returns ErrIncompleteMapping naming the missing fields.
func (m ColumnMapping) Validate() error {
	if _, err := SchemaFor(m.typ); err != nil {
		return err
	}
	missing := m.Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, field := range missing {
		names[i] = string(field)
	}
	return fmt.Errorf("%w for %s: missing %s", ErrIncompleteMapping, m.typ, strings.Join(names, ", "))
}

func (m ColumnMapping) String() string {
	schema, err := SchemaFor(m.typ)
	if err != nil {
		return string(m.typ)
	}
	parts := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		index := m.Index(field)
		if index < 0 {
			continue
		}
		letter, _ := excelize.ColumnNumberToName(index + 1)
		parts = append(parts, fmt.Sprintf("%s=%s", field, letter))
	}
	return strings.Join(parts, " ")
}

// ParseField validates a field name against the schema of t.
func ParseField(t Type, name string) (Field, error) {
	schema, err := SchemaFor(t)
	if err != nil {
		return "", err
	}
	field := Field(strings.ToLower(strings.TrimSpace(name)))
	if !schema.HasField(field) {
		return "", fmt.Errorf("unknown field %q for %s", name, t)
	}
	return field, nil
}

// ParseColumnRef accepts a zero-based index ("3") or a spreadsheet column
// letter ("D") and returns the zero-based index.
func ParseColumnRef(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, fmt.Errorf("empty column reference")
	}
	if index, err := strconv.Atoi(ref); err == nil {
		if index < 0 {
			return -1, fmt.Errorf("column index must not be negative: %d", index)
		}
		return index, nil
	}
	number, err := excelize.ColumnNameToNumber(strings.ToUpper(ref))
	if err != nil {
		return -1, fmt.Errorf("parse column reference %q: %w", ref, err)
	}
	return number - 1, nil
}

// ParseAssignment parses one "field=column" pair.
func ParseAssignment(t Type, raw string) (Field, int, error) {
	name, ref, ok := strings.Cut(raw, "=")
	if !ok {
		return "", -1, fmt.Errorf("invalid mapping %q (expected field=column)", raw)
	}
	field, err := ParseField(t, name)
	if err != nil {
		return "", -1, err
	}
	index, err := ParseColumnRef(ref)
	if err != nil {
		return "", -1, err
	}
	return field, index, nil
}

// GuessMapping matches header labels against the field aliases of t. Exact
// matches win over prefix matches; a column is assigned at most once.
func GuessMapping(t Type, headers []string) ColumnMapping {
	schema, err := SchemaFor(t)
	if err != nil {
		return NewColumnMapping(t, nil)
	}

	folded := make([]string, len(headers))
	for i, header := range headers {
		folded[i] = textnorm.Fold(header)
	}

	columns := make(map[Field]int, len(schema.Fields))
	used := make(map[int]bool, len(headers))
	assign := func(match func(header, alias string) bool) {
		for _, field := range schema.Fields {
			if _, done := columns[field]; done {
				continue
			}
			for _, alias := range schema.Aliases[field] {
				want := textnorm.Fold(alias)
				found := -1
				for i, header := range folded {
					if header == "" || used[i] {
						continue
					}
					if match(header, want) {
						found = i
						break
					}
				}
				if found >= 0 {
					columns[field] = found
					used[found] = true
					break
				}
			}
		}
	}

	assign(func(header, alias string) bool { return header == alias })
	assign(func(header, alias string) bool { return strings.HasPrefix(header, alias+" ") })

	return NewColumnMapping(t, columns)
}
