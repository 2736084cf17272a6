package report

import (
	"fmt"
	"regexp"
	"strings"

	"carbonreport/internal/textnorm"

	"github.com/xuri/excelize/v2"
)

// ResolveColumn finds the column letter whose header matches label,
// ignoring case, accents and spacing.
func ResolveColumn(headers []string, label string) (string, bool) {
	want := textnorm.Fold(label)
	if want == "" {
		return "", false
	}
	for i, header := range headers {
		if textnorm.Fold(header) != want {
			continue
		}
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", false
		}
		return letter, true
	}
	return "", false
}

// ResolveAnyColumn tries labels in order and returns the first match.
func ResolveAnyColumn(headers []string, labels ...string) (string, bool) {
	for _, label := range labels {
		if letter, ok := ResolveColumn(headers, label); ok {
			return letter, true
		}
	}
	return "", false
}

// QuoteSheet renders a sheet name for use in a cell reference.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// SumIfFormula sums valueColumn of sheet over the rows whose criteriaColumn
// equals the value of criteriaCell. The value is compared literally: the
// leading "=" stops text such as ">5" from acting as an operator and "~"
// escapes the wildcards * and ?.
func SumIfFormula(sheet, criteriaColumn, criteriaCell, valueColumn string) string {
	ref := QuoteSheet(sheet)
	return fmt.Sprintf("SUMIF(%s!$%s:$%s,%s,%s!$%s:$%s)", ref, criteriaColumn, criteriaColumn, literalCriterion(criteriaCell), ref, valueColumn, valueColumn)
}

func literalCriterion(cell string) string {
	return fmt.Sprintf(`"="&SUBSTITUTE(SUBSTITUTE(SUBSTITUTE(%s,"~","~~"),"*","~*"),"?","~?")`, cell)
}

// SumFormula sums rows first..last of column in sheet. An empty range
// (last < first) still yields a valid formula over the first row.
func SumFormula(sheet, column string, first, last int) string {
	if last < first {
		last = first
	}
	return fmt.Sprintf("SUM(%s!%s%d:%s%d)", QuoteSheet(sheet), column, first, column, last)
}

// RewriteSheetRefs replaces references to renamed sheets inside a formula.
// Both quoted ('My sheet'!A1) and bare (Sheet1!A1) references are handled;
// text inside string literals is left alone. Every reference is looked up
// once, so renames never chain.
func RewriteSheetRefs(formula string, renames map[string]string) string {
	if len(renames) == 0 {
		return formula
	}

	segments := splitStringLiterals(formula)
	for i, segment := range segments {
		if strings.HasPrefix(segment, `"`) {
			continue
		}
		segments[i] = rewriteSegment(segment, renames)
	}
	return strings.Join(segments, "")
}

var sheetRef = regexp.MustCompile(`'((?:[^']|'')+)'!|([A-Za-z_][A-Za-z0-9_.]*)!`)

func rewriteSegment(segment string, renames map[string]string) string {
	matches := sheetRef.FindAllStringSubmatchIndex(segment, -1)
	if len(matches) == 0 {
		return segment
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		var name string
		switch {
		case m[2] >= 0:
			name = strings.ReplaceAll(segment[m[2]:m[3]], "''", "'")
		case m[0] > 0 && strings.ContainsRune("'!._0123456789", rune(segment[m[0]-1])):
			continue
		default:
			name = segment[m[4]:m[5]]
		}
		to, ok := renames[name]
		if !ok || to == name {
			continue
		}
		b.WriteString(segment[last:m[0]])
		b.WriteString(QuoteSheet(to))
		b.WriteByte('!')
		last = m[1]
	}
	b.WriteString(segment[last:])
	return b.String()
}

// splitStringLiterals cuts a formula into alternating code and "literal"
// segments so references are only rewritten outside string constants.
func splitStringLiterals(formula string) []string {
	segments := make([]string, 0, 4)
	var current strings.Builder
	inString := false
	for i := 0; i < len(formula); i++ {
		c := formula[i]
		if c == '"' {
			if inString && i+1 < len(formula) && formula[i+1] == '"' {
				current.WriteString(`""`)
				i++
				continue
			}
			if inString {
				current.WriteByte(c)
				segments = append(segments, current.String())
				current.Reset()
				inString = false
				continue
			}
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
			inString = true
		}
		current.WriteByte(c)
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}
