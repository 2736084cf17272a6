package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	commaGrouping = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)
	dotGrouping   = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3}){2,}$`)
)

// Number parses locale-ambiguous numeric text.
//
// When both ',' and '.' appear, the one appearing last is the decimal
// separator and the other one is dropped. A lone ',' is a thousands
// separator only when every group after it has exactly three digits
// ("1,234" -> 1234), otherwise it is the decimal mark ("21,5" -> 21.5). A
// single '.' is always decimal ("14.600" -> 14.6); repeated dots with
// three-digit groups are grouping ("1.234.567"). Currency symbols, units
// and other noise are stripped. Accounting parentheses mark a negative.
func Number(text string) (float64, bool) {
	value := strings.TrimSpace(spaceStripper.Replace(text))
	if value == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		negative = true
		value = strings.TrimSuffix(strings.TrimPrefix(value, "("), ")")
	}

	value = keepNumeric(value)
	if value == "" || value == "-" || value == "+" {
		return 0, false
	}

	lastComma := strings.LastIndex(value, ",")
	lastDot := strings.LastIndex(value, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			value = strings.ReplaceAll(value, ".", "")
			value = strings.Replace(value, ",", ".", 1)
		} else {
			value = strings.ReplaceAll(value, ",", "")
		}
	case lastComma >= 0:
		if commaGrouping.MatchString(value) {
			value = strings.ReplaceAll(value, ",", "")
		} else {
			value = strings.Replace(value, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(value, ".") > 1:
		if !dotGrouping.MatchString(value) {
			return 0, false
		}
		value = strings.ReplaceAll(value, ".", "")
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		parsed = -parsed
	}
	return parsed, true
}

var spaceStripper = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"\u2007", "",
	"'", "",
)

// keepNumeric drops everything except a leading sign, digits, separators
// and an exponent marker that sits between digits.
func keepNumeric(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= '0' && c <= '9', c == ',', c == '.':
			b.WriteByte(c)
		case (c == '-' || c == '+') && b.Len() == 0:
			b.WriteByte(c)
		case (c == 'e' || c == 'E') && b.Len() > 0 && isExponentTail(value[i+1:]):
			prev := b.String()[b.Len()-1]
			if prev >= '0' && prev <= '9' {
				b.WriteByte('e')
				if value[i+1] == '-' || value[i+1] == '+' {
					b.WriteByte(value[i+1])
					i++
				}
			}
		}
	}
	return b.String()
}

func isExponentTail(rest string) bool {
	if rest == "" {
		return false
	}
	if rest[0] == '-' || rest[0] == '+' {
		rest = rest[1:]
	}
	return rest != "" && rest[0] >= '0' && rest[0] <= '9'
}
