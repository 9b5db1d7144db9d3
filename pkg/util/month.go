package util

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var months = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthIndex returns the zero-based position of a month name, matched
// case-insensitively on the full name. ok is false for anything else.
func MonthIndex(label string) (int, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	for i, m := range months {
		if m == l {
			return i, true
		}
	}
	return 0, false
}

// ShortMonth returns the first three characters of a label ("january" -> "jan").
func ShortMonth(label string) string {
	if utf8.RuneCountInString(label) <= 3 {
		return label
	}
	return string([]rune(label)[:3])
}

// ShiftMonthLabel names the month steps months after label. Whole years past
// the starting month are suffixed as " +Ny", so "december" shifted by 12 is
// "december +1y". Labels that are not month names become "label+N".
func ShiftMonthLabel(label string, steps int) string {
	if steps == 0 {
		return label
	}

	idx, ok := MonthIndex(label)
	if !ok || steps < 0 {
		return fmt.Sprintf("%s+%d", label, steps)
	}

	target := idx + steps
	name := matchCase(label, months[target%12])
	if years := target / 12; years > 0 {
		return fmt.Sprintf("%s +%dy", name, years)
	}
	return name
}

func matchCase(sample, name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(sample))
	switch {
	case strings.ToUpper(sample) == sample:
		return strings.ToUpper(name)
	case unicode.IsUpper(r):
		return strings.ToUpper(name[:1]) + name[1:]
	default:
		return name
	}
}
