// Package parse converts raw spreadsheet cell text in Brazilian Portuguese
// locale conventions into typed primitives. Every function is total: bad
// input yields a zero value (or a false ok), never a panic or an error.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Currency parses a pt-BR money cell: "60.464,77", "R$ 60.464,77",
// "60464,77", "197.306". When both separators are present the dot is the
// thousands separator and the comma the decimal one. A comma alone is a
// decimal separator. A dot alone is treated as a thousands separator and
// stripped; in this data source dot-only values are thousands-grouped
// integers, so "197.306" means 197306. A genuine "60.5" would misparse as
// 605, a known ambiguity of the source format that is kept on purpose.
func Currency(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.Map(dropCurrencyJunk, s)

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	case hasDot:
		s = strings.ReplaceAll(s, ".", "")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

func dropCurrencyJunk(r rune) rune {
	switch r {
	case 'R', '$', ' ', '\t', ' ':
		return -1
	}
	return r
}

// Integer parses an integer count cell ("1.234", "152 un", "12"). Everything
// that is not a digit or a minus sign is stripped before parsing.
func Integer(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || s == "-" || s == "-0" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Percent parses a percentage cell and returns a fraction: "6,61%" and "5"
// become 0.0661 and 0.05, while "0,05" is already fractional and passes
// through. Values above 1 are divided by 100; everything else is assumed to
// already be a fraction.
func Percent(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == ' ' {
			return -1
		}
		return r
	}, s)

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}
	// dot alone stays a decimal separator here, unlike Currency

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if n > 1 {
		return n / 100
	}
	return n
}

// MonthContext is the fallback month used to resolve partial dates
// (bare day-of-month cells, 2-digit years).
type MonthContext struct {
	Year  int
	Month time.Month
}

// Valid reports whether the context can resolve a day number.
func (c MonthContext) Valid() bool {
	return c.Year > 0 && c.Month >= time.January && c.Month <= time.December
}

// Key renders the context as "YYYY-MM".
func (c MonthContext) Key() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// ParseMonthContext reads a "YYYY-MM" identifier.
func ParseMonthContext(id string) (MonthContext, bool) {
	m := reYearMonth.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return MonthContext{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	ctx := MonthContext{Year: y, Month: time.Month(mo)}
	if !ctx.Valid() {
		return MonthContext{}, false
	}
	return ctx, true
}

var (
	reYearMonth = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	reDayMY     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	reISODate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reBareDay   = regexp.MustCompile(`^(\d{1,2})(?:[.,]\d+)?$`)
)

// LocalDate parses a date cell. Recognized shapes: "dd/mm/yyyy", "dd/mm/yy"
// (the 2-digit year is replaced by the fallback year, not expanded), ISO
// "yyyy-mm-dd" and bare day numbers ("17", "17,0") resolved against the
// fallback month. Anything else fails with ok=false; the caller decides what
// a missing date means.
func LocalDate(raw string, ctx MonthContext) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := reDayMY.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if !ctx.Valid() {
				return time.Time{}, false
			}
			y = ctx.Year
		}
		return makeDate(y, time.Month(mo), d)
	}

	if reISODate.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if m := reBareDay.FindStringSubmatch(s); m != nil {
		if !ctx.Valid() {
			return time.Time{}, false
		}
		d, _ := strconv.Atoi(m[1])
		return makeDate(ctx.Year, ctx.Month, d)
	}

	// last resort for timestamp-ish strings
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

func makeDate(y int, m time.Month, d int) (time.Time, bool) {
	if y <= 0 || m < time.January || m > time.December || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	if t.Day() != d || t.Month() != m {
		// day rolled over, e.g. 31/02
		return time.Time{}, false
	}
	return t, true
}

// Day truncates a time to its local midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthKeyOf renders the "YYYY-MM" key of a date.
func MonthKeyOf(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// DaysInMonth returns the number of calendar days of a month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}
