// Package sheets fetches raw tabular data from spreadsheet-backed sources.
// It understands the two wire shapes the Google Visualization endpoint can
// return for a (spreadsheet, sheet, range) triple: plain CSV and the
// JSON-wrapped table where every cell carries a raw value plus a formatted
// string fallback.
package sheets

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Cell is one spreadsheet cell: the raw value as decoded from the wire
// (nil, float64, bool or string) plus the formatted string the spreadsheet
// would display. Parsers must consult both.
type Cell struct {
	Value     any
	Formatted string
}

// Text returns the cell content as a string, preferring the raw value and
// falling back to the formatted one.
func (c Cell) Text() string {
	switch v := c.Value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return strings.TrimSpace(c.Formatted)
}

// IsEmpty reports whether the cell has neither a value nor a formatted text.
func (c Cell) IsEmpty() bool {
	return c.Text() == ""
}

// Number reads the cell as a number. Numeric raw values pass through;
// strings are cleaned of everything but digits, separators and sign, with
// dots treated as thousands separators and the comma as the decimal one.
// Unparseable content yields 0.
func (c Cell) Number() float64 {
	if v, ok := c.Value.(float64); ok {
		return v
	}
	raw := c.Text()
	if raw == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := strings.ReplaceAll(b.String(), ".", "")
	s = strings.Replace(s, ",", ".", 1)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// serial 0 of a spreadsheet date is 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date reads the cell as a calendar date. It understands the gviz
// "Date(y,m,d,...)" literal (month is zero-based on the wire), spreadsheet
// serial numbers, the formatted "dd/mm/yyyy hh:mm:ss" fallback and plain
// date strings.
func (c Cell) Date() (time.Time, bool) {
	if s, ok := c.Value.(string); ok {
		if t, ok := parseDateLiteral(s); ok {
			return t, true
		}
	}
	if v, ok := c.Value.(float64); ok {
		t := serialEpoch.Add(time.Duration(v * float64(24*time.Hour)))
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
	}
	if f := strings.TrimSpace(c.Formatted); f != "" {
		datePart, _, _ := strings.Cut(f, " ")
		if t, err := time.ParseInLocation("02/01/2006", datePart, time.Local); err == nil {
			return t, true
		}
	}
	if s, ok := c.Value.(string); ok {
		for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseDateLiteral decodes "Date(2025,10,1)" / "Date(2025,10,1,0,0,0)".
// The second field is a zero-based month.
func parseDateLiteral(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "Date(") || !strings.HasSuffix(s, ")") {
		return time.Time{}, false
	}
	parts := strings.Split(s[5:len(s)-1], ",")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	nums := make([]int, 0, 6)
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums = append(nums, n)
	}
	for len(nums) < 6 {
		nums = append(nums, 0)
	}
	t := time.Date(nums[0], time.Month(nums[1]+1), nums[2], nums[3], nums[4], nums[5], 0, time.Local)
	return t, true
}

// Table is one fetched range: a header row (may be empty for unlabeled
// ranges) plus data rows.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// ColumnIndex finds the index of the first header matching any of the given
// names (exact match after trimming). Returns -1 when none is present.
func (t *Table) ColumnIndex(names ...string) int {
	for _, name := range names {
		want := strings.TrimSpace(name)
		for i, h := range t.Headers {
			if strings.TrimSpace(h) == want {
				return i
			}
		}
	}
	return -1
}

// At returns the cell at column i of a row, tolerating short rows and
// missing columns.
func At(row []Cell, i int) Cell {
	if i < 0 || i >= len(row) {
		return Cell{}
	}
	return row[i]
}
