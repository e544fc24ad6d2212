package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText strips accents, trims and uppercases, so free-text labels
// ("Ação", "ação ") can be compared reliably.
func NormalizeText(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var monthByName = func() map[string]time.Month {
	m := make(map[string]time.Month, len(monthNames))
	for i, name := range monthNames {
		m[NormalizeText(name)] = time.Month(i + 1)
	}
	return m
}()

// MonthName returns the Portuguese name of a month ("Novembro").
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

var (
	reKeyYM   = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	reKeyMY   = regexp.MustCompile(`^(\d{1,2})[-/](\d{4})$`)
	reKeyDMY  = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)
	reKeyName = regexp.MustCompile(`^([A-Z]+)[\s\-/]+(\d{4})$`)
)

// MonthKey normalizes a month label into a "YYYY-MM" key. Accepted shapes:
// "2025-11", "11-2025", "01-11-2025" (day ignored), and Portuguese month
// names with a year such as "Novembro-2025" or "novembro 2025".
func MonthKey(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := reKeyYM.FindStringSubmatch(s); m != nil {
		return buildKey(m[1], m[2])
	}
	if m := reKeyDMY.FindStringSubmatch(s); m != nil {
		return buildKey(m[3], m[2])
	}
	if m := reKeyMY.FindStringSubmatch(s); m != nil {
		return buildKey(m[2], m[1])
	}
	if m := reKeyName.FindStringSubmatch(NormalizeText(s)); m != nil {
		mo, ok := monthByName[m[1]]
		if !ok {
			return "", false
		}
		return buildKey(m[2], strconv.Itoa(int(mo)))
	}
	return "", false
}

func buildKey(year, month string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	return MonthContext{Year: y, Month: time.Month(mo)}.Key(), true
}
