package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	longDateRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+([a-záéíóú]+)\s+de\s+(\d{4})\b`)
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// ExtractDate looks for a bulletin date in text and returns it as
// YYYY-MM-DD. Patterns are tried in order: DD/MM/YYYY, YYYY-MM-DD and
// "D de <mes> de YYYY".
func ExtractDate(text string) (string, bool) {
	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[3], m[2], m[1]); ok {
			return d, true
		}
	}
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	if m := longDateRe.FindStringSubmatch(text); m != nil {
		month, ok := spanishMonths[strings.ToLower(m[2])]
		if ok {
			if d, ok := buildDate(m[3], strconv.Itoa(int(month)), m[1]); ok {
				return d, true
			}
		}
	}
	return "", false
}

func buildDate(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}
