package bulletin

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the wire format for every date accepted or produced.
const DateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError reports client input rejected before any download.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FetchError wraps a failed bulletin download.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DocumentError wraps a document that could not be turned into text.
type DocumentError struct {
	Source string
	Err    error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// ParseDate parses a strict YYYY-MM-DD value for field.
func ParseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &ValidationError{Field: field, Message: "is required"}
	}
	if !dateRe.MatchString(value) {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value)}
	}
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q: not a calendar day", value)}
	}
	return t, nil
}

// ParseRange parses and validates both range bounds.
func ParseRange(from, to string, maxDays int) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, &ValidationError{Message: "from and to are required"}
	}
	start, err := ParseDate("from", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDate("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateRange(start, end, maxDays); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ValidateRange checks from <= to and that the range spans at most maxDays
// days. A non-positive maxDays disables the length check.
func ValidateRange(from, to time.Time, maxDays int) error {
	if from.After(to) {
		return &ValidationError{Field: "from", Message: fmt.Sprintf("%s is after %s", from.Format(DateLayout), to.Format(DateLayout))}
	}
	if maxDays > 0 {
		if n := dayCount(from, to); n > maxDays {
			return &ValidationError{Message: fmt.Sprintf("range spans %d days, maximum is %d", n, maxDays)}
		}
	}
	return nil
}

// daysBetween lists every calendar day in [from, to].
func daysBetween(from, to time.Time) []time.Time {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, from.Location())
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func dayCount(from, to time.Time) int {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}
