// Package coerce turns messy vendor scalar encodings (moneyline strings,
// percent-with-rank cells, timestamp labels, status tokens) into well-typed
// values. All functions are pure and never panic: unrecognized input maps to
// nil or is preserved losslessly, it is never an error.
package coerce

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Measure is a numeric value with an optional rank, as vendors encode
// "36.52% (#24)" style cells. Value is float64 for recognized shapes; when no
// shape matched, the original string is kept under Value so downstream can see
// the un-normalized data instead of losing it.
type Measure struct {
	Value any
	Rank  *int
}

// ParseMoney parses an American moneyline price. Numeric input passes through;
// strings are trimmed and parsed as signed integers ("+233" -> 233,
// "-267" -> -267). Anything else (nil, empty, non-numeric) yields nil.
func ParseMoney(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimPrefix(s, "+")
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		f := float64(n)
		return &f
	default:
		return nil
	}
}

// ParseNumber is the float counterpart of ParseMoney, used for spread and
// total lines where half-point values ("-2.5", "+47.5") occur.
func ParseNumber(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimPrefix(s, "+")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

var (
	rePercentRank = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)%\s*\(#(\d+)\)$`)
	reNumberRank  = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*\(#(\d+)\)$`)
	rePercent     = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)%$`)
)

// ParsePercentOrRank recognizes the four vendor cell shapes, in order:
// "NN.NN% (#R)", "NN.NN (#R)", "NN.NN%", bare number. Percent forms are
// divided by 100. Numeric input passes through. Unrecognized non-empty strings
// come back with the original string under Value (lossless fallback); nil and
// empty input yield nil.
func ParsePercentOrRank(v any) *Measure {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		return &Measure{Value: val}
	case int:
		return &Measure{Value: float64(val)}
	case int64:
		return &Measure{Value: float64(val)}
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if m := rePercentRank.FindStringSubmatch(s); m != nil {
			value, _ := strconv.ParseFloat(m[1], 64)
			rank, _ := strconv.Atoi(m[2])
			return &Measure{Value: value / 100, Rank: &rank}
		}
		if m := reNumberRank.FindStringSubmatch(s); m != nil {
			value, _ := strconv.ParseFloat(m[1], 64)
			rank, _ := strconv.Atoi(m[2])
			return &Measure{Value: value, Rank: &rank}
		}
		if m := rePercent.FindStringSubmatch(s); m != nil {
			value, _ := strconv.ParseFloat(m[1], 64)
			return &Measure{Value: value / 100}
		}
		if f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64); err == nil {
			return &Measure{Value: f}
		}
		return &Measure{Value: val}
	default:
		return nil
	}
}

var (
	reISOPrefix  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	reMonthLabel = regexp.MustCompile(`^([A-Za-z]{3,9})\.?\s+(\d{1,2})\s+(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)
	reSlashLabel = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseTimestampLabel resolves a row label into a UTC ISO-8601 timestamp.
// ISO-prefixed labels pass through. Two vendor grammars are tried:
// "Mon D H:MM AM/PM" and "MM/DD HH:MM AM/PM"; both take the year from
// seasonYear (current UTC year when seasonYear <= 0). Marker labels such as
// "Current" match neither grammar and come back with a nil timestamp and the
// label preserved; that is expected, not an error.
func ParseTimestampLabel(label string, seasonYear int) (string, *string) {
	trimmed := strings.TrimSpace(label)
	if reISOPrefix.MatchString(trimmed) {
		return label, &trimmed
	}

	year := seasonYear
	if year <= 0 {
		year = time.Now().UTC().Year()
	}

	if m := reMonthLabel.FindStringSubmatch(trimmed); m != nil {
		month, ok := monthsByPrefix[strings.ToLower(m[1])[:3]]
		if !ok {
			return label, nil
		}
		return label, buildTimestamp(year, month, m[2], m[3], m[4], m[5])
	}
	if m := reSlashLabel.FindStringSubmatch(trimmed); m != nil {
		mon, _ := strconv.Atoi(m[1])
		if mon < 1 || mon > 12 {
			return label, nil
		}
		return label, buildTimestamp(year, time.Month(mon), m[2], m[3], m[4], m[5])
	}
	return label, nil
}

func buildTimestamp(year int, month time.Month, dayS, hourS, minS, meridiem string) *string {
	day, _ := strconv.Atoi(dayS)
	hour, _ := strconv.Atoi(hourS)
	minute, _ := strconv.Atoi(minS)
	if strings.EqualFold(meridiem, "pm") && hour != 12 {
		hour += 12
	}
	if strings.EqualFold(meridiem, "am") && hour == 12 {
		hour = 0
	}
	ts := time.Date(year, month, day, hour, minute, 0, 0, time.UTC).Format("2006-01-02T15:04:05Z")
	return &ts
}

// NormalizeStatus maps a vendor injury status onto the canonical tokens.
// Substring match in priority order; unknown statuses are passed through
// uppercased rather than rejected.
func NormalizeStatus(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(upper, "PROBABLE"):
		return "PROBABLE"
	case strings.Contains(upper, "QUESTIONABLE"):
		return "QUESTIONABLE"
	case strings.Contains(upper, "INJURED RESERVE"), strings.Contains(upper, "I-R"), strings.Contains(upper, "IR"):
		return "I-R"
	case strings.Contains(upper, "OUT"):
		return "OUT"
	default:
		return upper
	}
}

// ToIdentifier normalizes free text into a stable map key: lowercase, no
// punctuation, whitespace collapsed to single underscores. All stringly
// matching in the engine (section names, column names, row labels) goes
// through this one routine so the rules stay consistent.
func ToIdentifier(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
