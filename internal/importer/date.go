package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[/\-. ](\d{1,2})[/\-. ](\d{2,4})(?:[ T,]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)
	ymdPattern = regexp.MustCompile(`^(\d{4})[/\-. ](\d{1,2})[/\-. ](\d{1,2})(?:[ T]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)
)

var fallbackLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// parseDate accepts day/month/year and year/month/day forms with an
// optional time. Unparsable input yields the zero time.
func parseDate(raw string, loc *time.Location) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}

	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		return build(year, atoi(m[2]), atoi(m[1]), m[4:], loc)
	}
	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		return build(atoi(m[1]), atoi(m[2]), atoi(m[3]), m[4:], loc)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func build(year, month, day int, clock []string, loc *time.Location) time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	t := time.Date(year, time.Month(month), day, atoi(clock[0]), atoi(clock[1]), atoi(clock[2]), 0, loc)
	if t.Day() != day {
		return time.Time{}
	}
	return t
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
