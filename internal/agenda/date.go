package agenda

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`)
	numericDatePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)
	// "July 8, 2025", "Jul 8 2025", "8 July 2025", "8th Jul 2025"
	monthFirstPattern = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	dayFirstPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})`)
)

// ParseMeetingDate extracts a calendar date from a loose label such as
// "Tuesday, July 8, 2025 (Regular Meeting)", "8 July 2025", "08/07/2025" or "2025-07-08".
// Numeric slash dates are read day-first, as the club site renders them.
func ParseMeetingDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date label")
	}

	if m := isoDatePattern.FindString(text); m != "" {
		if t, err := time.Parse("2006-1-2", m); err == nil {
			return t, nil
		}
	}

	if m := monthFirstPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %s", titleMonth(m[1]), m[2], m[3])); err == nil {
			return t, nil
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %s", titleMonth(m[2]), m[1], m[3])); err == nil {
			return t, nil
		}
	}

	if m := numericDatePattern.FindString(text); m != "" {
		for _, layout := range []string{"2/1/2006", "2/1/06"} {
			if t, err := time.Parse(layout, m); err == nil {
				return t, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("no date found in %q", text)
}

// ParseDateKey parses a YYYY-MM-DD meeting date
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid meeting date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func titleMonth(m string) string {
	m = strings.ToLower(m)
	return strings.ToUpper(m[:1]) + m[1:]
}
