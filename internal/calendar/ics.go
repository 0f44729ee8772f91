// Package calendar exports saved meeting assignments as iCalendar files.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

// Meeting describes the calendar entry for one club meeting
type Meeting struct {
	Date        time.Time
	Assignments []agenda.Assignment

	// Club names the calendar and prefixes the summary
	Club string
	// Start is the offset from midnight at which the meeting begins, local floating time
	Start    time.Duration
	Duration time.Duration
	Location string
	URL      string
}

const (
	DefaultStart    = 19 * time.Hour
	DefaultDuration = 2 * time.Hour

	maxLineOctets = 75
)

// GenerateICS renders a single-event calendar for the meeting. The event carries
// every saved role and assignee in its description.
func GenerateICS(m Meeting, stamp time.Time) string {
	if m.Start == 0 {
		m.Start = DefaultStart
	}
	if m.Duration == 0 {
		m.Duration = DefaultDuration
	}
	club := m.Club
	if club == "" {
		club = "Toastmasters"
	}

	var ics strings.Builder
	line := func(format string, args ...interface{}) {
		ics.WriteString(fold(fmt.Sprintf(format, args...)))
		ics.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//tm-roles//%s//EN", escapeICS(club))
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("BEGIN:VEVENT")

	day := time.Date(m.Date.Year(), m.Date.Month(), m.Date.Day(), 0, 0, 0, 0, time.UTC)
	start := day.Add(m.Start)
	end := start.Add(m.Duration)

	line("UID:meeting-%s@tm-roles", day.Format("20060102"))
	line("DTSTAMP:%s", stamp.UTC().Format("20060102T150405Z"))
	line("DTSTART:%s", formatFloating(start))
	line("DTEND:%s", formatFloating(end))
	line("SUMMARY:%s", escapeICS(club+" meeting"))
	line("DESCRIPTION:%s", escapeICS(describe(m.Assignments)))
	if m.Location != "" {
		line("LOCATION:%s", escapeICS(m.Location))
	}
	if m.URL != "" {
		line("URL:%s", m.URL)
	}
	line("STATUS:CONFIRMED")
	line("SEQUENCE:0")
	line("TRANSP:OPAQUE")
	line("END:VEVENT")
	line("END:VCALENDAR")

	return ics.String()
}

func describe(assignments []agenda.Assignment) string {
	if len(assignments) == 0 {
		return "No roles assigned yet"
	}
	lines := make([]string, 0, len(assignments)+1)
	lines = append(lines, "Roles:")
	for _, a := range assignments {
		who := a.Assigned
		if strings.TrimSpace(who) == "" {
			who = "(open)"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", a.Role, who))
	}
	return strings.Join(lines, "\n")
}

// formatFloating formats a wall-clock time without a zone so calendars show it
// in the viewer's local time
func formatFloating(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes special characters for iCalendar text values
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// fold splits content lines longer than 75 octets, continuing with a space.
// Splits never land inside a UTF-8 sequence.
func fold(s string) string {
	if len(s) <= maxLineOctets {
		return s
	}

	var b strings.Builder
	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		// continuation lines lose one octet to the leading space
		limit = maxLineOctets - 1
	}
	b.WriteString(s)
	return b.String()
}
