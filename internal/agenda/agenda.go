package agenda

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical meeting date format used in storage and the API.
const DateLayout = "2006-01-02"

// Entry is one row of a meeting's role template
type Entry struct {
	Role      string  `json:"Role"`
	Name      string  `json:"Name"`
	SortOrder float64 `json:"SortOrder"`
}

// Agenda is a meeting's ordered role template
type Agenda struct {
	MeetingDate time.Time `json:"meeting_date"`
	Entries     []Entry   `json:"agenda_json"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
}

// HistoryRecord is one past occurrence of a member holding a role
type HistoryRecord struct {
	Member      string    `json:"Name"`
	Role        string    `json:"Role"`
	MeetingDate time.Time `json:"MeetingDate"`
}

// DateKey returns the meeting date as YYYY-MM-DD
func (a *Agenda) DateKey() string {
	return a.MeetingDate.Format(DateLayout)
}

// Sorted returns a copy of the entries ordered by SortOrder.
// Entries with equal SortOrder keep their relative order.
func (a *Agenda) Sorted() []Entry {
	entries := make([]Entry, len(a.Entries))
	copy(entries, a.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SortOrder < entries[j].SortOrder
	})
	return entries
}

// History flattens agendas held strictly before the given date into history records.
// Only entries with an assignee contribute. Agendas are walked in the order given.
func History(agendas []*Agenda, before time.Time) []HistoryRecord {
	cutoff := truncateDay(before)
	records := make([]HistoryRecord, 0)
	for _, a := range agendas {
		if a == nil || !truncateDay(a.MeetingDate).Before(cutoff) {
			continue
		}
		for _, e := range a.Sorted() {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				continue
			}
			records = append(records, HistoryRecord{
				Member:      name,
				Role:        e.Role,
				MeetingDate: a.MeetingDate,
			})
		}
	}
	return records
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
