package agenda

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeType describes how a role differs between two versions of a meeting
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeAssignee ChangeType = "assignee"
)

// Change is a single role-level difference between two versions of a meeting
type Change struct {
	MeetingDate string     `json:"meeting_date"`
	Role        string     `json:"role"`
	ChangeType  ChangeType `json:"change_type"`
	OldValue    string     `json:"old_value"`
	NewValue    string     `json:"new_value"`
}

// String renders the change as a one-line log message
func (c Change) String() string {
	switch c.ChangeType {
	case ChangeAdded:
		return fmt.Sprintf("%s: role %q added", c.MeetingDate, c.Role)
	case ChangeRemoved:
		return fmt.Sprintf("%s: role %q removed", c.MeetingDate, c.Role)
	default:
		return fmt.Sprintf("%s: %q changed from %q to %q", c.MeetingDate, c.Role, c.OldValue, c.NewValue)
	}
}

// Diff compares a previously stored agenda with a freshly scraped one.
// A nil previous agenda yields no changes: a first sighting is not a change.
// Roles are matched by label; repeated labels are matched by occurrence.
func Diff(previous, current *Agenda) []Change {
	if previous == nil || current == nil {
		return nil
	}
	date := current.DateKey()

	prev, prevKeys := indexEntries(previous.Sorted())
	curr, currKeys := indexEntries(current.Sorted())

	changes := make([]Change, 0)
	for _, key := range currKeys {
		c := curr[key]
		p, exists := prev[key]
		if !exists {
			changes = append(changes, Change{
				MeetingDate: date,
				Role:        c.Role,
				ChangeType:  ChangeAdded,
				NewValue:    c.Name,
			})
			continue
		}
		if strings.TrimSpace(p.Name) != strings.TrimSpace(c.Name) {
			changes = append(changes, Change{
				MeetingDate: date,
				Role:        c.Role,
				ChangeType:  ChangeAssignee,
				OldValue:    p.Name,
				NewValue:    c.Name,
			})
		}
	}
	for _, key := range prevKeys {
		p := prev[key]
		if _, exists := curr[key]; !exists {
			changes = append(changes, Change{
				MeetingDate: date,
				Role:        p.Role,
				ChangeType:  ChangeRemoved,
				OldValue:    p.Name,
			})
		}
	}

	// Stable so repeated labels keep agenda order
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Role != changes[j].Role {
			return changes[i].Role < changes[j].Role
		}
		return changes[i].ChangeType < changes[j].ChangeType
	})
	return changes
}

// indexEntries keys entries by role and occurrence, returning the keys in agenda order
func indexEntries(entries []Entry) (map[string]Entry, []string) {
	seen := make(map[string]int)
	index := make(map[string]Entry, len(entries))
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		seen[e.Role]++
		key := fmt.Sprintf("%s#%d", e.Role, seen[e.Role])
		index[key] = e
		keys = append(keys, key)
	}
	return index, keys
}
