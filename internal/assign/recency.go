package assign

import (
	"sort"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

// RecencyWindow is how many of a member's latest roles count against them
const RecencyWindow = 3

// RecencyIndex maps a member to their most recent raw role labels, newest first
type RecencyIndex map[string][]string

// BuildRecencyIndex groups history by member and keeps each member's latest roles.
// Records on the same date keep their input order.
func BuildRecencyIndex(history []agenda.HistoryRecord) RecencyIndex {
	index := make(RecencyIndex)
	if len(history) == 0 {
		return index
	}

	records := make([]agenda.HistoryRecord, 0, len(history))
	for _, h := range history {
		member := normalizeName(h.Member)
		if member == "" {
			continue
		}
		h.Member = member
		records = append(records, h)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MeetingDate.After(records[j].MeetingDate)
	})

	for _, h := range records {
		if len(index[h.Member]) >= RecencyWindow {
			continue
		}
		index[h.Member] = append(index[h.Member], h.Role)
	}
	return index
}

// heldRecently reports whether any of the member's recent roles falls in the category
func (idx RecencyIndex) heldRecently(member string, category CanonicalRole) bool {
	for _, role := range idx[member] {
		if Canonicalize(role) == category {
			return true
		}
	}
	return false
}
