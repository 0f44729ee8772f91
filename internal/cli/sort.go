package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

// AssignmentOrder represents the available sorting options for saved assignments
type AssignmentOrder string

const (
	SortByPosition AssignmentOrder = "position"
	SortByRole     AssignmentOrder = "role"
	SortByAssignee AssignmentOrder = "assignee"
)

func (o AssignmentOrder) valid() bool {
	switch o {
	case SortByPosition, SortByRole, SortByAssignee:
		return true
	}
	return false
}

// sortAssignments reorders assignments in place. Position order is the saved
// order and leaves the slice untouched.
func sortAssignments(items []agenda.Assignment, order AssignmentOrder) {
	switch order {
	case SortByRole:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Role) < strings.ToLower(items[j].Role)
		})
	case SortByAssignee:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := strings.ToLower(items[i].Assigned), strings.ToLower(items[j].Assigned)
			// unassigned roles go last
			if (a == "") != (b == "") {
				return b == ""
			}
			if a != b {
				return a < b
			}
			// If assignees are equal, sort by role
			return strings.ToLower(items[i].Role) < strings.ToLower(items[j].Role)
		})
	}
}
