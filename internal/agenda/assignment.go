package agenda

import (
	"errors"
	"strings"
)

// Assignment is a confirmed role assignment saved by the club organiser
type Assignment struct {
	MeetingDate string `json:"meeting_date"`
	Role        string `json:"role"`
	Assigned    string `json:"assigned"`
}

// Validate checks the assignment has a well-formed date and a role
func (a Assignment) Validate() error {
	if _, err := ParseDateKey(a.MeetingDate); err != nil {
		return err
	}
	if strings.TrimSpace(a.Role) == "" {
		return errors.New("role is required")
	}
	return nil
}
