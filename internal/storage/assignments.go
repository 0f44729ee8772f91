package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

// SaveAssignments stores assignments, first deleting whatever was saved for each
// meeting date they cover. Rows keep their input order within a date.
func (s *Storage) SaveAssignments(ctx context.Context, assignments []agenda.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	cleared := make(map[string]bool)
	for _, a := range assignments {
		if cleared[a.MeetingDate] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE meeting_date = ?`, a.MeetingDate); err != nil {
			return fmt.Errorf("clearing assignments for %s: %w", a.MeetingDate, err)
		}
		cleared[a.MeetingDate] = true
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, a := range assignments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assignments (meeting_date, role, assigned, position, created_at) VALUES (?, ?, ?, ?, ?)
		`, a.MeetingDate, a.Role, a.Assigned, i, now); err != nil {
			return fmt.Errorf("saving assignment %s/%s: %w", a.MeetingDate, a.Role, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignments: %w", err)
	}
	return nil
}

// AddAssignment appends a single assignment without touching others for the date
func (s *Storage) AddAssignment(ctx context.Context, a agenda.Assignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (meeting_date, role, assigned, position, created_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM assignments WHERE meeting_date = ?), ?)
	`, a.MeetingDate, a.Role, a.Assigned, a.MeetingDate, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving assignment %s/%s: %w", a.MeetingDate, a.Role, err)
	}
	return nil
}

// Assignments returns the saved assignments for a meeting date in saved order
func (s *Storage) Assignments(ctx context.Context, meetingDate string) ([]agenda.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_date, role, assigned FROM assignments WHERE meeting_date = ? ORDER BY position ASC, id ASC
	`, meetingDate)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]agenda.Assignment, 0)
	for rows.Next() {
		var a agenda.Assignment
		if err := rows.Scan(&a.MeetingDate, &a.Role, &a.Assigned); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
