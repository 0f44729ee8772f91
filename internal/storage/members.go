package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Member is a club member known to the roster
type Member struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Members returns the roster ordered by name. With activeOnly set, members marked
// inactive are left out.
func (s *Storage) Members(ctx context.Context, activeOnly bool) ([]Member, error) {
	query := `SELECT name, active FROM members`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.Name, &m.Active); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MemberNames returns the names of active members
func (s *Storage) MemberNames(ctx context.Context) ([]string, error) {
	members, err := s.Members(ctx, true)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names, nil
}

// AddMembers inserts members as active, reactivating any that already exist.
// Blank names are ignored. It returns how many names were written.
func (s *Storage) AddMembers(ctx context.Context, names []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339)
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO members (name, active, created_at) VALUES (?, 1, ?)
			ON CONFLICT(name) DO UPDATE SET active = 1
		`, name, now); err != nil {
			return 0, fmt.Errorf("adding member %s: %w", name, err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing members: %w", err)
	}
	return added, nil
}

// SetMemberActive marks a member active or inactive, or returns ErrNotFound
func (s *Storage) SetMemberActive(ctx context.Context, name string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET active = ? WHERE name = ?`, active, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("updating member %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating member %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("member %s: %w", name, ErrNotFound)
	}
	return nil
}
