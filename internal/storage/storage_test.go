package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	require.NoError(t, err)
	defer s.Close() // nolint:errcheck

	_, err = os.Stat(filepath.Join(dir, DBFile))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, DBFile), s.Path())
}

func TestSaveAgendas_ReplacesPerDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	first := []*agenda.Agenda{
		{MeetingDate: day(2025, 7, 1), Entries: []agenda.Entry{{Role: "Timer", Name: "Alice", SortOrder: 0}}},
		{MeetingDate: day(2025, 7, 8), Entries: []agenda.Entry{{Role: "Speaker 1", SortOrder: 0}}},
	}
	require.NoError(t, s.SaveAgendas(ctx, first))

	second := []*agenda.Agenda{
		{MeetingDate: day(2025, 7, 8), Entries: []agenda.Entry{
			{Role: "Speaker 1", Name: "Bob", SortOrder: 0},
			{Role: "Table Topics Evaluation even #", SortOrder: 1.1},
		}},
	}
	require.NoError(t, s.SaveAgendas(ctx, second))

	got, err := s.Agenda(ctx, day(2025, 7, 8))
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	require.Equal(t, "Bob", got.Entries[0].Name)
	require.Equal(t, 1.1, got.Entries[1].SortOrder)
	require.False(t, got.FetchedAt.IsZero())

	all, err := s.Agendas(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "2025-07-01", all[0].DateKey())
}

func TestAgenda_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Agenda(context.Background(), day(2030, 1, 1))
	require.True(t, errors.Is(err, ErrNotFound), "error = %v", err)
}

func TestAgendasBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.SaveAgendas(ctx, []*agenda.Agenda{
		{MeetingDate: day(2025, 6, 24), Entries: []agenda.Entry{{Role: "Timer"}}},
		{MeetingDate: day(2025, 7, 1), Entries: []agenda.Entry{{Role: "Timer"}}},
		{MeetingDate: day(2025, 7, 8), Entries: []agenda.Entry{{Role: "Timer"}}},
	}))

	got, err := s.AgendasBefore(ctx, day(2025, 7, 8))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2025-07-01", got[1].DateKey())
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	n, err := s.AddMembers(ctx, []string{"Carol", " Alice ", "", "Bob"})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, s.SetMemberActive(ctx, "Bob", false))

	names, err := s.MemberNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Carol"}, names)

	all, err := s.Members(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.False(t, all[1].Active)

	// Re-adding reactivates.
	_, err = s.AddMembers(ctx, []string{"Bob"})
	require.NoError(t, err)
	names, err = s.MemberNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob", "Carol"}, names)

	err = s.SetMemberActive(ctx, "Zed", false)
	require.True(t, errors.Is(err, ErrNotFound), "error = %v", err)
}

func TestSaveAssignments_BulkReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.SaveAssignments(ctx, []agenda.Assignment{
		{MeetingDate: "2025-07-08", Role: "Timer", Assigned: "Alice"},
		{MeetingDate: "2025-07-08", Role: "Speaker 1", Assigned: "Bob"},
		{MeetingDate: "2025-07-15", Role: "Timer", Assigned: "Carol"},
	}))

	require.NoError(t, s.SaveAssignments(ctx, []agenda.Assignment{
		{MeetingDate: "2025-07-08", Role: "Speaker 1", Assigned: "Dan"},
		{MeetingDate: "2025-07-08", Role: "Timer", Assigned: "Eve"},
	}))

	got, err := s.Assignments(ctx, "2025-07-08")
	require.NoError(t, err)
	require.Equal(t, []agenda.Assignment{
		{MeetingDate: "2025-07-08", Role: "Speaker 1", Assigned: "Dan"},
		{MeetingDate: "2025-07-08", Role: "Timer", Assigned: "Eve"},
	}, got)

	other, err := s.Assignments(ctx, "2025-07-15")
	require.NoError(t, err)
	require.Len(t, other, 1, "other dates must be untouched")
}

func TestAddAssignment_Appends(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.AddAssignment(ctx, agenda.Assignment{MeetingDate: "2025-07-08", Role: "Timer", Assigned: "Alice"}))
	require.NoError(t, s.AddAssignment(ctx, agenda.Assignment{MeetingDate: "2025-07-08", Role: "Grammarian", Assigned: "Bob"}))

	got, err := s.Assignments(ctx, "2025-07-08")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Grammarian", got[1].Role)

	empty, err := s.Assignments(ctx, "2031-01-01")
	require.NoError(t, err)
	require.Empty(t, empty)
}
