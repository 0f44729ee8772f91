package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/pfrederiksen/tm-roles/internal/assign"
	"github.com/pfrederiksen/tm-roles/internal/metrics"
	"github.com/pfrederiksen/tm-roles/internal/scraper"
	"github.com/pfrederiksen/tm-roles/internal/storage"
)

type fakeFetcher struct {
	mu      sync.Mutex
	agendas []*agenda.Agenda
	err     error
	target  time.Time
	members []string
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeFetcher) FetchAgendas(ctx context.Context, target time.Time, members []string) (*scraper.FetchResult, error) {
	if f.block != nil {
		close(f.entered)
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = target
	f.members = members
	return &scraper.FetchResult{Agendas: f.agendas, Log: []string{"Logged in"}}, f.err
}

func day(s string) time.Time {
	t, err := agenda.ParseDateKey(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(t *testing.T, fetcher Fetcher) (*Service, *storage.Storage, *metrics.Collector) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), storage.DBFile))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	collector := metrics.NewCollector()
	return New(store, fetcher, assign.New(assign.DefaultConfig(), assign.WithSeed(1)), collector), store, collector
}

func TestSyncAgendas_SavesAndDiffs(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{agendas: []*agenda.Agenda{{
		MeetingDate: day("2025-07-08"),
		Entries: []agenda.Entry{
			{Role: "Speaker 1", Name: "Alice", SortOrder: 0},
			{Role: "Timer", SortOrder: 1},
		},
	}}}
	svc, store, _ := newTestService(t, fetcher)
	_, err := store.AddMembers(ctx, []string{"Alice", "Bob"})
	require.NoError(t, err)

	res, err := svc.SyncAgendas(ctx, day("2025-07-08"))
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, "2025-07-08", res.Target)
	require.Equal(t, 1, res.Agendas)
	require.Equal(t, 2, res.Roles)
	require.Empty(t, res.Changes)
	require.Equal(t, "Logged in", res.Logs[0])
	require.Equal(t, []string{"Alice", "Bob"}, fetcher.members)

	fetcher.agendas = []*agenda.Agenda{{
		MeetingDate: day("2025-07-08"),
		Entries: []agenda.Entry{
			{Role: "Speaker 1", Name: "Alice", SortOrder: 0},
			{Role: "Timer", Name: "Bob", SortOrder: 1},
		},
	}}
	res, err = svc.SyncAgendas(ctx, day("2025-07-08"))
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	require.Equal(t, agenda.ChangeAssignee, res.Changes[0].ChangeType)
	require.Equal(t, "Bob", res.Changes[0].NewValue)

	stored, err := store.Agenda(ctx, day("2025-07-08"))
	require.NoError(t, err)
	require.Equal(t, "Bob", stored.Entries[1].Name)
}

func TestSyncAgendas_FetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("login failed")}
	svc, _, collector := newTestService(t, fetcher)

	res, err := svc.SyncAgendas(context.Background(), day("2025-07-08"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "login failed")
	require.NotNil(t, res)
	require.True(t, strings.HasPrefix(res.Logs[len(res.Logs)-1], "Error:"))

	expected := `
# HELP tm_roles_sync_runs_total Agenda sync runs by outcome.
# TYPE tm_roles_sync_runs_total counter
tm_roles_sync_runs_total{outcome="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "tm_roles_sync_runs_total"))
}

func TestSyncAgendas_DefaultTarget(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _, _ := newTestService(t, fetcher)
	svc.now = func() time.Time { return day("2025-07-01") }

	res, err := svc.SyncAgendas(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Equal(t, "2025-07-29", res.Target)
	require.Equal(t, day("2025-07-29"), fetcher.target)
	require.Contains(t, res.Logs, "No agendas found")
}

func TestSyncAgendas_NoFetcher(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.SyncAgendas(context.Background(), day("2025-07-08"))
	require.Error(t, err)
}

func TestSyncAgendas_InProgress(t *testing.T) {
	fetcher := &fakeFetcher{entered: make(chan struct{}), block: make(chan struct{})}
	svc, _, _ := newTestService(t, fetcher)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SyncAgendas(context.Background(), day("2025-07-08"))
		done <- err
	}()

	<-fetcher.entered
	_, err := svc.SyncAgendas(context.Background(), day("2025-07-08"))
	require.ErrorIs(t, err, ErrSyncInProgress)

	close(fetcher.block)
	require.NoError(t, <-done)
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	svc, store, collector := newTestService(t, nil)

	_, err := store.AddMembers(ctx, []string{"Alice", "Bob"})
	require.NoError(t, err)
	require.NoError(t, store.SaveAgendas(ctx, []*agenda.Agenda{
		{
			MeetingDate: day("2025-07-01"),
			Entries:     []agenda.Entry{{Role: "Speaker 1", Name: "Alice"}},
		},
		{
			MeetingDate: day("2025-07-08"),
			Entries: []agenda.Entry{
				{Role: "Sergeant at Arms", Name: "Carol", SortOrder: 0},
				{Role: "Speaker 2", SortOrder: 1},
			},
		},
	}))

	results, err := svc.Suggest(ctx, day("2025-07-08"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Speaker 2", results[0].Role)
	require.Equal(t, "Bob", results[0].Primary, "Alice spoke last week")
	require.Equal(t, "Alice", results[0].Backup)

	expected := `
# HELP tm_roles_suggestions_total Role suggestion requests by outcome.
# TYPE tm_roles_suggestions_total counter
tm_roles_suggestions_total{outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "tm_roles_suggestions_total"))
}

func TestSuggest_Errors(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, nil)

	require.NoError(t, store.SaveAgendas(ctx, []*agenda.Agenda{
		{
			MeetingDate: day("2025-07-08"),
			Entries:     []agenda.Entry{{Role: "Break"}, {Role: "Theme for the meeting: Growth"}},
		},
		{
			MeetingDate: day("2025-07-15"),
			Entries:     []agenda.Entry{{Role: "Timer"}, {Role: "  "}},
		},
	}))

	_, err := svc.Suggest(ctx, day("2025-07-01"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Suggest(ctx, day("2025-07-08"))
	require.ErrorIs(t, err, ErrEmptyAgenda)

	_, err = svc.Suggest(ctx, day("2025-07-15"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveAssignments(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, nil)

	err := svc.SaveAssignments(ctx, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.SaveAssignments(ctx, []agenda.Assignment{{MeetingDate: "July 8", Role: "Timer", Assigned: "Bob"}})
	require.ErrorIs(t, err, ErrInvalidInput)

	batch := []agenda.Assignment{
		{MeetingDate: "2025-07-08", Role: "Timer", Assigned: "Bob"},
		{MeetingDate: "2025-07-08", Role: "Speaker", Assigned: "Alice"},
	}
	require.NoError(t, svc.SaveAssignments(ctx, batch))
	require.NoError(t, svc.SaveAssignment(ctx, agenda.Assignment{MeetingDate: "2025-07-08", Role: "Evaluator", Assigned: "Carol"}))

	got, err := svc.Assignments(ctx, day("2025-07-08"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "Timer", got[0].Role)
	require.Equal(t, "Evaluator", got[2].Role)

	require.ErrorIs(t, svc.SaveAssignment(ctx, agenda.Assignment{MeetingDate: "2025-07-08"}), ErrInvalidInput)
}

func TestSaveAssignments_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := []agenda.Assignment{
				{MeetingDate: "2025-07-08", Role: "Timer", Assigned: "Bob"},
				{MeetingDate: "2025-07-15", Role: "Timer", Assigned: "Alice"},
			}
			require.NoError(t, svc.SaveAssignments(ctx, batch))
		}()
	}
	wg.Wait()

	got, err := svc.Assignments(ctx, day("2025-07-08"))
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, nil)

	_, err := svc.AddMembers(ctx, []string{"  ", ""})
	require.ErrorIs(t, err, ErrInvalidInput)

	n, err := svc.AddMembers(ctx, []string{" Alice ", "Bob"})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, svc.DeactivateMember(ctx, "Bob"))
	require.ErrorIs(t, svc.DeactivateMember(ctx, "Zed"), ErrUnknownMember)

	active, err := svc.Members(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []storage.Member{{Name: "Alice", Active: true}}, active)

	all, err := svc.Members(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
