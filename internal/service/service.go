package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/pfrederiksen/tm-roles/internal/assign"
	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/metrics"
	"github.com/pfrederiksen/tm-roles/internal/scraper"
	"github.com/pfrederiksen/tm-roles/internal/storage"
)

// DefaultLookahead is how far past today a sync reaches when no target is given
const DefaultLookahead = 28 * 24 * time.Hour

var (
	// ErrNotFound means no agenda is stored for the requested meeting
	ErrNotFound = errors.New("agenda not found")

	// ErrEmptyAgenda means the stored agenda has no assignable roles
	ErrEmptyAgenda = assign.ErrEmptyAgenda

	// ErrInvalidInput wraps caller mistakes such as bad dates or blank roles
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress means another sync run has not finished yet
	ErrSyncInProgress = errors.New("sync already in progress")
)

// Fetcher retrieves agendas for every meeting up to target
type Fetcher interface {
	FetchAgendas(ctx context.Context, target time.Time, members []string) (*scraper.FetchResult, error)
}

// Store is the persistence the service needs
type Store interface {
	SaveAgendas(ctx context.Context, agendas []*agenda.Agenda) error
	Agenda(ctx context.Context, date time.Time) (*agenda.Agenda, error)
	Agendas(ctx context.Context) ([]*agenda.Agenda, error)
	AgendasBefore(ctx context.Context, date time.Time) ([]*agenda.Agenda, error)
	MemberNames(ctx context.Context) ([]string, error)
	Members(ctx context.Context, activeOnly bool) ([]storage.Member, error)
	AddMembers(ctx context.Context, names []string) (int, error)
	SetMemberActive(ctx context.Context, name string, active bool) error
	SaveAssignments(ctx context.Context, assignments []agenda.Assignment) error
	AddAssignment(ctx context.Context, a agenda.Assignment) error
	Assignments(ctx context.Context, meetingDate string) ([]agenda.Assignment, error)
}

// Service coordinates sync and suggestion requests
type Service struct {
	store   Store
	fetcher Fetcher
	engine  *assign.Engine
	metrics *metrics.Collector
	now     func() time.Time

	syncMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a Service. fetcher may be nil when only stored data is served;
// collector may be nil to disable metrics.
func New(store Store, fetcher Fetcher, engine *assign.Engine, collector *metrics.Collector) *Service {
	if engine == nil {
		engine = assign.New(assign.DefaultConfig())
	}
	return &Service{
		store:   store,
		fetcher: fetcher,
		engine:  engine,
		metrics: collector,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// SyncResult describes one sync run
type SyncResult struct {
	RunID   string          `json:"run_id"`
	Target  string          `json:"target_date"`
	Agendas int             `json:"agendas"`
	Roles   int             `json:"roles"`
	Changes []agenda.Change `json:"changes"`
	Logs    []string        `json:"logs"`
}

// SyncAgendas scrapes every agenda up to target and replaces the stored copies.
// A zero target means DefaultLookahead from today.
func (s *Service) SyncAgendas(ctx context.Context, target time.Time) (*SyncResult, error) {
	if s.fetcher == nil {
		return nil, errors.New("no agenda fetcher configured")
	}
	if !s.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.syncMu.Unlock()

	if target.IsZero() {
		target = s.now().Add(DefaultLookahead)
	}

	result := &SyncResult{
		RunID:  uuid.NewString(),
		Target: target.Format(agenda.DateLayout),
	}
	fields := logger.Fields{"run_id": result.RunID, "target_date": result.Target}
	logger.Info("Starting agenda sync", fields)

	start := time.Now()
	err := s.sync(ctx, target, result)
	s.metrics.ObserveSync(result.Agendas, result.Roles, time.Since(start), err)

	if err != nil {
		result.Logs = append(result.Logs, fmt.Sprintf("Error: %v", err))
		logger.Error("Agenda sync failed", fields, err)
		return result, err
	}

	result.Logs = append(result.Logs, fmt.Sprintf("Done. Total roles fetched: %d", result.Roles))
	logger.Info("Agenda sync complete", logger.Fields{
		"run_id":  result.RunID,
		"agendas": result.Agendas,
		"roles":   result.Roles,
		"changes": len(result.Changes),
	})
	return result, nil
}

func (s *Service) sync(ctx context.Context, target time.Time, result *SyncResult) error {
	members, err := s.store.MemberNames(ctx)
	if err != nil {
		return fmt.Errorf("loading members: %w", err)
	}

	fetched, err := s.fetcher.FetchAgendas(ctx, target, members)
	if fetched != nil {
		result.Logs = append(result.Logs, fetched.Log...)
	}
	if err != nil {
		return fmt.Errorf("fetching agendas: %w", err)
	}

	for _, a := range fetched.Agendas {
		result.Roles += len(a.Entries)

		prev, err := s.store.Agenda(ctx, a.MeetingDate)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("loading stored agenda: %w", err)
		}
		for _, c := range agenda.Diff(prev, a) {
			result.Changes = append(result.Changes, c)
			logger.Info("Agenda changed", logger.Fields{"run_id": result.RunID, "change": c.String()})
		}
	}

	if len(fetched.Agendas) == 0 {
		result.Logs = append(result.Logs, "No agendas found")
		return nil
	}

	result.Logs = append(result.Logs, fmt.Sprintf("Uploading %d roles...", result.Roles))
	if err := s.store.SaveAgendas(ctx, fetched.Agendas); err != nil {
		return fmt.Errorf("saving agendas: %w", err)
	}
	result.Agendas = len(fetched.Agendas)
	result.Logs = append(result.Logs, fmt.Sprintf("Uploaded %d agendas (one per meeting date).", result.Agendas))
	return nil
}

// Agenda returns the stored agenda for a meeting date
func (s *Service) Agenda(ctx context.Context, date time.Time) (*agenda.Agenda, error) {
	a, err := s.store.Agenda(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", date.Format(agenda.DateLayout), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading agenda: %w", err)
	}
	return a, nil
}

// Agendas returns every stored agenda, oldest first
func (s *Service) Agendas(ctx context.Context) ([]*agenda.Agenda, error) {
	list, err := s.store.Agendas(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading agendas: %w", err)
	}
	return list, nil
}

// Suggest computes primary and backup suggestions for a stored meeting using
// every earlier stored meeting as history and the active roster.
func (s *Service) Suggest(ctx context.Context, date time.Time) ([]assign.Result, error) {
	results, err := s.suggest(ctx, date)

	outcome, unfilled := "success", 0
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrEmptyAgenda):
		outcome = "empty_agenda"
	case err != nil:
		outcome = "error"
	default:
		for _, r := range results {
			if r.Primary == "" {
				unfilled++
			}
		}
	}
	s.metrics.ObserveSuggestion(outcome, unfilled)
	return results, err
}

func (s *Service) suggest(ctx context.Context, date time.Time) ([]assign.Result, error) {
	current, err := s.Agenda(ctx, date)
	if err != nil {
		return nil, err
	}

	past, err := s.store.AgendasBefore(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	roster, err := s.store.MemberNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}

	results, err := s.engine.Assign(current.Sorted(), agenda.History(past, date), roster)
	if err != nil {
		if errors.Is(err, assign.ErrMalformedEntry) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	logger.Debug("Suggestions computed", logger.Fields{
		"meeting_date": date.Format(agenda.DateLayout),
		"roles":        len(results),
		"roster":       len(roster),
	})
	return results, nil
}

// SaveAssignment appends one confirmed assignment
func (s *Service) SaveAssignment(ctx context.Context, a agenda.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	unlock := s.lockDate(a.MeetingDate)
	defer unlock()

	if err := s.store.AddAssignment(ctx, a); err != nil {
		return fmt.Errorf("saving assignment: %w", err)
	}
	return nil
}

// SaveAssignments replaces the assignments of every meeting date present in the batch
func (s *Service) SaveAssignments(ctx context.Context, batch []agenda.Assignment) error {
	if len(batch) == 0 {
		return fmt.Errorf("%w: no assignments given", ErrInvalidInput)
	}
	for i, a := range batch {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: assignment %d: %v", ErrInvalidInput, i, err)
		}
	}

	unlock := s.lockDates(batch)
	defer unlock()

	if err := s.store.SaveAssignments(ctx, batch); err != nil {
		return fmt.Errorf("saving assignments: %w", err)
	}
	logger.Info("Assignments saved", logger.Fields{"count": len(batch)})
	return nil
}

// Assignments returns the saved assignments of a meeting date
func (s *Service) Assignments(ctx context.Context, date time.Time) ([]agenda.Assignment, error) {
	list, err := s.store.Assignments(ctx, date.Format(agenda.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	return list, nil
}
