package service

import (
	"sort"
	"sync"

	"github.com/pfrederiksen/tm-roles/internal/agenda"
)

func (s *Service) dateLock(date string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[date]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[date] = mu
	}
	return mu
}

func (s *Service) lockDate(date string) func() {
	mu := s.dateLock(date)
	mu.Lock()
	return mu.Unlock
}

// lockDates takes the lock of every date in the batch in sorted order so two
// overlapping batches cannot deadlock.
func (s *Service) lockDates(batch []agenda.Assignment) func() {
	seen := make(map[string]struct{}, len(batch))
	dates := make([]string, 0, len(batch))
	for _, a := range batch {
		if _, ok := seen[a.MeetingDate]; ok {
			continue
		}
		seen[a.MeetingDate] = struct{}{}
		dates = append(dates, a.MeetingDate)
	}
	sort.Strings(dates)

	held := make([]*sync.Mutex, 0, len(dates))
	for _, d := range dates {
		mu := s.dateLock(d)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
