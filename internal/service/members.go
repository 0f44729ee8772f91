package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/storage"
)

// ErrUnknownMember means the named member is not on the roster
var ErrUnknownMember = errors.New("unknown member")

// Members lists the roster; all includes deactivated members
func (s *Service) Members(ctx context.Context, all bool) ([]storage.Member, error) {
	members, err := s.store.Members(ctx, !all)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return members, nil
}

// AddMembers puts names on the active roster and returns how many were written
func (s *Service) AddMembers(ctx context.Context, names []string) (int, error) {
	clean := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			clean = append(clean, n)
		}
	}
	if len(clean) == 0 {
		return 0, fmt.Errorf("%w: no member names given", ErrInvalidInput)
	}

	n, err := s.store.AddMembers(ctx, clean)
	if err != nil {
		return 0, fmt.Errorf("adding members: %w", err)
	}
	logger.Info("Members added", logger.Fields{"count": n})
	return n, nil
}

// DeactivateMember takes a member off the roster used for suggestions.
// History is kept.
func (s *Service) DeactivateMember(ctx context.Context, name string) error {
	err := s.store.SetMemberActive(ctx, strings.TrimSpace(name), false)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", name, ErrUnknownMember)
	}
	if err != nil {
		return fmt.Errorf("deactivating member: %w", err)
	}
	return nil
}
