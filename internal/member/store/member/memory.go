package member

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cascade/internal/member/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

type pairKey struct {
	projectID id.ProjectID
	userID    id.UserID
}

// InMemory stores memberships in memory for tests/dev. The map is keyed by
// the (project, user) pair, so the one-row-per-pair invariant holds by
// construction.
type InMemory struct {
	mu      sync.RWMutex
	members map[pairKey]*models.Membership
}

// NewInMemory constructs an empty in-memory membership store.
func NewInMemory() *InMemory {
	return &InMemory{members: make(map[pairKey]*models.Membership)}
}

func key(m *models.Membership) pairKey {
	return pairKey{projectID: m.ProjectID, userID: m.UserID}
}

func (s *InMemory) Create(_ context.Context, membership *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(membership)
	if _, ok := s.members[k]; ok {
		return fmt.Errorf("membership already exists: %w", sentinel.ErrConflict)
	}
	cp := *membership
	s.members[k] = &cp
	return nil
}

// FindByPair returns the row for the pair regardless of removal state. The
// restore-on-re-add path needs to see removed rows.
func (s *InMemory) FindByPair(_ context.Context, projectID id.ProjectID, userID id.UserID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[pairKey{projectID: projectID, userID: userID}]
	if !ok {
		return nil, fmt.Errorf("membership not found: %w", sentinel.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

// FindActive returns the membership only when it is not removed. This is the
// authorization read.
func (s *InMemory) FindActive(_ context.Context, projectID id.ProjectID, userID id.UserID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[pairKey{projectID: projectID, userID: userID}]
	if !ok || m.IsRemoved() {
		return nil, fmt.Errorf("membership not found: %w", sentinel.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *InMemory) ListActiveByProject(_ context.Context, projectID id.ProjectID) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Membership, 0)
	for _, m := range s.members {
		if m.ProjectID != projectID || m.IsRemoved() {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, membership *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(membership)
	if _, ok := s.members[k]; !ok {
		return fmt.Errorf("membership not found: %w", sentinel.ErrNotFound)
	}
	cp := *membership
	s.members[k] = &cp
	return nil
}

// CountActiveByRole reports how many active memberships still reference the
// role. Used as the role-deletion guard.
func (s *InMemory) CountActiveByRole(_ context.Context, roleID id.RoleID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.members {
		if m.RoleID == roleID && !m.IsRemoved() {
			count++
		}
	}
	return count, nil
}

// RemoveAllForProject soft-removes every active membership of the project.
// Part of the project soft-delete cascade.
func (s *InMemory) RemoveAllForProject(_ context.Context, projectID id.ProjectID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, m := range s.members {
		if m.ProjectID != projectID || m.IsRemoved() {
			continue
		}
		m.ApplyRemove(now)
		removed++
	}
	return removed, nil
}
