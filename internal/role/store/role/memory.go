package role

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cascade/internal/role/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

// InMemory stores roles and their policy links in memory for tests/dev.
// Role names are unique per project among non-removed roles, matching the
// partial unique index the postgres store relies on.
type InMemory struct {
	mu    sync.RWMutex
	roles map[id.RoleID]*models.Role
	links map[id.RoleID]map[id.PolicyID]struct{}
}

// NewInMemory constructs an empty in-memory role store.
func NewInMemory() *InMemory {
	return &InMemory{
		roles: make(map[id.RoleID]*models.Role),
		links: make(map[id.RoleID]map[id.PolicyID]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role.ID]; ok {
		return fmt.Errorf("role %s already exists: %w", role.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.roles {
		if existing.ProjectID == role.ProjectID && !existing.IsRemoved() &&
			strings.EqualFold(existing.Name, role.Name) {
			return fmt.Errorf("role name already taken: %w", sentinel.ErrConflict)
		}
	}
	cp := *role
	s.roles[role.ID] = &cp
	return nil
}

// FindActive returns the role only when it belongs to the project and is not
// removed. This is the authorization read.
func (s *InMemory) FindActive(_ context.Context, projectID id.ProjectID, roleID id.RoleID) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID]
	if !ok || r.ProjectID != projectID || r.IsRemoved() {
		return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *InMemory) FindActiveByName(_ context.Context, projectID id.ProjectID, name string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.ProjectID == projectID && !r.IsRemoved() && strings.EqualFold(r.Name, name) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) ListActiveByProject(_ context.Context, projectID id.ProjectID) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Role, 0)
	for _, r := range s.roles {
		if r.ProjectID != projectID || r.IsRemoved() {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role.ID]; !ok {
		return fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
	}
	cp := *role
	s.roles[role.ID] = &cp
	return nil
}

// AttachPolicy links a policy to the role. Duplicate links conflict.
func (s *InMemory) AttachPolicy(_ context.Context, roleID id.RoleID, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links[roleID] == nil {
		s.links[roleID] = make(map[id.PolicyID]struct{})
	}
	if _, ok := s.links[roleID][policyID]; ok {
		return fmt.Errorf("policy already attached: %w", sentinel.ErrConflict)
	}
	s.links[roleID][policyID] = struct{}{}
	return nil
}

func (s *InMemory) DetachPolicy(_ context.Context, roleID id.RoleID, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[roleID][policyID]; !ok {
		return fmt.Errorf("policy not attached: %w", sentinel.ErrNotFound)
	}
	delete(s.links[roleID], policyID)
	return nil
}

// ListPolicyIDs returns the raw policy links of the role. Policy visibility
// (soft-deletion) is the policy store's concern, applied at the next hop.
func (s *InMemory) ListPolicyIDs(_ context.Context, roleID id.RoleID) ([]id.PolicyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.PolicyID, 0, len(s.links[roleID]))
	for policyID := range s.links[roleID] {
		out = append(out, policyID)
	}
	return out, nil
}

// CountActiveRolesHoldingPolicy reports how many non-removed roles still link
// the policy. Used as the policy-deletion guard.
func (s *InMemory) CountActiveRolesHoldingPolicy(_ context.Context, policyID id.PolicyID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for roleID, policies := range s.links {
		if _, ok := policies[policyID]; !ok {
			continue
		}
		if r, exists := s.roles[roleID]; exists && !r.IsRemoved() {
			count++
		}
	}
	return count, nil
}
