package policy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cascade/internal/policy/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

// InMemory stores policies and their permission links in memory for
// tests/dev. Policy names are unique per project among non-removed policies.
type InMemory struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*models.Policy
	links    map[id.PolicyID]map[id.PermissionID]struct{}
}

// NewInMemory constructs an empty in-memory policy store.
func NewInMemory() *InMemory {
	return &InMemory{
		policies: make(map[id.PolicyID]*models.Policy),
		links:    make(map[id.PolicyID]map[id.PermissionID]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, policy *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[policy.ID]; ok {
		return fmt.Errorf("policy %s already exists: %w", policy.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.policies {
		if existing.ProjectID == policy.ProjectID && !existing.IsRemoved() &&
			strings.EqualFold(existing.Name, policy.Name) {
			return fmt.Errorf("policy name already taken: %w", sentinel.ErrConflict)
		}
	}
	cp := *policy
	s.policies[policy.ID] = &cp
	return nil
}

func (s *InMemory) FindActive(_ context.Context, projectID id.ProjectID, policyID id.PolicyID) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID]
	if !ok || p.ProjectID != projectID || p.IsRemoved() {
		return nil, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) FindActiveByName(_ context.Context, projectID id.ProjectID, name string) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.policies {
		if p.ProjectID == projectID && !p.IsRemoved() && strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
}

// ListActiveByIDs filters the given link targets down to policies that still
// exist and are not removed. Order is not significant (set semantics).
func (s *InMemory) ListActiveByIDs(_ context.Context, ids []id.PolicyID) ([]*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Policy, 0, len(ids))
	for _, policyID := range ids {
		p, ok := s.policies[policyID]
		if !ok || p.IsRemoved() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) ListActiveByProject(_ context.Context, projectID id.ProjectID) ([]*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Policy, 0)
	for _, p := range s.policies {
		if p.ProjectID != projectID || p.IsRemoved() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, policy *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[policy.ID]; !ok {
		return fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
	}
	cp := *policy
	s.policies[policy.ID] = &cp
	return nil
}

// AttachPermission links a permission to the policy. Duplicate links conflict.
func (s *InMemory) AttachPermission(_ context.Context, policyID id.PolicyID, permissionID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links[policyID] == nil {
		s.links[policyID] = make(map[id.PermissionID]struct{})
	}
	if _, ok := s.links[policyID][permissionID]; ok {
		return fmt.Errorf("permission already attached: %w", sentinel.ErrConflict)
	}
	s.links[policyID][permissionID] = struct{}{}
	return nil
}

func (s *InMemory) DetachPermission(_ context.Context, policyID id.PolicyID, permissionID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[policyID][permissionID]; !ok {
		return fmt.Errorf("permission not attached: %w", sentinel.ErrNotFound)
	}
	delete(s.links[policyID], permissionID)
	return nil
}

// ListPermissionIDs returns the raw permission links of the policy.
// Permission visibility is the permission store's concern at the next hop.
func (s *InMemory) ListPermissionIDs(_ context.Context, policyID id.PolicyID) ([]id.PermissionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.PermissionID, 0, len(s.links[policyID]))
	for permissionID := range s.links[policyID] {
		out = append(out, permissionID)
	}
	return out, nil
}
