package project

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cascade/internal/project/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entity does not exist, belongs to a
//   different company, or is soft-deleted (callers cannot tell these apart)
// - Return ErrConflict on identity collisions
// - Return nil for successful operations

// InMemory stores projects in memory for tests/dev.
type InMemory struct {
	mu       sync.RWMutex
	projects map[id.ProjectID]*models.Project
}

// NewInMemory constructs an empty in-memory project store.
func NewInMemory() *InMemory {
	return &InMemory{projects: make(map[id.ProjectID]*models.Project)}
}

func (s *InMemory) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; ok {
		return fmt.Errorf("project %s already exists: %w", project.ID, sentinel.ErrConflict)
	}
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

// FindByID returns the project only when it exists, belongs to the company,
// and is not soft-deleted. Every failure mode is the same ErrNotFound so a
// caller can never probe for projects in other companies.
func (s *InMemory) FindByID(_ context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok || p.CompanyID != companyID || p.IsDeleted() {
		return nil, fmt.Errorf("project not found: %w", sentinel.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// FindAny returns the project regardless of removal state. History reads
// outlive the project's soft-deletion, so they gate on this weaker lookup.
func (s *InMemory) FindAny(_ context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok || p.CompanyID != companyID {
		return nil, fmt.Errorf("project not found: %w", sentinel.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) ListByCompany(_ context.Context, companyID id.CompanyID) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0)
	for _, p := range s.projects {
		if p.CompanyID != companyID || p.IsDeleted() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update replaces the stored row. The lookup ignores the soft-delete flag so
// the soft-delete mutation itself can land.
func (s *InMemory) Update(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[project.ID]
	if !ok || existing.CompanyID != project.CompanyID {
		return fmt.Errorf("project not found: %w", sentinel.ErrNotFound)
	}
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}
