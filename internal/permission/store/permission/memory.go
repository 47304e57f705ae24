package permission

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cascade/internal/permission/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

// InMemory stores permissions in memory for tests/dev. Permission names are
// unique per project among non-removed rows, like the postgres partial index.
type InMemory struct {
	mu          sync.RWMutex
	permissions map[id.PermissionID]*models.Permission
}

// NewInMemory constructs an empty in-memory permission store.
func NewInMemory() *InMemory {
	return &InMemory{permissions: make(map[id.PermissionID]*models.Permission)}
}

func (s *InMemory) Create(_ context.Context, permission *models.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[permission.ID]; ok {
		return fmt.Errorf("permission %s already exists: %w", permission.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.permissions {
		if existing.ProjectID == permission.ProjectID && !existing.IsRemoved() &&
			existing.Name == permission.Name {
			return fmt.Errorf("permission name already taken: %w", sentinel.ErrConflict)
		}
	}
	cp := *permission
	s.permissions[permission.ID] = &cp
	return nil
}

// FindActive returns the permission only when it belongs to the project and
// is not removed.
func (s *InMemory) FindActive(_ context.Context, projectID id.ProjectID, permissionID id.PermissionID) (*models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permissionID]
	if !ok || p.ProjectID != projectID || p.IsRemoved() {
		return nil, fmt.Errorf("permission not found: %w", sentinel.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) FindActiveByName(_ context.Context, projectID id.ProjectID, name string) (*models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.ProjectID == projectID && !p.IsRemoved() && p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("permission not found: %w", sentinel.ErrNotFound)
}

// ListActiveByProject returns the project's permissions ordered by
// (category, name).
func (s *InMemory) ListActiveByProject(_ context.Context, projectID id.ProjectID) ([]*models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Permission, 0)
	for _, p := range s.permissions {
		if p.ProjectID != projectID || p.IsRemoved() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ListActiveByIDs filters the given link targets down to permissions that
// still exist and are not removed. Order is not significant (set semantics).
func (s *InMemory) ListActiveByIDs(_ context.Context, ids []id.PermissionID) ([]*models.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Permission, 0, len(ids))
	for _, permissionID := range ids {
		p, ok := s.permissions[permissionID]
		if !ok || p.IsRemoved() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
