package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// DefaultRoleNames are seeded for every project at creation, in this order.
// Default roles are immutable and cannot be deleted.
var DefaultRoleNames = []string{"owner", "validator", "contributor", "viewer"}

// Role is a named permission grant target within one project.
//
// Invariants:
//   - Name is non-empty, at most 50 characters, unique per project among
//     non-removed roles
//   - IsDefault is set only by the project-creation seeding path, never by
//     caller input
//   - ProjectID and CompanyID are immutable after construction
//   - RemovedAt non-nil means the role is invisible to authorization
type Role struct {
	ID        id.RoleID    `json:"id"`
	ProjectID id.ProjectID `json:"project_id"`
	CompanyID id.CompanyID `json:"company_id"`
	Name      string       `json:"name"`
	IsDefault bool         `json:"is_default"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	RemovedAt *time.Time   `json:"removed_at,omitempty"`
}

func NewRole(roleID id.RoleID, projectID id.ProjectID, companyID id.CompanyID, name string, isDefault bool, now time.Time) (*Role, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role name cannot be empty")
	}
	if len(name) > 50 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role name must be 50 characters or less")
	}
	return &Role{
		ID:        roleID,
		ProjectID: projectID,
		CompanyID: companyID,
		Name:      name,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Role) IsRemoved() bool {
	return r.RemovedAt != nil
}

// CanModify checks that the role accepts caller edits. Default roles are
// immutable.
func (r *Role) CanModify() error {
	if r.IsDefault {
		return dErrors.New(dErrors.CodeForbidden, "default roles cannot be modified")
	}
	if r.IsRemoved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "role is deleted")
	}
	return nil
}

// Rename validates and applies a new name. Uniqueness within the project is
// the service's check.
func (r *Role) Rename(name string, now time.Time) error {
	if err := r.CanModify(); err != nil {
		return err
	}
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "role name cannot be empty")
	}
	if len(name) > 50 {
		return dErrors.New(dErrors.CodeInvariantViolation, "role name must be 50 characters or less")
	}
	r.Name = name
	r.UpdatedAt = now
	return nil
}

// CanDelete checks that the role may be soft-deleted. Default roles are
// protected; membership references are a service-level guard because the
// model cannot see them.
func (r *Role) CanDelete() error {
	if r.IsDefault {
		return dErrors.New(dErrors.CodeForbidden, "default roles cannot be deleted")
	}
	if r.IsRemoved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "role is already deleted")
	}
	return nil
}

// ApplyDelete soft-deletes the role.
// Call CanDelete first.
func (r *Role) ApplyDelete(now time.Time) {
	ts := now
	r.RemovedAt = &ts
	r.UpdatedAt = now
}

// Delete validates and applies deletion in one call.
func (r *Role) Delete(now time.Time) error {
	if err := r.CanDelete(); err != nil {
		return err
	}
	r.ApplyDelete(now)
	return nil
}
