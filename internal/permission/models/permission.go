package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// PermissionCategory groups catalog permissions by the surface they guard.
type PermissionCategory string

const (
	CategoryFileOperations    PermissionCategory = "file_operations"
	CategoryProjectOperations PermissionCategory = "project_operations"
	CategoryMemberOperations  PermissionCategory = "member_operations"
)

func (c PermissionCategory) IsValid() bool {
	switch c {
	case CategoryFileOperations, CategoryProjectOperations, CategoryMemberOperations:
		return true
	}
	return false
}

// Permission is one grantable action within a project. Permissions are
// immutable after creation: there is no update path, only soft deletion.
//
// Invariants:
//   - Name is unique per project among non-removed permissions
//   - Name, Description, and Category never change after construction
//   - Only catalog tuples are ever created (see Catalog)
type Permission struct {
	ID          id.PermissionID    `json:"id"`
	ProjectID   id.ProjectID       `json:"project_id"`
	CompanyID   id.CompanyID       `json:"company_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    PermissionCategory `json:"category"`
	CreatedAt   time.Time          `json:"created_at"`
	RemovedAt   *time.Time         `json:"removed_at,omitempty"`
}

func NewPermission(permissionID id.PermissionID, projectID id.ProjectID, companyID id.CompanyID, name, description string, category PermissionCategory, now time.Time) (*Permission, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "permission name cannot be empty")
	}
	if !category.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown permission category %q", category)
	}
	return &Permission{
		ID:          permissionID,
		ProjectID:   projectID,
		CompanyID:   companyID,
		Name:        name,
		Description: description,
		Category:    category,
		CreatedAt:   now,
	}, nil
}

func (p *Permission) IsRemoved() bool {
	return p.RemovedAt != nil
}
