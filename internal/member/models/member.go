package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// Membership links one user to one project under exactly one role.
//
// Invariants:
//   - Identity is the (ProjectID, UserID) pair; there is never more than one
//     row per pair, removed or not
//   - A user holds at most one active role per project; re-adding a removed
//     member restores the existing row instead of inserting a second one
//   - CompanyID is denormalized from the project for tenant-scoped filtering
//     and is immutable
//   - RemovedAt non-nil means the membership is invisible to authorization
type Membership struct {
	ProjectID id.ProjectID `json:"project_id"`
	UserID    id.UserID    `json:"user_id"`
	CompanyID id.CompanyID `json:"company_id"`
	RoleID    id.RoleID    `json:"role_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	RemovedAt *time.Time   `json:"removed_at,omitempty"`
}

func NewMembership(projectID id.ProjectID, userID id.UserID, companyID id.CompanyID, roleID id.RoleID, now time.Time) (*Membership, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "membership user cannot be empty")
	}
	if roleID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "membership role cannot be empty")
	}
	return &Membership{
		ProjectID: projectID,
		UserID:    userID,
		CompanyID: companyID,
		RoleID:    roleID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *Membership) IsRemoved() bool {
	return m.RemovedAt != nil
}

// CanRemove checks that the membership is still active.
func (m *Membership) CanRemove() error {
	if m.IsRemoved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "membership is already removed")
	}
	return nil
}

// ApplyRemove soft-removes the member from the project.
// Call CanRemove first.
func (m *Membership) ApplyRemove(now time.Time) {
	ts := now
	m.RemovedAt = &ts
	m.UpdatedAt = now
}

// Remove validates and applies removal in one call.
func (m *Membership) Remove(now time.Time) error {
	if err := m.CanRemove(); err != nil {
		return err
	}
	m.ApplyRemove(now)
	return nil
}

// ApplyRestore reactivates a removed membership under the given role. The
// restored row keeps its original CreatedAt; the caller-supplied role wins
// over whatever role the row held before removal.
func (m *Membership) ApplyRestore(roleID id.RoleID, now time.Time) {
	m.RoleID = roleID
	m.RemovedAt = nil
	m.UpdatedAt = now
}

// ApplyRoleChange reassigns the member's role and reports whether the role
// actually changed. An unchanged role is a no-op so callers can skip the
// history entry.
func (m *Membership) ApplyRoleChange(roleID id.RoleID, now time.Time) bool {
	if m.RoleID == roleID {
		return false
	}
	m.RoleID = roleID
	m.UpdatedAt = now
	return true
}
