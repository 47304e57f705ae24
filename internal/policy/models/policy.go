package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// Policy is a named bundle of permissions attachable to roles.
//
// Invariants:
//   - Name is non-empty, at most 50 characters, unique per project among
//     non-removed policies
//   - A policy cannot be deleted while any non-removed role still holds it
//     (service-level guard; the model cannot see role links)
//   - ProjectID and CompanyID are immutable after construction
//   - RemovedAt non-nil means the policy is invisible to authorization
type Policy struct {
	ID        id.PolicyID  `json:"id"`
	ProjectID id.ProjectID `json:"project_id"`
	CompanyID id.CompanyID `json:"company_id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	RemovedAt *time.Time   `json:"removed_at,omitempty"`
}

func NewPolicy(policyID id.PolicyID, projectID id.ProjectID, companyID id.CompanyID, name string, now time.Time) (*Policy, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy name cannot be empty")
	}
	if len(name) > 50 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy name must be 50 characters or less")
	}
	return &Policy{
		ID:        policyID,
		ProjectID: projectID,
		CompanyID: companyID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Policy) IsRemoved() bool {
	return p.RemovedAt != nil
}

// Rename validates and applies a new name. Uniqueness within the project is
// the service's check.
func (p *Policy) Rename(name string, now time.Time) error {
	if p.IsRemoved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy is deleted")
	}
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy name cannot be empty")
	}
	if len(name) > 50 {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy name must be 50 characters or less")
	}
	p.Name = name
	p.UpdatedAt = now
	return nil
}

// CanDelete checks that the policy may be soft-deleted.
func (p *Policy) CanDelete() error {
	if p.IsRemoved() {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy is already deleted")
	}
	return nil
}

// ApplyDelete soft-deletes the policy.
// Call CanDelete first.
func (p *Policy) ApplyDelete(now time.Time) {
	ts := now
	p.RemovedAt = &ts
	p.UpdatedAt = now
}

// Delete validates and applies deletion in one call.
func (p *Policy) Delete(now time.Time) error {
	if err := p.CanDelete(); err != nil {
		return err
	}
	p.ApplyDelete(now)
	return nil
}
