package handler

import (
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// CreateRoleRequest is the HTTP request body for
// POST /projects/{project_id}/roles. is_default is deliberately absent:
// callers can never mint default roles.
type CreateRoleRequest struct {
	Name *string `json:"name"`
}

func (r *CreateRoleRequest) Validate() error {
	if r.Name == nil {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}

// UpdateRoleRequest is the HTTP request body for
// PATCH /projects/{project_id}/roles/{role_id}.
type UpdateRoleRequest struct {
	Name *string `json:"name"`
}

func (r *UpdateRoleRequest) Validate() error {
	if r.Name == nil {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}

// AttachPolicyRequest is the HTTP request body for
// POST /projects/{project_id}/roles/{role_id}/policies.
type AttachPolicyRequest struct {
	PolicyID *id.PolicyID `json:"policy_id"`
}

func (r *AttachPolicyRequest) Validate() error {
	if r.PolicyID == nil {
		return dErrors.New(dErrors.CodeBadRequest, "policy_id is required")
	}
	return nil
}
