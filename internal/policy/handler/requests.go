package handler

import (
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// CreatePolicyRequest is the HTTP request body for
// POST /projects/{project_id}/policies.
type CreatePolicyRequest struct {
	Name *string `json:"name"`
}

func (r *CreatePolicyRequest) Validate() error {
	if r.Name == nil {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}

// UpdatePolicyRequest is the HTTP request body for
// PATCH /projects/{project_id}/policies/{policy_id}.
type UpdatePolicyRequest struct {
	Name *string `json:"name"`
}

func (r *UpdatePolicyRequest) Validate() error {
	if r.Name == nil {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}

// AttachPermissionRequest is the HTTP request body for
// POST /projects/{project_id}/policies/{policy_id}/permissions.
type AttachPermissionRequest struct {
	PermissionID *id.PermissionID `json:"permission_id"`
}

func (r *AttachPermissionRequest) Validate() error {
	if r.PermissionID == nil {
		return dErrors.New(dErrors.CodeBadRequest, "permission_id is required")
	}
	return nil
}
