package handler

import (
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// AddMemberRequest is the HTTP request body for
// POST /projects/{project_id}/members.
type AddMemberRequest struct {
	UserID *id.UserID `json:"user_id"`
	RoleID *id.RoleID `json:"role_id"`
}

func (r *AddMemberRequest) Validate() error {
	if r.UserID == nil {
		return dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}
	if r.RoleID == nil {
		return dErrors.New(dErrors.CodeBadRequest, "role_id is required")
	}
	return nil
}

// UpdateMemberRequest is the HTTP request body for
// PATCH /projects/{project_id}/members/{user_id}. The role is the only
// mutable attribute of a membership.
type UpdateMemberRequest struct {
	RoleID *id.RoleID `json:"role_id"`
}

func (r *UpdateMemberRequest) Validate() error {
	if r.RoleID == nil {
		return dErrors.New(dErrors.CodeBadRequest, "role_id is required")
	}
	return nil
}
