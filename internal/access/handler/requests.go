package handler

import (
	"cascade/internal/access"
	dErrors "cascade/pkg/domain-errors"
)

// ProjectCheckEntry is one element of the project_checks array. Fields are
// pointers so a missing key can be told apart from an empty value and echoed
// back as null; per-entry validation happens in the batch facade, not here.
type ProjectCheckEntry struct {
	ProjectID *string `json:"project_id"`
	Action    *string `json:"action"`
}

// CheckProjectAccessRequest is the HTTP request body for
// POST /check-project-access.
type CheckProjectAccessRequest struct {
	Checks *[]ProjectCheckEntry `json:"project_checks"`
}

// Validate rejects only request-level malformation. Entry-level problems
// become per-entry denials and never fail the request.
func (r *CheckProjectAccessRequest) Validate() error {
	if r.Checks == nil {
		return dErrors.New(dErrors.CodeBadRequest, "project_checks array is required")
	}
	return nil
}

// ToChecks converts the raw entries for the batch facade, mapping missing
// keys to empty strings.
func (r *CheckProjectAccessRequest) ToChecks() []access.Check {
	entries := *r.Checks
	checks := make([]access.Check, len(entries))
	for i, entry := range entries {
		checks[i] = access.Check{
			ProjectID: stringValue(entry.ProjectID),
			Action:    stringValue(entry.Action),
		}
	}
	return checks
}

// FileCheckEntry is one element of the file_checks array.
type FileCheckEntry struct {
	FileID    *string `json:"file_id"`
	ProjectID *string `json:"project_id"`
	Action    *string `json:"action"`
}

// CheckFileAccessRequest is the HTTP request body for
// POST /check-file-access.
type CheckFileAccessRequest struct {
	Checks *[]FileCheckEntry `json:"file_checks"`
}

func (r *CheckFileAccessRequest) Validate() error {
	if r.Checks == nil {
		return dErrors.New(dErrors.CodeBadRequest, "file_checks array is required")
	}
	return nil
}

func (r *CheckFileAccessRequest) ToChecks() []access.FileCheck {
	entries := *r.Checks
	checks := make([]access.FileCheck, len(entries))
	for i, entry := range entries {
		checks[i] = access.FileCheck{
			FileID:    stringValue(entry.FileID),
			ProjectID: stringValue(entry.ProjectID),
			Action:    stringValue(entry.Action),
		}
	}
	return checks
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
