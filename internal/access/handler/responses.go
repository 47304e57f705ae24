package handler

import (
	"cascade/internal/access"
)

// ProjectCheckResult echoes one input entry together with its decision.
// Echo fields keep their request values verbatim, including null for keys
// the caller omitted.
type ProjectCheckResult struct {
	ProjectID *string `json:"project_id"`
	Action    *string `json:"action"`
	Allowed   bool    `json:"allowed"`
	Role      string  `json:"role,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// CheckProjectAccessResponse is the HTTP response for
// POST /check-project-access.
type CheckProjectAccessResponse struct {
	Results []ProjectCheckResult `json:"results"`
}

// FromProjectDecisions zips request entries with their decisions. Both
// slices are positionally aligned by the batch contract.
func FromProjectDecisions(entries []ProjectCheckEntry, decisions []access.Decision) *CheckProjectAccessResponse {
	results := make([]ProjectCheckResult, len(entries))
	for i, entry := range entries {
		results[i] = ProjectCheckResult{
			ProjectID: entry.ProjectID,
			Action:    entry.Action,
			Allowed:   decisions[i].Allowed,
			Role:      decisions[i].RoleName,
			Reason:    decisions[i].Reason,
		}
	}
	return &CheckProjectAccessResponse{Results: results}
}

// FileCheckResult echoes one file check entry together with its decision.
type FileCheckResult struct {
	FileID    *string `json:"file_id"`
	ProjectID *string `json:"project_id"`
	Action    *string `json:"action"`
	Allowed   bool    `json:"allowed"`
	Role      string  `json:"role,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// CheckFileAccessResponse is the HTTP response for POST /check-file-access.
type CheckFileAccessResponse struct {
	Results []FileCheckResult `json:"results"`
}

func FromFileDecisions(entries []FileCheckEntry, decisions []access.Decision) *CheckFileAccessResponse {
	results := make([]FileCheckResult, len(entries))
	for i, entry := range entries {
		results[i] = FileCheckResult{
			FileID:    entry.FileID,
			ProjectID: entry.ProjectID,
			Action:    entry.Action,
			Allowed:   decisions[i].Allowed,
			Role:      decisions[i].RoleName,
			Reason:    decisions[i].Reason,
		}
	}
	return &CheckFileAccessResponse{Results: results}
}
