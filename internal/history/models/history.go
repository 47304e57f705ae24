package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// Action classifies a history entry.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionStatusChanged Action = "status_changed"
	ActionDeleted       Action = "deleted"
	ActionRestored      Action = "restored"
	ActionMemberAdded   Action = "member_added"
	ActionMemberRemoved Action = "member_removed"
	ActionRoleAssigned  Action = "role_assigned"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionStatusChanged, ActionDeleted,
		ActionRestored, ActionMemberAdded, ActionMemberRemoved, ActionRoleAssigned:
		return true
	}
	return false
}

// Entry is one append-only project history record. Entries are never updated
// or deleted; the project's soft-deletion does not hide its history.
type Entry struct {
	ID        id.HistoryID `json:"id"`
	ProjectID id.ProjectID `json:"project_id"`
	CompanyID id.CompanyID `json:"company_id"`
	Action    Action       `json:"action"`
	FieldName string       `json:"field_name,omitempty"`
	OldValue  string       `json:"old_value,omitempty"`
	NewValue  string       `json:"new_value,omitempty"`
	Comment   string       `json:"comment,omitempty"`
	ChangedBy id.UserID    `json:"changed_by"`
	ChangedAt time.Time    `json:"changed_at"`
}

func NewEntry(entryID id.HistoryID, projectID id.ProjectID, companyID id.CompanyID, action Action, changedBy id.UserID, now time.Time) (*Entry, error) {
	if !action.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown history action %q", action)
	}
	return &Entry{
		ID:        entryID,
		ProjectID: projectID,
		CompanyID: companyID,
		Action:    action,
		ChangedBy: changedBy,
		ChangedAt: now,
	}, nil
}

// WithField attaches a field-level change to the entry.
func (e *Entry) WithField(name, oldValue, newValue string) *Entry {
	e.FieldName = name
	e.OldValue = oldValue
	e.NewValue = newValue
	return e
}

// WithComment attaches a free-form comment to the entry.
func (e *Entry) WithComment(comment string) *Entry {
	e.Comment = comment
	return e
}
