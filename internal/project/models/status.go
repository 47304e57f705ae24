package models

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusCreated      ProjectStatus = "created"
	StatusInitialized  ProjectStatus = "initialized"
	StatusConsultation ProjectStatus = "consultation"
	StatusLost         ProjectStatus = "lost"
	StatusActive       ProjectStatus = "active"
	StatusSuspended    ProjectStatus = "suspended"
	StatusCompleted    ProjectStatus = "completed"
	StatusArchived     ProjectStatus = "archived"
)

// statusTransitions is the complete lifecycle table. A status with no entry is
// terminal for the generic update path. No status transitions to itself.
//
// Restore (archived -> active) is deliberately absent: it is a dedicated
// operation with its own precondition, not a table transition.
var statusTransitions = map[ProjectStatus][]ProjectStatus{
	StatusCreated:      {StatusInitialized},
	StatusInitialized:  {StatusConsultation},
	StatusConsultation: {StatusActive, StatusLost},
	StatusActive:       {StatusSuspended, StatusCompleted},
	StatusSuspended:    {StatusActive},
	StatusCompleted:    {StatusArchived},
}

// CanTransitionTo reports whether the lifecycle table allows moving from s to
// target. Unknown statuses allow no transitions.
func (s ProjectStatus) CanTransitionTo(target ProjectStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if target == allowed {
			return true
		}
	}
	return false
}

func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusCreated, StatusInitialized, StatusConsultation, StatusLost,
		StatusActive, StatusSuspended, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s ProjectStatus) IsTerminal() bool {
	return s.IsValid() && len(statusTransitions[s]) == 0
}

func (s ProjectStatus) String() string {
	return string(s)
}
