package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// Project is the aggregate root for a customer project.
//
// Invariants:
//   - Name is non-empty and at most 100 characters
//   - Description is at most 500 characters
//   - Status always holds a value from the lifecycle table
//   - Status changes on the update path follow statusTransitions; archive and
//     restore are dedicated operations with their own preconditions
//   - CompanyID is immutable after construction
//   - RemovedAt non-nil means the project is logically absent: every lookup
//     feeding authorization or mutation must treat it as missing
//
// # Tenant Boundary
//
// A project is only ever visible through (id, company_id) pairs. A lookup with
// the wrong company MUST behave exactly like a lookup for a missing id, so a
// caller can never distinguish "exists in another company" from "does not
// exist". This is enforced at the store layer rather than by post-filtering.
type Project struct {
	ID                   id.ProjectID   `json:"id"`
	CompanyID            id.CompanyID   `json:"company_id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	Status               ProjectStatus  `json:"status"`
	CustomerID           *id.CustomerID `json:"customer_id,omitempty"`
	ConsultationDate     *time.Time     `json:"consultation_date,omitempty"`
	SubmissionDeadline   *time.Time     `json:"submission_deadline,omitempty"`
	NotificationDate     *time.Time     `json:"notification_date,omitempty"`
	ContractStartDate    *time.Time     `json:"contract_start_date,omitempty"`
	PlannedStartDate     *time.Time     `json:"planned_start_date,omitempty"`
	ActualStartDate      *time.Time     `json:"actual_start_date,omitempty"`
	ContractDeliveryDate *time.Time     `json:"contract_delivery_date,omitempty"`
	PlannedDeliveryDate  *time.Time     `json:"planned_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time     `json:"actual_delivery_date,omitempty"`
	ContractAmount       string         `json:"contract_amount,omitempty"`
	BudgetCurrency       string         `json:"budget_currency,omitempty"`
	SuspendedAt          *time.Time     `json:"suspended_at,omitempty"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
	ArchivedAt           *time.Time     `json:"archived_at,omitempty"`
	CreatedBy            id.UserID      `json:"created_by"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	RemovedAt            *time.Time     `json:"removed_at,omitempty"`
}

func NewProject(projectID id.ProjectID, companyID id.CompanyID, name, description string, createdBy id.UserID, now time.Time) (*Project, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project name cannot be empty")
	}
	if len(name) > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project name must be 100 characters or less")
	}
	if len(description) > 500 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project description must be 500 characters or less")
	}
	return &Project{
		ID:             projectID,
		CompanyID:      companyID,
		Name:           name,
		Description:    description,
		Status:         StatusCreated,
		BudgetCurrency: "EUR",
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *Project) IsDeleted() bool {
	return p.RemovedAt != nil
}

// CanApply checks whether the patch may be applied to the project in its
// current state. Only a status that actually differs from the current one is
// checked against the lifecycle table; re-supplying the current status is a
// no-op, not a transition.
func (p *Project) CanApply(patch *Patch) error {
	if patch.Status != nil && *patch.Status != p.Status {
		if !p.Status.CanTransitionTo(*patch.Status) {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"cannot transition project from %s to %s", p.Status, *patch.Status)
		}
	}
	return nil
}

// Apply mutates the project per the patch and returns one FieldChange per
// field whose value actually changed, in declaration order. Reaching
// suspended or completed stamps the matching timestamp. Call CanApply first.
func (p *Project) Apply(patch *Patch, now time.Time) []FieldChange {
	cs := changeSet{}

	cs.stringField("name", &p.Name, patch.Name)
	cs.stringField("description", &p.Description, patch.Description)

	if patch.Status != nil && *patch.Status != p.Status {
		cs.record("status", string(p.Status), string(*patch.Status))
		p.Status = *patch.Status
		switch p.Status {
		case StatusSuspended:
			ts := now
			p.SuspendedAt = &ts
		case StatusCompleted:
			ts := now
			p.CompletedAt = &ts
		}
	}

	cs.customerField("customer_id", &p.CustomerID, patch.CustomerID)
	cs.timeField("consultation_date", &p.ConsultationDate, patch.ConsultationDate)
	cs.timeField("submission_deadline", &p.SubmissionDeadline, patch.SubmissionDeadline)
	cs.timeField("notification_date", &p.NotificationDate, patch.NotificationDate)
	cs.timeField("contract_start_date", &p.ContractStartDate, patch.ContractStartDate)
	cs.timeField("planned_start_date", &p.PlannedStartDate, patch.PlannedStartDate)
	cs.timeField("actual_start_date", &p.ActualStartDate, patch.ActualStartDate)
	cs.timeField("contract_delivery_date", &p.ContractDeliveryDate, patch.ContractDeliveryDate)
	cs.timeField("planned_delivery_date", &p.PlannedDeliveryDate, patch.PlannedDeliveryDate)
	cs.timeField("actual_delivery_date", &p.ActualDeliveryDate, patch.ActualDeliveryDate)
	cs.stringField("contract_amount", &p.ContractAmount, patch.ContractAmount)
	cs.stringField("budget_currency", &p.BudgetCurrency, patch.BudgetCurrency)

	if len(cs.changes) > 0 {
		p.UpdatedAt = now
	}
	return cs.changes
}

// CanArchive checks that the project is in a state that allows archiving.
// Use with ApplyArchive in Execute callbacks for proper separation of concerns.
func (p *Project) CanArchive() error {
	if p.Status != StatusCompleted {
		return dErrors.New(dErrors.CodeInvariantViolation, "only completed projects can be archived")
	}
	return nil
}

// ApplyArchive moves the project to archived and stamps ArchivedAt.
// Call CanArchive first to validate the transition.
func (p *Project) ApplyArchive(now time.Time) {
	ts := now
	p.Status = StatusArchived
	p.ArchivedAt = &ts
	p.UpdatedAt = now
}

// Archive validates and applies archiving in one call.
// Prefer CanArchive + ApplyArchive for Execute callback pattern.
func (p *Project) Archive(now time.Time) error {
	if err := p.CanArchive(); err != nil {
		return err
	}
	p.ApplyArchive(now)
	return nil
}

// CanRestore checks that the project is archived.
// Use with ApplyRestore in Execute callbacks for proper separation of concerns.
func (p *Project) CanRestore() error {
	if p.Status != StatusArchived {
		return dErrors.New(dErrors.CodeInvariantViolation, "only archived projects can be restored")
	}
	return nil
}

// ApplyRestore returns the project to active. ArchivedAt is intentionally
// kept as a marker that the project was archived at least once.
// Call CanRestore first to validate the transition.
func (p *Project) ApplyRestore(now time.Time) {
	p.Status = StatusActive
	p.UpdatedAt = now
}

// Restore validates and applies restoration in one call.
// Prefer CanRestore + ApplyRestore for Execute callback pattern.
func (p *Project) Restore(now time.Time) error {
	if err := p.CanRestore(); err != nil {
		return err
	}
	p.ApplyRestore(now)
	return nil
}

// CanSoftDelete checks that the project is not already deleted.
func (p *Project) CanSoftDelete() error {
	if p.IsDeleted() {
		return dErrors.New(dErrors.CodeInvariantViolation, "project is already deleted")
	}
	return nil
}

// ApplySoftDelete marks the project logically absent.
// Call CanSoftDelete first.
func (p *Project) ApplySoftDelete(now time.Time) {
	ts := now
	p.RemovedAt = &ts
	p.UpdatedAt = now
}

// SoftDelete validates and applies soft deletion in one call.
func (p *Project) SoftDelete(now time.Time) error {
	if err := p.CanSoftDelete(); err != nil {
		return err
	}
	p.ApplySoftDelete(now)
	return nil
}
