package models

import (
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// Patch carries a partial project update. A nil field means "not supplied"
// and leaves the current value untouched; there is no way to clear a value
// through a patch.
type Patch struct {
	Name                 *string
	Description          *string
	Status               *ProjectStatus
	CustomerID           *id.CustomerID
	ConsultationDate     *time.Time
	SubmissionDeadline   *time.Time
	NotificationDate     *time.Time
	ContractStartDate    *time.Time
	PlannedStartDate     *time.Time
	ActualStartDate      *time.Time
	ContractDeliveryDate *time.Time
	PlannedDeliveryDate  *time.Time
	ActualDeliveryDate   *time.Time
	ContractAmount       *string
	BudgetCurrency       *string
}

// Validate checks field bounds. Transition legality is a separate concern,
// see Project.CanApply.
func (p *Patch) Validate() error {
	if p.Name != nil {
		if *p.Name == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "project name cannot be empty")
		}
		if len(*p.Name) > 100 {
			return dErrors.New(dErrors.CodeInvariantViolation, "project name must be 100 characters or less")
		}
	}
	if p.Description != nil && len(*p.Description) > 500 {
		return dErrors.New(dErrors.CodeInvariantViolation, "project description must be 500 characters or less")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "unknown project status %q", *p.Status)
	}
	if p.BudgetCurrency != nil && len(*p.BudgetCurrency) != 3 {
		return dErrors.New(dErrors.CodeInvariantViolation, "budget currency must be a 3-letter code")
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *Patch) IsEmpty() bool {
	return *p == Patch{}
}

// FieldChange records one field mutation for the project history.
// Old and New are the stringified before/after values; empty string stands
// for an unset value.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// changeSet accumulates field changes while a patch is applied.
type changeSet struct {
	changes []FieldChange
}

func (c *changeSet) record(field, oldVal, newVal string) {
	c.changes = append(c.changes, FieldChange{Field: field, Old: oldVal, New: newVal})
}

func (c *changeSet) stringField(field string, cur *string, next *string) {
	if next == nil || *next == *cur {
		return
	}
	c.record(field, *cur, *next)
	*cur = *next
}

func (c *changeSet) timeField(field string, cur **time.Time, next *time.Time) {
	if next == nil || timesEqual(*cur, next) {
		return
	}
	c.record(field, formatTime(*cur), formatTime(next))
	v := *next
	*cur = &v
}

func (c *changeSet) customerField(field string, cur **id.CustomerID, next *id.CustomerID) {
	if next == nil || customersEqual(*cur, next) {
		return
	}
	oldVal := ""
	if *cur != nil {
		oldVal = (*cur).String()
	}
	c.record(field, oldVal, next.String())
	v := *next
	*cur = &v
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func customersEqual(a, b *id.CustomerID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
