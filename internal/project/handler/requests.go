package handler

import (
	"time"

	"cascade/internal/project/models"
	"cascade/internal/project/service"
	id "cascade/pkg/domain"
)

// CreateProjectRequest carries the caller-supplied fields for a new project.
// Status is deliberately absent: a new project always starts as created, so
// any status in the body is ignored at the door.
type CreateProjectRequest struct {
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	CustomerID           *id.CustomerID `json:"customer_id"`
	ConsultationDate     *time.Time     `json:"consultation_date"`
	SubmissionDeadline   *time.Time     `json:"submission_deadline"`
	NotificationDate     *time.Time     `json:"notification_date"`
	ContractStartDate    *time.Time     `json:"contract_start_date"`
	PlannedStartDate     *time.Time     `json:"planned_start_date"`
	ActualStartDate      *time.Time     `json:"actual_start_date"`
	ContractDeliveryDate *time.Time     `json:"contract_delivery_date"`
	PlannedDeliveryDate  *time.Time     `json:"planned_delivery_date"`
	ActualDeliveryDate   *time.Time     `json:"actual_delivery_date"`
	ContractAmount       *string        `json:"contract_amount"`
	BudgetCurrency       *string        `json:"budget_currency"`
}

func (r *CreateProjectRequest) ToParams() service.CreateParams {
	return service.CreateParams{
		Name:                 r.Name,
		Description:          r.Description,
		CustomerID:           r.CustomerID,
		ConsultationDate:     r.ConsultationDate,
		SubmissionDeadline:   r.SubmissionDeadline,
		NotificationDate:     r.NotificationDate,
		ContractStartDate:    r.ContractStartDate,
		PlannedStartDate:     r.PlannedStartDate,
		ActualStartDate:      r.ActualStartDate,
		ContractDeliveryDate: r.ContractDeliveryDate,
		PlannedDeliveryDate:  r.PlannedDeliveryDate,
		ActualDeliveryDate:   r.ActualDeliveryDate,
		ContractAmount:       r.ContractAmount,
		BudgetCurrency:       r.BudgetCurrency,
	}
}

// UpdateProjectRequest is a partial update; absent fields stay untouched.
type UpdateProjectRequest struct {
	Name                 *string               `json:"name"`
	Description          *string               `json:"description"`
	Status               *models.ProjectStatus `json:"status"`
	CustomerID           *id.CustomerID        `json:"customer_id"`
	ConsultationDate     *time.Time            `json:"consultation_date"`
	SubmissionDeadline   *time.Time            `json:"submission_deadline"`
	NotificationDate     *time.Time            `json:"notification_date"`
	ContractStartDate    *time.Time            `json:"contract_start_date"`
	PlannedStartDate     *time.Time            `json:"planned_start_date"`
	ActualStartDate      *time.Time            `json:"actual_start_date"`
	ContractDeliveryDate *time.Time            `json:"contract_delivery_date"`
	PlannedDeliveryDate  *time.Time            `json:"planned_delivery_date"`
	ActualDeliveryDate   *time.Time            `json:"actual_delivery_date"`
	ContractAmount       *string               `json:"contract_amount"`
	BudgetCurrency       *string               `json:"budget_currency"`
}

func (r *UpdateProjectRequest) ToPatch() *models.Patch {
	return &models.Patch{
		Name:                 r.Name,
		Description:          r.Description,
		Status:               r.Status,
		CustomerID:           r.CustomerID,
		ConsultationDate:     r.ConsultationDate,
		SubmissionDeadline:   r.SubmissionDeadline,
		NotificationDate:     r.NotificationDate,
		ContractStartDate:    r.ContractStartDate,
		PlannedStartDate:     r.PlannedStartDate,
		ActualStartDate:      r.ActualStartDate,
		ContractDeliveryDate: r.ContractDeliveryDate,
		PlannedDeliveryDate:  r.PlannedDeliveryDate,
		ActualDeliveryDate:   r.ActualDeliveryDate,
		ContractAmount:       r.ContractAmount,
		BudgetCurrency:       r.BudgetCurrency,
	}
}
