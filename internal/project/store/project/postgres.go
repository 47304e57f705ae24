package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cascade/internal/project/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
	txcontext "cascade/pkg/platform/tx"
)

// Postgres persists projects. Every method resolves its executor from the
// context so it joins an ambient transaction when one is present.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Runner(ctx, s.db)
}

const projectColumns = `
	id, company_id, name, description, status, customer_id,
	consultation_date, submission_deadline, notification_date,
	contract_start_date, planned_start_date, actual_start_date,
	contract_delivery_date, planned_delivery_date, actual_delivery_date,
	contract_amount, budget_currency,
	suspended_at, completed_at, archived_at,
	created_by, created_at, updated_at, removed_at`

func (s *Postgres) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(project.ID),
		uuid.UUID(project.CompanyID),
		project.Name,
		project.Description,
		string(project.Status),
		customerUUID(project.CustomerID),
		project.ConsultationDate,
		project.SubmissionDeadline,
		project.NotificationDate,
		project.ContractStartDate,
		project.PlannedStartDate,
		project.ActualStartDate,
		project.ContractDeliveryDate,
		project.PlannedDeliveryDate,
		project.ActualDeliveryDate,
		project.ContractAmount,
		project.BudgetCurrency,
		project.SuspendedAt,
		project.CompletedAt,
		project.ArchivedAt,
		uuid.UUID(project.CreatedBy),
		project.CreatedAt,
		project.UpdatedAt,
		project.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND company_id = $2 AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), uuid.UUID(companyID))
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return project, nil
}

// FindAny returns the project regardless of removal state. History reads
// outlive the project's soft-deletion, so they gate on this weaker lookup.
func (s *Postgres) FindAny(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND company_id = $2
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), uuid.UUID(companyID))
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return project, nil
}

func (s *Postgres) ListByCompany(ctx context.Context, companyID id.CompanyID) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE company_id = $1 AND removed_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(companyID))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (s *Postgres) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET
			name = $3, description = $4, status = $5, customer_id = $6,
			consultation_date = $7, submission_deadline = $8, notification_date = $9,
			contract_start_date = $10, planned_start_date = $11, actual_start_date = $12,
			contract_delivery_date = $13, planned_delivery_date = $14, actual_delivery_date = $15,
			contract_amount = $16, budget_currency = $17,
			suspended_at = $18, completed_at = $19, archived_at = $20,
			updated_at = $21, removed_at = $22
		WHERE id = $1 AND company_id = $2
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(project.ID),
		uuid.UUID(project.CompanyID),
		project.Name,
		project.Description,
		string(project.Status),
		customerUUID(project.CustomerID),
		project.ConsultationDate,
		project.SubmissionDeadline,
		project.NotificationDate,
		project.ContractStartDate,
		project.PlannedStartDate,
		project.ActualStartDate,
		project.ContractDeliveryDate,
		project.PlannedDeliveryDate,
		project.ActualDeliveryDate,
		project.ContractAmount,
		project.BudgetCurrency,
		project.SuspendedAt,
		project.CompletedAt,
		project.ArchivedAt,
		project.UpdatedAt,
		project.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p          models.Project
		projectID  uuid.UUID
		companyID  uuid.UUID
		status     string
		customerID *uuid.UUID
		createdBy  uuid.UUID
	)
	err := row.Scan(
		&projectID, &companyID, &p.Name, &p.Description, &status, &customerID,
		&p.ConsultationDate, &p.SubmissionDeadline, &p.NotificationDate,
		&p.ContractStartDate, &p.PlannedStartDate, &p.ActualStartDate,
		&p.ContractDeliveryDate, &p.PlannedDeliveryDate, &p.ActualDeliveryDate,
		&p.ContractAmount, &p.BudgetCurrency,
		&p.SuspendedAt, &p.CompletedAt, &p.ArchivedAt,
		&createdBy, &p.CreatedAt, &p.UpdatedAt, &p.RemovedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ID = id.ProjectID(projectID)
	p.CompanyID = id.CompanyID(companyID)
	p.Status = models.ProjectStatus(status)
	p.CreatedBy = id.UserID(createdBy)
	if customerID != nil {
		cid := id.CustomerID(*customerID)
		p.CustomerID = &cid
	}
	return &p, nil
}

func customerUUID(customerID *id.CustomerID) *uuid.UUID {
	if customerID == nil {
		return nil
	}
	u := uuid.UUID(*customerID)
	return &u
}
