package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cascade/internal/policy/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
	txcontext "cascade/pkg/platform/tx"
)

// Postgres persists policies in project_policies and their permission links
// in policy_permissions.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Runner(ctx, s.db)
}

const policyColumns = `
	id, project_id, company_id, name, created_at, updated_at, removed_at`

func (s *Postgres) Create(ctx context.Context, policy *models.Policy) error {
	query := `
		INSERT INTO project_policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(policy.ID),
		uuid.UUID(policy.ProjectID),
		uuid.UUID(policy.CompanyID),
		policy.Name,
		policy.CreatedAt,
		policy.UpdatedAt,
		policy.RemovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("policy name already taken: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *Postgres) FindActive(ctx context.Context, projectID id.ProjectID, policyID id.PolicyID) (*models.Policy, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM project_policies
		WHERE id = $1 AND project_id = $2 AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(policyID), uuid.UUID(projectID))
	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	return policy, nil
}

func (s *Postgres) FindActiveByName(ctx context.Context, projectID id.ProjectID, name string) (*models.Policy, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM project_policies
		WHERE project_id = $1 AND lower(name) = lower($2) AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), name)
	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find policy by name: %w", err)
	}
	return policy, nil
}

func (s *Postgres) ListActiveByIDs(ctx context.Context, ids []id.PolicyID) ([]*models.Policy, error) {
	if len(ids) == 0 {
		return []*models.Policy{}, nil
	}
	raw := make([]uuid.UUID, len(ids))
	for i, policyID := range ids {
		raw[i] = uuid.UUID(policyID)
	}
	query := `
		SELECT ` + policyColumns + `
		FROM project_policies
		WHERE id = ANY($1) AND removed_at IS NULL
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("list policies by ids: %w", err)
	}
	defer rows.Close()
	return collectPolicies(rows)
}

func (s *Postgres) ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Policy, error) {
	query := `
		SELECT ` + policyColumns + `
		FROM project_policies
		WHERE project_id = $1 AND removed_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()
	return collectPolicies(rows)
}

func (s *Postgres) Update(ctx context.Context, policy *models.Policy) error {
	query := `
		UPDATE project_policies
		SET name = $2, updated_at = $3, removed_at = $4
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(policy.ID),
		policy.Name,
		policy.UpdatedAt,
		policy.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update policy rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) AttachPermission(ctx context.Context, policyID id.PolicyID, permissionID id.PermissionID) error {
	query := `INSERT INTO policy_permissions (policy_id, permission_id) VALUES ($1, $2)`
	_, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(policyID), uuid.UUID(permissionID))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("permission already attached: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("attach permission: %w", err)
	}
	return nil
}

func (s *Postgres) DetachPermission(ctx context.Context, policyID id.PolicyID, permissionID id.PermissionID) error {
	query := `DELETE FROM policy_permissions WHERE policy_id = $1 AND permission_id = $2`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(policyID), uuid.UUID(permissionID))
	if err != nil {
		return fmt.Errorf("detach permission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("detach permission rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("permission not attached: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) ListPermissionIDs(ctx context.Context, policyID id.PolicyID) ([]id.PermissionID, error) {
	query := `SELECT permission_id FROM policy_permissions WHERE policy_id = $1`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(policyID))
	if err != nil {
		return nil, fmt.Errorf("list policy permissions: %w", err)
	}
	defer rows.Close()

	ids := make([]id.PermissionID, 0)
	for rows.Next() {
		var permissionID uuid.UUID
		if err := rows.Scan(&permissionID); err != nil {
			return nil, fmt.Errorf("scan policy permission: %w", err)
		}
		ids = append(ids, id.PermissionID(permissionID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy permissions: %w", err)
	}
	return ids, nil
}

func collectPolicies(rows *sql.Rows) ([]*models.Policy, error) {
	policies := make([]*models.Policy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return policies, nil
}

func scanPolicy(row interface{ Scan(dest ...any) error }) (*models.Policy, error) {
	var (
		p         models.Policy
		policyID  uuid.UUID
		projectID uuid.UUID
		companyID uuid.UUID
	)
	err := row.Scan(&policyID, &projectID, &companyID, &p.Name, &p.CreatedAt, &p.UpdatedAt, &p.RemovedAt)
	if err != nil {
		return nil, err
	}
	p.ID = id.PolicyID(policyID)
	p.ProjectID = id.ProjectID(projectID)
	p.CompanyID = id.CompanyID(companyID)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
