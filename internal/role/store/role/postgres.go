package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cascade/internal/role/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
	txcontext "cascade/pkg/platform/tx"
)

// Postgres persists roles in project_roles and their policy links in
// role_policies. Name uniqueness among non-removed roles is enforced by a
// partial unique index, surfaced as ErrConflict.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Runner(ctx, s.db)
}

const roleColumns = `
	id, project_id, company_id, name, is_default, created_at, updated_at, removed_at`

func (s *Postgres) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO project_roles (` + roleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(role.ID),
		uuid.UUID(role.ProjectID),
		uuid.UUID(role.CompanyID),
		role.Name,
		role.IsDefault,
		role.CreatedAt,
		role.UpdatedAt,
		role.RemovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role name already taken: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (s *Postgres) FindActive(ctx context.Context, projectID id.ProjectID, roleID id.RoleID) (*models.Role, error) {
	query := `
		SELECT ` + roleColumns + `
		FROM project_roles
		WHERE id = $1 AND project_id = $2 AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(roleID), uuid.UUID(projectID))
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

func (s *Postgres) FindActiveByName(ctx context.Context, projectID id.ProjectID, name string) (*models.Role, error) {
	query := `
		SELECT ` + roleColumns + `
		FROM project_roles
		WHERE project_id = $1 AND lower(name) = lower($2) AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), name)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return role, nil
}

func (s *Postgres) ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Role, error) {
	query := `
		SELECT ` + roleColumns + `
		FROM project_roles
		WHERE project_id = $1 AND removed_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]*models.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

func (s *Postgres) Update(ctx context.Context, role *models.Role) error {
	query := `
		UPDATE project_roles
		SET name = $2, updated_at = $3, removed_at = $4
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(role.ID),
		role.Name,
		role.UpdatedAt,
		role.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update role rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) AttachPolicy(ctx context.Context, roleID id.RoleID, policyID id.PolicyID) error {
	query := `INSERT INTO role_policies (role_id, policy_id) VALUES ($1, $2)`
	_, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(roleID), uuid.UUID(policyID))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("policy already attached: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("attach policy: %w", err)
	}
	return nil
}

func (s *Postgres) DetachPolicy(ctx context.Context, roleID id.RoleID, policyID id.PolicyID) error {
	query := `DELETE FROM role_policies WHERE role_id = $1 AND policy_id = $2`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(roleID), uuid.UUID(policyID))
	if err != nil {
		return fmt.Errorf("detach policy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("detach policy rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("policy not attached: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) ListPolicyIDs(ctx context.Context, roleID id.RoleID) ([]id.PolicyID, error) {
	query := `SELECT policy_id FROM role_policies WHERE role_id = $1`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(roleID))
	if err != nil {
		return nil, fmt.Errorf("list role policies: %w", err)
	}
	defer rows.Close()

	ids := make([]id.PolicyID, 0)
	for rows.Next() {
		var policyID uuid.UUID
		if err := rows.Scan(&policyID); err != nil {
			return nil, fmt.Errorf("scan role policy: %w", err)
		}
		ids = append(ids, id.PolicyID(policyID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role policies: %w", err)
	}
	return ids, nil
}

func (s *Postgres) CountActiveRolesHoldingPolicy(ctx context.Context, policyID id.PolicyID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM role_policies rp
		JOIN project_roles r ON r.id = rp.role_id
		WHERE rp.policy_id = $1 AND r.removed_at IS NULL
	`
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(policyID)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count roles holding policy: %w", err)
	}
	return count, nil
}

func scanRole(row interface{ Scan(dest ...any) error }) (*models.Role, error) {
	var (
		r         models.Role
		roleID    uuid.UUID
		projectID uuid.UUID
		companyID uuid.UUID
	)
	err := row.Scan(&roleID, &projectID, &companyID, &r.Name, &r.IsDefault, &r.CreatedAt, &r.UpdatedAt, &r.RemovedAt)
	if err != nil {
		return nil, err
	}
	r.ID = id.RoleID(roleID)
	r.ProjectID = id.ProjectID(projectID)
	r.CompanyID = id.CompanyID(companyID)
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
