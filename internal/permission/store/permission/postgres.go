package permission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cascade/internal/permission/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
	txcontext "cascade/pkg/platform/tx"
)

// Postgres persists permissions in project_permissions. Rows are immutable
// after insert; there is no update statement in this store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Runner(ctx, s.db)
}

const permissionColumns = `
	id, project_id, company_id, name, description, category, created_at, removed_at`

func (s *Postgres) Create(ctx context.Context, permission *models.Permission) error {
	query := `
		INSERT INTO project_permissions (` + permissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(permission.ID),
		uuid.UUID(permission.ProjectID),
		uuid.UUID(permission.CompanyID),
		permission.Name,
		permission.Description,
		string(permission.Category),
		permission.CreatedAt,
		permission.RemovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("permission name already taken: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert permission: %w", err)
	}
	return nil
}

func (s *Postgres) FindActive(ctx context.Context, projectID id.ProjectID, permissionID id.PermissionID) (*models.Permission, error) {
	query := `
		SELECT ` + permissionColumns + `
		FROM project_permissions
		WHERE id = $1 AND project_id = $2 AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(permissionID), uuid.UUID(projectID))
	permission, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return permission, nil
}

func (s *Postgres) FindActiveByName(ctx context.Context, projectID id.ProjectID, name string) (*models.Permission, error) {
	query := `
		SELECT ` + permissionColumns + `
		FROM project_permissions
		WHERE project_id = $1 AND name = $2 AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), name)
	permission, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find permission by name: %w", err)
	}
	return permission, nil
}

func (s *Postgres) ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Permission, error) {
	query := `
		SELECT ` + permissionColumns + `
		FROM project_permissions
		WHERE project_id = $1 AND removed_at IS NULL
		ORDER BY category ASC, name ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func (s *Postgres) ListActiveByIDs(ctx context.Context, ids []id.PermissionID) ([]*models.Permission, error) {
	if len(ids) == 0 {
		return []*models.Permission{}, nil
	}
	raw := make([]uuid.UUID, len(ids))
	for i, permissionID := range ids {
		raw[i] = uuid.UUID(permissionID)
	}
	query := `
		SELECT ` + permissionColumns + `
		FROM project_permissions
		WHERE id = ANY($1) AND removed_at IS NULL
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("list permissions by ids: %w", err)
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func collectPermissions(rows *sql.Rows) ([]*models.Permission, error) {
	permissions := make([]*models.Permission, 0)
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, permission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}
	return permissions, nil
}

func scanPermission(row interface{ Scan(dest ...any) error }) (*models.Permission, error) {
	var (
		p            models.Permission
		permissionID uuid.UUID
		projectID    uuid.UUID
		companyID    uuid.UUID
		category     string
	)
	err := row.Scan(&permissionID, &projectID, &companyID, &p.Name, &p.Description, &category, &p.CreatedAt, &p.RemovedAt)
	if err != nil {
		return nil, err
	}
	p.ID = id.PermissionID(permissionID)
	p.ProjectID = id.ProjectID(projectID)
	p.CompanyID = id.CompanyID(companyID)
	p.Category = models.PermissionCategory(category)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
