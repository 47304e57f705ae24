package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cascade/internal/member/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
	txcontext "cascade/pkg/platform/tx"
)

// Postgres persists memberships in the project_members table, keyed by the
// (project_id, user_id) pair.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Runner(ctx, s.db)
}

const memberColumns = `
	project_id, user_id, company_id, role_id, created_at, updated_at, removed_at`

func (s *Postgres) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO project_members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(membership.ProjectID),
		uuid.UUID(membership.UserID),
		uuid.UUID(membership.CompanyID),
		uuid.UUID(membership.RoleID),
		membership.CreatedAt,
		membership.UpdatedAt,
		membership.RemovedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *Postgres) FindByPair(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*models.Membership, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), uuid.UUID(userID))
	membership, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return membership, nil
}

func (s *Postgres) FindActive(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*models.Membership, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM project_members
		WHERE project_id = $1 AND user_id = $2 AND removed_at IS NULL
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), uuid.UUID(userID))
	membership, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find active membership: %w", err)
	}
	return membership, nil
}

func (s *Postgres) ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Membership, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM project_members
		WHERE project_id = $1 AND removed_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	members := make([]*models.Membership, 0)
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return members, nil
}

func (s *Postgres) Update(ctx context.Context, membership *models.Membership) error {
	query := `
		UPDATE project_members
		SET role_id = $3, updated_at = $4, removed_at = $5
		WHERE project_id = $1 AND user_id = $2
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(membership.ProjectID),
		uuid.UUID(membership.UserID),
		uuid.UUID(membership.RoleID),
		membership.UpdatedAt,
		membership.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) CountActiveByRole(ctx context.Context, roleID id.RoleID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM project_members WHERE role_id = $1 AND removed_at IS NULL`
	if err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(roleID)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count memberships by role: %w", err)
	}
	return count, nil
}

func (s *Postgres) RemoveAllForProject(ctx context.Context, projectID id.ProjectID, now time.Time) (int, error) {
	query := `
		UPDATE project_members
		SET removed_at = $2, updated_at = $2
		WHERE project_id = $1 AND removed_at IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(projectID), now)
	if err != nil {
		return 0, fmt.Errorf("remove project memberships: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove project memberships rows affected: %w", err)
	}
	return int(affected), nil
}

func scanMembership(row interface{ Scan(dest ...any) error }) (*models.Membership, error) {
	var (
		m         models.Membership
		projectID uuid.UUID
		userID    uuid.UUID
		companyID uuid.UUID
		roleID    uuid.UUID
	)
	err := row.Scan(&projectID, &userID, &companyID, &roleID, &m.CreatedAt, &m.UpdatedAt, &m.RemovedAt)
	if err != nil {
		return nil, err
	}
	m.ProjectID = id.ProjectID(projectID)
	m.UserID = id.UserID(userID)
	m.CompanyID = id.CompanyID(companyID)
	m.RoleID = id.RoleID(roleID)
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
