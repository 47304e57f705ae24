package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cascade/internal/history/models"
	id "cascade/pkg/domain"
	txcontext "cascade/pkg/platform/tx"
)

// Postgres persists history entries using the transactional outbox pattern:
// every Append writes the queryable project_history row and its
// project_history_outbox row through the same executor, so both either commit
// or roll back with the caller's transaction.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) execer(ctx context.Context) txcontext.Querier {
	return txcontext.Runner(ctx, s.db)
}

const entryColumns = `
	id, project_id, company_id, action, field_name, old_value, new_value,
	comment, changed_by, changed_at`

func (s *Postgres) Append(ctx context.Context, entry *models.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history payload: %w", err)
	}

	query := `
		INSERT INTO project_history (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.ProjectID),
		uuid.UUID(entry.CompanyID),
		string(entry.Action),
		entry.FieldName,
		entry.OldValue,
		entry.NewValue,
		entry.Comment,
		uuid.UUID(entry.ChangedBy),
		entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	outboxQuery := `
		INSERT INTO project_history_outbox (entry_id, project_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = s.execer(ctx).ExecContext(ctx, outboxQuery,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.ProjectID),
		payload,
		entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history outbox row: %w", err)
	}
	return nil
}

func (s *Postgres) ListByProject(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, limit, offset int) ([]*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM project_history
		WHERE project_id = $1 AND company_id = $2
		ORDER BY changed_at DESC, seq DESC
		LIMIT $3 OFFSET $4
	`
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(projectID), uuid.UUID(companyID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		var (
			e         models.Entry
			entryID   uuid.UUID
			projID    uuid.UUID
			compID    uuid.UUID
			action    string
			changedBy uuid.UUID
		)
		err := rows.Scan(&entryID, &projID, &compID, &action, &e.FieldName,
			&e.OldValue, &e.NewValue, &e.Comment, &changedBy, &e.ChangedAt)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.ID = id.HistoryID(entryID)
		e.ProjectID = id.ProjectID(projID)
		e.CompanyID = id.CompanyID(compID)
		e.Action = models.Action(action)
		e.ChangedBy = id.UserID(changedBy)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// ListUnpublished returns pending outbox rows, oldest first, so per-project
// ordering survives into Kafka.
func (s *Postgres) ListUnpublished(ctx context.Context, limit int) ([]*models.OutboxRow, error) {
	query := `
		SELECT seq, entry_id, project_id, payload, created_at, published_at
		FROM project_history_outbox
		WHERE published_at IS NULL
		ORDER BY seq ASC
		LIMIT $1
	`
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished outbox rows: %w", err)
	}
	defer rows.Close()

	out := make([]*models.OutboxRow, 0)
	for rows.Next() {
		var (
			row       models.OutboxRow
			entryID   uuid.UUID
			projectID uuid.UUID
		)
		if err := rows.Scan(&row.ID, &entryID, &projectID, &row.Payload, &row.CreatedAt, &row.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		row.EntryID = id.HistoryID(entryID)
		row.ProjectID = id.ProjectID(projectID)
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return out, nil
}

func (s *Postgres) MarkPublished(ctx context.Context, rowID int64, now time.Time) error {
	query := `UPDATE project_history_outbox SET published_at = $2 WHERE seq = $1`
	_, err := s.execer(ctx).ExecContext(ctx, query, rowID, now)
	if err != nil {
		return fmt.Errorf("mark outbox row published: %w", err)
	}
	return nil
}
