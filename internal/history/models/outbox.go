package models

import (
	"time"

	id "cascade/pkg/domain"
)

// OutboxRow is one pending history event awaiting Kafka publication. Rows are
// inserted in the same transaction as their history entry and drained by the
// outbox worker, so delivery is at-least-once and never observes an entry
// whose transaction rolled back.
type OutboxRow struct {
	ID          int64
	EntryID     id.HistoryID
	ProjectID   id.ProjectID
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (r *OutboxRow) IsPublished() bool {
	return r.PublishedAt != nil
}
